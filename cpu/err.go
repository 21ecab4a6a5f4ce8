package cpu

import (
	"errors"

	"github.com/ezrec/vnpu/translate"
)

var f = translate.From

var (
	// Execution error kinds
	ErrMalformedInstruction = errors.New(f("malformed instruction"))
	ErrUnresolvableOperand  = errors.New(f("unresolvable operand"))
	ErrInvalidOperation     = errors.New(f("invalid operation"))

	// Control conditions
	ErrEmptyLine = errors.New(f("empty line"))
	ErrHalted    = errors.New(f("halted"))

	// Instruction decode errors
	ErrOpcodeUnknown    = errors.New(f("opcode unknown"))
	ErrOpcodeArith      = errors.New(f("arith"))
	ErrOpcodeMove       = errors.New(f("mov"))
	ErrOperand1         = errors.New(f("operand1"))
	ErrOperand2         = errors.New(f("operand2"))
	ErrOperandMissing   = errors.New(f("operand missing"))
	ErrOperandExtra     = errors.New(f("excessive operands"))
	ErrOperandSeparator = errors.New(f("operand separator"))
	ErrLineLength       = errors.New(f("line too long"))
)

// ErrInstruction annotates an execution failure with the failing instruction.
type ErrInstruction Instruction

func (ei ErrInstruction) Error() string {
	return f("bad instruction '%v'", Instruction(ei).String())
}

func (ei ErrInstruction) Is(err error) (ok bool) {
	_, ok = err.(ErrInstruction)
	return
}

// ErrOperand is an operand character that is neither a digit nor a register.
type ErrOperand byte

func (err ErrOperand) Error() string {
	return f("'%c' is not a digit or register", byte(err))
}

func (err ErrOperand) Unwrap() error {
	return ErrUnresolvableOperand
}

// ErrSyntax is a line that could not be decoded into an instruction.
type ErrSyntax struct {
	Line string
	Err  error
}

func (err *ErrSyntax) Error() string {
	return f("'%v' %v", err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

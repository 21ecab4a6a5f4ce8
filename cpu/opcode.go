// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"strings"
)

const (
	INSTR_LEN_LIMIT = 6 // Maximum data characters in an instruction line.
)

// Opcode is a single character instruction mnemonic.
type Opcode byte

const (
	OP_ADD  = Opcode('+') // add
	OP_SUB  = Opcode('-') // sub
	OP_MUL  = Opcode('*') // mul
	OP_DIV  = Opcode('/') // div
	OP_MOV  = Opcode('M') // mov
	OP_EQ   = Opcode('?') // eq
	OP_GT   = Opcode('>') // gt
	OP_LT   = Opcode('<') // lt
	OP_NE   = Opcode('!') // ne
	OP_PRNT = Opcode('@') // prnt
	OP_HALT = Opcode('.') // halt
	OP_HELP = Opcode('H') // help
)

// opName maps each opcode to its mnemonic.
var opName = map[Opcode]string{
	OP_ADD:  "add",
	OP_SUB:  "sub",
	OP_MUL:  "mul",
	OP_DIV:  "div",
	OP_MOV:  "mov",
	OP_EQ:   "eq",
	OP_GT:   "gt",
	OP_LT:   "lt",
	OP_NE:   "ne",
	OP_PRNT: "prnt",
	OP_HALT: "halt",
	OP_HELP: "help",
}

// Valid returns true if the opcode is part of the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opName[op]
	return ok
}

// Operands returns the number of operands the opcode takes.
func (op Opcode) Operands() int {
	switch op {
	case OP_HALT, OP_HELP:
		return 0
	case OP_PRNT:
		return 1
	default:
		return 2
	}
}

func (op Opcode) String() string {
	name, ok := opName[op]
	if !ok {
		return fmt.Sprintf("Opcode(%q)", byte(op))
	}
	return name
}

// Instruction is a single decoded instruction line.
type Instruction struct {
	Opcode   Opcode
	Operand1 byte
	Operand2 byte
}

// String returns the instruction in its input form.
func (inst Instruction) String() string {
	switch inst.Opcode.Operands() {
	case 0:
		return string([]byte{byte(inst.Opcode)})
	case 1:
		return string([]byte{byte(inst.Opcode), ' ', inst.Operand1})
	default:
		return string([]byte{byte(inst.Opcode), ' ', inst.Operand1, ' ', inst.Operand2})
	}
}

// Decode decodes a single input line into an instruction.
//
// The grammar is fixed-position: the opcode at index 0, and operands at
// index 2 and 4, each separated by a single space. Trailing whitespace
// (including the line terminator) is ignored.
func Decode(line string) (inst Instruction, err error) {
	text := strings.TrimRight(line, " \t\r\n")

	defer func() {
		if err != nil && !errors.Is(err, ErrEmptyLine) {
			err = &ErrSyntax{Line: text, Err: errors.Join(ErrMalformedInstruction, err)}
		}
	}()

	if len(strings.TrimSpace(text)) == 0 {
		err = ErrEmptyLine
		return
	}

	if len(text) > INSTR_LEN_LIMIT {
		err = ErrLineLength
		return
	}

	op := Opcode(text[0])
	if !op.Valid() {
		err = ErrOpcodeUnknown
		return
	}

	inst.Opcode = op

	if len(text) == 1 {
		if op.Operands() != 0 {
			err = ErrOperandMissing
		}
		return
	}

	// Halt and help only stand alone; anything more is read as a
	// two operand instruction, which they do not accept.
	operands := op.Operands()
	if operands == 0 {
		err = ErrOperandExtra
		return
	}

	if text[1] != ' ' {
		err = ErrOperandSeparator
		return
	}

	want := 1 + 2*operands
	switch {
	case len(text) < want:
		err = ErrOperandMissing
		return
	case len(text) > want:
		err = ErrOperandExtra
		return
	}

	for n := 1; n < want; n += 2 {
		if text[n] != ' ' {
			err = ErrOperandSeparator
			return
		}
		if text[n+1] == ' ' || text[n+1] == '\t' {
			err = ErrOperandMissing
			return
		}
	}

	inst.Operand1 = text[2]
	if operands == 2 {
		inst.Operand2 = text[4]
	}

	return
}

// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/vnpu/internal"
)

var _cpu_defines = map[string]string{
	"WORD_SIZE":       fmt.Sprintf("%v", WORD_SIZE),
	"MEMORY_SIZE":     fmt.Sprintf("%v", MEMORY_SIZE),
	"INSTR_LEN_LIMIT": fmt.Sprintf("%v", INSTR_LEN_LIMIT),
}

// Cpu is the machine state of the VNPU.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	AX     Word   // Accumulator, target of all arithmetic.
	BX     Word   // Secondary register.
	Memory Memory // Most recent arithmetic result.
	Cond   bool   // Result of the most recent comparison.
	Halted bool   // Set once the VNPU has halted.

	Ticks int // Instructions executed.

	Output io.Writer // Destination of printed values and help text.
}

// NewCpu creates a new VNPU printing to the output.
func NewCpu(output io.Writer) (cpu *Cpu) {
	if output == nil {
		output = io.Discard
	}

	cpu = &Cpu{
		Output: output,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers and memory.
// - Clears the condition and halted flags.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.AX = Word{}
	cpu.BX = Word{}
	cpu.Memory = Memory{}
	cpu.Cond = false
	cpu.Halted = false
	cpu.Ticks = 0
}

// wordSeq iterates over named words.
func wordSeq(names []string, words ...Word) iter.Seq2[string, Word] {
	return func(yield func(string, Word) bool) {
		for n, word := range words {
			if !yield(names[n], word) {
				return
			}
		}
	}
}

// Registers returns an iterator over the registers, then the memory slots.
func (cpu *Cpu) Registers() iter.Seq2[string, Word] {
	return internal.IterSeq2Concat(
		wordSeq([]string{"ax", "bx"}, cpu.AX, cpu.BX),
		wordSeq([]string{"mem0", "mem1"}, cpu.Memory[:]...),
	)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	for name, word := range cpu.Registers() {
		text += fmt.Sprintf("% 5s: %v (%d)\n", name, word, word.Value())
	}
	text += fmt.Sprintf("% 5s: %v (%d)\n", "mem", "-", cpu.Memory.Value())
	text += fmt.Sprintf("% 5s: %v\n", "cond", cpu.Cond)
	text += fmt.Sprintf("% 5s: %v\n", "halt", cpu.Halted)

	return
}

// Resolve returns the value of an operand: a decimal digit literal, or the
// value of a register. It never modifies the CPU state.
func (cpu *Cpu) Resolve(token byte) (value int, err error) {
	switch {
	case token >= '0' && token <= '9':
		value = int(token - '0')
	case token == 'A':
		value = cpu.AX.Value()
	case token == 'B':
		value = cpu.BX.Value()
	default:
		err = ErrOperand(token)
	}

	return
}

// storeResult places an arithmetic result into memory.
func (cpu *Cpu) storeResult(value int) {
	cpu.Memory = MakeMemory(value)
}

// register returns the register named by the token.
func (cpu *Cpu) register(token byte) (reg *Word, ok bool) {
	switch token {
	case 'A':
		return &cpu.AX, true
	case 'B':
		return &cpu.BX, true
	}

	return
}

// Execute executes a single decoded instruction.
//
// Returns done when the VNPU has halted, either by the halt opcode or by
// an error. Once halted, no further instructions are executed.
func (cpu *Cpu) Execute(inst Instruction) (done bool, err error) {
	if cpu.Halted {
		return true, ErrHalted
	}

	defer func() {
		if err != nil {
			err = errors.Join(ErrInstruction(inst), err)
			cpu.Halted = true
		}
		done = cpu.Halted
	}()

	if cpu.Verbose {
		log.Printf("%03d: %v (%v)", cpu.Ticks, inst, inst.Opcode)
	}

	switch inst.Opcode {
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		err = cpu.doArith(inst)
	case OP_MOV:
		err = cpu.doMove(inst)
	case OP_EQ, OP_GT, OP_LT, OP_NE:
		cpu.doCompare(inst)
	case OP_PRNT:
		cpu.doPrint(inst)
	case OP_HALT:
		cpu.Halted = true
	case OP_HELP:
		fmt.Fprint(cpu.Output, HelpText())
	default:
		err = errors.Join(ErrMalformedInstruction, ErrOpcodeUnknown)
	}

	if err != nil {
		return
	}

	cpu.Ticks++

	return
}

// doArith performs an arithmetic opcode into AX and memory.
func (cpu *Cpu) doArith(inst Instruction) (err error) {
	x, err := cpu.Resolve(inst.Operand1)
	if err != nil {
		return errors.Join(ErrOpcodeArith, ErrOperand1, err)
	}
	y, err := cpu.Resolve(inst.Operand2)
	if err != nil {
		return errors.Join(ErrOpcodeArith, ErrOperand2, err)
	}

	var result int
	switch inst.Opcode {
	case OP_ADD:
		result = x + y
	case OP_SUB:
		result = x - y
	case OP_MUL:
		result = x * y
	case OP_DIV:
		if y <= 0 {
			return errors.Join(ErrOpcodeArith, ErrOperand2, ErrInvalidOperation)
		}
		result = x / y
	}

	cpu.AX = MakeWord(result)
	cpu.storeResult(result)

	if cpu.Verbose {
		log.Printf("cpu: %v %d %d => %d, ax %v, mem %v %v", inst.Opcode, x, y, result, cpu.AX, cpu.Memory[0], cpu.Memory[1])
	}

	return
}

// doMove copies a register into the other register, or loads a digit
// into a register.
func (cpu *Cpu) doMove(inst Instruction) (err error) {
	src := inst.Operand1
	target, ok := cpu.register(inst.Operand2)
	if !ok {
		return errors.Join(ErrOpcodeMove, ErrOperand2, ErrInvalidOperation)
	}

	// A register can only be moved into the other register.
	if src == inst.Operand2 {
		return errors.Join(ErrOpcodeMove, ErrOperand1, ErrInvalidOperation)
	}

	value, err := cpu.Resolve(src)
	if err != nil {
		return errors.Join(ErrOpcodeMove, ErrOperand1, ErrInvalidOperation, err)
	}

	*target = MakeWord(value)

	return
}

// doCompare sets the condition flag from the raw operand characters.
// Register operands are not resolved: '? A B' compares 'A' with 'B'.
func (cpu *Cpu) doCompare(inst Instruction) {
	a := inst.Operand1
	b := inst.Operand2

	switch inst.Opcode {
	case OP_EQ:
		cpu.Cond = a == b
	case OP_GT:
		cpu.Cond = a > b
	case OP_LT:
		cpu.Cond = a < b
	case OP_NE:
		cpu.Cond = a != b
	}

	if cpu.Verbose {
		log.Printf("cpu: %v '%c' '%c' => %v", inst.Opcode, a, b, cpu.Cond)
	}
}

// doPrint prints the decimal value of a register, or the operand itself.
func (cpu *Cpu) doPrint(inst Instruction) {
	reg, ok := cpu.register(inst.Operand1)
	if ok {
		fmt.Fprintf(cpu.Output, "%d\n", reg.Value())
	} else {
		fmt.Fprintf(cpu.Output, "%c\n", inst.Operand1)
	}
}

// Package cpu implements the Virtual Nano Processing Unit (VNPU).
//
// The VNPU consists of two WORD_SIZE-bit registers (AX and BX), a two word
// memory bank that always holds the most recent arithmetic result, and a
// single-character instruction set of twelve opcodes. Instructions are
// decoded one line at a time and executed immediately; there is no program
// counter and no branching.
//
// Any malformed instruction, unresolvable operand, or invalid operation
// halts the VNPU.
package cpu

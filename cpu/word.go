// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"strings"
)

const (
	WORD_SIZE   = 8                                // Bits per register and memory slot.
	MEMORY_SIZE = 2                                // Memory slots.
	WORD_MASK   = ^uint64(0) >> (64 - WORD_SIZE)   // Mask of a single word.
	MEMORY_MASK = ^uint64(0) >> (64 - 2*WORD_SIZE) // Mask of the memory field.
)

// Bit is a single binary digit, 0 or 1.
type Bit uint8

// Word is a WORD_SIZE-bit value, most significant bit first.
type Word [WORD_SIZE]Bit

// Memory is the result field, most significant word first.
type Memory [MEMORY_SIZE]Word

// MakeWord encodes the low WORD_SIZE bits of a value.
// Negative values wrap, as in two's complement.
func MakeWord(value int) (word Word) {
	bits := uint64(value) & WORD_MASK

	for n := WORD_SIZE - 1; n >= 0; n-- {
		word[n] = Bit(bits % 2)
		bits /= 2
	}

	return
}

// Value returns the unsigned value of the word.
func (word Word) Value() (value int) {
	for _, bit := range word {
		value = value*2 + int(bit)
	}

	return
}

// String returns the word as a string of binary digits.
func (word Word) String() string {
	var sb strings.Builder
	for _, bit := range word {
		sb.WriteByte('0' + byte(bit))
	}
	return sb.String()
}

// MakeMemory encodes the low MEMORY_SIZE*WORD_SIZE bits of a value,
// spreading the high bits into the first slot.
func MakeMemory(value int) (mem Memory) {
	bits := uint64(value) & MEMORY_MASK

	for i := MEMORY_SIZE - 1; i >= 0; i-- {
		mem[i] = MakeWord(int(bits & WORD_MASK))
		bits >>= WORD_SIZE
	}

	return
}

// Value returns the memory contents as one unsigned value.
func (mem Memory) Value() (value int) {
	for _, word := range mem {
		value = (value << WORD_SIZE) | word.Value()
	}

	return
}

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWord(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		value int
		word  string
		back  int
	}){
		{"zero", 0, "00000000", 0},
		{"one", 1, "00000001", 1},
		{"five", 5, "00000101", 5},
		{"max", 255, "11111111", 255},
		{"overflow", 256, "00000000", 0},
		{"truncate", 0x1ab, "10101011", 0xab},
		{"negative", -1, "11111111", 255},
		{"negative_two", -2, "11111110", 254},
	}

	for _, entry := range table {
		word := MakeWord(entry.value)
		assert.Equal(entry.word, word.String(), entry.name)
		assert.Equal(entry.back, word.Value(), entry.name)
	}
}

func TestWord_MsbFirst(t *testing.T) {
	assert := assert.New(t)

	word := MakeWord(1 << (WORD_SIZE - 1))
	assert.Equal(Bit(1), word[0])
	for n := 1; n < WORD_SIZE; n++ {
		assert.Equal(Bit(0), word[n])
	}

	word = MakeWord(1)
	assert.Equal(Bit(1), word[WORD_SIZE-1])
}

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		value int
		high  int
		low   int
	}){
		{"zero", 0, 0, 0},
		{"small", 7, 0, 7},
		{"word", 255, 0, 255},
		{"split", 0x1234, 0x12, 0x34},
		{"max", 0xffff, 0xff, 0xff},
		{"overflow", 0x12345, 0x23, 0x45},
		{"negative", -1, 0xff, 0xff},
	}

	for _, entry := range table {
		mem := MakeMemory(entry.value)
		assert.Equal(entry.high, mem[0].Value(), entry.name)
		assert.Equal(entry.low, mem[1].Value(), entry.name)
		assert.Equal((entry.high<<WORD_SIZE)|entry.low, mem.Value(), entry.name)
	}
}

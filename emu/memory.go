package emu

import "fmt"

// DataWords is the size of the data address space in 16-bit words.
const DataWords = 1 << 16

// CodeWords is the size of code memory in 16-bit words. Fetch addresses
// are 13 bits wide; bit 12 selects code-read mode and aliases the low
// half, so the same word is executed below 0x1000 and read as data above.
const CodeWords = 1 << 12

// Memory is the word-addressed data memory.
type Memory struct {
	words []uint16
}

// NewMemory creates a zeroed data memory.
func NewMemory() *Memory {
	return &Memory{words: make([]uint16, DataWords)}
}

// Read returns the word at addr.
func (m *Memory) Read(addr uint16) uint16 {
	return m.words[addr]
}

// Write stores value at addr.
func (m *Memory) Write(addr uint16, value uint16) {
	m.words[addr] = value
}

// Load copies words starting at origin.
func (m *Memory) Load(origin uint16, words []uint16) error {
	if int(origin)+len(words) > DataWords {
		return fmt.Errorf("%d words at 0x%04X overflow data memory", len(words), origin)
	}
	copy(m.words[origin:], words)
	return nil
}

// CodeMemory holds the program. It is read once per tick at the core's
// CodeAddr.
type CodeMemory struct {
	words []uint16
}

// NewCodeMemory creates a zeroed code memory.
func NewCodeMemory() *CodeMemory {
	return &CodeMemory{words: make([]uint16, CodeWords)}
}

// Fetch returns the word at a 13-bit fetch address.
func (m *CodeMemory) Fetch(addr uint16) uint16 {
	return m.words[addr&(CodeWords-1)]
}

// Write stores value at addr.
func (m *CodeMemory) Write(addr uint16, value uint16) {
	m.words[addr&(CodeWords-1)] = value
}

// Load copies a program starting at origin.
func (m *CodeMemory) Load(origin uint16, words []uint16) error {
	if int(origin)+len(words) > CodeWords {
		return fmt.Errorf("%d words at 0x%04X overflow code memory", len(words), origin)
	}
	copy(m.words[origin:], words)
	return nil
}

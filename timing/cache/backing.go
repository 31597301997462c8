package cache

import (
	"github.com/sarchlab/j1sim/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches words from the backing memory. Addresses wrap at 2^16.
func (m *MemoryBacking) Read(addr uint16, n int) []uint16 {
	data := make([]uint16, n)
	for i := range data {
		data[i] = m.memory.Read(addr + uint16(i))
	}
	return data
}

// Write stores words to the backing memory.
func (m *MemoryBacking) Write(addr uint16, data []uint16) {
	for i, w := range data {
		m.memory.Write(addr+uint16(i), w)
	}
}

package emu

// DefaultStackDepthBits gives 16-entry stacks.
const DefaultStackDepthBits = 4

// MaxStackDepthBits keeps {rsp, dsp} packable into one 16-bit status word.
const MaxStackDepthBits = 8

// Stack is a circular register file of 2^depthBits 16-bit cells with a
// combinational read port and a clocked write port. Pointers wrap; there
// is no overflow or underflow.
type Stack struct {
	cells []uint16
	mask  uint8

	// pending write, applied by Commit
	writeAddr  uint8
	writeValue uint16
	writeEn    bool
}

// NewStack creates a stack with 2^depthBits cells. depthBits must be in
// 1..MaxStackDepthBits.
func NewStack(depthBits uint) *Stack {
	if depthBits < 1 || depthBits > MaxStackDepthBits {
		panic("emu: stack depth bits out of range")
	}
	size := 1 << depthBits
	return &Stack{
		cells: make([]uint16, size),
		mask:  uint8(size - 1),
	}
}

// Depth returns the number of cells.
func (s *Stack) Depth() int {
	return len(s.cells)
}

// Wrap reduces a pointer modulo the stack depth.
func (s *Stack) Wrap(ptr uint8) uint8 {
	return ptr & s.mask
}

// Add applies a signed delta to a pointer with wraparound.
func (s *Stack) Add(ptr uint8, delta int8) uint8 {
	return (ptr + uint8(delta)) & s.mask
}

// Read returns the cell at ptr mod depth. Pending writes are not visible
// until Commit.
func (s *Stack) Read(ptr uint8) uint16 {
	return s.cells[ptr&s.mask]
}

// Write schedules value for cell ptr mod depth at the next Commit. It
// replaces any previously scheduled write in the same cycle. When enable
// is false nothing is scheduled and the cell is left unchanged.
func (s *Stack) Write(ptr uint8, value uint16, enable bool) {
	if !enable {
		return
	}
	s.writeAddr = ptr & s.mask
	s.writeValue = value
	s.writeEn = enable
}

// Commit applies the scheduled write, if any. It is the clock edge.
func (s *Stack) Commit() {
	if s.writeEn {
		s.cells[s.writeAddr] = s.writeValue
	}
	s.writeEn = false
}

// Reset clears every cell and drops any pending write.
func (s *Stack) Reset() {
	clear(s.cells)
	s.writeEn = false
}

// Snapshot returns a copy of the cells, indexed by physical address.
func (s *Stack) Snapshot() []uint16 {
	out := make([]uint16, len(s.cells))
	copy(out, s.cells)
	return out
}

// Package emu provides functional J1 emulation.
package emu

import "github.com/sarchlab/j1sim/insts"

// PCSource identifies which rule selected the next fetch address.
type PCSource uint8

// Next-PC sources in priority order.
const (
	PCFromReboot    PCSource = iota // reboot forces address 0
	PCFromTarget                    // jump, call, or taken cond-jump
	PCFromReturn                    // return stack top >> 1
	PCFromIncrement                 // pc + 1
)

var pcSourceNames = [...]string{"reboot", "target", "return", "increment"}

func (s PCSource) String() string {
	return pcSourceNames[s&3]
}

// PCInputs is the selector vector of the next-PC decision.
type PCInputs struct {
	Reboot bool
	Inst   *insts.Instruction
	T      uint16 // top of data stack
	R      uint16 // top of return stack
	PC     uint16
}

// PCUnit selects the next fetch address. It is a pure function of its
// inputs.
type PCUnit struct{}

// NewPCUnit creates a new PCUnit.
func NewPCUnit() *PCUnit {
	return &PCUnit{}
}

// Next returns the next fetch address and the rule that produced it.
// The cases partition the selector space; anything not matched falls
// through to pc + 1.
func (u *PCUnit) Next(in PCInputs) (uint16, PCSource) {
	inst := in.Inst

	switch {
	case in.Reboot:
		return 0, PCFromReboot
	case inst.Class == insts.ClassJump, inst.Class == insts.ClassCall:
		return inst.Target, PCFromTarget
	case inst.Class == insts.ClassCondJump && in.T == 0:
		return inst.Target, PCFromTarget
	case inst.Class == insts.ClassCodeRead,
		inst.Class == insts.ClassALU && inst.Return:
		return ReturnAddress(in.R), PCFromReturn
	default:
		return (in.PC + 1) & insts.PCMask, PCFromIncrement
	}
}

// ReturnAddress recovers a code address from a return stack cell. Calls
// push (pc+1) << 1, so bit 0 is a tag and bits [1, 14) hold the address.
func ReturnAddress(cell uint16) uint16 {
	return (cell >> 1) & insts.PCMask
}

// ReturnCell is the return stack encoding of a code address.
func ReturnCell(addr uint16) uint16 {
	return (addr & insts.PCMask) << 1
}

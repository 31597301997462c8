// Package emu provides functional J1 emulation.
package emu

import "github.com/sarchlab/j1sim/insts"

// BoolConvention selects how comparison results are widened to 16 bits.
type BoolConvention uint8

// Boolean widening conventions.
const (
	// BoolOne widens true to 0x0001.
	BoolOne BoolConvention = iota
	// BoolAllOnes widens true to 0xFFFF.
	BoolAllOnes
)

// ALUInputs holds the operands of one ALU evaluation.
type ALUInputs struct {
	T      uint16 // top of data stack
	N      uint16 // second element of data stack
	R      uint16 // top of return stack
	DSP    uint8
	RSP    uint8
	MemDin uint16 // memory read data
	IODin  uint16 // IO read data
}

// ALU implements the 16 J1 ALU operations. It holds no state besides its
// configuration; Execute is a pure function.
type ALU struct {
	trueValue uint16
	depthBits uint
	ptrMask   uint16
}

// NewALU creates an ALU for stacks of 2^depthBits cells.
func NewALU(depthBits uint, conv BoolConvention) *ALU {
	a := &ALU{
		trueValue: 1,
		depthBits: depthBits,
		ptrMask:   uint16(1)<<depthBits - 1,
	}
	if conv == BoolAllOnes {
		a.trueValue = 0xFFFF
	}
	return a
}

// Execute computes the new top of stack for an ALU-class instruction.
func (a *ALU) Execute(op insts.ALUOp, in ALUInputs) uint16 {
	t, n := in.T, in.N

	switch op & 0xF {
	case insts.ALUT:
		return t
	case insts.ALUN:
		return n
	case insts.ALUAdd:
		return t + n
	case insts.ALUAnd:
		return t & n
	case insts.ALUOr:
		return t | n
	case insts.ALUXor:
		return t ^ n
	case insts.ALUInvert:
		return ^t
	case insts.ALUEqual:
		return a.flag(n == t)
	case insts.ALULess:
		return a.flag(int16(n) < int16(t))
	case insts.ALURShift:
		return uint16(int16(t) >> 1)
	case insts.ALULShift:
		return t << 1
	case insts.ALURTop:
		return in.R
	case insts.ALUMemRead:
		return in.MemDin
	case insts.ALUIORead:
		return in.IODin
	case insts.ALUStatus:
		return a.Status(in.DSP, in.RSP)
	default: // insts.ALUULess
		return a.flag(n < t)
	}
}

// Status packs dsp into bits [0, D) and rsp into bits [D, 2D).
func (a *ALU) Status(dsp, rsp uint8) uint16 {
	return uint16(dsp)&a.ptrMask | (uint16(rsp)&a.ptrMask)<<a.depthBits
}

func (a *ALU) flag(v bool) uint16 {
	if v {
		return a.trueValue
	}
	return 0
}

// Package emu provides functional J1 emulation.
package emu

import (
	"fmt"

	"github.com/sarchlab/j1sim/insts"
)

// Inputs are the signals sampled by the core once per tick.
type Inputs struct {
	// Insn is the instruction word at the CodeAddr output of the
	// previous tick.
	Insn uint16
	// MemDin is the memory read data.
	MemDin uint16
	// IODin is the IO read data.
	IODin uint16
}

// Outputs are the signals driven by the core once per tick.
type Outputs struct {
	CodeAddr uint16 // 13-bit address of the instruction for the next tick
	MemAddr  uint16 // memory and IO address, always T
	MemWr    bool   // memory write strobe
	Dout     uint16 // write data, always N
	IORd     bool   // IO read strobe
	IOWr     bool   // IO write strobe
}

// Cycle is everything the core computes combinationally in one tick.
type Cycle struct {
	Outputs

	// Inst is the decoded instruction.
	Inst insts.Instruction
	// PCSource is the rule that selected CodeAddr.
	PCSource PCSource
	// Next holds the register values committed at the clock edge.
	Next RegFile

	// DataWrite enables the data stack write of T at Next.DSP.
	DataWrite bool
	// ReturnWrite enables the return stack write of ReturnPush at Next.RSP.
	ReturnWrite bool
	// ReturnPush is the return stack write data.
	ReturnPush uint16
}

// CoreOption is a functional option for configuring the Core.
type CoreOption func(*Core)

// WithStackDepth sets the stack depth to 2^bits cells. bits must be in
// 1..MaxStackDepthBits.
func WithStackDepth(bits uint) CoreOption {
	return func(c *Core) {
		c.depthBits = bits
	}
}

// WithBoolConvention sets how comparison results are widened.
func WithBoolConvention(conv BoolConvention) CoreOption {
	return func(c *Core) {
		c.boolConv = conv
	}
}

// Core is the J1 execution core: registers, data and return stacks, and
// the decode/ALU/next-PC logic between them. Ticks must not overlap.
type Core struct {
	regs   RegFile
	dstack *Stack
	rstack *Stack

	decoder *insts.Decoder
	alu     *ALU
	pcUnit  *PCUnit

	depthBits uint
	boolConv  BoolConvention

	cycles uint64
}

// NewCore creates a core in the reboot state.
func NewCore(opts ...CoreOption) *Core {
	c := &Core{
		depthBits: DefaultStackDepthBits,
		boolConv:  BoolOne,
		decoder:   insts.NewDecoder(),
		pcUnit:    NewPCUnit(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.depthBits < 1 || c.depthBits > MaxStackDepthBits {
		panic(fmt.Sprintf("emu: stack depth bits %d outside 1..%d",
			c.depthBits, MaxStackDepthBits))
	}

	c.dstack = NewStack(c.depthBits)
	c.rstack = NewStack(c.depthBits)
	c.alu = NewALU(c.depthBits, c.boolConv)
	c.regs.reset()

	return c
}

// Registers returns a copy of the register file.
func (c *Core) Registers() RegFile {
	return c.regs
}

// SetRegisters overwrites the register file. Pointers are wrapped to the
// stack depth and PC to 13 bits.
func (c *Core) SetRegisters(r RegFile) {
	r.PC &= insts.PCMask
	r.DSP = c.dstack.Wrap(r.DSP)
	r.RSP = c.rstack.Wrap(r.RSP)
	c.regs = r
}

// State returns the reset state.
func (c *Core) State() State {
	return c.regs.State()
}

// DataStack returns the data stack.
func (c *Core) DataStack() *Stack {
	return c.dstack
}

// ReturnStack returns the return stack.
func (c *Core) ReturnStack() *Stack {
	return c.rstack
}

// N returns the second element of the data stack.
func (c *Core) N() uint16 {
	return c.dstack.Read(c.regs.DSP)
}

// R returns the top of the return stack.
func (c *Core) R() uint16 {
	return c.rstack.Read(c.regs.RSP)
}

// DepthBits returns log2 of the stack depth.
func (c *Core) DepthBits() uint {
	return c.depthBits
}

// Cycles returns the number of ticks since reset.
func (c *Core) Cycles() uint64 {
	return c.cycles
}

// Reset returns every register and stack cell to its power-on value and
// re-arms reboot.
func (c *Core) Reset() {
	c.regs.reset()
	c.dstack.Reset()
	c.rstack.Reset()
	c.cycles = 0
}

// Eval computes this tick's combinational values without committing
// them. Outputs other than the new T do not depend on MemDin or IODin,
// so a harness may call Eval to learn MemAddr and IORd before it
// supplies IODin to Tick.
func (c *Core) Eval(in Inputs) Cycle {
	var cy Cycle
	r := c.regs
	inst := &cy.Inst

	c.decoder.DecodeInto(in.Insn, r.PC, inst)

	n := c.dstack.Read(r.DSP)
	rTop := c.rstack.Read(r.RSP)
	pcPlus1 := (r.PC + 1) & insts.PCMask

	cy.Next = RegFile{
		DSP: c.dstack.Add(r.DSP, inst.DDelta),
		RSP: c.rstack.Add(r.RSP, inst.RDelta),
		T:   c.nextTop(inst, r, n, rTop, in),
	}
	cy.Next.PC, cy.PCSource = c.pcUnit.Next(PCInputs{
		Reboot: r.Reboot,
		Inst:   inst,
		T:      r.T,
		R:      rTop,
		PC:     r.PC,
	})

	switch inst.Class {
	case insts.ClassLiteral, insts.ClassCodeRead:
		cy.DataWrite = true
	case insts.ClassCall:
		cy.ReturnWrite = true
	case insts.ClassALU:
		cy.DataWrite = inst.Func == insts.FuncTtoN
		cy.ReturnWrite = inst.Func == insts.FuncTtoR
	}

	if inst.Class == insts.ClassCall {
		cy.ReturnPush = ReturnCell(pcPlus1)
	} else {
		cy.ReturnPush = r.T
	}

	strobe := inst.Class == insts.ClassALU && !r.Reboot
	cy.Outputs = Outputs{
		CodeAddr: cy.Next.PC,
		MemAddr:  r.T,
		MemWr:    strobe && inst.Func == insts.FuncMemWr,
		Dout:     n,
		IORd:     strobe && inst.Func == insts.FuncIORd,
		IOWr:     strobe && inst.Func == insts.FuncIOWr,
	}

	return cy
}

// nextTop computes the new T for every instruction class.
func (c *Core) nextTop(inst *insts.Instruction, r RegFile, n, rTop uint16, in Inputs) uint16 {
	switch inst.Class {
	case insts.ClassLiteral, insts.ClassCodeRead:
		return inst.Literal
	case insts.ClassCondJump:
		return n
	case insts.ClassALU:
		return c.alu.Execute(inst.ALUOp, ALUInputs{
			T:      r.T,
			N:      n,
			R:      rTop,
			DSP:    r.DSP,
			RSP:    r.RSP,
			MemDin: in.MemDin,
			IODin:  in.IODin,
		})
	default: // jump, call
		return r.T
	}
}

// Tick advances the core by one clock edge: it evaluates the cycle from
// the current state, then commits every register and stack write at once.
func (c *Core) Tick(in Inputs) Cycle {
	cy := c.Eval(in)
	c.commit(&cy)
	return cy
}

func (c *Core) commit(cy *Cycle) {
	c.dstack.Write(cy.Next.DSP, c.regs.T, cy.DataWrite)
	c.rstack.Write(cy.Next.RSP, cy.ReturnPush, cy.ReturnWrite)
	c.dstack.Commit()
	c.rstack.Commit()

	c.regs = cy.Next
	c.cycles++
}

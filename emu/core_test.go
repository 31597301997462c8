package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/j1sim/emu"
	"github.com/sarchlab/j1sim/insts"
)

var _ = Describe("Core", func() {
	var c *emu.Core

	tick := func(word uint16) emu.Cycle {
		return c.Tick(emu.Inputs{Insn: word})
	}

	BeforeEach(func() {
		c = emu.NewCore()
	})

	Describe("Reset", func() {
		It("should start in reboot with zeroed registers", func() {
			Expect(c.State()).To(Equal(emu.StateReboot))
			Expect(c.Registers()).To(Equal(emu.RegFile{Reboot: true}))
		})

		It("should leave reboot after exactly one tick", func() {
			tick(0)
			Expect(c.State()).To(Equal(emu.StateRunning))

			for i := 0; i < 10; i++ {
				tick(lit(uint16(i)))
				Expect(c.State()).To(Equal(emu.StateRunning))
			}
		})

		It("should force the fetch address to 0 while rebooting", func() {
			cy := tick(jmp(0x123))

			Expect(cy.CodeAddr).To(Equal(uint16(0)))
			Expect(cy.PCSource).To(Equal(emu.PCFromReboot))
			Expect(c.Registers().PC).To(Equal(uint16(0)))
		})

		It("should suppress write and read strobes while rebooting", func() {
			for _, f := range []insts.Func{insts.FuncMemWr, insts.FuncIOWr, insts.FuncIORd} {
				c.Reset()
				cy := tick(alu(insts.ALUFields{Op: insts.ALUT, Func: f}))

				Expect(cy.MemWr).To(BeFalse())
				Expect(cy.IOWr).To(BeFalse())
				Expect(cy.IORd).To(BeFalse())
			}
		})

		It("should re-arm reboot on Reset", func() {
			tick(0)
			tick(lit(5))
			c.Reset()

			Expect(c.State()).To(Equal(emu.StateReboot))
			Expect(c.Registers().T).To(Equal(uint16(0)))
			Expect(c.DataStack().Snapshot()).To(Equal(make([]uint16, 16)))
			Expect(c.Cycles()).To(Equal(uint64(0)))
		})
	})

	Context("after reboot", func() {
		BeforeEach(func() {
			tick(0)
		})

		It("should push a literal", func() {
			cy := tick(0x8005)

			Expect(cy.CodeAddr).To(Equal(uint16(1)))
			Expect(c.Registers().T).To(Equal(uint16(0x0005)))
			Expect(c.Registers().DSP).To(Equal(uint8(1)))
			Expect(c.N()).To(Equal(uint16(0)))
		})

		It("should keep pushed values in order", func() {
			tick(lit(1))
			tick(lit(2))
			tick(lit(3))

			Expect(c.Registers().T).To(Equal(uint16(3)))
			Expect(c.N()).To(Equal(uint16(2)))
			Expect(c.DataStack().Read(c.Registers().DSP - 1)).To(Equal(uint16(1)))
		})

		It("should jump independent of T", func() {
			cy := tick(0x0010)
			Expect(cy.CodeAddr).To(Equal(uint16(0x0010)))

			tick(lit(0x7FFF))
			cy = tick(0x0010)
			Expect(cy.CodeAddr).To(Equal(uint16(0x0010)))
			Expect(c.Registers().PC).To(Equal(uint16(0x0010)))
			Expect(c.Registers().T).To(Equal(uint16(0x7FFF)))
		})

		It("should take a conditional jump when T is zero and pop", func() {
			tick(lit(0x4444))
			tick(lit(0))
			cy := tick(zjmp(0x0020))

			Expect(cy.CodeAddr).To(Equal(uint16(0x0020)))
			Expect(c.Registers().T).To(Equal(uint16(0x4444)))
			Expect(c.Registers().DSP).To(Equal(uint8(1)))
		})

		It("should fall through a conditional jump when T is non-zero", func() {
			tick(lit(7))
			pc := c.Registers().PC
			cy := tick(zjmp(0x0020))

			Expect(cy.CodeAddr).To(Equal(pc + 1))
			Expect(c.Registers().DSP).To(Equal(uint8(0)))
		})

		It("should return to the instruction after a call", func() {
			c.SetRegisters(emu.RegFile{PC: 0x0040})
			cy := tick(call(0x0100))

			Expect(cy.CodeAddr).To(Equal(uint16(0x0100)))
			Expect(cy.ReturnWrite).To(BeTrue())
			Expect(c.Registers().RSP).To(Equal(uint8(1)))
			Expect(c.R()).To(Equal(uint16(0x41 << 1)))

			tick(lit(3))
			cy = tick(ret)

			Expect(cy.CodeAddr).To(Equal(uint16(0x0041)))
			Expect(c.Registers().RSP).To(Equal(uint8(0)))
			Expect(c.Registers().T).To(Equal(uint16(3)))
		})

		It("should return to pc+1 for every executable call site", func() {
			for pc := uint16(0); pc < insts.CodeReadPCBit; pc++ {
				c.SetRegisters(emu.RegFile{PC: pc, RSP: uint8(pc)})
				tick(call(0x0100))
				cy := tick(ret)

				Expect(cy.CodeAddr).To(Equal(pc + 1))
				Expect(c.Registers().RSP).To(Equal(uint8(pc) & 0xF))
			}
		})

		It("should nest calls", func() {
			tick(call(0x100))
			tick(call(0x200))
			Expect(c.Registers().RSP).To(Equal(uint8(2)))

			Expect(tick(ret).CodeAddr).To(Equal(uint16(0x101)))
			Expect(tick(ret).CodeAddr).To(Equal(uint16(0x001)))
		})

		It("should commit all registers from the same snapshot", func() {
			tick(lit(0xAAA))
			tick(lit(0xBBB))

			// N with T->N swaps T and N
			tick(alu(insts.ALUFields{Op: insts.ALUN, Func: insts.FuncTtoN}))

			Expect(c.Registers().T).To(Equal(uint16(0xAAA)))
			Expect(c.N()).To(Equal(uint16(0xBBB)))
			Expect(c.Registers().DSP).To(Equal(uint8(2)))
		})

		It("should move T to the return stack", func() {
			tick(lit(0x0ABC))
			cy := tick(alu(insts.ALUFields{Op: insts.ALUN, Func: insts.FuncTtoR, DDelta: -1, RDelta: 1}))

			Expect(cy.ReturnWrite).To(BeTrue())
			Expect(cy.ReturnPush).To(Equal(uint16(0x0ABC)))
			Expect(c.R()).To(Equal(uint16(0x0ABC)))
			Expect(c.Registers().DSP).To(Equal(uint8(0)))

			tick(alu(insts.ALUFields{Op: insts.ALURTop, Func: insts.FuncTtoN, DDelta: 1, RDelta: -1}))
			Expect(c.Registers().T).To(Equal(uint16(0x0ABC)))
			Expect(c.Registers().RSP).To(Equal(uint8(0)))
		})

		It("should drive a memory write", func() {
			tick(lit(0x1EEF))
			tick(lit(0x0040))
			cy := tick(alu(insts.ALUFields{Op: insts.ALUN, Func: insts.FuncMemWr, DDelta: -2}))

			Expect(cy.MemWr).To(BeTrue())
			Expect(cy.MemAddr).To(Equal(uint16(0x0040)))
			Expect(cy.Dout).To(Equal(uint16(0x1EEF)))
			Expect(cy.IOWr).To(BeFalse())
			Expect(cy.IORd).To(BeFalse())
		})

		It("should drive IO strobes", func() {
			tick(lit(0x0002))
			cy := tick(alu(insts.ALUFields{Op: insts.ALUT, Func: insts.FuncIOWr}))
			Expect(cy.IOWr).To(BeTrue())
			Expect(cy.MemWr).To(BeFalse())

			cy = c.Tick(emu.Inputs{
				Insn:  alu(insts.ALUFields{Op: insts.ALUIORead, Func: insts.FuncIORd}),
				IODin: 0x0042,
			})
			Expect(cy.IORd).To(BeTrue())
			Expect(cy.MemAddr).To(Equal(uint16(0x0002)))
			Expect(c.Registers().T).To(Equal(uint16(0x0042)))
		})

		It("should read memory data into T", func() {
			c.Tick(emu.Inputs{
				Insn:   alu(insts.ALUFields{Op: insts.ALUMemRead}),
				MemDin: 0x9876,
			})

			Expect(c.Registers().T).To(Equal(uint16(0x9876)))
		})

		It("should not strobe for unassigned function codes", func() {
			for _, f := range []insts.Func{6, 7} {
				cy := tick(alu(insts.ALUFields{Op: insts.ALUT, Func: f}))

				Expect(cy.MemWr || cy.IOWr || cy.IORd).To(BeFalse())
				Expect(cy.DataWrite || cy.ReturnWrite).To(BeFalse())
			}
		})

		It("should push a code word and return in code-read mode", func() {
			tick(lit(0x0011))
			tick(call(0x1005))
			Expect(c.Registers().PC).To(Equal(uint16(0x1005)))

			storeWord := alu(insts.ALUFields{Op: insts.ALUT, Func: insts.FuncMemWr})
			cy := tick(storeWord)

			Expect(cy.Inst.Class).To(Equal(insts.ClassCodeRead))
			Expect(cy.MemWr).To(BeFalse())
			Expect(cy.CodeAddr).To(Equal(uint16(0x0002)))
			Expect(c.Registers().T).To(Equal(storeWord))
			Expect(c.N()).To(Equal(uint16(0x0011)))
			Expect(c.Registers().RSP).To(Equal(uint8(0)))
		})

		It("should report status", func() {
			c.SetRegisters(emu.RegFile{DSP: 3, RSP: 5})
			tick(alu(insts.ALUFields{Op: insts.ALUStatus}))

			Expect(c.Registers().T).To(Equal(uint16(0x0053)))
		})

		It("should wrap the data stack pointer below zero", func() {
			cy := tick(alu(insts.ALUFields{Op: insts.ALUT, DDelta: -1}))

			Expect(cy.Next.DSP).To(Equal(uint8(15)))
			Expect(c.Registers().DSP).To(Equal(uint8(15)))
		})

		It("should wrap the return stack pointer above the top", func() {
			c.SetRegisters(emu.RegFile{RSP: 15})
			tick(call(0x10))

			Expect(c.Registers().RSP).To(Equal(uint8(0)))
		})

		It("should not change state in Eval", func() {
			tick(lit(5))
			before := c.Registers()
			cycles := c.Cycles()

			c.Eval(emu.Inputs{Insn: lit(9)})

			Expect(c.Registers()).To(Equal(before))
			Expect(c.Cycles()).To(Equal(cycles))
		})

		It("should evaluate every instruction word", func() {
			tick(lit(0x1234))
			tick(call(0x0050))
			for _, pc := range []uint16{0x0050, 0x1050} {
				regs := c.Registers()
				regs.PC = pc
				c.SetRegisters(regs)

				for w := 0; w < 1<<16; w++ {
					cy := c.Eval(emu.Inputs{Insn: uint16(w), MemDin: 0x1111, IODin: 0x2222})
					Expect(cy.CodeAddr).To(BeNumerically("<=", insts.PCMask))
					Expect(cy.Next.DSP).To(BeNumerically("<", 16))
					Expect(cy.Next.RSP).To(BeNumerically("<", 16))
				}
			}
		})
	})

	Context("with configured depth and booleans", func() {
		BeforeEach(func() {
			c = emu.NewCore(
				emu.WithStackDepth(3),
				emu.WithBoolConvention(emu.BoolAllOnes),
			)
			tick(0)
		})

		It("should wrap at 2^D", func() {
			tick(alu(insts.ALUFields{Op: insts.ALUT, DDelta: -1}))

			Expect(c.Registers().DSP).To(Equal(uint8(7)))
			Expect(c.DataStack().Depth()).To(Equal(8))
			Expect(c.ReturnStack().Depth()).To(Equal(8))
		})

		It("should widen true to all ones", func() {
			tick(lit(4))
			tick(lit(4))
			tick(alu(insts.ALUFields{Op: insts.ALUEqual, DDelta: -1}))

			Expect(c.Registers().T).To(Equal(uint16(0xFFFF)))
		})
	})

	It("should reject an unsupported depth", func() {
		Expect(func() { emu.NewCore(emu.WithStackDepth(9)) }).To(Panic())
	})
})

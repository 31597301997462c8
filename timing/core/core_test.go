package core_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/j1sim/emu"
	"github.com/sarchlab/j1sim/insts"
	"github.com/sarchlab/j1sim/timing/core"
	"github.com/sarchlab/j1sim/timing/latency"
)

func lit(v uint16) uint16 {
	return insts.MustEncode(insts.EncodeLiteral(v))
}

func jmp(target uint16) uint16 {
	return insts.MustEncode(insts.EncodeJump(target))
}

func alu(f insts.ALUFields) uint16 {
	return insts.MustEncode(insts.EncodeALU(f))
}

var _ = Describe("Core", func() {
	var (
		code   *emu.CodeMemory
		memory *emu.Memory
		c      *core.Core
	)

	load := func(program ...uint16) {
		Expect(code.Load(0, program)).To(Succeed())
	}

	BeforeEach(func() {
		code = emu.NewCodeMemory()
		memory = emu.NewMemory()
		c = core.NewCore(code, memory, core.WithMaxCycles(1000))
	})

	It("should create a core with a functional model", func() {
		Expect(c).NotTo(BeNil())
		Expect(c.Functional).NotTo(BeNil())
		Expect(c.Halted()).To(BeFalse())
	})

	It("should run single-cycle instructions at CPI 1", func() {
		load(lit(1), lit(2), jmp(2))

		Expect(c.Run()).To(Succeed())

		stats := c.Stats()
		Expect(stats.Instructions).To(Equal(uint64(4)))
		Expect(stats.Cycles).To(Equal(uint64(4)))
		Expect(stats.StallCycles).To(Equal(uint64(0)))
		Expect(stats.CPI()).To(Equal(1.0))
		Expect(c.Functional.Registers().T).To(Equal(uint16(2)))
	})

	It("should charge cache misses as stalls", func() {
		load(
			lit(0x1234),
			lit(0x0100),
			alu(insts.ALUFields{Op: insts.ALUT, Func: insts.FuncMemWr, DDelta: -1}),
			alu(insts.ALUFields{Op: insts.ALUN, DDelta: -1}),
			lit(0x0100),
			alu(insts.ALUFields{Op: insts.ALUT}),
			alu(insts.ALUFields{Op: insts.ALUMemRead}),
			jmp(7),
		)

		Expect(c.Run()).To(Succeed())

		stats := c.Stats()
		Expect(stats.Instructions).To(Equal(uint64(9)))
		Expect(stats.MemWrites).To(Equal(uint64(1)))
		Expect(stats.MemReads).To(Equal(uint64(1)))
		Expect(stats.StallCycles).To(Equal(uint64(9)))
		Expect(stats.Cycles).To(Equal(uint64(18)))
		Expect(c.CacheStats().Misses).To(Equal(uint64(1)))
		Expect(c.CacheStats().Hits).To(Equal(uint64(1)))

		Expect(c.Functional.Registers().T).To(Equal(uint16(0x1234)))
		Expect(memory.Read(0x0100)).To(Equal(uint16(0x1234)))
	})

	It("should read the word before a same-tick write like the emulator", func() {
		program := []uint16{
			lit(0x0055),
			lit(0x0100),
			alu(insts.ALUFields{Op: insts.ALUT, Func: insts.FuncMemWr}),
			alu(insts.ALUFields{Op: insts.ALUMemRead}),
			jmp(4),
		}
		load(program...)
		Expect(c.Run()).To(Succeed())

		e := emu.NewEmulator(emu.WithIODevice(emu.NullDevice{}))
		Expect(e.LoadProgram(0, program)).To(Succeed())
		Expect(e.Run()).To(Succeed())

		Expect(c.Functional.Registers()).To(Equal(e.Core().Registers()))
		Expect(c.Functional.Registers().T).To(Equal(uint16(0)))
		Expect(memory.Read(0x0100)).To(Equal(e.Memory().Read(0x0100)))
	})

	It("should charge IO latency", func() {
		out := &bytes.Buffer{}
		config := latency.DefaultTimingConfig()
		config.IOWriteLatency = 5
		c = core.NewCore(code, memory,
			core.WithTimingConfig(config),
			core.WithIODevice(emu.NewConsoleDevice(out)),
		)
		load(
			lit('!'),
			lit(uint16(emu.ConsoleData)),
			alu(insts.ALUFields{Op: insts.ALUT, Func: insts.FuncIOWr}),
			jmp(3),
		)

		Expect(c.Run()).To(Succeed())
		Expect(out.String()).To(Equal("!"))
		Expect(c.Stats().IOWrites).To(Equal(uint64(1)))
		Expect(c.Stats().StallCycles).To(Equal(uint64(4)))
	})

	It("should stop at the cycle limit", func() {
		load(jmp(1), jmp(0))

		err := c.Run()
		Expect(err).To(MatchError(core.ErrCycleLimit))
		Expect(err).To(MatchError(emu.ErrCycleLimit))
		Expect(c.Stats().Instructions).To(Equal(uint64(1000)))
	})

	It("should keep running past a self-jump when halting is disabled", func() {
		c = core.NewCore(code, memory,
			core.WithHaltOnSelfJump(false),
			core.WithMaxCycles(50),
		)
		load(jmp(0))

		Expect(c.Run()).To(MatchError(emu.ErrCycleLimit))
		Expect(c.Halted()).To(BeFalse())
		Expect(c.Stats().Instructions).To(Equal(uint64(50)))

		e := emu.NewEmulator(
			emu.WithIODevice(emu.NullDevice{}),
			emu.WithStderr(GinkgoWriter),
			emu.WithHaltOnSelfJump(false),
			emu.WithMaxCycles(50),
		)
		Expect(e.LoadProgram(0, []uint16{jmp(0)})).To(Succeed())
		Expect(e.Run()).To(MatchError(emu.ErrCycleLimit))
		Expect(e.Core().Registers()).To(Equal(c.Functional.Registers()))
	})

	It("should run a bounded number of cycles", func() {
		load(jmp(1), jmp(0))

		Expect(c.RunCycles(10)).To(BeTrue())
		Expect(c.Stats().Instructions).To(Equal(uint64(10)))
	})

	It("should reset", func() {
		load(lit(3), jmp(1))
		Expect(c.Run()).To(Succeed())

		c.Reset()

		Expect(c.Stats()).To(Equal(core.Stats{}))
		Expect(c.Halted()).To(BeFalse())
		Expect(c.Functional.State()).To(Equal(emu.StateReboot))
	})

	It("should pass core options through", func() {
		c = core.NewCore(code, memory, core.WithCoreOptions(emu.WithStackDepth(5)))

		Expect(c.Functional.DepthBits()).To(Equal(uint(5)))
	})
})

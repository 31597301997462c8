// Package core provides the timing model of a J1 system.
// It wraps the functional core with a data cache and a latency table to
// estimate how many bus cycles a program would take.
package core

import (
	"github.com/sarchlab/j1sim/emu"
	"github.com/sarchlab/j1sim/insts"
	"github.com/sarchlab/j1sim/timing/cache"
	"github.com/sarchlab/j1sim/timing/latency"
)

// ErrCycleLimit is returned by Run when the instruction limit is reached.
// It is the functional emulator's sentinel.
var ErrCycleLimit = emu.ErrCycleLimit

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of bus cycles, stalls included.
	Cycles uint64
	// Instructions is the number of ticks executed.
	Instructions uint64
	// StallCycles is the number of cycles spent waiting on latency.
	StallCycles uint64
	// MemReads counts data reads consumed by the ALU.
	MemReads uint64
	// MemWrites counts memory write strobes.
	MemWrites uint64
	// IOReads counts IO read strobes.
	IOReads uint64
	// IOWrites counts IO write strobes.
	IOWrites uint64
}

// CPI returns cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithTimingConfig sets latencies and cache geometry.
func WithTimingConfig(config *latency.TimingConfig) Option {
	return func(c *Core) {
		c.timing = config
	}
}

// WithCoreOptions passes options to the functional core.
func WithCoreOptions(opts ...emu.CoreOption) Option {
	return func(c *Core) {
		c.coreOpts = append(c.coreOpts, opts...)
	}
}

// WithIODevice sets the device behind the IO strobes.
func WithIODevice(d emu.IODevice) Option {
	return func(c *Core) {
		c.device = d
	}
}

// WithMaxCycles limits the number of instructions Run executes.
// A value of 0 means no limit.
func WithMaxCycles(max uint64) Option {
	return func(c *Core) {
		c.maxCycles = max
	}
}

// WithHaltOnSelfJump controls whether a jump to its own address halts
// Run. Default: true.
func WithHaltOnSelfJump(halt bool) Option {
	return func(c *Core) {
		c.haltOnSelfJump = halt
	}
}

// Core represents a J1 core with a timed data memory hierarchy.
type Core struct {
	// Functional is the underlying bit-exact core.
	Functional *emu.Core

	code   *emu.CodeMemory
	memory *emu.Memory
	dcache *cache.Cache
	table  *latency.Table
	device emu.IODevice

	decoder  *insts.Decoder
	timing   *latency.TimingConfig
	coreOpts []emu.CoreOption

	maxCycles      uint64
	haltOnSelfJump bool

	insn         uint16
	memDin       uint16
	pendingStall uint64
	next         insts.Instruction
	halted       bool
	stats        Stats
}

// NewCore creates a timed core executing from code with data in memory.
func NewCore(code *emu.CodeMemory, memory *emu.Memory, opts ...Option) *Core {
	c := &Core{
		code:    code,
		memory:  memory,
		decoder: insts.NewDecoder(),
		timing:  latency.DefaultTimingConfig(),
		device:  emu.NullDevice{},

		haltOnSelfJump: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Functional = emu.NewCore(c.coreOpts...)
	c.table = latency.NewTableWithConfig(c.timing)
	c.dcache = cache.New(cache.ConfigFromTiming(c.timing), cache.NewMemoryBacking(memory))

	return c
}

// Tick executes one instruction and accounts for its latency.
func (c *Core) Tick() {
	pc := c.Functional.Registers().PC
	in := emu.Inputs{Insn: c.insn, MemDin: c.memDin}

	pre := c.Functional.Eval(in)
	cost := c.table.GetLatency(&pre.Inst) + c.pendingStall
	if pre.IORd {
		in.IODin = c.device.ReadIO(pre.MemAddr)
		c.stats.IOReads++
	}

	cy := c.Functional.Tick(in)

	// Look ahead at the next instruction: if it consumes memory data, read
	// this tick's address now, before this tick's write lands.
	c.insn = c.code.Fetch(cy.CodeAddr)
	c.memDin = 0
	c.pendingStall = 0
	c.decoder.DecodeInto(c.insn, cy.Next.PC, &c.next)
	if c.table.IsLoadOp(&c.next) {
		r := c.dcache.Read(cy.MemAddr)
		c.memDin = r.Data
		c.pendingStall = r.Latency - 1
		c.stats.MemReads++
	}

	if cy.MemWr {
		r := c.dcache.Write(cy.MemAddr, cy.Dout)
		cost += r.Latency - 1
		c.stats.MemWrites++
	}
	if cy.IOWr {
		c.device.WriteIO(cy.MemAddr, cy.Dout)
		c.stats.IOWrites++
	}

	c.stats.Instructions++
	c.stats.Cycles += cost
	c.stats.StallCycles += cost - 1

	c.halted = c.haltOnSelfJump &&
		cy.PCSource == emu.PCFromTarget &&
		cy.Inst.Class == insts.ClassJump &&
		cy.Inst.Target == pc
}

// Halted returns true if the core jumped to its own address.
func (c *Core) Halted() bool {
	return c.halted
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// CacheStats returns data cache statistics.
func (c *Core) CacheStats() cache.Statistics {
	return c.dcache.Stats()
}

// Flush writes dirty cache lines back to memory.
func (c *Core) Flush() {
	c.dcache.Flush()
}

// Run executes the core until it halts, then flushes the cache.
func (c *Core) Run() error {
	for !c.halted {
		if c.maxCycles > 0 && c.stats.Instructions >= c.maxCycles {
			c.Flush()
			return ErrCycleLimit
		}
		c.Tick()
	}
	c.Flush()
	return nil
}

// RunCycles executes at most n instructions.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(n uint64) bool {
	for i := uint64(0); i < n && !c.halted; i++ {
		c.Tick()
	}
	return !c.halted
}

// Reset clears core state, statistics and the cache. Dirty lines are
// discarded.
func (c *Core) Reset() {
	c.Functional.Reset()
	c.dcache.Reset()
	c.insn = 0
	c.memDin = 0
	c.pendingStall = 0
	c.halted = false
	c.stats = Stats{}
}

// Package emu provides functional J1 emulation.
package emu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/j1sim/insts"
)

// ErrCycleLimit is returned when the emulator reaches its cycle limit.
var ErrCycleLimit = errors.New("max cycles reached")

// StepResult represents the result of a single tick.
type StepResult struct {
	// Halted is true if the core jumped to its own address.
	Halted bool

	// Cycle is the combinational result of the tick.
	Cycle Cycle

	// Err is set if the tick was not executed.
	Err error
}

// Stats counts external bus activity.
type Stats struct {
	Cycles    uint64
	MemWrites uint64
	IOReads   uint64
	IOWrites  uint64
}

// Emulator drives a Core against code memory, data memory and an IO
// device. It honours the fetch-ahead contract: the word fed on each tick
// is the one stored at the previous tick's CodeAddr.
type Emulator struct {
	core   *Core
	code   *CodeMemory
	data   *Memory
	device IODevice

	stdout io.Writer
	stderr io.Writer

	coreOpts       []CoreOption
	maxCycles      uint64 // 0 means no limit
	haltOnSelfJump bool

	insn   uint16 // instruction for the next tick
	memDin uint16 // memory read data for the next tick
	halted bool
	stats  Stats
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer. It also becomes the output of
// the default console device.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stderr = w
	}
}

// WithIODevice sets the device behind the IO strobes.
func WithIODevice(d IODevice) EmulatorOption {
	return func(e *Emulator) {
		e.device = d
	}
}

// WithCoreOptions passes options through to the core.
func WithCoreOptions(opts ...CoreOption) EmulatorOption {
	return func(e *Emulator) {
		e.coreOpts = append(e.coreOpts, opts...)
	}
}

// WithMaxCycles sets the maximum number of ticks to execute.
// A value of 0 means no limit.
func WithMaxCycles(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxCycles = max
	}
}

// WithHaltOnSelfJump controls whether a jump to its own address halts Run.
func WithHaltOnSelfJump(halt bool) EmulatorOption {
	return func(e *Emulator) {
		e.haltOnSelfJump = halt
	}
}

// NewEmulator creates a new J1 emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		code:           NewCodeMemory(),
		data:           NewMemory(),
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		haltOnSelfJump: true,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.device == nil {
		e.device = NewConsoleDevice(e.stdout)
	}
	e.core = NewCore(e.coreOpts...)

	return e
}

// Core returns the emulated core.
func (e *Emulator) Core() *Core {
	return e.core
}

// Code returns the code memory.
func (e *Emulator) Code() *CodeMemory {
	return e.code
}

// Memory returns the data memory.
func (e *Emulator) Memory() *Memory {
	return e.data
}

// Device returns the IO device.
func (e *Emulator) Device() IODevice {
	return e.device
}

// Stats returns bus activity counters.
func (e *Emulator) Stats() Stats {
	return e.stats
}

// LoadProgram copies a program into code memory at origin.
func (e *Emulator) LoadProgram(origin uint16, program []uint16) error {
	if err := e.code.Load(origin, program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	return nil
}

// Reset resets the core and the bus latches. Memory contents are kept.
func (e *Emulator) Reset() {
	e.core.Reset()
	e.insn = 0
	e.memDin = 0
	e.halted = false
	e.stats = Stats{}
}

// Step executes a single tick.
func (e *Emulator) Step() StepResult {
	if e.maxCycles > 0 && e.stats.Cycles >= e.maxCycles {
		return StepResult{Err: ErrCycleLimit}
	}

	pc := e.core.Registers().PC
	in := Inputs{Insn: e.insn, MemDin: e.memDin}

	// IO reads are combinational: find the strobe, then supply the data.
	if pre := e.core.Eval(in); pre.IORd {
		in.IODin = e.device.ReadIO(pre.MemAddr)
		e.stats.IOReads++
	}

	cy := e.core.Tick(in)
	e.stats.Cycles++

	// Synchronous memory: the word at this tick's address is next tick's
	// read data, sampled before this tick's write lands.
	e.memDin = e.data.Read(cy.MemAddr)
	if cy.MemWr {
		e.data.Write(cy.MemAddr, cy.Dout)
		e.stats.MemWrites++
	}
	if cy.IOWr {
		e.device.WriteIO(cy.MemAddr, cy.Dout)
		e.stats.IOWrites++
	}

	e.insn = e.code.Fetch(cy.CodeAddr)

	e.halted = e.haltOnSelfJump &&
		cy.PCSource == PCFromTarget &&
		cy.Inst.Class == insts.ClassJump &&
		cy.Inst.Target == pc

	return StepResult{Halted: e.halted, Cycle: cy}
}

// Run executes ticks until the core halts or an error occurs.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Err != nil {
			_, _ = fmt.Fprintf(e.stderr, "Emulation stopped after %d cycles: %v\n",
				e.stats.Cycles, result.Err)
			return result.Err
		}
		if result.Halted {
			return nil
		}
	}
}

// Halted reports whether the last tick halted the core.
func (e *Emulator) Halted() bool {
	return e.halted
}

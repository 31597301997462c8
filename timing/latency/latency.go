// Package latency provides instruction timing models for the J1 timing
// simulation.
//
// The latency values can be configured via TimingConfig.
package latency

import (
	"github.com/sarchlab/j1sim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given
// instruction, excluding data memory, which the cache model accounts for.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch inst.Class {
	case insts.ClassJump, insts.ClassCondJump, insts.ClassCall:
		return t.config.BranchLatency
	case insts.ClassLiteral, insts.ClassCodeRead:
		return t.config.LiteralLatency
	}

	switch inst.Func {
	case insts.FuncIORd:
		return t.config.IOReadLatency
	case insts.FuncIOWr:
		return t.config.IOWriteLatency
	default:
		return t.config.ALULatency
	}
}

// IsLoadOp returns true if the instruction consumes memory read data.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	return inst != nil && inst.Class == insts.ClassALU && inst.ALUOp == insts.ALUMemRead
}

// IsStoreOp returns true if the instruction strobes a memory write.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	return inst != nil && inst.Class == insts.ClassALU && inst.Func == insts.FuncMemWr
}

// IsMemoryOp returns true if the instruction accesses data memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	return t.IsLoadOp(inst) || t.IsStoreOp(inst)
}

// IsBranchOp returns true if the instruction can leave the sequential
// path.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Class {
	case insts.ClassJump, insts.ClassCondJump, insts.ClassCall, insts.ClassCodeRead:
		return true
	case insts.ClassALU:
		return inst.Return
	default:
		return false
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

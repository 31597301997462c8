// Package emu provides functional J1 emulation.
package emu

// RegFile represents the J1 core registers. All fields change only at
// clock edges, committed together by Core.Tick.
type RegFile struct {
	// PC is the 13-bit program counter.
	PC uint16

	// DSP is the data stack pointer. Only the low depth bits are used.
	DSP uint8

	// RSP is the return stack pointer. Only the low depth bits are used.
	RSP uint8

	// T is the top of the data stack. It lives in a register, not in the
	// data stack array.
	T uint16

	// Reboot is set for the first tick after reset.
	Reboot bool
}

// State is the reset state machine of the core.
type State uint8

// Core states.
const (
	StateReboot State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateReboot {
		return "reboot"
	}
	return "running"
}

// State returns the reset state encoded by the register file.
func (r *RegFile) State() State {
	if r.Reboot {
		return StateReboot
	}
	return StateRunning
}

// reset returns the register file to its power-on value.
func (r *RegFile) reset() {
	*r = RegFile{Reboot: true}
}

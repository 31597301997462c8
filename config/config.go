// Package config holds the simulator configuration: core geometry, the
// boolean convention, run limits and the optional timing parameters.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/j1sim/emu"
	"github.com/sarchlab/j1sim/timing/latency"
)

// Values accepted for BooleanTrue.
const (
	BooleanOne     = "one"
	BooleanAllOnes = "all-ones"
)

// Config describes a J1 system.
type Config struct {
	// StackDepthBits is D; each stack holds 2^D cells. Default: 4.
	StackDepthBits uint `json:"stack_depth_bits"`

	// BooleanTrue is how comparisons widen true: "one" or "all-ones".
	// Default: "one".
	BooleanTrue string `json:"boolean_true"`

	// MaxCycles stops a run after this many ticks. 0 means no limit.
	MaxCycles uint64 `json:"max_cycles"`

	// HaltOnSelfJump stops a run on a jump to its own address.
	// Default: true.
	HaltOnSelfJump bool `json:"halt_on_self_jump"`

	// Timing holds latencies and cache geometry for timing runs.
	Timing *latency.TimingConfig `json:"timing,omitempty"`
}

// DefaultConfig returns the configuration of a standard J1.
func DefaultConfig() *Config {
	return &Config{
		StackDepthBits: emu.DefaultStackDepthBits,
		BooleanTrue:    BooleanOne,
		MaxCycles:      0,
		HaltOnSelfJump: true,
		Timing:         latency.DefaultTimingConfig(),
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the core cannot model.
func (c *Config) Validate() error {
	if c.StackDepthBits < 1 || c.StackDepthBits > emu.MaxStackDepthBits {
		return fmt.Errorf("stack_depth_bits must be in 1..%d, got %d",
			emu.MaxStackDepthBits, c.StackDepthBits)
	}

	if _, err := c.BoolConvention(); err != nil {
		return err
	}

	if c.Timing != nil {
		if err := c.Timing.Validate(); err != nil {
			return fmt.Errorf("timing: %w", err)
		}
	}

	return nil
}

// BoolConvention maps BooleanTrue to the core's widening convention.
func (c *Config) BoolConvention() (emu.BoolConvention, error) {
	switch c.BooleanTrue {
	case BooleanOne, "":
		return emu.BoolOne, nil
	case BooleanAllOnes:
		return emu.BoolAllOnes, nil
	default:
		return emu.BoolOne, fmt.Errorf("boolean_true must be %q or %q, got %q",
			BooleanOne, BooleanAllOnes, c.BooleanTrue)
	}
}

// CoreOptions returns the options that build a core of this shape.
// The configuration must be valid.
func (c *Config) CoreOptions() []emu.CoreOption {
	conv, _ := c.BoolConvention()
	return []emu.CoreOption{
		emu.WithStackDepth(c.StackDepthBits),
		emu.WithBoolConvention(conv),
	}
}

// EmulatorOptions returns the options for a functional emulator.
func (c *Config) EmulatorOptions() []emu.EmulatorOption {
	return []emu.EmulatorOption{
		emu.WithCoreOptions(c.CoreOptions()...),
		emu.WithMaxCycles(c.MaxCycles),
		emu.WithHaltOnSelfJump(c.HaltOnSelfJump),
	}
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Timing != nil {
		clone.Timing = c.Timing.Clone()
	}
	return &clone
}

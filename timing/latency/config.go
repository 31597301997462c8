package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for the J1 timing model. The core
// itself completes every instruction in one cycle; latencies above 1
// model a slower bus and are reported as stall cycles.
type TimingConfig struct {
	// ALULatency is the latency of an ALU-class instruction without IO.
	// Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the latency of jump, cond-jump and call.
	// Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// LiteralLatency is the latency of a literal push or code read.
	// Default: 1 cycle.
	LiteralLatency uint64 `json:"literal_latency"`

	// IOReadLatency is the latency of an instruction that strobes ioRd.
	// Default: 4 cycles.
	IOReadLatency uint64 `json:"io_read_latency"`

	// IOWriteLatency is the latency of an instruction that strobes ioWr.
	// Default: 2 cycles.
	IOWriteLatency uint64 `json:"io_write_latency"`

	// CacheSizeWords is the data cache capacity in 16-bit words.
	// Default: 1024 words.
	CacheSizeWords int `json:"cache_size_words"`

	// CacheAssociativity is the number of ways. Default: 4.
	CacheAssociativity int `json:"cache_associativity"`

	// CacheBlockWords is the cache line size in words. Default: 8.
	CacheBlockWords int `json:"cache_block_words"`

	// L1HitLatency is the data cache hit latency. Default: 1 cycle.
	L1HitLatency uint64 `json:"l1_hit_latency"`

	// MemoryLatency is the data memory access latency on a miss.
	// Default: 10 cycles.
	MemoryLatency uint64 `json:"memory_latency"`
}

// DefaultTimingConfig returns a TimingConfig for a single-cycle J1 with a
// small data cache in front of slow memory.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:         1,
		BranchLatency:      1,
		LiteralLatency:     1,
		IOReadLatency:      4,
		IOWriteLatency:     2,
		CacheSizeWords:     1024,
		CacheAssociativity: 4,
		CacheBlockWords:    8,
		L1HitLatency:       1,
		MemoryLatency:      10,
	}
}

// LoadConfig loads a TimingConfig from a JSON file.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that latencies are non-zero and the cache geometry
// divides evenly.
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.LiteralLatency == 0 {
		return fmt.Errorf("literal_latency must be > 0")
	}
	if c.IOReadLatency == 0 || c.IOWriteLatency == 0 {
		return fmt.Errorf("io latencies must be > 0")
	}
	if c.L1HitLatency == 0 {
		return fmt.Errorf("l1_hit_latency must be > 0")
	}
	if c.MemoryLatency < c.L1HitLatency {
		return fmt.Errorf("memory_latency must be >= l1_hit_latency")
	}
	if c.CacheAssociativity <= 0 || c.CacheBlockWords <= 0 {
		return fmt.Errorf("cache_associativity and cache_block_words must be > 0")
	}
	if c.CacheBlockWords&(c.CacheBlockWords-1) != 0 {
		return fmt.Errorf("cache_block_words must be a power of two")
	}
	way := c.CacheAssociativity * c.CacheBlockWords
	if c.CacheSizeWords <= 0 || c.CacheSizeWords%way != 0 {
		return fmt.Errorf("cache_size_words must be a positive multiple of %d", way)
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}

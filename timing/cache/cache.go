// Package cache models a data cache in front of J1 data memory using
// Akita cache components.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/j1sim/timing/latency"
)

// Config holds cache configuration parameters. Sizes are in 16-bit words.
type Config struct {
	// SizeWords is the capacity in words.
	SizeWords int
	// Associativity is the number of ways.
	Associativity int
	// BlockWords is the line size in words.
	BlockWords int
	// HitLatency in cycles
	HitLatency uint64
	// MissLatency in cycles (includes memory access time)
	MissLatency uint64
}

// ConfigFromTiming derives the cache geometry and latencies from a
// timing configuration.
func ConfigFromTiming(t *latency.TimingConfig) Config {
	return Config{
		SizeWords:     t.CacheSizeWords,
		Associativity: t.CacheAssociativity,
		BlockWords:    t.CacheBlockWords,
		HitLatency:    t.L1HitLatency,
		MissLatency:   t.MemoryLatency,
	}
}

// DefaultConfig returns the cache of the default timing configuration.
func DefaultConfig() Config {
	return ConfigFromTiming(latency.DefaultTimingConfig())
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Data is the word read (for read operations).
	Data uint16
	// Evicted is true if a valid block was replaced.
	Evicted bool
	// EvictedAddr is the word address of the evicted block.
	EvictedAddr uint16
}

// Cache is a write-back, write-allocate data cache.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management. Addresses handed
	// to it are word addresses.
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]uint16

	stats Statistics

	backing BackingStore
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// BackingStore is the next level in the memory hierarchy.
type BackingStore interface {
	// Read fetches n words starting at addr.
	Read(addr uint16, n int) []uint16
	// Write stores words starting at addr.
	Write(addr uint16, data []uint16)
}

// New creates a new cache with the given configuration.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.SizeWords / (config.Associativity * config.BlockWords)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]uint16, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]uint16, config.BlockWords)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockWords,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint16) uint64 {
	bw := uint64(c.config.BlockWords)
	return (uint64(addr) / bw) * bw
}

// Read performs a cache read of one word.
func (c *Cache) Read(addr uint16) AccessResult {
	c.stats.Reads++

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		offset := int(addr) % c.config.BlockWords
		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
			Data:    c.dataStore[c.blockIndex(block)][offset],
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, false, 0)
}

// Write performs a cache write of one word.
func (c *Cache) Write(addr uint16, data uint16) AccessResult {
	c.stats.Writes++

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		offset := int(addr) % c.config.BlockWords
		c.dataStore[c.blockIndex(block)][offset] = data
		block.IsDirty = true

		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, true, data)
}

// handleMiss fills a line from the backing store, evicting the LRU way.
func (c *Cache) handleMiss(addr uint16, isWrite bool, writeData uint16) AccessResult {
	result := AccessResult{
		Hit:     false,
		Latency: c.config.MissLatency,
	}

	blockAddr := c.blockAddr(addr)

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = uint16(victim.Tag)

		if victim.IsDirty && c.backing != nil {
			c.stats.Writebacks++
			c.backing.Write(uint16(victim.Tag), victimData)
		}
	}

	if c.backing != nil {
		copy(victimData, c.backing.Read(uint16(blockAddr), c.config.BlockWords))
	} else {
		clear(victimData)
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	offset := int(addr) % c.config.BlockWords
	if isWrite {
		victimData[offset] = writeData
		victim.IsDirty = true
	} else {
		result.Data = victimData[offset]
	}

	c.directory.Visit(victim)

	return result
}

// Invalidate marks a cache line as invalid without writeback.
func (c *Cache) Invalidate(addr uint16) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush writes back all dirty blocks and invalidates them.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty && c.backing != nil {
				c.backing.Write(uint16(block.Tag), c.dataStore[c.blockIndex(block)])
				c.stats.Writebacks++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines without writeback.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

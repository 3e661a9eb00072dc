// Package cache provides an instruction-fetch cache model built on
// Akita cache components. It is a statistics model: it tracks hits,
// misses, and evictions on the simulator's fetch path and adds no
// timing. It does not snoop data stores; self-modifying programs must
// invalidate affected lines explicitly.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds fetch cache configuration parameters.
type Config struct {
	// Size in bytes.
	Size int
	// Associativity (number of ways).
	Associativity int
	// BlockSize in bytes (cache line size).
	BlockSize int
}

// DefaultFetchConfig returns a small fetch cache suitable for the
// simulated address space: 4 KiB, 2-way, 16-byte lines.
func DefaultFetchConfig() Config {
	return Config{
		Size:          4 * 1024,
		Associativity: 2,
		BlockSize:     16,
	}
}

// Statistics holds fetch cache counters.
type Statistics struct {
	Reads     uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// BackingStore is the next level behind the cache. *emu.Memory
// satisfies it.
type BackingStore interface {
	// ReadBlock reads size bytes starting at addr.
	ReadBlock(addr uint32, size int) ([]byte, error)
	// Size returns the backing store size in bytes.
	Size() int
}

// FetchCache is a set-associative read-only cache over a backing
// store, using the Akita cache directory for tag and LRU state.
type FetchCache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	dataStore [][]byte
	backing   BackingStore
	stats     Statistics
}

// New creates a fetch cache with the given configuration over backing.
func New(config Config, backing BackingStore) *FetchCache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &FetchCache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *FetchCache) Config() Config {
	return c.config
}

// Stats returns the cache counters.
func (c *FetchCache) Stats() Statistics {
	return c.stats
}

// blockIndex computes the index into dataStore for a block.
func (c *FetchCache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// ReadWord fetches a little-endian 32-bit word through the cache. The
// boolean reports whether the access hit.
func (c *FetchCache) ReadWord(addr uint32) (uint32, bool, error) {
	c.stats.Reads++

	blockAddr := uint64(addr) / uint64(c.config.BlockSize) * uint64(c.config.BlockSize)
	block := c.directory.Lookup(0, blockAddr)

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return c.extractWord(c.dataStore[c.blockIndex(block)], addr), true, nil
	}

	c.stats.Misses++
	data, err := c.fill(addr, blockAddr)
	if err != nil {
		return 0, false, err
	}
	return c.extractWord(data, addr), false, nil
}

// fill fetches the block containing addr from the backing store and
// installs it, evicting the LRU victim if needed. The word at addr is
// validated against the backing store before the block fill is
// clamped to the store's end.
func (c *FetchCache) fill(addr uint32, blockAddr uint64) ([]byte, error) {
	// Validate the requested word itself first, so an out-of-bounds
	// fetch fails the same way it would without a cache.
	if _, err := c.backing.ReadBlock(addr, 4); err != nil {
		return nil, err
	}

	size := c.config.BlockSize
	if blockAddr+uint64(size) > uint64(c.backing.Size()) {
		size = int(uint64(c.backing.Size()) - blockAddr)
	}
	fetched, err := c.backing.ReadBlock(uint32(blockAddr), size)
	if err != nil {
		return nil, err
	}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return fetched, nil
	}
	if victim.IsValid {
		c.stats.Evictions++
	}

	data := c.dataStore[c.blockIndex(victim)]
	for i := range data {
		data[i] = 0
	}
	copy(data, fetched)

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return data, nil
}

// extractWord reads the little-endian word at addr from block data.
func (c *FetchCache) extractWord(data []byte, addr uint32) uint32 {
	offset := int(addr) % c.config.BlockSize

	var word uint32
	for i := 0; i < 4 && offset+i < len(data); i++ {
		word |= uint32(data[offset+i]) << (i * 8)
	}
	return word
}

// Invalidate drops the cache line containing addr, if present.
func (c *FetchCache) Invalidate(addr uint32) {
	blockAddr := uint64(addr) / uint64(c.config.BlockSize) * uint64(c.config.BlockSize)
	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		block.IsValid = false
	}
}

// Reset invalidates all lines and clears the counters.
func (c *FetchCache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

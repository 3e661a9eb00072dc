package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rvos-project/rvos/emu"
	"github.com/rvos-project/rvos/mem/cache"
)

var _ = Describe("FetchCache", func() {
	var (
		c      *cache.FetchCache
		memory *emu.Memory
	)

	BeforeEach(func() {
		memory = emu.NewMemory(64 * 1024)
		// Small cache for testing: 256B, 2-way, 16B lines
		config := cache.Config{
			Size:          256,
			Associativity: 2,
			BlockSize:     16,
		}
		c = cache.New(config, memory)
	})

	Describe("Word fetches", func() {
		It("should miss on a cold cache", func() {
			Expect(memory.WriteWord(0x1000, 0xDEADBEEF)).To(Succeed())

			word, hit, err := c.ReadWord(0x1000)
			Expect(err).ToNot(HaveOccurred())
			Expect(hit).To(BeFalse())
			Expect(word).To(Equal(uint32(0xDEADBEEF)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on cached data", func() {
			Expect(memory.WriteWord(0x1000, 0xCAFEBABE)).To(Succeed())

			c.ReadWord(0x1000)

			word, hit, err := c.ReadWord(0x1000)
			Expect(err).ToNot(HaveOccurred())
			Expect(hit).To(BeTrue())
			Expect(word).To(Equal(uint32(0xCAFEBABE)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(2)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(1)))
		})

		It("should hit for a different word in the same line", func() {
			Expect(memory.WriteWord(0x1000, 0x11111111)).To(Succeed())
			Expect(memory.WriteWord(0x1004, 0x22222222)).To(Succeed())

			c.ReadWord(0x1000)

			word, hit, err := c.ReadWord(0x1004)
			Expect(err).ToNot(HaveOccurred())
			Expect(hit).To(BeTrue())
			Expect(word).To(Equal(uint32(0x22222222)))
		})

		It("should evict the least recently used line", func() {
			// 256B / (2 ways * 16B) = 8 sets. Addresses 16*8=128 bytes
			// apart map to the same set.
			setStride := uint32(128)
			base := uint32(0x0)

			c.ReadWord(base)
			c.ReadWord(base + setStride)
			// Third distinct line in the same set evicts the first.
			c.ReadWord(base + 2*setStride)

			_, hit, err := c.ReadWord(base)
			Expect(err).ToNot(HaveOccurred())
			Expect(hit).To(BeFalse())
			Expect(c.Stats().Evictions).To(BeNumerically(">=", uint64(1)))
		})

		It("should fail the same way memory does for out-of-bounds fetches", func() {
			_, _, err := c.ReadWord(uint32(memory.Size()))
			Expect(err).To(MatchError(emu.ErrOutOfBounds))
		})

		It("should clamp the line fill at the end of memory", func() {
			small := emu.NewMemory(1000)
			sc := cache.New(cache.DefaultFetchConfig(), small)

			last := uint32(small.Size() - 4)
			Expect(small.WriteWord(last, 0xAABBCCDD)).To(Succeed())

			word, _, err := sc.ReadWord(last)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint32(0xAABBCCDD)))
		})
	})

	Describe("Invalidation", func() {
		It("should miss after invalidating a line", func() {
			Expect(memory.WriteWord(0x2000, 0x12345678)).To(Succeed())

			c.ReadWord(0x2000)
			c.Invalidate(0x2000)

			_, hit, err := c.ReadWord(0x2000)
			Expect(err).ToNot(HaveOccurred())
			Expect(hit).To(BeFalse())
		})

		It("should observe new data after invalidation", func() {
			Expect(memory.WriteWord(0x2000, 0x12345678)).To(Succeed())
			c.ReadWord(0x2000)

			Expect(memory.WriteWord(0x2000, 0x87654321)).To(Succeed())
			c.Invalidate(0x2000)

			word, _, err := c.ReadWord(0x2000)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint32(0x87654321)))
		})
	})

	Describe("Reset", func() {
		It("should clear lines and counters", func() {
			c.ReadWord(0x1000)
			c.ReadWord(0x1000)

			c.Reset()

			Expect(c.Stats()).To(Equal(cache.Statistics{}))

			_, hit, err := c.ReadWord(0x1000)
			Expect(err).ToNot(HaveOccurred())
			Expect(hit).To(BeFalse())
		})
	})
})

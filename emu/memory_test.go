package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rvos-project/rvos/emu"
)

var _ = Describe("Memory", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory(4096)
	})

	Describe("NewMemory", func() {
		It("should use the default size for a non-positive request", func() {
			Expect(emu.NewMemory(0).Size()).To(Equal(emu.DefaultMemorySize))
			Expect(emu.NewMemory(-1).Size()).To(Equal(emu.DefaultMemorySize))
		})

		It("should start zeroed", func() {
			w, err := mem.ReadWord(0)
			Expect(err).ToNot(HaveOccurred())
			Expect(w).To(Equal(uint32(0)))
		})
	})

	Describe("Byte access", func() {
		It("should round-trip a byte", func() {
			Expect(mem.WriteByte(0x10, 0xAB)).To(Succeed())

			b, err := mem.ReadByte(0x10)
			Expect(err).ToNot(HaveOccurred())
			Expect(b).To(Equal(uint8(0xAB)))
		})

		It("should reject out-of-bounds addresses", func() {
			_, err := mem.ReadByte(4096)
			Expect(err).To(MatchError(emu.ErrOutOfBounds))
			Expect(mem.WriteByte(4096, 1)).To(MatchError(emu.ErrOutOfBounds))
		})
	})

	Describe("Halfword access", func() {
		It("should store little-endian", func() {
			Expect(mem.WriteHalf(0x20, 0x1234)).To(Succeed())

			lo, _ := mem.ReadByte(0x20)
			hi, _ := mem.ReadByte(0x21)
			Expect(lo).To(Equal(uint8(0x34)))
			Expect(hi).To(Equal(uint8(0x12)))
		})

		It("should reject a halfword straddling the end", func() {
			Expect(mem.WriteHalf(4095, 0xFFFF)).To(MatchError(emu.ErrOutOfBounds))
			_, err := mem.ReadHalf(4095)
			Expect(err).To(MatchError(emu.ErrOutOfBounds))
		})
	})

	Describe("Word access", func() {
		It("should store little-endian", func() {
			Expect(mem.WriteWord(0x30, 0xDEADBEEF)).To(Succeed())

			b, _ := mem.ReadByte(0x30)
			Expect(b).To(Equal(uint8(0xEF)))
			b, _ = mem.ReadByte(0x33)
			Expect(b).To(Equal(uint8(0xDE)))

			w, err := mem.ReadWord(0x30)
			Expect(err).ToNot(HaveOccurred())
			Expect(w).To(Equal(uint32(0xDEADBEEF)))
		})

		It("should reject a word straddling the end", func() {
			Expect(mem.WriteWord(4093, 1)).To(MatchError(emu.ErrOutOfBounds))
		})

		It("should not wrap around on address overflow", func() {
			_, err := mem.ReadWord(0xFFFFFFFE)
			Expect(err).To(MatchError(emu.ErrOutOfBounds))
		})

		It("should leave memory untouched when a write fails", func() {
			Expect(mem.WriteByte(4095, 0x55)).To(Succeed())

			Expect(mem.WriteWord(4093, 0xAAAAAAAA)).To(MatchError(emu.ErrOutOfBounds))

			b, _ := mem.ReadByte(4095)
			Expect(b).To(Equal(uint8(0x55)))
			b, _ = mem.ReadByte(4093)
			Expect(b).To(Equal(uint8(0)))
		})
	})

	Describe("Block access", func() {
		It("should round-trip a block", func() {
			data := []byte{1, 2, 3, 4, 5}
			Expect(mem.WriteBlock(0x100, data)).To(Succeed())

			got, err := mem.ReadBlock(0x100, 5)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(data))
		})

		It("should return a copy, not a view", func() {
			Expect(mem.WriteByte(0x200, 1)).To(Succeed())

			block, _ := mem.ReadBlock(0x200, 1)
			block[0] = 9

			b, _ := mem.ReadByte(0x200)
			Expect(b).To(Equal(uint8(1)))
		})

		It("should validate the full span before writing anything", func() {
			data := make([]byte, 8)
			for i := range data {
				data[i] = 0xFF
			}

			Expect(mem.WriteBlock(4092, data)).To(MatchError(emu.ErrOutOfBounds))

			b, _ := mem.ReadByte(4092)
			Expect(b).To(Equal(uint8(0)))
		})

		It("should treat an empty block as a no-op", func() {
			Expect(mem.WriteBlock(0, nil)).To(Succeed())

			got, err := mem.ReadBlock(0, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(BeNil())
		})
	})

	Describe("Reset", func() {
		It("should zero all of memory", func() {
			Expect(mem.WriteWord(0x40, 0x12345678)).To(Succeed())

			mem.Reset()

			w, _ := mem.ReadWord(0x40)
			Expect(w).To(Equal(uint32(0)))
		})
	})

	Describe("Dump", func() {
		It("should render hex and ASCII columns", func() {
			Expect(mem.WriteBlock(0, []byte("Hi"))).To(Succeed())

			out, err := mem.Dump(0, 16)
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring("0x00000000:"))
			Expect(out).To(ContainSubstring("48 69"))
			Expect(out).To(ContainSubstring("|Hi"))
		})

		It("should reject an out-of-bounds range", func() {
			_, err := mem.Dump(4090, 16)
			Expect(err).To(MatchError(emu.ErrOutOfBounds))
		})
	})
})

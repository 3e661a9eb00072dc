package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rvos-project/rvos/insts"
)

var _ = Describe("Disassemble", func() {
	It("should render R-type register names", func() {
		Expect(insts.Disassemble(0x003100B3)).To(Equal("add ra, sp, gp"))
	})

	It("should render the end-of-program sentinel, not an R-type decode", func() {
		Expect(insts.Disassemble(0)).To(Equal("nop"))
	})

	It("should render immediates as signed values", func() {
		// ADDI t0, t0, -1
		Expect(insts.Disassemble(0xFFF28293)).To(Equal("addi t0, t0, -1"))
	})

	It("should render loads and stores in offset(base) form", func() {
		Expect(insts.Disassemble(0x00812503)).To(Equal("lw a0, 8(sp)"))
		Expect(insts.Disassemble(0x00A12623)).To(Equal("sw a0, 12(sp)"))
	})

	It("should render shift-immediate forms with the 5-bit shamt", func() {
		// SRAI t1, t2, 3
		Expect(insts.Disassemble(0x4033D313)).To(Equal("srai t1, t2, 3"))
	})

	It("should render branches with signed offsets", func() {
		Expect(insts.Disassemble(0xFE419EE3)).To(Equal("bne gp, tp, -4"))
	})

	It("should render upper immediates as 20-bit hex", func() {
		Expect(insts.Disassemble(0x123452B7)).To(Equal("lui t0, 0x12345"))
	})

	It("should render jumps", func() {
		Expect(insts.Disassemble(0x010000EF)).To(Equal("jal ra, 16"))
		Expect(insts.Disassemble(0x008100E7)).To(Equal("jalr ra, sp, 8"))
	})

	It("should render the M extension mnemonics", func() {
		Expect(insts.Disassemble(0x02C58533)).To(Equal("mul a0, a1, a2"))
	})

	It("should render SYSTEM placeholders", func() {
		Expect(insts.Disassemble(0x00000073)).To(Equal("ecall"))
		Expect(insts.Disassemble(0x00100073)).To(Equal("ebreak"))
	})

	It("should flag unrecognized encodings with their fields", func() {
		Expect(insts.Disassemble(0x0000007F)).To(Equal("UNKNOWN (opcode=0x7f)"))
	})
})

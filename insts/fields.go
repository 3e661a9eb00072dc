package insts

// RISC-V major opcodes (bits 6:0 of the instruction word).
const (
	OpcodeLoad   uint8 = 0x03
	OpcodeOpImm  uint8 = 0x13
	OpcodeAUIPC  uint8 = 0x17
	OpcodeStore  uint8 = 0x23
	OpcodeOp     uint8 = 0x33
	OpcodeLUI    uint8 = 0x37
	OpcodeBranch uint8 = 0x63
	OpcodeJALR   uint8 = 0x67
	OpcodeJAL    uint8 = 0x6F
	OpcodeSystem uint8 = 0x73
)

// ExtractOpcode returns the major opcode, bits [6:0].
func ExtractOpcode(word uint32) uint8 {
	return uint8(word & 0x7F)
}

// ExtractRd returns the destination register field, bits [11:7].
func ExtractRd(word uint32) uint8 {
	return uint8((word >> 7) & 0x1F)
}

// ExtractRs1 returns the first source register field, bits [19:15].
func ExtractRs1(word uint32) uint8 {
	return uint8((word >> 15) & 0x1F)
}

// ExtractRs2 returns the second source register field, bits [24:20].
func ExtractRs2(word uint32) uint8 {
	return uint8((word >> 20) & 0x1F)
}

// ExtractFunct3 returns the funct3 field, bits [14:12].
func ExtractFunct3(word uint32) uint8 {
	return uint8((word >> 12) & 0x7)
}

// ExtractFunct7 returns the funct7 field, bits [31:25].
func ExtractFunct7(word uint32) uint8 {
	return uint8((word >> 25) & 0x7F)
}

// ImmI extracts the I-format immediate: bits [31:20] sign-extended
// from bit 11 of the immediate (bit 31 of the word).
func ImmI(word uint32) int32 {
	return int32(word) >> 20
}

// ImmS extracts the S-format immediate: bits [31:25] form imm[11:5]
// and bits [11:7] form imm[4:0], sign-extended from bit 11.
func ImmS(word uint32) int32 {
	return (int32(word)>>25)<<5 | int32((word>>7)&0x1F)
}

// ImmB extracts the B-format immediate: bit [31] is imm[12], bit [7]
// is imm[11], bits [30:25] are imm[10:5], bits [11:8] are imm[4:1].
// The low bit is implicitly zero, giving a 13-bit signed range.
func ImmB(word uint32) int32 {
	return (int32(word)>>31)<<12 |
		int32((word>>7)&0x1)<<11 |
		int32((word>>25)&0x3F)<<5 |
		int32((word>>8)&0xF)<<1
}

// ImmU extracts the U-format immediate: bits [31:12] kept in place,
// low 12 bits zero. No sign extension applies.
func ImmU(word uint32) uint32 {
	return word & 0xFFFFF000
}

// ImmJ extracts the J-format immediate: bit [31] is imm[20], bits
// [19:12] are imm[19:12], bit [20] is imm[11], bits [30:21] are
// imm[10:1]. The low bit is implicitly zero, giving a 21-bit signed
// range.
func ImmJ(word uint32) int32 {
	return (int32(word)>>31)<<20 |
		int32((word>>12)&0xFF)<<12 |
		int32((word>>20)&0x1)<<11 |
		int32((word>>21)&0x3FF)<<1
}

package insts

// Op identifies a decoded RV32 operation.
type Op uint16

// RV32I base integer operations plus the M extension.
const (
	OpUnknown Op = iota

	// LOAD
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU

	// OP-IMM
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI

	// OP (R-type)
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND

	// OP, M extension (funct7 = 0x01)
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	// STORE
	OpSB
	OpSH
	OpSW

	// BRANCH
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// Upper-immediate and jumps
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR

	// SYSTEM
	OpECALL
	OpEBREAK
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI
)

// Format identifies one of the five RV32 encoding formats (plus the
// R format, which carries no immediate).
type Format uint8

// Instruction encoding formats.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// Instruction represents a decoded RV32 instruction.
type Instruction struct {
	// Word is the raw 32-bit instruction this was decoded from.
	Word uint32

	Op     Op     // Resolved operation
	Format Format // Encoding format

	Opcode uint8 // Major opcode, bits [6:0]
	Rd     uint8 // Destination register
	Rs1    uint8 // First source register
	Rs2    uint8 // Second source register
	Funct3 uint8 // funct3 field
	Funct7 uint8 // funct7 field

	// Imm is the sign-extended immediate for I/S/B/J formats.
	Imm int32

	// UImm is the U-format immediate, bits [31:12] kept in place.
	UImm uint32
}

// Decoder decodes RV32 machine words into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32 instruction word. A word whose opcode
// or funct3/funct7 combination is unrecognized decodes to OpUnknown;
// the zero word (the end-of-program sentinel) also decodes to
// OpUnknown and must be treated as a halt by callers before decode.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Word:   word,
		Op:     OpUnknown,
		Format: FormatUnknown,
		Opcode: ExtractOpcode(word),
		Rd:     ExtractRd(word),
		Rs1:    ExtractRs1(word),
		Rs2:    ExtractRs2(word),
		Funct3: ExtractFunct3(word),
		Funct7: ExtractFunct7(word),
	}

	if word == 0 {
		return inst
	}

	switch inst.Opcode {
	case OpcodeLoad:
		d.decodeLoad(word, inst)
	case OpcodeOpImm:
		d.decodeOpImm(word, inst)
	case OpcodeAUIPC:
		inst.Op = OpAUIPC
		inst.Format = FormatU
		inst.UImm = ImmU(word)
	case OpcodeStore:
		d.decodeStore(word, inst)
	case OpcodeOp:
		d.decodeOp(inst)
	case OpcodeLUI:
		inst.Op = OpLUI
		inst.Format = FormatU
		inst.UImm = ImmU(word)
	case OpcodeBranch:
		d.decodeBranch(word, inst)
	case OpcodeJALR:
		if inst.Funct3 == 0 {
			inst.Op = OpJALR
			inst.Format = FormatI
			inst.Imm = ImmI(word)
		}
	case OpcodeJAL:
		inst.Op = OpJAL
		inst.Format = FormatJ
		inst.Imm = ImmJ(word)
	case OpcodeSystem:
		d.decodeSystem(word, inst)
	}

	return inst
}

// decodeLoad decodes LOAD instructions (I format).
func (d *Decoder) decodeLoad(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Imm = ImmI(word)

	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpLB
	case 0x1:
		inst.Op = OpLH
	case 0x2:
		inst.Op = OpLW
	case 0x4:
		inst.Op = OpLBU
	case 0x5:
		inst.Op = OpLHU
	}
}

// decodeOpImm decodes OP-IMM instructions (I format). The shift
// instructions reuse the immediate field: the shift amount lives in
// imm[4:0] and SRLI/SRAI are distinguished by imm[10].
func (d *Decoder) decodeOpImm(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Imm = ImmI(word)

	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpADDI
	case 0x1:
		if inst.Funct7 == 0x00 {
			inst.Op = OpSLLI
		}
	case 0x2:
		inst.Op = OpSLTI
	case 0x3:
		inst.Op = OpSLTIU
	case 0x4:
		inst.Op = OpXORI
	case 0x5:
		switch inst.Funct7 {
		case 0x00:
			inst.Op = OpSRLI
		case 0x20:
			inst.Op = OpSRAI
		}
	case 0x6:
		inst.Op = OpORI
	case 0x7:
		inst.Op = OpANDI
	}
}

// decodeStore decodes STORE instructions (S format).
func (d *Decoder) decodeStore(word uint32, inst *Instruction) {
	inst.Format = FormatS
	inst.Imm = ImmS(word)

	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpSB
	case 0x1:
		inst.Op = OpSH
	case 0x2:
		inst.Op = OpSW
	}
}

// decodeOp decodes OP instructions (R format), covering the base
// integer set (funct7 0x00/0x20) and the M extension (funct7 0x01).
func (d *Decoder) decodeOp(inst *Instruction) {
	inst.Format = FormatR

	switch inst.Funct7 {
	case 0x00:
		switch inst.Funct3 {
		case 0x0:
			inst.Op = OpADD
		case 0x1:
			inst.Op = OpSLL
		case 0x2:
			inst.Op = OpSLT
		case 0x3:
			inst.Op = OpSLTU
		case 0x4:
			inst.Op = OpXOR
		case 0x5:
			inst.Op = OpSRL
		case 0x6:
			inst.Op = OpOR
		case 0x7:
			inst.Op = OpAND
		}
	case 0x01:
		switch inst.Funct3 {
		case 0x0:
			inst.Op = OpMUL
		case 0x1:
			inst.Op = OpMULH
		case 0x2:
			inst.Op = OpMULHSU
		case 0x3:
			inst.Op = OpMULHU
		case 0x4:
			inst.Op = OpDIV
		case 0x5:
			inst.Op = OpDIVU
		case 0x6:
			inst.Op = OpREM
		case 0x7:
			inst.Op = OpREMU
		}
	case 0x20:
		switch inst.Funct3 {
		case 0x0:
			inst.Op = OpSUB
		case 0x5:
			inst.Op = OpSRA
		}
	}
}

// decodeBranch decodes BRANCH instructions (B format).
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	inst.Format = FormatB
	inst.Imm = ImmB(word)

	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpBEQ
	case 0x1:
		inst.Op = OpBNE
	case 0x4:
		inst.Op = OpBLT
	case 0x5:
		inst.Op = OpBGE
	case 0x6:
		inst.Op = OpBLTU
	case 0x7:
		inst.Op = OpBGEU
	}
}

// decodeSystem decodes SYSTEM instructions (I format): ECALL, EBREAK,
// and the CSR access group.
func (d *Decoder) decodeSystem(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Imm = ImmI(word)

	switch inst.Funct3 {
	case 0x0:
		switch (word >> 20) & 0xFFF {
		case 0x000:
			inst.Op = OpECALL
		case 0x001:
			inst.Op = OpEBREAK
		}
	case 0x1:
		inst.Op = OpCSRRW
	case 0x2:
		inst.Op = OpCSRRS
	case 0x3:
		inst.Op = OpCSRRC
	case 0x5:
		inst.Op = OpCSRRWI
	case 0x6:
		inst.Op = OpCSRRSI
	case 0x7:
		inst.Op = OpCSRRCI
	}
}

package insts

import "fmt"

// RegNames holds the RISC-V ABI names for the 32 integer registers.
var RegNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0/fp", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Disassemble renders a 32-bit instruction word as assembly text with
// ABI register names. The zero word is the end-of-program sentinel
// and renders as "nop" rather than being decoded as opcode 0.
func Disassemble(word uint32) string {
	if word == 0 {
		return "nop"
	}

	d := NewDecoder()
	inst := d.Decode(word)

	switch inst.Op {
	case OpUnknown:
		return disasmUnknown(inst)

	case OpLB, OpLH, OpLW, OpLBU, OpLHU:
		return fmt.Sprintf("%s %s, %d(%s)",
			mnemonics[inst.Op], RegNames[inst.Rd], inst.Imm, RegNames[inst.Rs1])

	case OpSLLI, OpSRLI, OpSRAI:
		return fmt.Sprintf("%s %s, %s, %d",
			mnemonics[inst.Op], RegNames[inst.Rd], RegNames[inst.Rs1], inst.Imm&0x1F)

	case OpADDI, OpSLTI, OpSLTIU, OpXORI, OpORI, OpANDI:
		return fmt.Sprintf("%s %s, %s, %d",
			mnemonics[inst.Op], RegNames[inst.Rd], RegNames[inst.Rs1], inst.Imm)

	case OpADD, OpSUB, OpSLL, OpSLT, OpSLTU, OpXOR, OpSRL, OpSRA, OpOR, OpAND,
		OpMUL, OpMULH, OpMULHSU, OpMULHU, OpDIV, OpDIVU, OpREM, OpREMU:
		return fmt.Sprintf("%s %s, %s, %s",
			mnemonics[inst.Op], RegNames[inst.Rd], RegNames[inst.Rs1], RegNames[inst.Rs2])

	case OpSB, OpSH, OpSW:
		return fmt.Sprintf("%s %s, %d(%s)",
			mnemonics[inst.Op], RegNames[inst.Rs2], inst.Imm, RegNames[inst.Rs1])

	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return fmt.Sprintf("%s %s, %s, %d",
			mnemonics[inst.Op], RegNames[inst.Rs1], RegNames[inst.Rs2], inst.Imm)

	case OpLUI, OpAUIPC:
		return fmt.Sprintf("%s %s, 0x%05x",
			mnemonics[inst.Op], RegNames[inst.Rd], inst.UImm>>12)

	case OpJAL:
		return fmt.Sprintf("jal %s, %d", RegNames[inst.Rd], inst.Imm)

	case OpJALR:
		return fmt.Sprintf("jalr %s, %s, %d",
			RegNames[inst.Rd], RegNames[inst.Rs1], inst.Imm)

	case OpECALL:
		return "ecall"

	case OpEBREAK:
		return "ebreak"

	case OpCSRRW, OpCSRRS, OpCSRRC:
		return fmt.Sprintf("%s %s, %d, %s",
			mnemonics[inst.Op], RegNames[inst.Rd], uint32(inst.Imm)&0xFFF, RegNames[inst.Rs1])

	case OpCSRRWI, OpCSRRSI, OpCSRRCI:
		// The rs1 field carries a zero-extended immediate for the
		// CSR immediate forms.
		return fmt.Sprintf("%s %s, %d, %d",
			mnemonics[inst.Op], RegNames[inst.Rd], uint32(inst.Imm)&0xFFF, inst.Rs1)
	}

	return disasmUnknown(inst)
}

// disasmUnknown renders instructions the decoder could not resolve,
// keeping enough field detail to diagnose the encoding.
func disasmUnknown(inst *Instruction) string {
	switch inst.Opcode {
	case OpcodeLoad:
		return fmt.Sprintf("UNKNOWN-LOAD (funct3=%x)", inst.Funct3)
	case OpcodeOpImm:
		return fmt.Sprintf("UNKNOWN-I-TYPE (funct3=%x)", inst.Funct3)
	case OpcodeStore:
		return fmt.Sprintf("UNKNOWN-STORE (funct3=%x)", inst.Funct3)
	case OpcodeOp:
		return fmt.Sprintf("UNKNOWN-R-TYPE (funct7=%02x, funct3=%x)", inst.Funct7, inst.Funct3)
	case OpcodeBranch:
		return fmt.Sprintf("UNKNOWN-BRANCH (funct3=%x)", inst.Funct3)
	case OpcodeSystem:
		return fmt.Sprintf("UNKNOWN-SYSTEM (funct3=%x)", inst.Funct3)
	}
	return fmt.Sprintf("UNKNOWN (opcode=0x%02x)", inst.Opcode)
}

var mnemonics = map[Op]string{
	OpLB: "lb", OpLH: "lh", OpLW: "lw", OpLBU: "lbu", OpLHU: "lhu",
	OpADDI: "addi", OpSLTI: "slti", OpSLTIU: "sltiu", OpXORI: "xori",
	OpORI: "ori", OpANDI: "andi", OpSLLI: "slli", OpSRLI: "srli", OpSRAI: "srai",
	OpADD: "add", OpSUB: "sub", OpSLL: "sll", OpSLT: "slt", OpSLTU: "sltu",
	OpXOR: "xor", OpSRL: "srl", OpSRA: "sra", OpOR: "or", OpAND: "and",
	OpMUL: "mul", OpMULH: "mulh", OpMULHSU: "mulhsu", OpMULHU: "mulhu",
	OpDIV: "div", OpDIVU: "divu", OpREM: "rem", OpREMU: "remu",
	OpSB: "sb", OpSH: "sh", OpSW: "sw",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge",
	OpBLTU: "bltu", OpBGEU: "bgeu",
	OpLUI: "lui", OpAUIPC: "auipc", OpJAL: "jal", OpJALR: "jalr",
	OpECALL: "ecall", OpEBREAK: "ebreak",
	OpCSRRW: "csrrw", OpCSRRS: "csrrs", OpCSRRC: "csrrc",
	OpCSRRWI: "csrrwi", OpCSRRSI: "csrrsi", OpCSRRCI: "csrrci",
}

// Package insts provides RV32 instruction definitions and decoding.
//
// This package implements decoding of raw 32-bit RISC-V machine words
// into structured instruction representations. It covers the RV32I
// base integer instruction set plus the M multiply/divide extension:
//   - LOAD:   LB, LH, LW, LBU, LHU
//   - OP-IMM: ADDI, SLTI, SLTIU, XORI, ORI, ANDI, SLLI, SRLI, SRAI
//   - OP:     ADD, SUB, SLL, SLT, SLTU, XOR, SRL, SRA, OR, AND,
//     and (funct7=0x01) MUL, MULH, MULHSU, MULHU, DIV, DIVU, REM, REMU
//   - STORE:  SB, SH, SW
//   - BRANCH: BEQ, BNE, BLT, BGE, BLTU, BGEU
//   - LUI, AUIPC, JAL, JALR
//   - SYSTEM: ECALL, EBREAK, CSR accesses (decode only)
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x003100B3) // ADD ra, sp, gp
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Rs2: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
package insts

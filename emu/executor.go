package emu

import (
	"fmt"

	"github.com/rvos-project/rvos/insts"
)

// Executor applies the semantic effect of decoded instructions to a
// register file and memory. Taken branches and jumps set the PC
// directly; every other instruction advances it by 4.
type Executor struct {
	regFile *RegFile
	memory  *Memory
}

// NewExecutor creates an executor bound to the given register file and
// memory.
func NewExecutor(regFile *RegFile, memory *Memory) *Executor {
	return &Executor{
		regFile: regFile,
		memory:  memory,
	}
}

// reg reads a register by its 5-bit field value. Field values are
// always in range, so the error path of Read cannot trigger here.
func (e *Executor) reg(n uint8) uint32 {
	v, _ := e.regFile.Read(int(n))
	return v
}

// setReg writes a register by its 5-bit field value.
func (e *Executor) setReg(n uint8, v uint32) {
	_ = e.regFile.Write(int(n), v)
}

// Execute runs one decoded instruction. A memory fault aborts the
// instruction without advancing the PC or leaving partial effects.
// An unrecognized instruction advances the PC and returns
// ErrUnknownInstruction so a tolerant step loop can continue.
func (e *Executor) Execute(inst *insts.Instruction) error {
	switch inst.Op {
	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU:
		return e.executeLoad(inst)

	case insts.OpADDI, insts.OpSLTI, insts.OpSLTIU, insts.OpXORI,
		insts.OpORI, insts.OpANDI, insts.OpSLLI, insts.OpSRLI, insts.OpSRAI:
		e.executeOpImm(inst)

	case insts.OpAUIPC:
		e.setReg(inst.Rd, e.regFile.PC()+inst.UImm)

	case insts.OpLUI:
		e.setReg(inst.Rd, inst.UImm)

	case insts.OpSB, insts.OpSH, insts.OpSW:
		return e.executeStore(inst)

	case insts.OpADD, insts.OpSUB, insts.OpSLL, insts.OpSLT, insts.OpSLTU,
		insts.OpXOR, insts.OpSRL, insts.OpSRA, insts.OpOR, insts.OpAND:
		e.executeOp(inst)

	case insts.OpMUL, insts.OpMULH, insts.OpMULHSU, insts.OpMULHU,
		insts.OpDIV, insts.OpDIVU, insts.OpREM, insts.OpREMU:
		e.executeMulDiv(inst)

	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE,
		insts.OpBLTU, insts.OpBGEU:
		e.executeBranch(inst)
		return nil // PC already updated

	case insts.OpJAL:
		link := e.regFile.PC() + 4
		e.regFile.SetPC(e.regFile.PC() + uint32(inst.Imm))
		e.setReg(inst.Rd, link)
		return nil

	case insts.OpJALR:
		link := e.regFile.PC() + 4
		target := (e.reg(inst.Rs1) + uint32(inst.Imm)) &^ 1
		e.regFile.SetPC(target)
		e.setReg(inst.Rd, link)
		return nil

	case insts.OpECALL, insts.OpEBREAK:
		// Placeholder: no privileged environment is modeled.

	default:
		// CSR accesses decode (for disassembly) but do not execute.
		e.regFile.SetPC(e.regFile.PC() + 4)
		return fmt.Errorf("%w: 0x%08x at PC=0x%08x",
			ErrUnknownInstruction, inst.Word, e.regFile.PC()-4)
	}

	e.regFile.SetPC(e.regFile.PC() + 4)
	return nil
}

// executeLoad performs LB/LH/LW/LBU/LHU at rs1+imm.
func (e *Executor) executeLoad(inst *insts.Instruction) error {
	addr := e.reg(inst.Rs1) + uint32(inst.Imm)

	var value uint32
	switch inst.Op {
	case insts.OpLB:
		b, err := e.memory.ReadByte(addr)
		if err != nil {
			return err
		}
		value = uint32(int32(int8(b)))
	case insts.OpLBU:
		b, err := e.memory.ReadByte(addr)
		if err != nil {
			return err
		}
		value = uint32(b)
	case insts.OpLH:
		h, err := e.memory.ReadHalf(addr)
		if err != nil {
			return err
		}
		value = uint32(int32(int16(h)))
	case insts.OpLHU:
		h, err := e.memory.ReadHalf(addr)
		if err != nil {
			return err
		}
		value = uint32(h)
	case insts.OpLW:
		w, err := e.memory.ReadWord(addr)
		if err != nil {
			return err
		}
		value = w
	}

	e.setReg(inst.Rd, value)
	e.regFile.SetPC(e.regFile.PC() + 4)
	return nil
}

// executeStore performs SB/SH/SW at rs1+imm.
func (e *Executor) executeStore(inst *insts.Instruction) error {
	addr := e.reg(inst.Rs1) + uint32(inst.Imm)
	value := e.reg(inst.Rs2)

	var err error
	switch inst.Op {
	case insts.OpSB:
		err = e.memory.WriteByte(addr, uint8(value))
	case insts.OpSH:
		err = e.memory.WriteHalf(addr, uint16(value))
	case insts.OpSW:
		err = e.memory.WriteWord(addr, value)
	}
	if err != nil {
		return err
	}

	e.regFile.SetPC(e.regFile.PC() + 4)
	return nil
}

// executeOpImm performs the OP-IMM group.
func (e *Executor) executeOpImm(inst *insts.Instruction) {
	rs1 := e.reg(inst.Rs1)
	imm := uint32(inst.Imm)
	shamt := imm & 0x1F

	var result uint32
	switch inst.Op {
	case insts.OpADDI:
		result = rs1 + imm
	case insts.OpSLTI:
		if int32(rs1) < inst.Imm {
			result = 1
		}
	case insts.OpSLTIU:
		if rs1 < imm {
			result = 1
		}
	case insts.OpXORI:
		result = rs1 ^ imm
	case insts.OpORI:
		result = rs1 | imm
	case insts.OpANDI:
		result = rs1 & imm
	case insts.OpSLLI:
		result = rs1 << shamt
	case insts.OpSRLI:
		result = rs1 >> shamt
	case insts.OpSRAI:
		result = uint32(int32(rs1) >> shamt)
	}

	e.setReg(inst.Rd, result)
}

// executeOp performs the base-integer R-type group.
func (e *Executor) executeOp(inst *insts.Instruction) {
	rs1 := e.reg(inst.Rs1)
	rs2 := e.reg(inst.Rs2)
	shamt := rs2 & 0x1F

	var result uint32
	switch inst.Op {
	case insts.OpADD:
		result = rs1 + rs2
	case insts.OpSUB:
		result = rs1 - rs2
	case insts.OpSLL:
		result = rs1 << shamt
	case insts.OpSLT:
		if int32(rs1) < int32(rs2) {
			result = 1
		}
	case insts.OpSLTU:
		if rs1 < rs2 {
			result = 1
		}
	case insts.OpXOR:
		result = rs1 ^ rs2
	case insts.OpSRL:
		result = rs1 >> shamt
	case insts.OpSRA:
		result = uint32(int32(rs1) >> shamt)
	case insts.OpOR:
		result = rs1 | rs2
	case insts.OpAND:
		result = rs1 & rs2
	}

	e.setReg(inst.Rd, result)
}

// executeMulDiv performs the M-extension group with RISC-V semantics:
// division by zero yields an all-ones quotient and the dividend as
// remainder; the most-negative-by-minus-one overflow yields the
// dividend as quotient and a zero remainder.
func (e *Executor) executeMulDiv(inst *insts.Instruction) {
	rs1 := e.reg(inst.Rs1)
	rs2 := e.reg(inst.Rs2)

	var result uint32
	switch inst.Op {
	case insts.OpMUL:
		result = rs1 * rs2
	case insts.OpMULH:
		result = uint32(uint64(int64(int32(rs1))*int64(int32(rs2))) >> 32)
	case insts.OpMULHSU:
		result = uint32(uint64(int64(int32(rs1))*int64(rs2)) >> 32)
	case insts.OpMULHU:
		result = uint32(uint64(rs1) * uint64(rs2) >> 32)
	case insts.OpDIV:
		switch {
		case rs2 == 0:
			result = 0xFFFFFFFF
		case int32(rs1) == -1<<31 && int32(rs2) == -1:
			result = rs1
		default:
			result = uint32(int32(rs1) / int32(rs2))
		}
	case insts.OpDIVU:
		if rs2 == 0 {
			result = 0xFFFFFFFF
		} else {
			result = rs1 / rs2
		}
	case insts.OpREM:
		switch {
		case rs2 == 0:
			result = rs1
		case int32(rs1) == -1<<31 && int32(rs2) == -1:
			result = 0
		default:
			result = uint32(int32(rs1) % int32(rs2))
		}
	case insts.OpREMU:
		if rs2 == 0 {
			result = rs1
		} else {
			result = rs1 % rs2
		}
	}

	e.setReg(inst.Rd, result)
}

// executeBranch performs the BRANCH group, setting the PC for both the
// taken and not-taken outcomes.
func (e *Executor) executeBranch(inst *insts.Instruction) {
	rs1 := e.reg(inst.Rs1)
	rs2 := e.reg(inst.Rs2)

	var taken bool
	switch inst.Op {
	case insts.OpBEQ:
		taken = rs1 == rs2
	case insts.OpBNE:
		taken = rs1 != rs2
	case insts.OpBLT:
		taken = int32(rs1) < int32(rs2)
	case insts.OpBGE:
		taken = int32(rs1) >= int32(rs2)
	case insts.OpBLTU:
		taken = rs1 < rs2
	case insts.OpBGEU:
		taken = rs1 >= rs2
	}

	if taken {
		e.regFile.SetPC(e.regFile.PC() + uint32(inst.Imm))
	} else {
		e.regFile.SetPC(e.regFile.PC() + 4)
	}
}

package vm

import "github.com/jyjdal/rv64-emu/decoder"

// executeALU implements every integer-compute instruction: the
// full-width op/op-imm families, the full-width shifts, and the
// word-width (*W) families. All full-width arithmetic wraps silently
// on two's-complement overflow; every *W result is computed in 32-bit
// space and then sign-extended back to 64 bits before it is written to rd.
func executeALU(vmachine *VM, inst decoder.Instruction, pcAtFetch uint64) error {
	rs1 := vmachine.CPU.GetRegister(inst.Rs1)

	switch inst.Kind {
	case decoder.ADDI:
		vmachine.CPU.SetRegister(inst.Rd, rs1+uint64(int64(inst.Imm)))
	case decoder.SLTI:
		vmachine.CPU.SetRegister(inst.Rd, boolToReg(int64(rs1) < int64(inst.Imm)))
	case decoder.SLTIU:
		vmachine.CPU.SetRegister(inst.Rd, boolToReg(rs1 < uint64(int64(inst.Imm))))
	case decoder.XORI:
		vmachine.CPU.SetRegister(inst.Rd, rs1^uint64(int64(inst.Imm)))
	case decoder.ORI:
		vmachine.CPU.SetRegister(inst.Rd, rs1|uint64(int64(inst.Imm)))
	case decoder.ANDI:
		vmachine.CPU.SetRegister(inst.Rd, rs1&uint64(int64(inst.Imm)))
	case decoder.SLLI:
		vmachine.CPU.SetRegister(inst.Rd, rs1<<inst.Shamt)
	case decoder.SRLI:
		vmachine.CPU.SetRegister(inst.Rd, rs1>>inst.Shamt)
	case decoder.SRAI:
		vmachine.CPU.SetRegister(inst.Rd, uint64(int64(rs1)>>inst.Shamt))

	case decoder.ADD:
		vmachine.CPU.SetRegister(inst.Rd, rs1+vmachine.CPU.GetRegister(inst.Rs2))
	case decoder.SUB:
		vmachine.CPU.SetRegister(inst.Rd, rs1-vmachine.CPU.GetRegister(inst.Rs2))
	case decoder.SLT:
		vmachine.CPU.SetRegister(inst.Rd, boolToReg(int64(rs1) < int64(vmachine.CPU.GetRegister(inst.Rs2))))
	case decoder.SLTU:
		vmachine.CPU.SetRegister(inst.Rd, boolToReg(rs1 < vmachine.CPU.GetRegister(inst.Rs2)))
	case decoder.XOR:
		vmachine.CPU.SetRegister(inst.Rd, rs1^vmachine.CPU.GetRegister(inst.Rs2))
	case decoder.OR:
		vmachine.CPU.SetRegister(inst.Rd, rs1|vmachine.CPU.GetRegister(inst.Rs2))
	case decoder.AND:
		vmachine.CPU.SetRegister(inst.Rd, rs1&vmachine.CPU.GetRegister(inst.Rs2))
	case decoder.SLL:
		shamt := vmachine.CPU.GetRegister(inst.Rs2) & 0x3F
		vmachine.CPU.SetRegister(inst.Rd, rs1<<shamt)
	case decoder.SRL:
		shamt := vmachine.CPU.GetRegister(inst.Rs2) & 0x3F
		vmachine.CPU.SetRegister(inst.Rd, rs1>>shamt)
	case decoder.SRA:
		shamt := vmachine.CPU.GetRegister(inst.Rs2) & 0x3F
		vmachine.CPU.SetRegister(inst.Rd, uint64(int64(rs1)>>shamt))

	case decoder.ADDIW:
		result := int32(rs1) + inst.Imm
		vmachine.CPU.SetRegister(inst.Rd, SignExtend32To64(uint32(result)))
	case decoder.SLLIW:
		result := uint32(rs1) << inst.Shamt
		vmachine.CPU.SetRegister(inst.Rd, SignExtend32To64(result))
	case decoder.SRLIW:
		result := uint32(rs1) >> inst.Shamt
		vmachine.CPU.SetRegister(inst.Rd, SignExtend32To64(result))
	case decoder.SRAIW:
		result := int32(uint32(rs1)) >> inst.Shamt
		vmachine.CPU.SetRegister(inst.Rd, SignExtend32To64(uint32(result)))

	case decoder.ADDW:
		result := int32(rs1) + int32(vmachine.CPU.GetRegister(inst.Rs2))
		vmachine.CPU.SetRegister(inst.Rd, SignExtend32To64(uint32(result)))
	case decoder.SUBW:
		result := int32(rs1) - int32(vmachine.CPU.GetRegister(inst.Rs2))
		vmachine.CPU.SetRegister(inst.Rd, SignExtend32To64(uint32(result)))
	case decoder.SLLW:
		shamt := vmachine.CPU.GetRegister(inst.Rs2) & 0x1F
		result := uint32(rs1) << shamt
		vmachine.CPU.SetRegister(inst.Rd, SignExtend32To64(result))
	case decoder.SRLW:
		shamt := vmachine.CPU.GetRegister(inst.Rs2) & 0x1F
		result := uint32(rs1) >> shamt
		vmachine.CPU.SetRegister(inst.Rd, SignExtend32To64(result))
	case decoder.SRAW:
		shamt := vmachine.CPU.GetRegister(inst.Rs2) & 0x1F
		result := int32(uint32(rs1)) >> shamt
		vmachine.CPU.SetRegister(inst.Rd, SignExtend32To64(uint32(result)))

	default:
		return NewExecutionError(IllegalInstruction, pcAtFetch, inst.Raw, "not an ALU instruction")
	}

	return nil
}

// boolToReg converts a comparison result to the register encoding
// RISC-V uses for SLT/SLTU/SLTI/SLTIU: 1 for true, 0 for false.
func boolToReg(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

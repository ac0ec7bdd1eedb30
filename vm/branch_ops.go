package vm

import "github.com/jyjdal/rv64-emu/decoder"

// executeBranch implements the conditional branches and the two
// jump-and-link forms. By the time this runs, CPU.PC already holds
// pc_at_fetch + 4 (Step advances it eagerly before execute); handlers
// that want the effective target to be pc_at_fetch + offset therefore
// compute pc := pc + offset - 4.
func executeBranch(vmachine *VM, inst decoder.Instruction, pcAtFetch uint64) error {
	switch inst.Kind {
	case decoder.BEQ, decoder.BNE, decoder.BLT, decoder.BGE, decoder.BLTU, decoder.BGEU:
		return executeConditionalBranch(vmachine, inst)
	case decoder.JAL:
		linkAddr := vmachine.CPU.PC
		vmachine.CPU.PC = vmachine.CPU.PC + uint64(int64(inst.Imm)) - 4
		vmachine.CPU.SetRegister(inst.Rd, linkAddr)
		if vmachine.Statistics != nil {
			vmachine.Statistics.RecordBranch(true)
		}
		return nil
	case decoder.JALR:
		linkAddr := vmachine.CPU.PC
		target := (vmachine.CPU.GetRegister(inst.Rs1) + uint64(int64(inst.Imm))) &^ 1
		vmachine.CPU.PC = target
		vmachine.CPU.SetRegister(inst.Rd, linkAddr)
		if vmachine.Statistics != nil {
			vmachine.Statistics.RecordBranch(true)
		}
		return nil
	default:
		return NewExecutionError(IllegalInstruction, pcAtFetch, inst.Raw, "not a branch/jump instruction")
	}
}

func executeConditionalBranch(vmachine *VM, inst decoder.Instruction) error {
	rs1 := vmachine.CPU.GetRegister(inst.Rs1)
	rs2 := vmachine.CPU.GetRegister(inst.Rs2)

	var taken bool
	switch inst.Kind {
	case decoder.BEQ:
		taken = rs1 == rs2
	case decoder.BNE:
		taken = rs1 != rs2
	case decoder.BLT:
		taken = int64(rs1) < int64(rs2)
	case decoder.BGE:
		taken = int64(rs1) >= int64(rs2)
	case decoder.BLTU:
		taken = rs1 < rs2
	case decoder.BGEU:
		taken = rs1 >= rs2
	}

	if taken {
		vmachine.CPU.PC = vmachine.CPU.PC + uint64(int64(inst.Imm)) - 4
	}
	if vmachine.Statistics != nil {
		vmachine.Statistics.RecordBranch(taken)
	}
	return nil
}

// executeUpperImmediate implements LUI and AUIPC, the two U-format
// instructions.
func executeUpperImmediate(vmachine *VM, inst decoder.Instruction, pcAtFetch uint64) error {
	switch inst.Kind {
	case decoder.LUI:
		vmachine.CPU.SetRegister(inst.Rd, SignExtendU(uint32(inst.Imm)))
	case decoder.AUIPC:
		vmachine.CPU.SetRegister(inst.Rd, vmachine.CPU.PC+uint64(int64(inst.Imm))-4)
	default:
		return NewExecutionError(IllegalInstruction, pcAtFetch, inst.Raw, "not a U-format instruction")
	}
	return nil
}

package vm

import "github.com/jyjdal/rv64-emu/decoder"

// executeMemory implements every load and store instruction. The
// effective address is always rs1 + imm; loads sign- or zero-extend
// per mnemonic, stores truncate rs2 to the access width.
func executeMemory(vmachine *VM, inst decoder.Instruction, pcAtFetch uint64) error {
	addr := vmachine.CPU.GetRegister(inst.Rs1) + uint64(int64(inst.Imm))

	switch inst.Kind {
	case decoder.LB, decoder.LH, decoder.LW, decoder.LD, decoder.LBU, decoder.LHU, decoder.LWU:
		return executeLoad(vmachine, inst, pcAtFetch, addr)
	case decoder.SB, decoder.SH, decoder.SW, decoder.SD:
		return executeStore(vmachine, inst, pcAtFetch, addr)
	default:
		return NewExecutionError(IllegalInstruction, pcAtFetch, inst.Raw, "not a memory instruction")
	}
}

func executeLoad(vmachine *VM, inst decoder.Instruction, pcAtFetch uint64, addr uint64) error {
	var size int
	switch inst.Kind {
	case decoder.LB, decoder.LBU:
		size = 8
	case decoder.LH, decoder.LHU:
		size = 16
	case decoder.LW, decoder.LWU:
		size = 32
	case decoder.LD:
		size = 64
	}

	raw, err := vmachine.Bus.Load(addr, size)
	if err != nil {
		return WrapBusError(pcAtFetch, inst.Raw, err)
	}

	var value uint64
	switch inst.Kind {
	case decoder.LB:
		value = SignExtendByteTo64(byte(raw))
	case decoder.LH:
		value = SignExtendHalfTo64(uint16(raw))
	case decoder.LW:
		value = SignExtendWordTo64(uint32(raw))
	case decoder.LD, decoder.LBU, decoder.LHU, decoder.LWU:
		value = raw // already zero-extended by Bus.Load
	}

	vmachine.CPU.SetRegister(inst.Rd, value)

	if vmachine.Statistics != nil {
		vmachine.Statistics.RecordMemoryRead(uint64(size / 8))
	}
	if vmachine.MemoryTrace != nil {
		vmachine.MemoryTrace.RecordRead(vmachine.CPU.Cycles, pcAtFetch, addr, value, size)
	}

	return nil
}

func executeStore(vmachine *VM, inst decoder.Instruction, pcAtFetch uint64, addr uint64) error {
	var size int
	switch inst.Kind {
	case decoder.SB:
		size = 8
	case decoder.SH:
		size = 16
	case decoder.SW:
		size = 32
	case decoder.SD:
		size = 64
	}

	value := vmachine.CPU.GetRegister(inst.Rs2)
	if err := vmachine.Bus.Store(addr, size, value); err != nil {
		return WrapBusError(pcAtFetch, inst.Raw, err)
	}

	if vmachine.Statistics != nil {
		vmachine.Statistics.RecordMemoryWrite(uint64(size / 8))
	}
	if vmachine.MemoryTrace != nil {
		vmachine.MemoryTrace.RecordWrite(vmachine.CPU.Cycles, pcAtFetch, addr, value, size)
	}

	return nil
}

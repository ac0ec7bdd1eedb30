package vm

import (
	"testing"

	"github.com/jyjdal/rv64-emu/decoder"
)

// encodeRType assembles an R-format word from its fields.
func encodeRType(opcode uint32, rd, func3, rs1, rs2 int, func7 uint32) uint32 {
	return func7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | uint32(func3)<<12 | uint32(rd)<<7 | opcode
}

// encodeShiftImm assembles an op-imm shift (SLLI/SRLI/SRAI, SLLIW/SRLIW/SRAIW).
func encodeShiftImm(opcode uint32, rd, func3, rs1 int, shamt uint32, func7 uint32) uint32 {
	return func7<<25 | shamt<<20 | uint32(rs1)<<15 | uint32(func3)<<12 | uint32(rd)<<7 | opcode
}

func setupALU(rs1, rs2Val uint64) *VM {
	vmachine := NewVM(DRAMSize, nil)
	vmachine.CPU.SetRegister(1, rs1)
	vmachine.CPU.SetRegister(2, rs2Val)
	return vmachine
}

func TestSRAIArithmeticShift(t *testing.T) {
	// srai x3, x1, 4 on a negative value must sign-extend.
	vmachine := setupALU(0xFFFFFFFFFFFFFFF0, 0) // -16
	word := encodeShiftImm(0b0010011, 3, 0x5, 1, 4, 0x20)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	got := int64(vmachine.CPU.GetRegister(3))
	if got != -1 {
		t.Errorf("SRAI(-16, 4) = %d, want -1", got)
	}
}

func TestSRLILogicalShift(t *testing.T) {
	// srli x3, x1, 4 must NOT sign-extend, even on a negative value.
	vmachine := setupALU(0xFFFFFFFFFFFFFFF0, 0) // -16
	word := encodeShiftImm(0b0010011, 3, 0x5, 1, 4, 0x00)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	got := vmachine.CPU.GetRegister(3)
	want := uint64(0xFFFFFFFFFFFFFFF0) >> 4
	if got != want {
		t.Errorf("SRLI(-16, 4) = 0x%x, want 0x%x", got, want)
	}
	if int64(got) < 0 {
		t.Errorf("SRLI must zero-extend the top bits, got negative result 0x%x", got)
	}
}

func TestSLTUUnsignedComparison(t *testing.T) {
	// sltu x3, x1, x2 where x1 is a large unsigned value (negative as
	// signed) and x2 is small: unsigned comparison must say x1 > x2.
	vmachine := setupALU(^uint64(0), 1)
	word := encodeRType(0b0110011, 3, 0x3, 1, 2, 0x00)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	if got := vmachine.CPU.GetRegister(3); got != 0 {
		t.Errorf("SLTU(-1 as u64, 1) = %d, want 0 (unsigned -1 is huge)", got)
	}
}

func TestSLTSignedComparison(t *testing.T) {
	// slt x3, x1, x2: the same bit pattern, compared as signed, says
	// x1 (-1) < x2 (1).
	vmachine := setupALU(^uint64(0), 1)
	word := encodeRType(0b0110011, 3, 0x2, 1, 2, 0x00)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	if got := vmachine.CPU.GetRegister(3); got != 1 {
		t.Errorf("SLT(-1, 1) = %d, want 1", got)
	}
}

func TestSLTIUUnsignedImmediateComparison(t *testing.T) {
	vmachine := setupALU(^uint64(0), 0)
	word := encodeIType(0b0010011, 3, 0x3, 1, 5)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	if got := vmachine.CPU.GetRegister(3); got != 0 {
		t.Errorf("SLTIU(-1 as u64, 5) = %d, want 0", got)
	}
}

func TestSLLWMasksShiftTo5Bits(t *testing.T) {
	// sllw x3, x1, x2 with a shift amount of 33 must behave as shift-by-1
	// (33 & 0x1F == 1), not shift-by-33.
	vmachine := setupALU(1, 33)
	word := encodeRType(0b0111011, 3, 0x1, 1, 2, 0x00)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	if got := vmachine.CPU.GetRegister(3); got != 2 {
		t.Errorf("SLLW(1, 33) = %d, want 2 (shift masked to 5 bits)", got)
	}
}

func TestSLLMasksShiftTo6Bits(t *testing.T) {
	// sll x3, x1, x2 with a shift amount of 65 must behave as shift-by-1
	// (65 & 0x3F == 1); the full-width register variant masks to 6 bits,
	// not the word variant's 5.
	vmachine := setupALU(1, 65)
	word := encodeRType(0b0110011, 3, 0x1, 1, 2, 0x00)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	if got := vmachine.CPU.GetRegister(3); got != 2 {
		t.Errorf("SLL(1, 65) = %d, want 2 (shift masked to 6 bits)", got)
	}
}

func TestSRAIWSignExtendsFromBit31(t *testing.T) {
	// sraiw x3, x1, 1 on a value whose bit 31 is set must sign-extend
	// the 32-bit shift result to 64 bits, not just the 31-bit remainder.
	vmachine := setupALU(0x80000000, 0)
	word := encodeShiftImm(0b0011011, 3, 0x5, 1, 1, 0x20)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	got := int64(vmachine.CPU.GetRegister(3))
	if got != -0x40000000 {
		t.Errorf("SRAIW(0x80000000, 1) = %d, want %d", got, int64(-0x40000000))
	}
}

func TestADDWWrapsAndSignExtends(t *testing.T) {
	// addw x3, x1, x2: 32-bit overflow must wrap within the low 32 bits
	// and then sign-extend, independent of the full 64-bit sum.
	vmachine := setupALU(0x7FFFFFFF, 1)
	word := encodeRType(0b0111011, 3, 0x0, 1, 2, 0x00)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	got := int64(vmachine.CPU.GetRegister(3))
	if got != -0x80000000 {
		t.Errorf("ADDW(0x7FFFFFFF, 1) = %d, want %d", got, int64(-0x80000000))
	}
}

func TestSUBWSignExtendsNegativeResult(t *testing.T) {
	vmachine := setupALU(0, 1)
	word := encodeRType(0b0111011, 3, 0x0, 1, 2, 0x20)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	got := int64(vmachine.CPU.GetRegister(3))
	if got != -1 {
		t.Errorf("SUBW(0, 1) = %d, want -1", got)
	}
}

func TestADDIRespectsX0Write(t *testing.T) {
	// addi x0, x1, 5: a write to x0 must be discarded.
	vmachine := setupALU(10, 0)
	word := encodeIType(0b0010011, 0, 0x0, 1, 5)
	inst := decoder.Decode(word)
	if err := executeALU(vmachine, inst, 0); err != nil {
		t.Fatalf("executeALU: %v", err)
	}
	if got := vmachine.CPU.GetRegister(0); got != 0 {
		t.Errorf("x0 = %d, want 0 (writes to x0 are discarded)", got)
	}
}

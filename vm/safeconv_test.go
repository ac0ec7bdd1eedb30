package vm

import "testing"

func TestSignExtend(t *testing.T) {
	tests := []struct {
		value uint64
		bits  uint
		want  int64
	}{
		{0, 12, 0},
		{0x7FF, 12, 0x7FF},
		{0xFFF, 12, -1},
		{0x800, 12, -2048},
		{0x1FFF, 13, -1},
		{0x1FFFFF, 21, -1},
		{0xFFFFFFFF, 32, -1},
		{1, 1, -1},
		{0, 1, 0},
	}

	for _, tt := range tests {
		result := SignExtend(tt.value, tt.bits)
		if result != tt.want {
			t.Errorf("SignExtend(0x%x, %d) = %d, expected %d", tt.value, tt.bits, result, tt.want)
		}
	}
}

func TestSignExtendU(t *testing.T) {
	tests := []struct {
		imm  uint32
		want uint64
	}{
		{0, 0},
		{0x00001000, 0x0000000000001000},
		{0xFFFFF000, 0xFFFFFFFFFFFFF000},
	}

	for _, tt := range tests {
		result := SignExtendU(tt.imm)
		if result != tt.want {
			t.Errorf("SignExtendU(0x%x) = 0x%x, expected 0x%x", tt.imm, result, tt.want)
		}
	}
}

func TestSignExtend32To64(t *testing.T) {
	tests := []struct {
		input uint32
		want  uint64
	}{
		{0, 0},
		{0x7FFFFFFF, 0x000000007FFFFFFF},
		{0xFFFFFFFF, 0xFFFFFFFFFFFFFFFF},
		{0x80000000, 0xFFFFFFFF80000000},
	}

	for _, tt := range tests {
		result := SignExtend32To64(tt.input)
		if result != tt.want {
			t.Errorf("SignExtend32To64(0x%X) = 0x%x, expected 0x%x", tt.input, result, tt.want)
		}
	}
}

func TestSignExtendByteTo64(t *testing.T) {
	tests := []struct {
		input byte
		want  uint64
	}{
		{0, 0},
		{0x7F, 0x7F},
		{0xFF, 0xFFFFFFFFFFFFFFFF},
		{0x80, 0xFFFFFFFFFFFFFF80},
	}

	for _, tt := range tests {
		result := SignExtendByteTo64(tt.input)
		if result != tt.want {
			t.Errorf("SignExtendByteTo64(0x%X) = 0x%x, expected 0x%x", tt.input, result, tt.want)
		}
	}
}

func TestSignExtendHalfTo64(t *testing.T) {
	tests := []struct {
		input uint16
		want  uint64
	}{
		{0, 0},
		{0xFFFF, 0xFFFFFFFFFFFFFFFF},
		{0x8000, 0xFFFFFFFFFFFF8000},
	}

	for _, tt := range tests {
		result := SignExtendHalfTo64(tt.input)
		if result != tt.want {
			t.Errorf("SignExtendHalfTo64(0x%X) = 0x%x, expected 0x%x", tt.input, result, tt.want)
		}
	}
}

func TestSignExtendWordTo64(t *testing.T) {
	tests := []struct {
		input uint32
		want  uint64
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFFFFFFFFFF},
		{0x80000000, 0xFFFFFFFF80000000},
	}

	for _, tt := range tests {
		result := SignExtendWordTo64(tt.input)
		if result != tt.want {
			t.Errorf("SignExtendWordTo64(0x%X) = 0x%x, expected 0x%x", tt.input, result, tt.want)
		}
	}
}

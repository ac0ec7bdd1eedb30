package vm

// SignExtend sign-extends the low `bits` bits of value, treating bit
// (bits-1) as the sign bit, and returns the result as a full-width
// int64. The fixed-width helpers below do not call it; they widen
// through Go's signed integer conversions directly.
func SignExtend(value uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(value<<shift) >> shift
}

// SignExtendU returns a 32-bit U-format immediate (inst[31:12] shifted
// left by 12) sign-extended to 64 bits, as LUI and AUIPC require.
func SignExtendU(imm uint32) uint64 {
	return uint64(int64(int32(imm)))
}

// SignExtend32To64 sign-extends a 32-bit ALU result to 64 bits, as
// every *W instruction's result must be before it is written back to
// a register.
func SignExtend32To64(v uint32) uint64 {
	return uint64(int64(int32(v)))
}

// SignExtendByteTo64 sign-extends a loaded byte to 64 bits, for LB.
func SignExtendByteTo64(v byte) uint64 {
	return uint64(int64(int8(v)))
}

// SignExtendHalfTo64 sign-extends a loaded halfword to 64 bits, for LH.
func SignExtendHalfTo64(v uint16) uint64 {
	return uint64(int64(int16(v)))
}

// SignExtendWordTo64 sign-extends a loaded word to 64 bits, for LW.
func SignExtendWordTo64(v uint32) uint64 {
	return uint64(int64(int32(v)))
}

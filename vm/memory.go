package vm

// DRAM is the emulator's simulated physical memory: a flat,
// little-endian byte array mapped at DRAMBase. There is no
// segmentation, no permission bits, and no translation — the Bus is
// responsible for rejecting addresses below the mapped window, and
// DRAM itself rejects accesses that would run past the end of it.
type DRAM struct {
	Data []byte

	AccessCount uint64
	ReadCount   uint64
	WriteCount  uint64
}

// NewDRAM creates a zero-filled DRAM of the given size and copies code
// into it starting at offset 0.
func NewDRAM(size uint64, code []byte) *DRAM {
	d := &DRAM{Data: make([]byte, size)}
	copy(d.Data, code)
	return d
}

// sizeBytes converts a bit-size (8/16/32/64) to a byte count, or
// reports BadSize for anything else.
func sizeBytes(size int) (int, error) {
	switch size {
	case 8:
		return 1, nil
	case 16:
		return 2, nil
	case 32:
		return 4, nil
	case 64:
		return 8, nil
	default:
		return 0, NewMemoryError(BadSize, 0, size, "size must be one of 8, 16, 32, 64")
	}
}

// Load reads size bits starting at addr (a physical address, including
// DRAMBase) in little-endian order and returns them zero-extended into
// a uint64. size must be one of 8, 16, 32, 64.
func (d *DRAM) Load(addr uint64, size int) (uint64, error) {
	nbytes, err := sizeBytes(size)
	if err != nil {
		return 0, err
	}

	offset := addr - DRAMBase
	if addr < DRAMBase || offset+uint64(nbytes) > uint64(len(d.Data)) {
		return 0, NewMemoryError(OutOfBounds, addr, size, "read past end of mapped DRAM")
	}

	d.AccessCount++
	d.ReadCount++

	var value uint64
	for i := 0; i < nbytes; i++ {
		value |= uint64(d.Data[offset+uint64(i)]) << (8 * uint(i))
	}
	return value, nil
}

// Store writes the low size bits of value to addr in little-endian
// order. High bits of value beyond size are ignored. size must be one
// of 8, 16, 32, 64.
func (d *DRAM) Store(addr uint64, size int, value uint64) error {
	nbytes, err := sizeBytes(size)
	if err != nil {
		return err
	}

	offset := addr - DRAMBase
	if addr < DRAMBase || offset+uint64(nbytes) > uint64(len(d.Data)) {
		return NewMemoryError(OutOfBounds, addr, size, "write past end of mapped DRAM")
	}

	d.AccessCount++
	d.WriteCount++

	for i := 0; i < nbytes; i++ {
		d.Data[offset+uint64(i)] = byte(value >> (8 * uint(i)))
	}
	return nil
}

// LoadBytes copies a raw byte slice into DRAM starting at addr,
// bypassing the size/offset checks in Load/Store. Used once at program
// load time, not during instruction execution.
func (d *DRAM) LoadBytes(addr uint64, data []byte) error {
	offset := addr - DRAMBase
	if addr < DRAMBase || offset+uint64(len(data)) > uint64(len(d.Data)) {
		return NewMemoryError(OutOfBounds, addr, 8, "program image does not fit in DRAM")
	}
	copy(d.Data[offset:], data)
	return nil
}

// Reset clears all memory contents and access counters.
func (d *DRAM) Reset() {
	for i := range d.Data {
		d.Data[i] = 0
	}
	d.AccessCount = 0
	d.ReadCount = 0
	d.WriteCount = 0
}

package vm

// Bus is a thin single-address-space dispatcher. Today it forwards all
// traffic to DRAM and rejects addresses below DRAMBase; the
// indirection exists so a later device (MMIO, boot ROM) could be
// routed here without the CPU needing to change.
type Bus struct {
	DRAM *DRAM
}

// NewBus creates a Bus in front of the given DRAM.
func NewBus(dram *DRAM) *Bus {
	return &Bus{DRAM: dram}
}

// Load forwards a load to DRAM after checking addr is mapped.
func (b *Bus) Load(addr uint64, size int) (uint64, error) {
	if addr < DRAMBase {
		return 0, NewMemoryError(Unmapped, addr, size, "address below DRAM base")
	}
	return b.DRAM.Load(addr, size)
}

// Store forwards a store to DRAM after checking addr is mapped.
func (b *Bus) Store(addr uint64, size int, value uint64) error {
	if addr < DRAMBase {
		return NewMemoryError(Unmapped, addr, size, "address below DRAM base")
	}
	return b.DRAM.Store(addr, size, value)
}

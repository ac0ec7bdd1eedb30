package vm

// CPU holds the RV64I architectural state: 32 general-purpose integer
// registers and the program counter. Register x0 is hardwired to zero:
// SetRegister silently discards writes to it, and GetRegister always
// returns 0 for it.
type CPU struct {
	Regs [RegisterCount]uint64
	PC   uint64

	// Cycles counts executed instructions (one cycle per instruction in
	// this single-hart, non-pipelined core).
	Cycles uint64
}

// NewCPU creates a CPU with PC = DRAMBase and sp = DRAMBase + dramSize
// (one past the last valid byte), all other registers zero.
func NewCPU(dramSize uint64) *CPU {
	c := &CPU{PC: DRAMBase}
	c.Regs[RegSP] = DRAMBase + dramSize
	return c
}

// Reset restores the CPU to its post-construction state for the given
// DRAM size.
func (c *CPU) Reset(dramSize uint64) {
	for i := range c.Regs {
		c.Regs[i] = 0
	}
	c.PC = DRAMBase
	c.Regs[RegSP] = DRAMBase + dramSize
	c.Cycles = 0
}

// GetRegister returns the value of register reg. Register x0 always
// reads as 0.
func (c *CPU) GetRegister(reg int) uint64 {
	if reg == RegZero {
		return 0
	}
	return c.Regs[reg]
}

// SetRegister writes value to register reg. Writes to x0 are silently
// discarded.
func (c *CPU) SetRegister(reg int, value uint64) {
	if reg == RegZero {
		return
	}
	c.Regs[reg] = value
}

// EnforceZeroRegister forces x0 back to zero. Callers that write
// registers unconditionally during execute (rather than gating every
// write on reg != 0) must call this once per instruction; vm.Step does
// so at the end of every successful step.
func (c *CPU) EnforceZeroRegister() {
	c.Regs[RegZero] = 0
}

// IncrementCycles advances the cycle counter.
func (c *CPU) IncrementCycles(n uint64) {
	c.Cycles += n
}

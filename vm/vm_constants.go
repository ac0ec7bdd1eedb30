package vm

// Physical memory layout. A single flat DRAM region is mapped starting
// at DRAMBase; there is no segmentation, no translation, and no other
// device on the bus.
const (
	DRAMBase uint64 = 0x8000_0000
	DRAMSize uint64 = 128 * 1024 * 1024 // 128 MiB
)

// RegisterCount is the number of general-purpose integer registers.
const RegisterCount = 32

// Register aliases for convenience. x0 is hardwired to zero; x1 is the
// return-address register by software convention; x2 is the stack
// pointer by software convention.
const (
	RegZero = 0
	RegRA   = 1
	RegSP   = 2
)

// ABINames gives the conventional alias for each integer register,
// indexed by register number, used when formatting the register dump.
var ABINames = [RegisterCount]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// VM Execution Limits
const (
	DefaultMaxCycles   = 1000000 // Default instruction limit before the host gives up
	DefaultLogCapacity = 1000    // Initial capacity for the instruction address log
)

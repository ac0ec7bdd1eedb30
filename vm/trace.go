package vm

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// TraceEntry records one executed instruction and the register
// changes it produced.
type TraceEntry struct {
	Sequence        uint64
	Address         uint64
	Opcode          uint32
	Disassembly     string
	RegisterChanges map[string]uint64
	Duration        time.Duration
}

// ExecutionTrace manages an in-memory, optionally filtered execution
// trace that can be flushed to a writer (file or stdout).
type ExecutionTrace struct {
	Enabled       bool
	Writer        io.Writer
	FilterRegs    map[string]bool
	IncludeTiming bool
	MaxEntries    int

	entries      []TraceEntry
	startTime    time.Time
	lastSnapshot map[string]uint64
}

// NewExecutionTrace creates a trace writing to writer.
func NewExecutionTrace(writer io.Writer) *ExecutionTrace {
	return &ExecutionTrace{
		Enabled:       true,
		Writer:        writer,
		FilterRegs:    make(map[string]bool),
		IncludeTiming: true,
		MaxEntries:    100000,
		entries:       make([]TraceEntry, 0, DefaultLogCapacity),
		lastSnapshot:  make(map[string]uint64),
	}
}

// SetFilterRegisters restricts tracking to the named ABI registers
// (e.g. "a0", "sp"). Pass nil or an empty slice to track all of them.
func (t *ExecutionTrace) SetFilterRegisters(regs []string) {
	t.FilterRegs = make(map[string]bool)
	for _, reg := range regs {
		t.FilterRegs[strings.ToLower(reg)] = true
	}
}

// Start resets the trace buffer and begins timing from now.
func (t *ExecutionTrace) Start() {
	t.startTime = time.Now()
	t.entries = t.entries[:0]
	t.lastSnapshot = make(map[string]uint64)
}

// RecordInstruction appends one executed instruction to the trace,
// along with any register it changed since the previous entry.
func (t *ExecutionTrace) RecordInstruction(vmachine *VM, disasm string) {
	if !t.Enabled {
		return
	}
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		return
	}

	addr := vmachine.CPU.PC
	if n := len(vmachine.InstructionLog); n > 0 {
		addr = vmachine.InstructionLog[n-1] // PC at fetch of the instruction just executed
	}

	entry := TraceEntry{
		Sequence:        vmachine.CPU.Cycles,
		Address:         addr,
		Disassembly:     disasm,
		RegisterChanges: make(map[string]uint64),
	}
	if t.IncludeTiming {
		entry.Duration = time.Since(t.startTime)
	}

	for i := 0; i < RegisterCount; i++ {
		name := ABINames[i]
		value := vmachine.CPU.GetRegister(i)
		if len(t.FilterRegs) > 0 && !t.FilterRegs[name] {
			continue
		}
		if oldValue, exists := t.lastSnapshot[name]; !exists || oldValue != value {
			entry.RegisterChanges[name] = value
			t.lastSnapshot[name] = value
		}
	}

	t.entries = append(t.entries, entry)
}

// Flush writes all buffered entries to the writer.
func (t *ExecutionTrace) Flush() error {
	if t.Writer == nil {
		return nil
	}
	for _, entry := range t.entries {
		if err := t.writeEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (t *ExecutionTrace) writeEntry(entry TraceEntry) error {
	line := fmt.Sprintf("[%08d] 0x%016x: %-30s", entry.Sequence, entry.Address, entry.Disassembly)

	if len(entry.RegisterChanges) > 0 {
		changes := make([]string, 0, len(entry.RegisterChanges))
		for name, value := range entry.RegisterChanges {
			changes = append(changes, fmt.Sprintf("%s=0x%016x", name, value))
		}
		line += " | " + strings.Join(changes, " ")
	} else {
		line += " | (no changes)"
	}

	if t.IncludeTiming {
		line += fmt.Sprintf(" | %v", entry.Duration)
	}
	line += "\n"

	_, err := t.Writer.Write([]byte(line))
	return err
}

// GetEntries returns all buffered trace entries.
func (t *ExecutionTrace) GetEntries() []TraceEntry {
	return t.entries
}

// Clear empties the trace buffer.
func (t *ExecutionTrace) Clear() {
	t.entries = t.entries[:0]
	t.lastSnapshot = make(map[string]uint64)
}

// MemoryAccessEntry records a single load or store.
type MemoryAccessEntry struct {
	Sequence  uint64
	Address   uint64
	PC        uint64
	Type      string // "READ" or "WRITE"
	Size      int    // access width in bits
	Value     uint64
	Timestamp time.Duration
}

// MemoryTrace manages an in-memory log of bus accesses.
type MemoryTrace struct {
	Enabled    bool
	Writer     io.Writer
	MaxEntries int

	entries   []MemoryAccessEntry
	startTime time.Time
}

// NewMemoryTrace creates a memory trace writing to writer.
func NewMemoryTrace(writer io.Writer) *MemoryTrace {
	return &MemoryTrace{
		Enabled:    true,
		Writer:     writer,
		MaxEntries: 100000,
		entries:    make([]MemoryAccessEntry, 0, DefaultLogCapacity),
	}
}

// Start resets the memory trace buffer and begins timing from now.
func (t *MemoryTrace) Start() {
	t.startTime = time.Now()
	t.entries = t.entries[:0]
}

// RecordRead appends a load access to the trace.
func (t *MemoryTrace) RecordRead(sequence, pc, address, value uint64, size int) {
	if !t.Enabled || (t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries) {
		return
	}
	t.entries = append(t.entries, MemoryAccessEntry{
		Sequence: sequence, Address: address, PC: pc,
		Type: "READ", Size: size, Value: value,
		Timestamp: time.Since(t.startTime),
	})
}

// RecordWrite appends a store access to the trace.
func (t *MemoryTrace) RecordWrite(sequence, pc, address, value uint64, size int) {
	if !t.Enabled || (t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries) {
		return
	}
	t.entries = append(t.entries, MemoryAccessEntry{
		Sequence: sequence, Address: address, PC: pc,
		Type: "WRITE", Size: size, Value: value,
		Timestamp: time.Since(t.startTime),
	})
}

// Flush writes all buffered memory accesses to the writer.
func (t *MemoryTrace) Flush() error {
	if t.Writer == nil {
		return nil
	}
	for _, entry := range t.entries {
		if err := t.writeEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (t *MemoryTrace) writeEntry(entry MemoryAccessEntry) error {
	var arrow string
	if entry.Type == "READ" {
		arrow = "<-"
	} else {
		arrow = "->"
	}
	line := fmt.Sprintf("[%08d] [%-5s] 0x%016x %s [0x%016x] = 0x%016x (%d bits)\n",
		entry.Sequence, entry.Type, entry.PC, arrow, entry.Address, entry.Value, entry.Size)
	_, err := t.Writer.Write([]byte(line))
	return err
}

// GetEntries returns all buffered memory access entries.
func (t *MemoryTrace) GetEntries() []MemoryAccessEntry {
	return t.entries
}

// Clear empties the memory trace buffer.
func (t *MemoryTrace) Clear() {
	t.entries = t.entries[:0]
}

// OpenTraceFile opens filename for writing, creating or truncating it.
func OpenTraceFile(filename string) (*os.File, error) {
	return os.Create(filename)
}

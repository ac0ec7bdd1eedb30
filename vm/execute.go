package vm

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jyjdal/rv64-emu/decoder"
)

// ExecutionState is the current run state of a VM.
type ExecutionState int

const (
	StateRunning ExecutionState = iota
	StateHalted
	StateBreakpoint
	StateError
)

// String implements fmt.Stringer for diagnostic output.
func (s ExecutionState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateBreakpoint:
		return "breakpoint"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ExecutionMode controls how Step/Run treats single-stepping, used by
// the interactive debugger; the core loop itself only ever uses
// ModeRun.
type ExecutionMode int

const (
	ModeRun ExecutionMode = iota
	ModeStep
)

// VM ties together the architectural state (CPU), the memory
// subsystem (Bus/DRAM), and the bookkeeping (trace/statistics/limits)
// around one emulation run.
type VM struct {
	CPU *CPU
	Bus *Bus

	State ExecutionState
	Mode  ExecutionMode

	MaxCycles      uint64
	InstructionLog []uint64

	LastError error

	OutputWriter io.Writer

	ExecutionTrace *ExecutionTrace
	MemoryTrace    *MemoryTrace
	Statistics     *PerformanceStatistics

	ExitCode int32
}

// NewVM creates a VM with a dramSize-byte DRAM preloaded with code at
// offset 0, and a freshly reset CPU (PC = DRAMBase, sp = DRAMBase + dramSize).
func NewVM(dramSize uint64, code []byte) *VM {
	dram := NewDRAM(dramSize, code)
	return &VM{
		CPU:            NewCPU(dramSize),
		Bus:            NewBus(dram),
		State:          StateHalted,
		Mode:           ModeRun,
		MaxCycles:      DefaultMaxCycles,
		InstructionLog: make([]uint64, 0, DefaultLogCapacity),
		OutputWriter:   os.Stdout,
	}
}

// Reset restores the VM's CPU and clears DRAM contents back to all
// zero (dramSize must match the DRAM's original size).
func (vmachine *VM) Reset(dramSize uint64) {
	vmachine.CPU.Reset(dramSize)
	vmachine.Bus.DRAM.Reset()
	vmachine.State = StateHalted
	vmachine.InstructionLog = vmachine.InstructionLog[:0]
	vmachine.LastError = nil
	vmachine.ExitCode = 0
}

// LoadProgram copies data into DRAM starting at DRAMBase and resets
// PC to DRAMBase, leaving register state untouched.
func (vmachine *VM) LoadProgram(data []byte) error {
	if err := vmachine.Bus.DRAM.LoadBytes(DRAMBase, data); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	vmachine.CPU.PC = DRAMBase
	vmachine.State = StateHalted
	return nil
}

// Fetch reads the 32-bit little-endian instruction word at the
// current PC. A rejected address means the PC itself has run outside
// mapped DRAM, reported as PCOutOfRange rather than IllegalInstruction
// (the word was never fetched, so there is nothing to decode).
func (vmachine *VM) Fetch() (uint32, error) {
	word, err := vmachine.Bus.Load(vmachine.CPU.PC, 32)
	if err != nil {
		return 0, WrapExecutionError(PCOutOfRange, vmachine.CPU.PC, 0, err)
	}
	return uint32(word), nil
}

// Step executes exactly one instruction: fetch, advance PC by 4,
// decode, execute, then force x0 back to zero. PC is incremented before
// execute runs so that branch/jump handlers can simply add their target
// offset to CPU.PC; they subtract the 4 back out to get the real target.
func (vmachine *VM) Step() error {
	if vmachine.State == StateError {
		return fmt.Errorf("vm is in error state: %w", vmachine.LastError)
	}

	word, err := vmachine.Fetch()
	if err != nil {
		if execErr, ok := err.(*ExecutionError); ok && execErr.Kind == PCOutOfRange {
			vmachine.State = StateHalted
		} else {
			vmachine.State = StateError
		}
		vmachine.LastError = err
		return err
	}

	pcAtFetch := vmachine.CPU.PC
	vmachine.InstructionLog = append(vmachine.InstructionLog, pcAtFetch)
	vmachine.CPU.PC += 4

	inst := decoder.Decode(word)

	if err := vmachine.execute(inst, pcAtFetch); err != nil {
		if vmachine.State != StateHalted && vmachine.State != StateBreakpoint {
			vmachine.State = StateError
			vmachine.LastError = err
		}
		return err
	}

	vmachine.CPU.EnforceZeroRegister()
	vmachine.CPU.IncrementCycles(1)

	if vmachine.Statistics != nil {
		vmachine.Statistics.RecordInstruction(inst.Kind.String(), 1)
	}
	if vmachine.ExecutionTrace != nil {
		vmachine.ExecutionTrace.RecordInstruction(vmachine, inst.Kind.String())
	}

	return nil
}

// execute dispatches a decoded instruction to the ALU, memory, or
// branch/jump handler appropriate to its kind.
func (vmachine *VM) execute(inst decoder.Instruction, pcAtFetch uint64) error {
	switch inst.Kind {
	case decoder.Undefined:
		return NewExecutionError(IllegalInstruction, pcAtFetch, inst.Raw, "unrecognized opcode/func3/func7")

	case decoder.ADDI, decoder.SLTI, decoder.SLTIU, decoder.XORI, decoder.ORI, decoder.ANDI,
		decoder.SLLI, decoder.SRLI, decoder.SRAI,
		decoder.ADD, decoder.SUB, decoder.SLL, decoder.SLT, decoder.SLTU, decoder.XOR,
		decoder.SRL, decoder.SRA, decoder.OR, decoder.AND,
		decoder.ADDIW, decoder.SLLIW, decoder.SRLIW, decoder.SRAIW,
		decoder.ADDW, decoder.SUBW, decoder.SLLW, decoder.SRLW, decoder.SRAW:
		return executeALU(vmachine, inst, pcAtFetch)

	case decoder.LUI, decoder.AUIPC:
		return executeUpperImmediate(vmachine, inst, pcAtFetch)

	case decoder.LB, decoder.LH, decoder.LW, decoder.LD, decoder.LBU, decoder.LHU, decoder.LWU,
		decoder.SB, decoder.SH, decoder.SW, decoder.SD:
		return executeMemory(vmachine, inst, pcAtFetch)

	case decoder.BEQ, decoder.BNE, decoder.BLT, decoder.BGE, decoder.BLTU, decoder.BGEU,
		decoder.JAL, decoder.JALR:
		return executeBranch(vmachine, inst, pcAtFetch)

	case decoder.FENCE:
		return nil

	case decoder.ECALL:
		vmachine.State = StateHalted
		return NewExecutionError(EnvCall, pcAtFetch, inst.Raw, "ecall")

	case decoder.EBREAK:
		vmachine.State = StateBreakpoint
		return NewExecutionError(Breakpoint, pcAtFetch, inst.Raw, "ebreak")

	default:
		return NewExecutionError(IllegalInstruction, pcAtFetch, inst.Raw, "unhandled instruction kind")
	}
}

// Run steps the VM until it halts, faults, or exceeds MaxCycles.
func (vmachine *VM) Run() error {
	vmachine.State = StateRunning

	for vmachine.State == StateRunning {
		if vmachine.CPU.Cycles >= vmachine.MaxCycles {
			vmachine.State = StateError
			vmachine.LastError = fmt.Errorf("maximum cycles exceeded (%d)", vmachine.MaxCycles)
			return vmachine.LastError
		}

		if err := vmachine.Step(); err != nil {
			return err
		}
	}

	return nil
}

// DumpState renders the full register file, 4 registers per line as
// x{NN}({abi_name})=0x{16 hex digits}, followed by a PC/cycle/state summary.
// Used by the CLI and debugger to inspect a halted or faulted machine.
func (vmachine *VM) DumpState() string {
	var b strings.Builder

	for row := 0; row < RegisterCount/4; row++ {
		for col := 0; col < 4; col++ {
			reg := row*4 + col
			if col > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "x%02d(%s)=0x%016x", reg, ABINames[reg], vmachine.CPU.Regs[reg])
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "PC=0x%016x Cycles=%d State=%v", vmachine.CPU.PC, vmachine.CPU.Cycles, vmachine.State)

	return b.String()
}

// GetExitCode returns the process exit code recorded for this run.
func (vmachine *VM) GetExitCode() int32 {
	return vmachine.ExitCode
}

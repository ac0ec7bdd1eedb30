package vm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why the fetch/execute loop stopped.
type ErrorKind int

const (
	// IllegalInstruction means the decoder returned Undefined, or a
	// format-recognized word had an unrecognized func3/func7.
	IllegalInstruction ErrorKind = iota
	// Unmapped means the bus received an address below DRAMBase.
	Unmapped
	// OutOfBounds means a load/store would read or write past the end
	// of the mapped DRAM window.
	OutOfBounds
	// BadSize means a memory access used a size outside {8,16,32,64}.
	BadSize
	// EnvCall means an ECALL instruction fired.
	EnvCall
	// Breakpoint means an EBREAK instruction fired.
	Breakpoint
	// PCOutOfRange means the fetch address itself fell outside mapped
	// DRAM, as opposed to a load/store computed by a running
	// instruction (OutOfBounds). Treated as a clean halt, not a fault.
	PCOutOfRange
)

// String returns a short human-readable label for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case IllegalInstruction:
		return "illegal instruction"
	case Unmapped:
		return "unmapped address"
	case OutOfBounds:
		return "out of bounds"
	case BadSize:
		return "bad access size"
	case EnvCall:
		return "environment call"
	case Breakpoint:
		return "breakpoint"
	case PCOutOfRange:
		return "pc out of range"
	default:
		return "unknown error"
	}
}

// ExecutionError reports a fetch/decode/execute failure together with
// the machine state needed to diagnose it: the PC at the time of the
// fault and, when known, the raw instruction word.
type ExecutionError struct {
	Kind    ErrorKind
	PC      uint64
	Opcode  uint32
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s at pc=0x%016x (opcode=0x%08x): %v", msg, e.PC, e.Opcode, e.Wrapped)
	}
	return fmt.Sprintf("%s at pc=0x%016x (opcode=0x%08x)", msg, e.PC, e.Opcode)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Wrapped
}

// NewExecutionError creates an ExecutionError with no wrapped cause.
func NewExecutionError(kind ErrorKind, pc uint64, opcode uint32, message string) *ExecutionError {
	return &ExecutionError{Kind: kind, PC: pc, Opcode: opcode, Message: message}
}

// WrapExecutionError wraps an existing error with machine-state context.
// If err is nil, returns nil.
func WrapExecutionError(kind ErrorKind, pc uint64, opcode uint32, err error) error {
	if err == nil {
		return nil
	}
	return &ExecutionError{Kind: kind, PC: pc, Opcode: opcode, Wrapped: err}
}

// MemoryError reports a bus or DRAM access failure independent of any
// particular instruction (used directly by the vm/memory.go and
// vm/bus.go unit tests, and wrapped into an ExecutionError by the
// fetch/execute loop when it surfaces during Step).
type MemoryError struct {
	Kind    ErrorKind
	Addr    uint64
	Size    int
	Message string
}

// Error implements the error interface.
func (e *MemoryError) Error() string {
	return fmt.Sprintf("%s: addr=0x%016x size=%d: %s", e.Kind, e.Addr, e.Size, e.Message)
}

// NewMemoryError creates a MemoryError.
func NewMemoryError(kind ErrorKind, addr uint64, size int, message string) *MemoryError {
	return &MemoryError{Kind: kind, Addr: addr, Size: size, Message: message}
}

// WrapBusError wraps a Bus.Load/Store failure into an ExecutionError,
// reusing the underlying MemoryError's Kind (Unmapped for an address
// below DRAMBase, OutOfBounds for one past the end of DRAM) instead of
// flattening both into a single fixed kind. If err is nil, returns nil.
func WrapBusError(pc uint64, opcode uint32, err error) error {
	if err == nil {
		return nil
	}
	kind := OutOfBounds
	var memErr *MemoryError
	if errors.As(err, &memErr) {
		kind = memErr.Kind
	}
	return &ExecutionError{Kind: kind, PC: pc, Opcode: opcode, Wrapped: err}
}

// cpu_rv32.go - Hart (execution unit) for the Meridian VM

/*
Meridian - a RISC-V (RV32I/RV32M) virtual machine

(c) 2025 - 2026 The Meridian VM authors
https://github.com/meridianvm/meridian
License: GPLv3 or later
*/

/*
cpu_rv32.go - Hart Execution Unit

A Hart is one hardware thread's execution context: one program counter, one
register file, one attached memory. It is generic over an instruction
set/format pair so that alternative architectures or widths plug in without
touching the fetch/execute contract - a strategy extension point, not
inheritance. RV32I and RV32IM (cpu_rv32_exec.go) are the two sets shipped.

State machine: a Hart is Running or Halted. It starts Running; a fetch past
the end of memory (natural program termination) or any unrecovered fault
transitions it to Halted, which is terminal. The fault, if any, is kept for
the driver to classify.

Execution is single-threaded and synchronous: Fetch and Execute never block
or yield, and the memory and register file are exclusively owned by the
Hart. Multi-hart memory sharing is deliberately not designed here.
*/

package main

import "fmt"

// InstructionSet couples a decoder with execution semantics for one
// architecture. F is the decoded instruction representation.
type InstructionSet[F any] interface {
	// Decode maps a raw 32-bit word to its structured form, or fails with
	// an illegal-instruction error carrying the word.
	Decode(raw uint32) (F, error)
	// Execute applies one decoded instruction to the Hart's state:
	// registers, memory and program counter.
	Execute(h *Hart[F], inst F) error
}

// HartState is the externally visible execution state.
type HartState int

const (
	HartRunning HartState = iota
	HartHalted
)

func (s HartState) String() string {
	if s == HartHalted {
		return "halted"
	}
	return "running"
}

// MisalignedPCError reports a fetch attempted at a program counter that is
// not word-aligned. Branch and jump immediates are always even, so this can
// only arise from a jalr landing on addr ≡ 2 (mod 4); it surfaces on the
// next fetch, not at the jump itself.
type MisalignedPCError struct {
	PC uint64
}

func (e *MisalignedPCError) Error() string {
	return fmt.Sprintf("misaligned instruction fetch at pc=0x%08X", e.PC)
}

// Hart is a single execution unit over one Memory and one RegisterFile.
type Hart[F any] struct {
	regs  RegisterFile
	mem   *Memory
	isa   InstructionSet[F]
	state HartState
	fault error // non-nil only when halted by a fault
}

// NewHart creates a Running Hart owning a memory built from the image, with
// all registers zeroed and the program counter at entry.
func NewHart[F any](isa InstructionSet[F], mem *Memory, entry uint32) *Hart[F] {
	h := &Hart[F]{
		mem:   mem,
		isa:   isa,
		state: HartRunning,
	}
	h.regs.Reset(uint64(entry))
	return h
}

// Registers exposes the register file (monitor, script host, tests).
func (h *Hart[F]) Registers() *RegisterFile {
	return &h.regs
}

// Memory exposes the attached memory.
func (h *Hart[F]) Memory() *Memory {
	return h.mem
}

// State reports Running or Halted.
func (h *Hart[F]) State() HartState {
	return h.state
}

// Fault returns the error that halted the Hart, or nil after a natural
// end-of-memory termination (and while still running).
func (h *Hart[F]) Fault() error {
	return h.fault
}

// halt records the fault (if any) and makes the halt terminal.
func (h *Hart[F]) halt(err error) error {
	h.state = HartHalted
	if h.fault == nil {
		h.fault = err
	}
	return err
}

// Fetch reads and decodes the instruction at the current program counter.
// ok is false with a nil error when the program counter has run off the end
// of memory: natural program termination, not a fault. Decode failures and
// misaligned program counters are faults and halt the Hart.
func (h *Hart[F]) Fetch() (inst F, ok bool, err error) {
	var zero F
	if h.state == HartHalted {
		return zero, false, nil
	}
	pc := h.regs.PC()
	if pc >= uint64(h.mem.Size()) {
		h.halt(nil)
		return zero, false, nil
	}
	if pc%4 != 0 {
		return zero, false, h.halt(&MisalignedPCError{PC: pc})
	}
	raw, rerr := h.mem.Read32(uint32(pc))
	if rerr != nil {
		// Fewer than 4 bytes left before the end: a truncated tail is not
		// a runnable instruction.
		return zero, false, h.halt(rerr)
	}
	inst, derr := h.isa.Decode(raw)
	if derr != nil {
		if ill, isIll := derr.(*IllegalInstructionError); isIll {
			ill.PC = pc
		}
		return zero, false, h.halt(derr)
	}
	return inst, true, nil
}

// Execute applies one decoded instruction. Faults (out-of-bounds access,
// unknown operation within a layout) halt the Hart and are returned for the
// driver to handle.
func (h *Hart[F]) Execute(inst F) error {
	if h.state == HartHalted {
		return h.fault
	}
	if err := h.isa.Execute(h, inst); err != nil {
		return h.halt(err)
	}
	return nil
}

// Step performs one fetch/execute cycle. ok is false once the Hart halts,
// whether naturally or by fault.
func (h *Hart[F]) Step() (ok bool, err error) {
	inst, ok, err := h.Fetch()
	if !ok || err != nil {
		return false, err
	}
	if err := h.Execute(inst); err != nil {
		return false, err
	}
	return true, nil
}

// Run drives the fetch/execute loop until the Hart halts, returning the
// fault that stopped it, or nil for natural termination.
func (h *Hart[F]) Run() error {
	for {
		ok, err := h.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

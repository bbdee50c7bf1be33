// machine.go - Machine composition and program loading for the Meridian VM

/*
Meridian - a RISC-V (RV32I/RV32M) virtual machine

(c) 2025 - 2026 The Meridian VM authors
https://github.com/meridianvm/meridian
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
	"os"
)

// HaltReason classifies why a machine stopped.
type HaltReason int

const (
	HaltNone   HaltReason = iota // still running
	HaltNormal                   // program counter ran off the end of memory
	HaltFault                    // illegal instruction, bounds fault, misaligned pc
)

func (r HaltReason) String() string {
	switch r {
	case HaltNormal:
		return "normal exit"
	case HaltFault:
		return "fault"
	}
	return "running"
}

// Machine owns one Hart running the RV32IM instruction set against a memory
// built from a raw binary image. It keeps the original image and entry
// address so the monitor can reset the machine to its initial state.
type Machine struct {
	hart  *Hart[InstructionFormat32]
	image []byte
	entry uint32
	extra int // zero-filled bytes appended beyond the image
}

// NewMachine builds a machine whose memory is exactly the image, with the
// program counter at address 0.
func NewMachine(image []byte) *Machine {
	return NewMachineSized(image, 0, 0)
}

// NewMachineSized appends extra zero-filled bytes of scratch memory beyond
// the image and starts execution at entry.
func NewMachineSized(image []byte, extra int, entry uint32) *Machine {
	m := &Machine{
		image: append([]byte(nil), image...),
		entry: entry,
		extra: extra,
	}
	m.Reset()
	return m
}

// NewMachineFromFile loads a raw binary image (program plus static data)
// produced by an external assembler or loader.
func NewMachineFromFile(path string, extra int, entry uint32) (*Machine, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("meridian: empty program image %s", path)
	}
	return NewMachineSized(image, extra, entry), nil
}

// Reset rebuilds memory from the original image and returns the Hart to its
// initial Running state with zeroed registers.
func (m *Machine) Reset() {
	mem := NewMemorySized(m.image, len(m.image)+m.extra)
	m.hart = NewHart[InstructionFormat32](RV32IM{}, mem, m.entry)
}

// Hart exposes the machine's single execution unit.
func (m *Machine) Hart() *Hart[InstructionFormat32] {
	return m.hart
}

// Step performs one fetch/execute cycle.
func (m *Machine) Step() (bool, error) {
	return m.hart.Step()
}

// Run drives the machine until it halts. A nil return is a normal exit;
// otherwise the fault that stopped the Hart.
func (m *Machine) Run() error {
	return m.hart.Run()
}

// HaltReason classifies the current stop state for the driver: a halted
// Hart with no fault is a normal program exit.
func (m *Machine) HaltReason() HaltReason {
	if m.hart.State() != HartHalted {
		return HaltNone
	}
	if m.hart.Fault() != nil {
		return HaltFault
	}
	return HaltNormal
}

// IsMemoryFault reports whether the machine halted on a memory bounds
// violation (as opposed to a bad instruction). Drivers use this to pick
// exit diagnostics.
func (m *Machine) IsMemoryFault() bool {
	var oob *OutOfBoundsError
	return errors.As(m.hart.Fault(), &oob)
}

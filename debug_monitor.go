// debug_monitor.go - Interactive machine monitor for the Meridian VM

/*
Meridian - a RISC-V (RV32I/RV32M) virtual machine

(c) 2025 - 2026 The Meridian VM authors
https://github.com/meridianvm/meridian
License: GPLv3 or later
*/

/*
debug_monitor.go - Machine Monitor

A line-oriented monitor REPL over the machine: inspect and modify registers
and memory, disassemble, single-step, run to a breakpoint, reset. Raw
terminal handling (line editing, history) is delegated to
golang.org/x/term's Terminal; the terminal is restored on exit.

Only instantiated from main.go for interactive use - never in tests.
*/

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// MachineMonitor is the interactive debugger for one machine.
type MachineMonitor struct {
	machine     *Machine
	breakpoints map[uint32]bool
	out         io.Writer
	lastDisasm  uint32
}

// NewMachineMonitor creates a monitor attached to the machine.
func NewMachineMonitor(m *Machine) *MachineMonitor {
	return &MachineMonitor{
		machine:     m,
		breakpoints: make(map[uint32]bool),
		out:         os.Stdout,
	}
}

// Run puts the terminal into raw mode and serves monitor commands until
// quit or EOF. The terminal state is restored before returning.
func (mon *MachineMonitor) Run() error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("meridian: monitor needs an interactive terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("meridian: failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	t := term.NewTerminal(screen, "meridian> ")
	mon.out = t

	fmt.Fprintln(t, "Meridian machine monitor. Type ? for help.")
	for {
		line, err := t.ReadLine()
		if err != nil {
			return nil // EOF / ^D
		}
		if mon.dispatch(strings.Fields(strings.TrimSpace(line))) {
			return nil
		}
	}
}

// dispatch executes one command line; returns true to quit.
func (mon *MachineMonitor) dispatch(args []string) bool {
	if len(args) == 0 {
		return false
	}
	h := mon.machine.Hart()

	switch args[0] {
	case "?", "help":
		mon.printHelp()

	case "r", "regs":
		mon.printRegisters()

	case "s", "step":
		n := 1
		if len(args) > 1 {
			n = mon.parseInt(args[1], 1)
		}
		for i := 0; i < n; i++ {
			ok, err := mon.machine.Step()
			if err != nil {
				fmt.Fprintf(mon.out, "fault: %v\n", err)
				break
			}
			if !ok {
				fmt.Fprintln(mon.out, "halted:", mon.machine.HaltReason())
				break
			}
		}
		mon.printLocation()

	case "c", "cont", "g", "go":
		mon.runToBreakpoint()

	case "b", "break":
		if len(args) < 2 {
			for addr := range mon.breakpoints {
				fmt.Fprintf(mon.out, "breakpoint at 0x%08x\n", addr)
			}
			break
		}
		addr := mon.parseAddr(args[1])
		mon.breakpoints[addr] = true
		fmt.Fprintf(mon.out, "breakpoint set at 0x%08x\n", addr)

	case "bc", "clear":
		if len(args) < 2 {
			mon.breakpoints = make(map[uint32]bool)
			fmt.Fprintln(mon.out, "all breakpoints cleared")
			break
		}
		delete(mon.breakpoints, mon.parseAddr(args[1]))

	case "m", "mem":
		addr := uint32(0)
		count := 64
		if len(args) > 1 {
			addr = mon.parseAddr(args[1])
		}
		if len(args) > 2 {
			count = mon.parseInt(args[2], 64)
		}
		mon.hexDump(addr, count)

	case "d", "dis":
		addr := mon.lastDisasm
		count := 8
		if len(args) > 1 {
			addr = mon.parseAddr(args[1])
		} else if addr == 0 {
			addr = uint32(h.Registers().PC())
		}
		if len(args) > 2 {
			count = mon.parseInt(args[2], 8)
		}
		for i := 0; i < count; i++ {
			fmt.Fprintln(mon.out, DisasmAt(h.Memory(), addr))
			addr += 4
		}
		mon.lastDisasm = addr

	case "p", "poke":
		if len(args) < 3 {
			fmt.Fprintln(mon.out, "usage: poke <addr> <word>")
			break
		}
		addr := mon.parseAddr(args[1])
		val := uint32(mon.parseInt(args[2], 0))
		if err := h.Memory().Write32(addr, val); err != nil {
			fmt.Fprintf(mon.out, "%v\n", err)
		}

	case "set":
		if len(args) < 3 {
			fmt.Fprintln(mon.out, "usage: set <reg> <value>")
			break
		}
		idx, known := LookupReg(args[1])
		if !known {
			fmt.Fprintf(mon.out, "unknown register %q\n", args[1])
			break
		}
		h.Registers().Set(idx, uint64(mon.parseInt(args[2], 0)))

	case "reset":
		mon.machine.Reset()
		mon.lastDisasm = 0
		fmt.Fprintln(mon.out, "machine reset")

	case "q", "quit", "x", "exit":
		return true

	default:
		fmt.Fprintf(mon.out, "unknown command %q (? for help)\n", args[0])
	}
	return false
}

func (mon *MachineMonitor) runToBreakpoint() {
	h := mon.machine.Hart()
	for {
		ok, err := mon.machine.Step()
		if err != nil {
			fmt.Fprintf(mon.out, "fault: %v\n", err)
			return
		}
		if !ok {
			fmt.Fprintln(mon.out, "halted:", mon.machine.HaltReason())
			return
		}
		if mon.breakpoints[uint32(h.Registers().PC())] {
			fmt.Fprintf(mon.out, "breakpoint hit at 0x%08x\n", uint32(h.Registers().PC()))
			mon.printLocation()
			return
		}
	}
}

func (mon *MachineMonitor) printLocation() {
	h := mon.machine.Hart()
	if h.State() == HartHalted {
		return
	}
	fmt.Fprintln(mon.out, DisasmAt(h.Memory(), uint32(h.Registers().PC())))
}

func (mon *MachineMonitor) printRegisters() {
	regs := mon.machine.Hart().Registers()
	fmt.Fprintf(mon.out, "pc   %08x  (%s)\n", uint32(regs.PC()), mon.machine.Hart().State())
	for i := 0; i < NUM_REGISTERS; i += 4 {
		for j := i; j < i+4; j++ {
			fmt.Fprintf(mon.out, "%-4s %08x  ", RegName(byte(j)), regs.Get32(byte(j)))
		}
		fmt.Fprintln(mon.out)
	}
}

func (mon *MachineMonitor) hexDump(addr uint32, count int) {
	mem := mon.machine.Hart().Memory()
	for count > 0 {
		fmt.Fprintf(mon.out, "%08x: ", addr)
		var ascii [16]byte
		n := 16
		if count < n {
			n = count
		}
		for i := 0; i < n; i++ {
			b, err := mem.Read8(addr + uint32(i))
			if err != nil {
				fmt.Fprint(mon.out, "-- ")
				ascii[i] = ' '
				continue
			}
			fmt.Fprintf(mon.out, "%02x ", b)
			if b >= 0x20 && b < 0x7F {
				ascii[i] = b
			} else {
				ascii[i] = '.'
			}
		}
		fmt.Fprintf(mon.out, " %s\n", ascii[:n])
		addr += uint32(n)
		count -= n
	}
}

func (mon *MachineMonitor) printHelp() {
	fmt.Fprint(mon.out, `commands:
  r                 show registers
  s [n]             step n instructions (default 1)
  c                 continue to breakpoint or halt
  b [addr]          set breakpoint / list breakpoints
  bc [addr]         clear breakpoint (no addr: clear all)
  m [addr] [n]      hex dump n bytes
  d [addr] [n]      disassemble n instructions
  p <addr> <word>   poke a 32-bit word
  set <reg> <val>   set a register (abi or xN name)
  reset             reset machine to initial image
  q                 quit
`)
}

func (mon *MachineMonitor) parseAddr(s string) uint32 {
	return uint32(mon.parseInt(s, 0))
}

// parseInt accepts decimal or 0x-prefixed hex; bare hex is tried last so
// "10" is ten but "ff" still works.
func (mon *MachineMonitor) parseInt(s string, fallback int) int {
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return int(v)
	}
	if v, err := strconv.ParseInt(s, 16, 64); err == nil {
		return int(v)
	}
	return fallback
}

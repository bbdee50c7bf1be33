// main.go - Main entry point for the Meridian VM

/*
Meridian - a RISC-V (RV32I/RV32M) virtual machine

(c) 2025 - 2026 The Meridian VM authors
https://github.com/meridianvm/meridian
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

func boilerPlate() {
	fmt.Println("Meridian - a RISC-V (RV32I/RV32M) virtual machine")
	fmt.Println("(c) 2025 - 2026 The Meridian VM authors")
	fmt.Println("https://github.com/meridianvm/meridian")
	fmt.Println("License: GPLv3 or later")
}

func main() {
	var (
		entryStr   string
		extraMem   int
		maxSteps   int
		trace      bool
		dumpRegs   bool
		useMonitor bool
		scriptPath string
		quiet      bool
	)
	flag.StringVar(&entryStr, "entry", "0", "entry address (decimal or 0x hex)")
	flag.IntVar(&extraMem, "mem", 0, "extra zero-filled memory beyond the image, in bytes")
	flag.IntVar(&maxSteps, "steps", 0, "stop after N instructions (0 = unlimited)")
	flag.BoolVar(&trace, "trace", false, "print each instruction as it executes")
	flag.BoolVar(&dumpRegs, "regs", false, "dump registers when the machine halts")
	flag.BoolVar(&useMonitor, "monitor", false, "start the interactive machine monitor")
	flag.StringVar(&scriptPath, "script", "", "run a Lua script against the machine")
	flag.BoolVar(&quiet, "quiet", false, "suppress the banner")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: meridian [flags] <image.bin>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if !quiet {
		boilerPlate()
	}

	entry, err := strconv.ParseUint(entryStr, 0, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "meridian: bad entry address %q: %v\n", entryStr, err)
		os.Exit(2)
	}
	if entry%4 != 0 {
		fmt.Fprintf(os.Stderr, "meridian: entry address 0x%X is not word-aligned\n", entry)
		os.Exit(2)
	}

	machine, err := NewMachineFromFile(flag.Arg(0), extraMem, uint32(entry))
	if err != nil {
		fmt.Fprintf(os.Stderr, "meridian: error loading program: %v\n", err)
		os.Exit(1)
	}

	switch {
	case useMonitor:
		mon := NewMachineMonitor(machine)
		if err := mon.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

	case scriptPath != "":
		host := NewScriptHost(machine)
		defer host.Close()
		if err := host.RunFile(scriptPath); err != nil {
			fmt.Fprintf(os.Stderr, "meridian: script error: %v\n", err)
			os.Exit(1)
		}

	default:
		runDriverLoop(machine, trace, maxSteps)
	}

	if dumpRegs {
		dumpRegisters(machine)
	}
	if machine.HaltReason() == HaltFault {
		os.Exit(1)
	}
}

// runDriverLoop is the external driver loop from the Hart's contract:
// fetch, then execute if an instruction came back, until fetch returns
// nothing or a fault is raised.
func runDriverLoop(machine *Machine, trace bool, maxSteps int) {
	hart := machine.Hart()
	steps := 0
	for {
		pc := uint32(hart.Registers().PC())
		inst, ok, err := hart.Fetch()
		if err != nil {
			fmt.Fprintf(os.Stderr, "meridian: fault: %v\n", err)
			return
		}
		if !ok {
			return
		}
		if trace {
			fmt.Printf("%08x: %08x  %s\n", pc, inst.Raw, DisasmRV32(inst, pc))
		}
		if err := hart.Execute(inst); err != nil {
			fmt.Fprintf(os.Stderr, "meridian: fault: %v\n", err)
			return
		}
		steps++
		if maxSteps > 0 && steps >= maxSteps {
			fmt.Fprintf(os.Stderr, "meridian: stopped after %d instructions\n", steps)
			return
		}
	}
}

func dumpRegisters(machine *Machine) {
	regs := machine.Hart().Registers()
	fmt.Printf("pc   %08x  (%s)\n", uint32(regs.PC()), machine.HaltReason())
	for i := 0; i < NUM_REGISTERS; i += 4 {
		for j := i; j < i+4; j++ {
			fmt.Printf("%-4s %08x  ", RegName(byte(j)), regs.Get32(byte(j)))
		}
		fmt.Println()
	}
}

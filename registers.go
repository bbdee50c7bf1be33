// registers.go - General-purpose register file for the Meridian VM

/*
Meridian - a RISC-V (RV32I/RV32M) virtual machine

(c) 2025 - 2026 The Meridian VM authors
https://github.com/meridianvm/meridian
License: GPLv3 or later
*/

package main

// The register file is 64 bits wide even though the active instruction set
// is RV32: a future RV64 instruction set plugs into the same Hart without a
// new file. RV32 execution writes results through Set32, which zero-extends
// into the 64-bit backing register, so stale upper bits can never leak into
// 32-bit arithmetic.

const NUM_REGISTERS = 32

// RegisterFile holds the 32 general-purpose registers plus the program
// counter. x0 is hardwired to zero: writes to it are accepted no-ops.
type RegisterFile struct {
	x  [NUM_REGISTERS]uint64
	pc uint64
}

// Get returns the value of register idx. Indices are masked to 5 bits; the
// decoder only ever produces 0..31.
func (r *RegisterFile) Get(idx byte) uint64 {
	return r.x[idx&0x1F] // x0 always reads 0 since it is never written
}

// Set writes value to register idx. Writing x0 is a no-op.
func (r *RegisterFile) Set(idx byte, value uint64) {
	if idx&0x1F == 0 {
		return
	}
	r.x[idx&0x1F] = value
}

// Get32 returns the low 32 bits of register idx.
func (r *RegisterFile) Get32(idx byte) uint32 {
	return uint32(r.Get(idx))
}

// Set32 writes a 32-bit result, zero-extended into the 64-bit register.
func (r *RegisterFile) Set32(idx byte, value uint32) {
	r.Set(idx, uint64(value))
}

func (r *RegisterFile) PC() uint64 {
	return r.pc
}

func (r *RegisterFile) SetPC(pc uint64) {
	r.pc = pc
}

// Reset zeroes every register and sets the program counter to entry.
func (r *RegisterFile) Reset(entry uint64) {
	for i := range r.x {
		r.x[i] = 0
	}
	r.pc = entry
}

// ------------------------------------------------------------------------------
// ABI Register Names
// ------------------------------------------------------------------------------

// regABINames maps register index to the RISC-V ABI mnemonic, used by the
// disassembler and the machine monitor.
var regABINames = [NUM_REGISTERS]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// RegName returns the ABI mnemonic for a register index.
func RegName(idx byte) string {
	return regABINames[idx&0x1F]
}

// LookupReg resolves a register by ABI name ("sp") or numeric name ("x2").
func LookupReg(name string) (byte, bool) {
	for i, abi := range regABINames {
		if name == abi {
			return byte(i), true
		}
	}
	if len(name) >= 2 && name[0] == 'x' {
		n := 0
		for _, c := range name[1:] {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		if n < NUM_REGISTERS {
			return byte(n), true
		}
	}
	return 0, false
}

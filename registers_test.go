// registers_test.go - Register file invariants

package main

import "testing"

func TestRegisters_ZeroRegisterInvariant(t *testing.T) {
	var regs RegisterFile
	values := []uint64{1, 0xFFFFFFFF, 0xFFFFFFFFFFFFFFFF, 42, 0}
	for _, v := range values {
		regs.Set(0, v)
		if got := regs.Get(0); got != 0 {
			t.Fatalf("Get(0) = %d after Set(0, %d), want 0", got, v)
		}
	}
	if got := regs.Get32(0); got != 0 {
		t.Fatalf("Get32(0) = %d, want 0", got)
	}
}

func TestRegisters_SetGet(t *testing.T) {
	var regs RegisterFile
	for i := byte(1); i < NUM_REGISTERS; i++ {
		regs.Set(i, uint64(i)*0x0101010101)
	}
	for i := byte(1); i < NUM_REGISTERS; i++ {
		if got := regs.Get(i); got != uint64(i)*0x0101010101 {
			t.Fatalf("Get(%d) = 0x%X, want 0x%X", i, got, uint64(i)*0x0101010101)
		}
	}
}

func TestRegisters_Set32ZeroExtends(t *testing.T) {
	var regs RegisterFile
	regs.Set(5, 0xFFFFFFFFFFFFFFFF)
	regs.Set32(5, 0x80000000)
	if got := regs.Get(5); got != 0x80000000 {
		t.Fatalf("Get(5) = 0x%X, want 0x80000000 (upper bits must be cleared)", got)
	}
	if got := regs.Get32(5); got != 0x80000000 {
		t.Fatalf("Get32(5) = 0x%X, want 0x80000000", got)
	}
}

func TestRegisters_PC(t *testing.T) {
	var regs RegisterFile
	regs.SetPC(0x1000)
	if regs.PC() != 0x1000 {
		t.Fatalf("PC = 0x%X, want 0x1000", regs.PC())
	}
}

func TestRegisters_Reset(t *testing.T) {
	var regs RegisterFile
	for i := byte(1); i < NUM_REGISTERS; i++ {
		regs.Set(i, 7)
	}
	regs.Reset(0x80)
	for i := byte(0); i < NUM_REGISTERS; i++ {
		if regs.Get(i) != 0 {
			t.Fatalf("Get(%d) = %d after Reset, want 0", i, regs.Get(i))
		}
	}
	if regs.PC() != 0x80 {
		t.Fatalf("PC = 0x%X after Reset, want 0x80", regs.PC())
	}
}

func TestRegisters_ABINames(t *testing.T) {
	cases := []struct {
		idx  byte
		name string
	}{
		{0, "zero"}, {1, "ra"}, {2, "sp"}, {3, "gp"}, {4, "tp"},
		{5, "t0"}, {8, "s0"}, {10, "a0"}, {17, "a7"}, {27, "s11"}, {31, "t6"},
	}
	for _, tc := range cases {
		if got := RegName(tc.idx); got != tc.name {
			t.Fatalf("RegName(%d) = %q, want %q", tc.idx, got, tc.name)
		}
	}
}

func TestRegisters_LookupReg(t *testing.T) {
	if idx, ok := LookupReg("sp"); !ok || idx != 2 {
		t.Fatalf("LookupReg(sp) = (%d, %v), want (2, true)", idx, ok)
	}
	if idx, ok := LookupReg("x31"); !ok || idx != 31 {
		t.Fatalf("LookupReg(x31) = (%d, %v), want (31, true)", idx, ok)
	}
	if idx, ok := LookupReg("a5"); !ok || idx != 15 {
		t.Fatalf("LookupReg(a5) = (%d, %v), want (15, true)", idx, ok)
	}
	for _, bad := range []string{"x32", "q7", "", "x", "xx1"} {
		if _, ok := LookupReg(bad); ok {
			t.Fatalf("LookupReg(%q) succeeded, want failure", bad)
		}
	}
}

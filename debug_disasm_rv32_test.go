// debug_disasm_rv32_test.go - Disassembler rendering tests

package main

import "testing"

func disasmWord(t *testing.T, raw uint32, pc uint32) string {
	t.Helper()
	inst, err := DecodeRV32(raw)
	if err != nil {
		t.Fatalf("DecodeRV32(0x%08X): %v", raw, err)
	}
	return DisasmRV32(inst, pc)
}

func TestDisasm_Instructions(t *testing.T) {
	cases := []struct {
		raw  uint32
		pc   uint32
		want string
	}{
		{asmADDI(3, 1, 10), 0, "addi gp, ra, 10"},
		{asmALUImm(FUNCT3_XOR, 1, 2, 255), 0, "xori ra, sp, 255"},
		{asmALUImm(FUNCT3_SLTU, 1, 2, 7), 0, "sltiu ra, sp, 7"},
		{asmALUImm(FUNCT3_SLL, 1, 2, 4), 0, "slli ra, sp, 4"},
		{asmALUImm(FUNCT3_SRL_SRA, 1, 2, 4), 0, "srli ra, sp, 4"},
		{asmALUImm(FUNCT3_SRL_SRA, 1, 2, 4 | 0x400), 0, "srai ra, sp, 4"},
		{asmALU(FUNCT3_ADD_SUB, FUNCT7_BASE, 1, 2, 3), 0, "add ra, sp, gp"},
		{asmALU(FUNCT3_ADD_SUB, FUNCT7_ALT, 1, 2, 3), 0, "sub ra, sp, gp"},
		{asmALU(FUNCT3_SRL_SRA, FUNCT7_ALT, 1, 2, 3), 0, "sra ra, sp, gp"},
		{asmALU(FUNCT3_AND, FUNCT7_BASE, 1, 2, 3), 0, "and ra, sp, gp"},
		{asmMulDiv(FUNCT3_MUL, 1, 2, 3), 0, "mul ra, sp, gp"},
		{asmMulDiv(FUNCT3_REMU, 1, 2, 3), 0, "remu ra, sp, gp"},
		{asmLUI(5, 0xABCDE000), 0, "lui t0, 0xabcde"},
		{asmAUIPC(5, 0x1000), 0, "auipc t0, 0x1"},
		{asmLoad(FUNCT3_LW, 6, 7, 12), 0, "lw t1, 12(t2)"},
		{asmLoad(FUNCT3_LBU, 6, 7, -1), 0, "lbu t1, -1(t2)"},
		{asmStore(FUNCT3_SW, 8, 9, -8), 0, "sw s1, -8(s0)"},
		{asmBranch(FUNCT3_BEQ, 1, 2, -16), 0x20, "beq ra, sp, 0x10"},
		{asmBranch(FUNCT3_BGEU, 1, 2, 8), 0x100, "bgeu ra, sp, 0x108"},
		{asmJAL(1, -4), 0x10, "jal ra, 0xc"},
		{asmJALR(1, 5, 8), 0, "jalr ra, 8(t0)"},
	}
	for _, tc := range cases {
		if got := disasmWord(t, tc.raw, tc.pc); got != tc.want {
			t.Fatalf("disasm(0x%08X) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestDisasm_PseudoInstructions(t *testing.T) {
	cases := []struct {
		raw  uint32
		want string
	}{
		{asmADDI(0, 0, 0), "nop"},
		{asmLI(1, 5), "li ra, 5"},
		{asmADDI(2, 1, 0), "mv sp, ra"},
		{asmJAL(0, 16), "j 0x10"},
		{asmJALR(0, 1, 0), "ret"},
	}
	for _, tc := range cases {
		if got := disasmWord(t, tc.raw, 0); got != tc.want {
			t.Fatalf("disasm(0x%08X) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestDisasm_At(t *testing.T) {
	mem := NewMemorySized(wordsToImage(asmLI(1, 5), 0x00000000), 8)

	if got, want := DisasmAt(mem, 0), "00000000: 00500093  li ra, 5"; got != want {
		t.Fatalf("DisasmAt(0) = %q, want %q", got, want)
	}
	// Undecodable word renders as a .word directive, not an error.
	if got, want := DisasmAt(mem, 4), "00000004: 00000000  .word 0x00000000"; got != want {
		t.Fatalf("DisasmAt(4) = %q, want %q", got, want)
	}
	if got, want := DisasmAt(mem, 0x100), "00000100: <out of bounds>"; got != want {
		t.Fatalf("DisasmAt(0x100) = %q, want %q", got, want)
	}
}

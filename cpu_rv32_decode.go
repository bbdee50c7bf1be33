// cpu_rv32_decode.go - RV32 instruction decoder for the Meridian VM

/*
Meridian - a RISC-V (RV32I/RV32M) virtual machine

(c) 2025 - 2026 The Meridian VM authors
https://github.com/meridianvm/meridian
License: GPLv3 or later
*/

/*
cpu_rv32_decode.go - RV32 Instruction Decoding

Pure mapping from a raw 32-bit word to a structured InstructionFormat32.
The low 7 bits select one of six canonical field layouts:

  R (register-register)   funct7 | rs2 | rs1 | funct3 | rd | opcode
  I (imm/load/jalr)       imm[11:0]   | rs1 | funct3 | rd | opcode
  S (store)               imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode
  B (branch)              imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | opcode
  U (lui/auipc)           imm[31:12]                       | rd | opcode
  J (jal)                 imm[20|10:1|11|19:12]            | rd | opcode

Immediates are sign-extended from bit 31 of the raw word (except U, which
is zero-filled below bit 12). The bit-reassembly helpers are independent
pure functions so they can be tested exhaustively against the encoding
tables. Fields absent from a layout are never populated.
*/

package main

import "fmt"

// ------------------------------------------------------------------------------
// RV32 Opcodes (low 7 bits of the instruction word)
// ------------------------------------------------------------------------------
const (
	OPCODE_LOAD   = 0x03 // lb, lh, lw, lbu, lhu
	OPCODE_OP_IMM = 0x13 // addi, slti, sltiu, xori, ori, andi, slli, srli, srai
	OPCODE_AUIPC  = 0x17 // auipc
	OPCODE_STORE  = 0x23 // sb, sh, sw
	OPCODE_OP     = 0x33 // add..and, and the M extension
	OPCODE_LUI    = 0x37 // lui
	OPCODE_BRANCH = 0x63 // beq, bne, blt, bge, bltu, bgeu
	OPCODE_JALR   = 0x67 // jalr
	OPCODE_JAL    = 0x6F // jal
)

// ------------------------------------------------------------------------------
// Function Field Values
// ------------------------------------------------------------------------------
const (
	// OP / OP-IMM funct3
	FUNCT3_ADD_SUB = 0x0
	FUNCT3_SLL     = 0x1
	FUNCT3_SLT     = 0x2
	FUNCT3_SLTU    = 0x3
	FUNCT3_XOR     = 0x4
	FUNCT3_SRL_SRA = 0x5
	FUNCT3_OR      = 0x6
	FUNCT3_AND     = 0x7

	// BRANCH funct3
	FUNCT3_BEQ  = 0x0
	FUNCT3_BNE  = 0x1
	FUNCT3_BLT  = 0x4
	FUNCT3_BGE  = 0x5
	FUNCT3_BLTU = 0x6
	FUNCT3_BGEU = 0x7

	// LOAD funct3
	FUNCT3_LB  = 0x0
	FUNCT3_LH  = 0x1
	FUNCT3_LW  = 0x2
	FUNCT3_LBU = 0x4
	FUNCT3_LHU = 0x5

	// STORE funct3
	FUNCT3_SB = 0x0
	FUNCT3_SH = 0x1
	FUNCT3_SW = 0x2

	// M extension funct3 (opcode OP, funct7 == FUNCT7_MULDIV)
	FUNCT3_MUL    = 0x0
	FUNCT3_MULH   = 0x1
	FUNCT3_MULHSU = 0x2
	FUNCT3_MULHU  = 0x3
	FUNCT3_DIV    = 0x4
	FUNCT3_DIVU   = 0x5
	FUNCT3_REM    = 0x6
	FUNCT3_REMU   = 0x7
)

const (
	FUNCT7_BASE   = 0x00 // add, srl, sll, ...
	FUNCT7_ALT    = 0x20 // sub, sra
	FUNCT7_MULDIV = 0x01 // M extension
)

// ------------------------------------------------------------------------------
// Decoded Representation
// ------------------------------------------------------------------------------

// InstrFormat identifies which of the six field layouts an opcode selects.
type InstrFormat byte

const (
	FormatR InstrFormat = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

func (f InstrFormat) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	}
	return "?"
}

// InstructionFormat32 is one decoded 32-bit instruction. It is produced by
// DecodeRV32, consumed exactly once by Execute, and never persisted.
// Only the fields belonging to Format are populated.
type InstructionFormat32 struct {
	Raw    uint32
	Format InstrFormat
	Opcode byte
	Rd     byte
	Rs1    byte
	Rs2    byte
	Funct3 byte
	Funct7 byte
	Imm    int32
}

// IllegalInstructionError reports a raw word whose opcode or function bits
// match no known instruction. It carries the word for diagnostics; PC is
// filled in by the Hart when the fault surfaces from fetch or execute.
type IllegalInstructionError struct {
	Raw uint32
	PC  uint64
}

func (e *IllegalInstructionError) Error() string {
	return fmt.Sprintf("illegal instruction 0x%08X at pc=0x%08X", e.Raw, e.PC)
}

// ------------------------------------------------------------------------------
// Field Extraction
// ------------------------------------------------------------------------------

func fieldRd(raw uint32) byte     { return byte(raw>>7) & 0x1F }
func fieldRs1(raw uint32) byte    { return byte(raw>>15) & 0x1F }
func fieldRs2(raw uint32) byte    { return byte(raw>>20) & 0x1F }
func fieldFunct3(raw uint32) byte { return byte(raw>>12) & 0x07 }
func fieldFunct7(raw uint32) byte { return byte(raw >> 25) }

// ------------------------------------------------------------------------------
// Immediate Reassembly
// ------------------------------------------------------------------------------
// Each helper rebuilds one layout's immediate from its scattered bit ranges
// and sign-extends from the raw word's bit 31. Arithmetic shift on int32
// performs the sign extension.

// immI: imm[11:0] = inst[31:20].
func immI(raw uint32) int32 {
	return int32(raw) >> 20
}

// immS: imm[11:5] = inst[31:25], imm[4:0] = inst[11:7].
func immS(raw uint32) int32 {
	return (int32(raw)>>25)<<5 | int32((raw>>7)&0x1F)
}

// immB: imm[12] = inst[31], imm[11] = inst[7], imm[10:5] = inst[30:25],
// imm[4:1] = inst[11:8], imm[0] = 0. Always even.
func immB(raw uint32) int32 {
	return (int32(raw)>>31)<<12 |
		int32((raw>>7)&0x1)<<11 |
		int32((raw>>25)&0x3F)<<5 |
		int32((raw>>8)&0xF)<<1
}

// immU: imm[31:12] = inst[31:12], zero-filled below.
func immU(raw uint32) int32 {
	return int32(raw & 0xFFFFF000)
}

// immJ: imm[20] = inst[31], imm[19:12] = inst[19:12], imm[11] = inst[20],
// imm[10:1] = inst[30:21], imm[0] = 0. Always even.
func immJ(raw uint32) int32 {
	return (int32(raw)>>31)<<20 |
		int32((raw>>12)&0xFF)<<12 |
		int32((raw>>20)&0x1)<<11 |
		int32((raw>>21)&0x3FF)<<1
}

// ------------------------------------------------------------------------------
// Decode
// ------------------------------------------------------------------------------

// DecodeRV32 maps a raw word to its structured form. Decoding is total and
// deterministic for every known opcode; anything else is an illegal
// instruction. Unknown funct3/funct7 values inside a known layout decode
// here and fault at execute time, where the operation is dispatched.
func DecodeRV32(raw uint32) (InstructionFormat32, error) {
	opcode := byte(raw & 0x7F)
	inst := InstructionFormat32{Raw: raw, Opcode: opcode}

	switch opcode {
	case OPCODE_OP:
		inst.Format = FormatR
		inst.Rd = fieldRd(raw)
		inst.Rs1 = fieldRs1(raw)
		inst.Rs2 = fieldRs2(raw)
		inst.Funct3 = fieldFunct3(raw)
		inst.Funct7 = fieldFunct7(raw)

	case OPCODE_OP_IMM, OPCODE_LOAD, OPCODE_JALR:
		inst.Format = FormatI
		inst.Rd = fieldRd(raw)
		inst.Rs1 = fieldRs1(raw)
		inst.Funct3 = fieldFunct3(raw)
		inst.Imm = immI(raw)

	case OPCODE_STORE:
		inst.Format = FormatS
		inst.Rs1 = fieldRs1(raw)
		inst.Rs2 = fieldRs2(raw)
		inst.Funct3 = fieldFunct3(raw)
		inst.Imm = immS(raw)

	case OPCODE_BRANCH:
		inst.Format = FormatB
		inst.Rs1 = fieldRs1(raw)
		inst.Rs2 = fieldRs2(raw)
		inst.Funct3 = fieldFunct3(raw)
		inst.Imm = immB(raw)

	case OPCODE_LUI, OPCODE_AUIPC:
		inst.Format = FormatU
		inst.Rd = fieldRd(raw)
		inst.Imm = immU(raw)

	case OPCODE_JAL:
		inst.Format = FormatJ
		inst.Rd = fieldRd(raw)
		inst.Imm = immJ(raw)

	default:
		return InstructionFormat32{}, &IllegalInstructionError{Raw: raw}
	}
	return inst, nil
}

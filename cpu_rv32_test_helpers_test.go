// cpu_rv32_test_helpers_test.go - Shared instruction encoders and rigs for RV32 tests

package main

import (
	"encoding/binary"
	"testing"
)

// ===========================================================================
// Instruction Encoders
// ===========================================================================
// Hand encoders for each of the six layouts, the inverse of the decoder's
// immediate reassembly. Keeping them independent of the production code
// means an encode/decode agreement test actually checks the bit tables.

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 byte) uint32 {
	return uint32(funct7)<<25 | uint32(rs2&0x1F)<<20 | uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 | uint32(rd&0x1F)<<7 | uint32(opcode&0x7F)
}

func encodeI(opcode, rd, funct3, rs1 byte, imm int32) uint32 {
	return uint32(imm&0xFFF)<<20 | uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 | uint32(rd&0x1F)<<7 | uint32(opcode&0x7F)
}

func encodeS(opcode, funct3, rs1, rs2 byte, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return (u>>5)<<25 | uint32(rs2&0x1F)<<20 | uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 | (u&0x1F)<<7 | uint32(opcode&0x7F)
}

func encodeB(opcode, funct3, rs1, rs2 byte, imm int32) uint32 {
	u := uint32(imm) & 0x1FFF // 13-bit, bit 0 always zero
	return (u>>12)<<31 | ((u>>5)&0x3F)<<25 | uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 | uint32(funct3&0x7)<<12 |
		((u>>1)&0xF)<<8 | ((u>>11)&0x1)<<7 | uint32(opcode&0x7F)
}

func encodeU(opcode, rd byte, imm uint32) uint32 {
	return (imm & 0xFFFFF000) | uint32(rd&0x1F)<<7 | uint32(opcode&0x7F)
}

func encodeJ(opcode, rd byte, imm int32) uint32 {
	u := uint32(imm) & 0x1FFFFF // 21-bit, bit 0 always zero
	return (u>>20)<<31 | ((u>>1)&0x3FF)<<21 | ((u>>11)&0x1)<<20 |
		((u>>12)&0xFF)<<12 | uint32(rd&0x1F)<<7 | uint32(opcode&0x7F)
}

// ===========================================================================
// Assembler Shorthand
// ===========================================================================

func asmADDI(rd, rs1 byte, imm int32) uint32 {
	return encodeI(OPCODE_OP_IMM, rd, FUNCT3_ADD_SUB, rs1, imm)
}

func asmLI(rd byte, imm int32) uint32 { // addi rd, x0, imm
	return asmADDI(rd, 0, imm)
}

func asmALUImm(funct3, rd, rs1 byte, imm int32) uint32 {
	return encodeI(OPCODE_OP_IMM, rd, funct3, rs1, imm)
}

func asmALU(funct3, funct7, rd, rs1, rs2 byte) uint32 {
	return encodeR(OPCODE_OP, rd, funct3, rs1, rs2, funct7)
}

func asmLoad(funct3, rd, rs1 byte, imm int32) uint32 {
	return encodeI(OPCODE_LOAD, rd, funct3, rs1, imm)
}

func asmStore(funct3, rs1, rs2 byte, imm int32) uint32 {
	return encodeS(OPCODE_STORE, funct3, rs1, rs2, imm)
}

func asmBranch(funct3, rs1, rs2 byte, imm int32) uint32 {
	return encodeB(OPCODE_BRANCH, funct3, rs1, rs2, imm)
}

func asmJAL(rd byte, imm int32) uint32 {
	return encodeJ(OPCODE_JAL, rd, imm)
}

func asmJALR(rd, rs1 byte, imm int32) uint32 {
	return encodeI(OPCODE_JALR, rd, 0, rs1, imm)
}

func asmLUI(rd byte, imm uint32) uint32 {
	return encodeU(OPCODE_LUI, rd, imm)
}

func asmAUIPC(rd byte, imm uint32) uint32 {
	return encodeU(OPCODE_AUIPC, rd, imm)
}

func asmMulDiv(funct3, rd, rs1, rs2 byte) uint32 {
	return encodeR(OPCODE_OP, rd, funct3, rs1, rs2, FUNCT7_MULDIV)
}

// ===========================================================================
// Test Rig
// ===========================================================================

// wordsToImage lays out instruction words little-endian from address 0.
func wordsToImage(words ...uint32) []byte {
	image := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(image[4*i:], w)
	}
	return image
}

type rv32TestRig struct {
	machine *Machine
}

// newRV32Rig builds a machine whose memory holds exactly the given words.
// Execution starts at 0 and terminates naturally off the end of the image.
func newRV32Rig(words ...uint32) *rv32TestRig {
	return &rv32TestRig{machine: NewMachine(wordsToImage(words...))}
}

// newRV32RigMem additionally appends extra zero bytes of data memory.
func newRV32RigMem(extra int, words ...uint32) *rv32TestRig {
	return &rv32TestRig{machine: NewMachineSized(wordsToImage(words...), extra, 0)}
}

func (r *rv32TestRig) hart() *Hart[InstructionFormat32] {
	return r.machine.Hart()
}

func (r *rv32TestRig) regs() *RegisterFile {
	return r.machine.Hart().Registers()
}

// runToHalt drives the machine to halt and fails the test on any fault.
func (r *rv32TestRig) runToHalt(t *testing.T) {
	t.Helper()
	if err := r.machine.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
}

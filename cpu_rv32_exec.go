// cpu_rv32_exec.go - RV32I/RV32M execution semantics for the Meridian VM

/*
Meridian - a RISC-V (RV32I/RV32M) virtual machine

(c) 2025 - 2026 The Meridian VM authors
https://github.com/meridianvm/meridian
License: GPLv3 or later
*/

/*
cpu_rv32_exec.go - RV32 Instruction Semantics

State transitions for every RV32I base instruction plus the RV32M
multiply/divide extension. Arithmetic never faults: addition and
subtraction wrap modulo 2^32, shifts use the low 5 bits of the shift
amount, and division follows the architecture's non-trapping rules
(divide by zero yields all-ones / the dividend; MinInt32 / -1 yields
MinInt32 with remainder 0).

All results are written through Set32, zero-extending into the 64-bit
register file. Loads and stores compute rs1+imm with wraparound and
propagate memory bounds faults to the Hart unchanged.
*/

package main

import "math/bits"

// RV32I is the base integer instruction set.
type RV32I struct{}

func (RV32I) Decode(raw uint32) (InstructionFormat32, error) {
	return DecodeRV32(raw)
}

func (RV32I) Execute(h *Hart[InstructionFormat32], inst InstructionFormat32) error {
	return execRV32(h, inst, false)
}

// RV32IM layers the M multiply/divide extension over RV32I. It shares the
// decoder; the extra operations live in the OP opcode under funct7=1.
type RV32IM struct{}

func (RV32IM) Decode(raw uint32) (InstructionFormat32, error) {
	return DecodeRV32(raw)
}

func (RV32IM) Execute(h *Hart[InstructionFormat32], inst InstructionFormat32) error {
	return execRV32(h, inst, true)
}

func execRV32(h *Hart[InstructionFormat32], inst InstructionFormat32, withM bool) error {
	regs := &h.regs
	mem := h.mem
	pc := uint32(regs.PC())
	next := pc + 4

	switch inst.Opcode {

	// --------------------------------------------------------------------------
	// Upper-immediate
	// --------------------------------------------------------------------------
	case OPCODE_LUI:
		regs.Set32(inst.Rd, uint32(inst.Imm))

	case OPCODE_AUIPC:
		regs.Set32(inst.Rd, pc+uint32(inst.Imm))

	// --------------------------------------------------------------------------
	// Jumps
	// --------------------------------------------------------------------------
	case OPCODE_JAL:
		regs.Set32(inst.Rd, next)
		next = pc + uint32(inst.Imm)

	case OPCODE_JALR:
		target := (regs.Get32(inst.Rs1) + uint32(inst.Imm)) &^ 1
		regs.Set32(inst.Rd, next)
		next = target

	// --------------------------------------------------------------------------
	// Branches (compare rs1 and rs2, relative target)
	// --------------------------------------------------------------------------
	case OPCODE_BRANCH:
		a := regs.Get32(inst.Rs1)
		b := regs.Get32(inst.Rs2)
		var taken bool
		switch inst.Funct3 {
		case FUNCT3_BEQ:
			taken = a == b
		case FUNCT3_BNE:
			taken = a != b
		case FUNCT3_BLT:
			taken = int32(a) < int32(b)
		case FUNCT3_BGE:
			taken = int32(a) >= int32(b)
		case FUNCT3_BLTU:
			taken = a < b
		case FUNCT3_BGEU:
			taken = a >= b
		default:
			return &IllegalInstructionError{Raw: inst.Raw, PC: uint64(pc)}
		}
		if taken {
			// Not alignment-checked here; a malformed target surfaces as a
			// failed fetch on the next cycle.
			next = pc + uint32(inst.Imm)
		}

	// --------------------------------------------------------------------------
	// Loads (effective address rs1+imm, sign- or zero-extended result)
	// --------------------------------------------------------------------------
	case OPCODE_LOAD:
		addr := regs.Get32(inst.Rs1) + uint32(inst.Imm)
		switch inst.Funct3 {
		case FUNCT3_LB:
			v, err := mem.Read8(addr)
			if err != nil {
				return err
			}
			regs.Set32(inst.Rd, uint32(int32(int8(v))))
		case FUNCT3_LH:
			v, err := mem.Read16(addr)
			if err != nil {
				return err
			}
			regs.Set32(inst.Rd, uint32(int32(int16(v))))
		case FUNCT3_LW:
			v, err := mem.Read32(addr)
			if err != nil {
				return err
			}
			regs.Set32(inst.Rd, v)
		case FUNCT3_LBU:
			v, err := mem.Read8(addr)
			if err != nil {
				return err
			}
			regs.Set32(inst.Rd, uint32(v))
		case FUNCT3_LHU:
			v, err := mem.Read16(addr)
			if err != nil {
				return err
			}
			regs.Set32(inst.Rd, uint32(v))
		default:
			return &IllegalInstructionError{Raw: inst.Raw, PC: uint64(pc)}
		}

	// --------------------------------------------------------------------------
	// Stores (low N bytes of rs2 to rs1+imm)
	// --------------------------------------------------------------------------
	case OPCODE_STORE:
		addr := regs.Get32(inst.Rs1) + uint32(inst.Imm)
		val := regs.Get32(inst.Rs2)
		var err error
		switch inst.Funct3 {
		case FUNCT3_SB:
			err = mem.Write8(addr, uint8(val))
		case FUNCT3_SH:
			err = mem.Write16(addr, uint16(val))
		case FUNCT3_SW:
			err = mem.Write32(addr, val)
		default:
			return &IllegalInstructionError{Raw: inst.Raw, PC: uint64(pc)}
		}
		if err != nil {
			return err
		}

	// --------------------------------------------------------------------------
	// ALU register-immediate
	// --------------------------------------------------------------------------
	case OPCODE_OP_IMM:
		a := regs.Get32(inst.Rs1)
		imm := uint32(inst.Imm)
		var result uint32
		switch inst.Funct3 {
		case FUNCT3_ADD_SUB:
			result = a + imm // wraps mod 2^32
		case FUNCT3_SLT:
			result = btou32(int32(a) < inst.Imm)
		case FUNCT3_SLTU:
			result = btou32(a < imm)
		case FUNCT3_XOR:
			result = a ^ imm
		case FUNCT3_OR:
			result = a | imm
		case FUNCT3_AND:
			result = a & imm
		case FUNCT3_SLL:
			// shamt is imm[4:0]; imm[11:5] must be zero
			if imm>>5 != FUNCT7_BASE {
				return &IllegalInstructionError{Raw: inst.Raw, PC: uint64(pc)}
			}
			result = a << (imm & 0x1F)
		case FUNCT3_SRL_SRA:
			switch imm >> 5 {
			case FUNCT7_BASE:
				result = a >> (imm & 0x1F)
			case FUNCT7_ALT:
				result = uint32(int32(a) >> (imm & 0x1F))
			default:
				return &IllegalInstructionError{Raw: inst.Raw, PC: uint64(pc)}
			}
		}
		regs.Set32(inst.Rd, result)

	// --------------------------------------------------------------------------
	// ALU register-register (and RV32M under funct7=1)
	// --------------------------------------------------------------------------
	case OPCODE_OP:
		a := regs.Get32(inst.Rs1)
		b := regs.Get32(inst.Rs2)

		if inst.Funct7 == FUNCT7_MULDIV {
			if !withM {
				return &IllegalInstructionError{Raw: inst.Raw, PC: uint64(pc)}
			}
			regs.Set32(inst.Rd, execMulDiv(inst.Funct3, a, b))
			break
		}

		var result uint32
		switch inst.Funct3 {
		case FUNCT3_ADD_SUB:
			switch inst.Funct7 {
			case FUNCT7_BASE:
				result = a + b
			case FUNCT7_ALT:
				result = a - b
			default:
				return &IllegalInstructionError{Raw: inst.Raw, PC: uint64(pc)}
			}
		case FUNCT3_SRL_SRA:
			switch inst.Funct7 {
			case FUNCT7_BASE:
				result = a >> (b & 0x1F)
			case FUNCT7_ALT:
				result = uint32(int32(a) >> (b & 0x1F))
			default:
				return &IllegalInstructionError{Raw: inst.Raw, PC: uint64(pc)}
			}
		default:
			if inst.Funct7 != FUNCT7_BASE {
				return &IllegalInstructionError{Raw: inst.Raw, PC: uint64(pc)}
			}
			switch inst.Funct3 {
			case FUNCT3_SLL:
				result = a << (b & 0x1F)
			case FUNCT3_SLT:
				result = btou32(int32(a) < int32(b))
			case FUNCT3_SLTU:
				result = btou32(a < b)
			case FUNCT3_XOR:
				result = a ^ b
			case FUNCT3_OR:
				result = a | b
			case FUNCT3_AND:
				result = a & b
			}
		}
		regs.Set32(inst.Rd, result)

	default:
		return &IllegalInstructionError{Raw: inst.Raw, PC: uint64(pc)}
	}

	regs.SetPC(uint64(next))
	return nil
}

// execMulDiv implements the eight RV32M operations. Division never traps:
// x/0 is all-ones (DIV/DIVU) and x%0 is x; MinInt32/-1 overflows to
// MinInt32 with remainder 0.
func execMulDiv(funct3 byte, a, b uint32) uint32 {
	switch funct3 {
	case FUNCT3_MUL:
		return a * b
	case FUNCT3_MULH:
		return uint32((int64(int32(a)) * int64(int32(b))) >> 32)
	case FUNCT3_MULHSU:
		return uint32((int64(int32(a)) * int64(b)) >> 32)
	case FUNCT3_MULHU:
		hi, _ := bits.Mul32(a, b)
		return hi
	case FUNCT3_DIV:
		sa, sb := int32(a), int32(b)
		switch {
		case sb == 0:
			return 0xFFFFFFFF
		case sa == -2147483648 && sb == -1:
			return uint32(sa)
		default:
			return uint32(sa / sb)
		}
	case FUNCT3_DIVU:
		if b == 0 {
			return 0xFFFFFFFF
		}
		return a / b
	case FUNCT3_REM:
		sa, sb := int32(a), int32(b)
		switch {
		case sb == 0:
			return a
		case sa == -2147483648 && sb == -1:
			return 0
		default:
			return uint32(sa % sb)
		}
	case FUNCT3_REMU:
		if b == 0 {
			return a
		}
		return a % b
	}
	return 0
}

func btou32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

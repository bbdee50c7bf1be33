// debug_disasm_rv32.go - RV32 disassembler for trace output and the monitor

package main

import "fmt"

var branchNames = map[byte]string{
	FUNCT3_BEQ:  "beq",
	FUNCT3_BNE:  "bne",
	FUNCT3_BLT:  "blt",
	FUNCT3_BGE:  "bge",
	FUNCT3_BLTU: "bltu",
	FUNCT3_BGEU: "bgeu",
}

var loadNames = map[byte]string{
	FUNCT3_LB:  "lb",
	FUNCT3_LH:  "lh",
	FUNCT3_LW:  "lw",
	FUNCT3_LBU: "lbu",
	FUNCT3_LHU: "lhu",
}

var storeNames = map[byte]string{
	FUNCT3_SB: "sb",
	FUNCT3_SH: "sh",
	FUNCT3_SW: "sw",
}

var opImmNames = map[byte]string{
	FUNCT3_ADD_SUB: "addi",
	FUNCT3_SLT:     "slti",
	FUNCT3_SLTU:    "sltiu",
	FUNCT3_XOR:     "xori",
	FUNCT3_OR:      "ori",
	FUNCT3_AND:     "andi",
}

var opNames = map[byte]string{
	FUNCT3_ADD_SUB: "add",
	FUNCT3_SLL:     "sll",
	FUNCT3_SLT:     "slt",
	FUNCT3_SLTU:    "sltu",
	FUNCT3_XOR:     "xor",
	FUNCT3_SRL_SRA: "srl",
	FUNCT3_OR:      "or",
	FUNCT3_AND:     "and",
}

var mulDivNames = map[byte]string{
	FUNCT3_MUL:    "mul",
	FUNCT3_MULH:   "mulh",
	FUNCT3_MULHSU: "mulhsu",
	FUNCT3_MULHU:  "mulhu",
	FUNCT3_DIV:    "div",
	FUNCT3_DIVU:   "divu",
	FUNCT3_REM:    "rem",
	FUNCT3_REMU:   "remu",
}

// DisasmRV32 renders one decoded instruction with ABI register names.
// Branch and jump targets are shown as absolute addresses computed from pc.
// A handful of canonical pseudo-instruction spellings (nop, mv, li, j, ret)
// are used where they apply.
func DisasmRV32(inst InstructionFormat32, pc uint32) string {
	rd := RegName(inst.Rd)
	rs1 := RegName(inst.Rs1)
	rs2 := RegName(inst.Rs2)

	switch inst.Opcode {
	case OPCODE_LUI:
		return fmt.Sprintf("lui %s, 0x%x", rd, uint32(inst.Imm)>>12)

	case OPCODE_AUIPC:
		return fmt.Sprintf("auipc %s, 0x%x", rd, uint32(inst.Imm)>>12)

	case OPCODE_JAL:
		target := pc + uint32(inst.Imm)
		if inst.Rd == 0 {
			return fmt.Sprintf("j 0x%x", target)
		}
		return fmt.Sprintf("jal %s, 0x%x", rd, target)

	case OPCODE_JALR:
		if inst.Rd == 0 && inst.Rs1 == 1 && inst.Imm == 0 {
			return "ret"
		}
		return fmt.Sprintf("jalr %s, %d(%s)", rd, inst.Imm, rs1)

	case OPCODE_BRANCH:
		name, known := branchNames[inst.Funct3]
		if !known {
			break
		}
		return fmt.Sprintf("%s %s, %s, 0x%x", name, rs1, rs2, pc+uint32(inst.Imm))

	case OPCODE_LOAD:
		name, known := loadNames[inst.Funct3]
		if !known {
			break
		}
		return fmt.Sprintf("%s %s, %d(%s)", name, rd, inst.Imm, rs1)

	case OPCODE_STORE:
		name, known := storeNames[inst.Funct3]
		if !known {
			break
		}
		return fmt.Sprintf("%s %s, %d(%s)", name, rs2, inst.Imm, rs1)

	case OPCODE_OP_IMM:
		switch inst.Funct3 {
		case FUNCT3_SLL:
			return fmt.Sprintf("slli %s, %s, %d", rd, rs1, inst.Imm&0x1F)
		case FUNCT3_SRL_SRA:
			if uint32(inst.Imm)>>5&0x7F == FUNCT7_ALT {
				return fmt.Sprintf("srai %s, %s, %d", rd, rs1, inst.Imm&0x1F)
			}
			return fmt.Sprintf("srli %s, %s, %d", rd, rs1, inst.Imm&0x1F)
		}
		if inst.Funct3 == FUNCT3_ADD_SUB {
			if inst.Rd == 0 && inst.Rs1 == 0 && inst.Imm == 0 {
				return "nop"
			}
			if inst.Rs1 == 0 {
				return fmt.Sprintf("li %s, %d", rd, inst.Imm)
			}
			if inst.Imm == 0 {
				return fmt.Sprintf("mv %s, %s", rd, rs1)
			}
		}
		name, known := opImmNames[inst.Funct3]
		if !known {
			break
		}
		return fmt.Sprintf("%s %s, %s, %d", name, rd, rs1, inst.Imm)

	case OPCODE_OP:
		if inst.Funct7 == FUNCT7_MULDIV {
			return fmt.Sprintf("%s %s, %s, %s", mulDivNames[inst.Funct3], rd, rs1, rs2)
		}
		name := opNames[inst.Funct3]
		if inst.Funct7 == FUNCT7_ALT {
			switch inst.Funct3 {
			case FUNCT3_ADD_SUB:
				name = "sub"
			case FUNCT3_SRL_SRA:
				name = "sra"
			}
		}
		return fmt.Sprintf("%s %s, %s, %s", name, rd, rs1, rs2)
	}

	return fmt.Sprintf(".word 0x%08x", inst.Raw)
}

// DisasmAt decodes and renders the instruction at addr, for the monitor's
// disassembly view. Undecodable words render as .word directives.
func DisasmAt(mem *Memory, addr uint32) string {
	raw, err := mem.Read32(addr)
	if err != nil {
		return fmt.Sprintf("%08x: <out of bounds>", addr)
	}
	inst, err := DecodeRV32(raw)
	if err != nil {
		return fmt.Sprintf("%08x: %08x  .word 0x%08x", addr, raw, raw)
	}
	return fmt.Sprintf("%08x: %08x  %s", addr, raw, DisasmRV32(inst, addr))
}

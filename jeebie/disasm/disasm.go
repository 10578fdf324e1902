package disasm

import (
	"fmt"

	"github.com/valerio/go-jeebie/jeebie/memory"
)

// DisassemblyLine represents a single disassembled instruction.
type DisassemblyLine struct {
	Address     uint16
	Instruction string
	Length      int
}

// byteReader abstracts over the two sources disassembly reads from: a live
// MMU (DisassembleAt/DisassembleRange/DisassembleAround) and a flat memory
// snapshot (DisassembleBytes). offset is relative to whatever base the
// caller is decoding from.
type byteReader func(offset int) uint8

// reg8Name mirrors the Sharp LR35902 3-bit register encoding used by both
// the 0x40-0xBF block and every CB-prefixed opcode.
func reg8Name(index uint8) string {
	return [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}[index&7]
}

var aluMnemonics = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
var cbRotateMnemonics = [8]string{"RLC ", "RRC ", "RL ", "RR ", "SLA ", "SRA ", "SWAP ", "SRL "}

// opcodeEntry describes one of the irregular (non-grid) base opcodes: its
// total encoded length and a formatter for any immediate operand.
type opcodeEntry struct {
	length int
	format func(read byteReader) string
}

func imm8(mnemonic string) func(byteReader) string {
	return func(read byteReader) string {
		return fmt.Sprintf(mnemonic, read(1))
	}
}

func imm16(mnemonic string) func(byteReader) string {
	return func(read byteReader) string {
		lo := uint16(read(1))
		hi := uint16(read(2))
		return fmt.Sprintf(mnemonic, (hi<<8)|lo)
	}
}

func rel8(mnemonic string) func(byteReader) string {
	return func(read byteReader) string {
		return fmt.Sprintf(mnemonic, int8(read(1)))
	}
}

func fixed(mnemonic string) func(byteReader) string {
	return func(byteReader) string { return mnemonic }
}

// baseOpcodes covers every opcode outside the regular 0x40-0xBF grid and the
// CB prefix, grounded one-for-one on the CPU's own opcode table.
var baseOpcodes = map[uint8]opcodeEntry{
	0x00: {1, fixed("NOP")},
	0x01: {3, imm16("LD BC,%04Xh")},
	0x02: {1, fixed("LD (BC),A")},
	0x03: {1, fixed("INC BC")},
	0x04: {1, fixed("INC B")},
	0x05: {1, fixed("DEC B")},
	0x06: {2, imm8("LD B,%02Xh")},
	0x07: {1, fixed("RLCA")},
	0x08: {3, imm16("LD (%04Xh),SP")},
	0x09: {1, fixed("ADD HL,BC")},
	0x0A: {1, fixed("LD A,(BC)")},
	0x0B: {1, fixed("DEC BC")},
	0x0C: {1, fixed("INC C")},
	0x0D: {1, fixed("DEC C")},
	0x0E: {2, imm8("LD C,%02Xh")},
	0x0F: {1, fixed("RRCA")},

	0x10: {2, fixed("STOP")},
	0x11: {3, imm16("LD DE,%04Xh")},
	0x12: {1, fixed("LD (DE),A")},
	0x13: {1, fixed("INC DE")},
	0x14: {1, fixed("INC D")},
	0x15: {1, fixed("DEC D")},
	0x16: {2, imm8("LD D,%02Xh")},
	0x17: {1, fixed("RLA")},
	0x18: {2, rel8("JR %+d")},
	0x19: {1, fixed("ADD HL,DE")},
	0x1A: {1, fixed("LD A,(DE)")},
	0x1B: {1, fixed("DEC DE")},
	0x1C: {1, fixed("INC E")},
	0x1D: {1, fixed("DEC E")},
	0x1E: {2, imm8("LD E,%02Xh")},
	0x1F: {1, fixed("RRA")},

	0x20: {2, rel8("JR NZ,%+d")},
	0x21: {3, imm16("LD HL,%04Xh")},
	0x22: {1, fixed("LD (HL+),A")},
	0x23: {1, fixed("INC HL")},
	0x24: {1, fixed("INC H")},
	0x25: {1, fixed("DEC H")},
	0x26: {2, imm8("LD H,%02Xh")},
	0x27: {1, fixed("DAA")},
	0x28: {2, rel8("JR Z,%+d")},
	0x29: {1, fixed("ADD HL,HL")},
	0x2A: {1, fixed("LD A,(HL+)")},
	0x2B: {1, fixed("DEC HL")},
	0x2C: {1, fixed("INC L")},
	0x2D: {1, fixed("DEC L")},
	0x2E: {2, imm8("LD L,%02Xh")},
	0x2F: {1, fixed("CPL")},

	0x30: {2, rel8("JR NC,%+d")},
	0x31: {3, imm16("LD SP,%04Xh")},
	0x32: {1, fixed("LD (HL-),A")},
	0x33: {1, fixed("INC SP")},
	0x34: {1, fixed("INC (HL)")},
	0x35: {1, fixed("DEC (HL)")},
	0x36: {2, imm8("LD (HL),%02Xh")},
	0x37: {1, fixed("SCF")},
	0x38: {2, rel8("JR C,%+d")},
	0x39: {1, fixed("ADD HL,SP")},
	0x3A: {1, fixed("LD A,(HL-)")},
	0x3B: {1, fixed("DEC SP")},
	0x3C: {1, fixed("INC A")},
	0x3D: {1, fixed("DEC A")},
	0x3E: {2, imm8("LD A,%02Xh")},
	0x3F: {1, fixed("CCF")},

	0xC0: {1, fixed("RET NZ")},
	0xC1: {1, fixed("POP BC")},
	0xC2: {3, imm16("JP NZ,%04Xh")},
	0xC3: {3, imm16("JP %04Xh")},
	0xC4: {3, imm16("CALL NZ,%04Xh")},
	0xC5: {1, fixed("PUSH BC")},
	0xC6: {2, imm8("ADD A,%02Xh")},
	0xC7: {1, fixed("RST 00h")},
	0xC8: {1, fixed("RET Z")},
	0xC9: {1, fixed("RET")},
	0xCA: {3, imm16("JP Z,%04Xh")},
	0xCC: {3, imm16("CALL Z,%04Xh")},
	0xCD: {3, imm16("CALL %04Xh")},
	0xCE: {2, imm8("ADC A,%02Xh")},
	0xCF: {1, fixed("RST 08h")},

	0xD0: {1, fixed("RET NC")},
	0xD1: {1, fixed("POP DE")},
	0xD2: {3, imm16("JP NC,%04Xh")},
	0xD4: {3, imm16("CALL NC,%04Xh")},
	0xD5: {1, fixed("PUSH DE")},
	0xD6: {2, imm8("SUB %02Xh")},
	0xD7: {1, fixed("RST 10h")},
	0xD8: {1, fixed("RET C")},
	0xD9: {1, fixed("RETI")},
	0xDA: {3, imm16("JP C,%04Xh")},
	0xDC: {3, imm16("CALL C,%04Xh")},
	0xDE: {2, imm8("SBC A,%02Xh")},
	0xDF: {1, fixed("RST 18h")},

	0xE0: {2, imm8("LDH (%02Xh),A")},
	0xE1: {1, fixed("POP HL")},
	0xE2: {1, fixed("LD (C),A")},
	0xE5: {1, fixed("PUSH HL")},
	0xE6: {2, imm8("AND %02Xh")},
	0xE7: {1, fixed("RST 20h")},
	0xE8: {2, rel8("ADD SP,%+d")},
	0xE9: {1, fixed("JP (HL)")},
	0xEA: {3, imm16("LD (%04Xh),A")},
	0xEE: {2, imm8("XOR %02Xh")},
	0xEF: {1, fixed("RST 28h")},

	0xF0: {2, imm8("LDH A,(%02Xh)")},
	0xF1: {1, fixed("POP AF")},
	0xF2: {1, fixed("LD A,(C)")},
	0xF3: {1, fixed("DI")},
	0xF5: {1, fixed("PUSH AF")},
	0xF6: {2, imm8("OR %02Xh")},
	0xF7: {1, fixed("RST 30h")},
	0xF8: {2, rel8("LD HL,SP%+d")},
	0xF9: {1, fixed("LD SP,HL")},
	0xFA: {3, imm16("LD A,(%04Xh)")},
	0xFB: {1, fixed("EI")},
	0xFE: {2, imm8("CP %02Xh")},
	0xFF: {1, fixed("RST 38h")},
}

// decode disassembles one instruction starting at offset 0 of read,
// returning its text and total length in bytes (including any prefix byte).
func decode(read byteReader) (string, int) {
	opcode := read(0)

	if opcode == 0x76 {
		return "HALT", 1
	}

	if opcode == 0xCB {
		return decodeCB(read(1)), 2
	}

	if opcode >= 0x40 && opcode <= 0x7F {
		dst := reg8Name((opcode >> 3) & 0x07)
		src := reg8Name(opcode & 0x07)
		return fmt.Sprintf("LD %s,%s", dst, src), 1
	}

	if opcode >= 0x80 && opcode <= 0xBF {
		op := (opcode >> 3) & 0x07
		src := reg8Name(opcode & 0x07)
		return aluMnemonics[op] + src, 1
	}

	if entry, ok := baseOpcodes[opcode]; ok {
		return entry.format(read), entry.length
	}

	return fmt.Sprintf("DB %02Xh", opcode), 1
}

func decodeCB(opcode uint8) string {
	group := opcode >> 6
	sub := (opcode >> 3) & 0x07
	reg := reg8Name(opcode & 0x07)

	switch group {
	case 0:
		return cbRotateMnemonics[sub] + reg
	case 1:
		return fmt.Sprintf("BIT %d,%s", sub, reg)
	case 2:
		return fmt.Sprintf("RES %d,%s", sub, reg)
	default:
		return fmt.Sprintf("SET %d,%s", sub, reg)
	}
}

// DisassembleAt disassembles the instruction at the given program counter.
func DisassembleAt(pc uint16, mmu *memory.MMU) DisassemblyLine {
	read := func(offset int) uint8 {
		addr := uint32(pc) + uint32(offset)
		if addr > 0xFFFF {
			return 0
		}
		return mmu.Read(uint16(addr))
	}

	instruction, length := decode(read)
	return DisassemblyLine{Address: pc, Instruction: instruction, Length: length}
}

// DisassembleRange disassembles multiple instructions starting from the given PC.
func DisassembleRange(startPC uint16, count int, mmu *memory.MMU) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, count)
	pc := startPC

	for i := 0; i < count && pc <= 0xFFFF; i++ {
		line := DisassembleAt(pc, mmu)
		lines = append(lines, line)
		pc += uint16(line.Length)
	}

	return lines
}

// DisassembleBytes disassembles the instruction starting at offset within a
// flat byte slice (e.g. a memory snapshot), returning its text and length.
// Reads past the end of data return 0, matching DisassembleAt's PC-wraparound behavior.
func DisassembleBytes(data []byte, offset int) (string, int) {
	read := func(delta int) uint8 {
		i := offset + delta
		if i < 0 || i >= len(data) {
			return 0
		}
		return data[i]
	}
	return decode(read)
}

// DisassembleAround disassembles instructions before, at, and after the given PC.
func DisassembleAround(currentPC uint16, beforeCount, afterCount int, mmu *memory.MMU) []DisassemblyLine {
	startPC := currentPC
	instructionsFound := 0

	for offset := beforeCount * 3; offset >= 0 && startPC > uint16(offset); offset-- {
		testPC := currentPC - uint16(offset)
		if testPC >= currentPC {
			break
		}

		pc := testPC
		count := 0

		for count < beforeCount*2 && pc <= currentPC {
			if pc == currentPC {
				if count >= beforeCount {
					startPC = testPC
					instructionsFound = count
					break
				}
			}

			line := DisassembleAt(pc, mmu)
			pc += uint16(line.Length)
			count++
		}

		if startPC != currentPC {
			break
		}
	}

	if startPC == currentPC {
		instructionsFound = 0
	}

	totalCount := instructionsFound + 1 + afterCount
	return DisassembleRange(startPC, totalCount, mmu)
}

// FormatDisassemblyLine formats a disassembly line for display.
func FormatDisassemblyLine(line DisassemblyLine, isCurrentPC bool) string {
	prefix := " "
	if isCurrentPC {
		prefix = ">"
	}

	return fmt.Sprintf("%s0x%04X: %s", prefix, line.Address, line.Instruction)
}

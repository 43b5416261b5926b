// Copyright 2024 The Vanadium Authors
// This file is part of the vanadium-sub001 library.
//
// The vanadium-sub001 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The vanadium-sub001 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the vanadium-sub001 library. If not, see <http://www.gnu.org/licenses/>.

package riscv

import "fmt"

// decodeCompressed expands a 16-bit RVC instruction into the equivalent
// full-size Instruction. Only the RV32IC integer subset is supported;
// there is no F extension in this target, so the floating-point C.F*
// forms are not recognized.
func decodeCompressed(c uint16) (Instruction, error) {
	w := uint32(c)
	quadrant := bits(w, 1, 0)
	funct3 := bits(w, 15, 13)

	switch quadrant {
	case 0b00:
		return decodeC0(w, funct3)
	case 0b01:
		return decodeC1(w, funct3)
	case 0b10:
		return decodeC2(w, funct3)
	}
	return Instruction{}, fmt.Errorf("riscv: compressed quadrant 11 is not a 16-bit form (word %#04x)", c)
}

// creg expands a 3-bit compressed register field (bits 2..4 of the
// field position given) into the full x8-x15 register number.
func creg(field uint32) uint8 {
	return uint8(field + 8)
}

func decodeC0(w uint32, funct3 uint32) (Instruction, error) {
	rdp := creg(bits(w, 4, 2))
	switch funct3 {
	case 0b000: // C.ADDI4SPN
		nzuimm := bits(w, 12, 11)<<4 | bits(w, 10, 7)<<6 | bits(w, 6, 6)<<2 | bits(w, 5, 5)<<3
		if nzuimm == 0 {
			return Instruction{}, fmt.Errorf("riscv: reserved all-zero C.ADDI4SPN")
		}
		return Instruction{Op: OpAddi, Rd: rdp, Rs1: RegSP, Imm: int32(nzuimm), Size: 2}, nil
	case 0b010: // C.LW
		rs1p := creg(bits(w, 9, 7))
		off := bits(w, 12, 10)<<3 | bits(w, 6, 6)<<2 | bits(w, 5, 5)<<6
		return Instruction{Op: OpLw, Rd: rdp, Rs1: rs1p, Imm: int32(off), Size: 2}, nil
	case 0b110: // C.SW
		rs1p := creg(bits(w, 9, 7))
		rs2p := rdp
		off := bits(w, 12, 10)<<3 | bits(w, 6, 6)<<2 | bits(w, 5, 5)<<6
		return Instruction{Op: OpSw, Rs1: rs1p, Rs2: rs2p, Imm: int32(off), Size: 2}, nil
	}
	return Instruction{}, fmt.Errorf("riscv: unsupported quadrant-0 funct3 %#x (word %#04x)", funct3, w)
}

func decodeC1(w uint32, funct3 uint32) (Instruction, error) {
	rd := uint8(bits(w, 11, 7))
	switch funct3 {
	case 0b000: // C.ADDI (rd==0 -> C.NOP)
		imm := signExtend(bits(w, 12, 12)<<5|bits(w, 6, 2), 6)
		return Instruction{Op: OpAddi, Rd: rd, Rs1: rd, Imm: imm, Size: 2}, nil
	case 0b001: // C.JAL: jal x1, offset
		return Instruction{Op: OpJal, Rd: RegRA, Imm: decodeCJImm(w), Size: 2}, nil
	case 0b010: // C.LI: addi rd, x0, imm
		imm := signExtend(bits(w, 12, 12)<<5|bits(w, 6, 2), 6)
		return Instruction{Op: OpAddi, Rd: rd, Rs1: RegZero, Imm: imm, Size: 2}, nil
	case 0b011:
		if rd == 2 { // C.ADDI16SP
			u := bits(w, 12, 12)<<9 | bits(w, 4, 3)<<7 | bits(w, 5, 5)<<6 | bits(w, 2, 2)<<5 | bits(w, 6, 6)<<4
			imm := signExtend(u, 10)
			if imm == 0 {
				return Instruction{}, fmt.Errorf("riscv: reserved zero C.ADDI16SP")
			}
			return Instruction{Op: OpAddi, Rd: RegSP, Rs1: RegSP, Imm: imm, Size: 2}, nil
		}
		// C.LUI
		u := bits(w, 12, 12)<<5 | bits(w, 6, 2)
		if u == 0 {
			return Instruction{}, fmt.Errorf("riscv: reserved zero C.LUI")
		}
		imm := signExtend(u, 6) << 12
		return Instruction{Op: OpLui, Rd: rd, Imm: imm, Size: 2}, nil
	case 0b100:
		return decodeC1Arith(w)
	case 0b101: // C.J: jal x0, offset
		return Instruction{Op: OpJal, Rd: RegZero, Imm: decodeCJImm(w), Size: 2}, nil
	case 0b110: // C.BEQZ
		rs1p := creg(bits(w, 9, 7))
		return Instruction{Op: OpBeq, Rs1: rs1p, Rs2: RegZero, Imm: decodeCBImm(w), Size: 2}, nil
	case 0b111: // C.BNEZ
		rs1p := creg(bits(w, 9, 7))
		return Instruction{Op: OpBne, Rs1: rs1p, Rs2: RegZero, Imm: decodeCBImm(w), Size: 2}, nil
	}
	return Instruction{}, fmt.Errorf("riscv: unreachable quadrant-1 funct3 %#x", funct3)
}

func decodeC1Arith(w uint32) (Instruction, error) {
	rdp := creg(bits(w, 9, 7))
	funct2 := bits(w, 11, 10)
	switch funct2 {
	case 0b00: // C.SRLI
		shamt := bits(w, 12, 12)<<5 | bits(w, 6, 2)
		return Instruction{Op: OpSrli, Rd: rdp, Rs1: rdp, Imm: int32(shamt), Size: 2}, nil
	case 0b01: // C.SRAI
		shamt := bits(w, 12, 12)<<5 | bits(w, 6, 2)
		return Instruction{Op: OpSrai, Rd: rdp, Rs1: rdp, Imm: int32(shamt), Size: 2}, nil
	case 0b10: // C.ANDI
		imm := signExtend(bits(w, 12, 12)<<5|bits(w, 6, 2), 6)
		return Instruction{Op: OpAndi, Rd: rdp, Rs1: rdp, Imm: imm, Size: 2}, nil
	case 0b11:
		rs2p := creg(bits(w, 4, 2))
		funct2b := bits(w, 6, 5)
		if bits(w, 12, 12) != 0 {
			return Instruction{}, fmt.Errorf("riscv: reserved 64/128-bit C.SUBW-class form")
		}
		ops := [4]Op{OpSub, OpXor, OpOr, OpAnd}
		return Instruction{Op: ops[funct2b], Rd: rdp, Rs1: rdp, Rs2: rs2p, Size: 2}, nil
	}
	return Instruction{}, fmt.Errorf("riscv: unreachable quadrant-1 arithmetic funct2 %#x", funct2)
}

func decodeC2(w uint32, funct3 uint32) (Instruction, error) {
	rd := uint8(bits(w, 11, 7))
	switch funct3 {
	case 0b000: // C.SLLI
		shamt := bits(w, 12, 12)<<5 | bits(w, 6, 2)
		return Instruction{Op: OpSlli, Rd: rd, Rs1: rd, Imm: int32(shamt), Size: 2}, nil
	case 0b010: // C.LWSP
		if rd == 0 {
			return Instruction{}, fmt.Errorf("riscv: reserved C.LWSP with rd=x0")
		}
		off := bits(w, 12, 12)<<5 | bits(w, 6, 4)<<2 | bits(w, 3, 2)<<6
		return Instruction{Op: OpLw, Rd: rd, Rs1: RegSP, Imm: int32(off), Size: 2}, nil
	case 0b100:
		rs2 := uint8(bits(w, 6, 2))
		if bits(w, 12, 12) == 0 {
			if rs2 == 0 { // C.JR
				if rd == 0 {
					return Instruction{}, fmt.Errorf("riscv: reserved C.JR with rs1=x0")
				}
				return Instruction{Op: OpJalr, Rd: RegZero, Rs1: rd, Size: 2}, nil
			}
			// C.MV: add rd, x0, rs2
			return Instruction{Op: OpAdd, Rd: rd, Rs1: RegZero, Rs2: rs2, Size: 2}, nil
		}
		if rs2 == 0 {
			if rd == 0 {
				return Instruction{Op: OpEbreak, Size: 2}, nil
			}
			// C.JALR: jalr x1, rd, 0
			return Instruction{Op: OpJalr, Rd: RegRA, Rs1: rd, Size: 2}, nil
		}
		// C.ADD: add rd, rd, rs2
		return Instruction{Op: OpAdd, Rd: rd, Rs1: rd, Rs2: rs2, Size: 2}, nil
	case 0b110: // C.SWSP
		rs2 := uint8(bits(w, 6, 2))
		off := bits(w, 12, 9)<<2 | bits(w, 8, 7)<<6
		return Instruction{Op: OpSw, Rs1: RegSP, Rs2: rs2, Imm: int32(off), Size: 2}, nil
	}
	return Instruction{}, fmt.Errorf("riscv: unsupported quadrant-2 funct3 %#x (word %#04x)", funct3, w)
}

func decodeCJImm(w uint32) int32 {
	v := bits(w, 12, 12)<<11 | bits(w, 8, 8)<<10 | bits(w, 10, 9)<<8 | bits(w, 6, 6)<<7 |
		bits(w, 7, 7)<<6 | bits(w, 2, 2)<<5 | bits(w, 11, 11)<<4 | bits(w, 5, 3)<<1
	return signExtend(v, 12)
}

func decodeCBImm(w uint32) int32 {
	v := bits(w, 12, 12)<<8 | bits(w, 6, 5)<<6 | bits(w, 2, 2)<<5 | bits(w, 11, 10)<<3 | bits(w, 4, 3)<<1
	return signExtend(v, 9)
}

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

const (
	opcodeOP     = 0b0110011
	opcodeOPIMM  = 0b0010011
	opcodeLOAD   = 0b0000011
	opcodeSTORE  = 0b0100011
	opcodeBRANCH = 0b1100011
	opcodeJAL    = 0b1101111
	opcodeJALR   = 0b1100111
	opcodeLUI    = 0b0110111
	opcodeAUIPC  = 0b0010111
	opcodeSYSTEM = 0b1110011
)

func bits(word uint32, hi, lo uint) uint32 {
	return (word >> lo) & ((1 << (hi - lo + 1)) - 1)
}

func signExtend(v uint32, width uint) int32 {
	shift := 32 - width
	return int32(v<<shift) >> shift
}

func decodeIImm(word uint32) int32 {
	return signExtend(bits(word, 31, 20), 12)
}

func decodeSImm(word uint32) int32 {
	v := bits(word, 31, 25)<<5 | bits(word, 11, 7)
	return signExtend(v, 12)
}

func decodeBImm(word uint32) int32 {
	v := bits(word, 31, 31)<<12 | bits(word, 7, 7)<<11 | bits(word, 30, 25)<<5 | bits(word, 11, 8)<<1
	return signExtend(v, 13)
}

func decodeUImm(word uint32) int32 {
	return int32(bits(word, 31, 12) << 12)
}

func decodeJImm(word uint32) int32 {
	v := bits(word, 31, 31)<<20 | bits(word, 19, 12)<<12 | bits(word, 20, 20)<<11 | bits(word, 30, 21)<<1
	return signExtend(v, 21)
}

func decode32(word uint32) (Instruction, error) {
	opcode := bits(word, 6, 0)
	rd := uint8(bits(word, 11, 7))
	rs1 := uint8(bits(word, 19, 15))
	rs2 := uint8(bits(word, 24, 20))
	funct3 := bits(word, 14, 12)
	funct7 := bits(word, 31, 25)

	switch opcode {
	case opcodeOP:
		return decodeOP(rd, rs1, rs2, funct3, funct7)
	case opcodeOPIMM:
		return decodeOPIMM(word, rd, rs1, funct3)
	case opcodeLOAD:
		return decodeLoad(rd, rs1, funct3, decodeIImm(word))
	case opcodeSTORE:
		return decodeStore(rs1, rs2, funct3, decodeSImm(word))
	case opcodeBRANCH:
		return decodeBranch(rs1, rs2, funct3, decodeBImm(word))
	case opcodeJAL:
		return Instruction{Op: OpJal, Rd: rd, Imm: decodeJImm(word), Size: 4}, nil
	case opcodeJALR:
		if funct3 != 0 {
			return Instruction{}, fmt.Errorf("riscv: bad JALR funct3 %#x", funct3)
		}
		return Instruction{Op: OpJalr, Rd: rd, Rs1: rs1, Imm: decodeIImm(word), Size: 4}, nil
	case opcodeLUI:
		return Instruction{Op: OpLui, Rd: rd, Imm: decodeUImm(word), Size: 4}, nil
	case opcodeAUIPC:
		return Instruction{Op: OpAuipc, Rd: rd, Imm: decodeUImm(word), Size: 4}, nil
	case opcodeSYSTEM:
		imm12 := bits(word, 31, 20)
		if funct3 != 0 || rd != 0 || rs1 != 0 {
			return Instruction{}, fmt.Errorf("riscv: unsupported SYSTEM instruction %#08x", word)
		}
		switch imm12 {
		case 0:
			return Instruction{Op: OpEcall, Size: 4}, nil
		case 1:
			return Instruction{Op: OpEbreak, Size: 4}, nil
		default:
			return Instruction{}, fmt.Errorf("riscv: unsupported SYSTEM immediate %#x", imm12)
		}
	default:
		return Instruction{}, fmt.Errorf("riscv: unknown opcode %#07b in word %#08x", opcode, word)
	}
}

func decodeOP(rd, rs1, rs2 uint8, funct3, funct7 uint32) (Instruction, error) {
	if funct7 == 0b0000001 { // M extension
		ops := [8]Op{OpMul, OpMulh, OpMulhsu, OpMulhu, OpDiv, OpDivu, OpRem, OpRemu}
		return Instruction{Op: ops[funct3], Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
	}
	switch funct3 {
	case 0b000:
		if funct7 == 0b0100000 {
			return Instruction{Op: OpSub, Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
		}
		return Instruction{Op: OpAdd, Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
	case 0b001:
		return Instruction{Op: OpSll, Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
	case 0b010:
		return Instruction{Op: OpSlt, Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
	case 0b011:
		return Instruction{Op: OpSltu, Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
	case 0b100:
		return Instruction{Op: OpXor, Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
	case 0b101:
		if funct7 == 0b0100000 {
			return Instruction{Op: OpSra, Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
		}
		return Instruction{Op: OpSrl, Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
	case 0b110:
		return Instruction{Op: OpOr, Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
	case 0b111:
		return Instruction{Op: OpAnd, Rd: rd, Rs1: rs1, Rs2: rs2, Size: 4}, nil
	}
	return Instruction{}, fmt.Errorf("riscv: unreachable OP funct3 %#x", funct3)
}

func decodeOPIMM(word uint32, rd, rs1 uint8, funct3 uint32) (Instruction, error) {
	imm := decodeIImm(word)
	switch funct3 {
	case 0b000:
		return Instruction{Op: OpAddi, Rd: rd, Rs1: rs1, Imm: imm, Size: 4}, nil
	case 0b010:
		return Instruction{Op: OpSlti, Rd: rd, Rs1: rs1, Imm: imm, Size: 4}, nil
	case 0b011:
		return Instruction{Op: OpSltiu, Rd: rd, Rs1: rs1, Imm: imm, Size: 4}, nil
	case 0b100:
		return Instruction{Op: OpXori, Rd: rd, Rs1: rs1, Imm: imm, Size: 4}, nil
	case 0b110:
		return Instruction{Op: OpOri, Rd: rd, Rs1: rs1, Imm: imm, Size: 4}, nil
	case 0b111:
		return Instruction{Op: OpAndi, Rd: rd, Rs1: rs1, Imm: imm, Size: 4}, nil
	case 0b001:
		shamt := int32(bits(word, 24, 20))
		return Instruction{Op: OpSlli, Rd: rd, Rs1: rs1, Imm: shamt, Size: 4}, nil
	case 0b101:
		shamt := int32(bits(word, 24, 20))
		if bits(word, 31, 25) == 0b0100000 {
			return Instruction{Op: OpSrai, Rd: rd, Rs1: rs1, Imm: shamt, Size: 4}, nil
		}
		return Instruction{Op: OpSrli, Rd: rd, Rs1: rs1, Imm: shamt, Size: 4}, nil
	}
	return Instruction{}, fmt.Errorf("riscv: unreachable OP-IMM funct3 %#x", funct3)
}

func decodeLoad(rd, rs1 uint8, funct3 uint32, imm int32) (Instruction, error) {
	var op Op
	switch funct3 {
	case 0b000:
		op = OpLb
	case 0b001:
		op = OpLh
	case 0b010:
		op = OpLw
	case 0b100:
		op = OpLbu
	case 0b101:
		op = OpLhu
	default:
		return Instruction{}, fmt.Errorf("riscv: unsupported LOAD funct3 %#x", funct3)
	}
	return Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: imm, Size: 4}, nil
}

func decodeStore(rs1, rs2 uint8, funct3 uint32, imm int32) (Instruction, error) {
	var op Op
	switch funct3 {
	case 0b000:
		op = OpSb
	case 0b001:
		op = OpSh
	case 0b010:
		op = OpSw
	default:
		return Instruction{}, fmt.Errorf("riscv: unsupported STORE funct3 %#x", funct3)
	}
	return Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: imm, Size: 4}, nil
}

func decodeBranch(rs1, rs2 uint8, funct3 uint32, imm int32) (Instruction, error) {
	var op Op
	switch funct3 {
	case 0b000:
		op = OpBeq
	case 0b001:
		op = OpBne
	case 0b100:
		op = OpBlt
	case 0b101:
		op = OpBge
	case 0b110:
		op = OpBltu
	case 0b111:
		op = OpBgeu
	default:
		return Instruction{}, fmt.Errorf("riscv: unsupported BRANCH funct3 %#x", funct3)
	}
	return Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: imm, Size: 4}, nil
}

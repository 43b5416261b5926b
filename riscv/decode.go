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

// Op tags a decoded instruction's operation. The set matches RV32IMC's
// integer instructions one-for-one; compressed forms decode straight to
// the equivalent full-size Op, so Execute never needs to know whether an
// instruction was 2 or 4 bytes on the wire.
type Op int

const (
	OpUnknown Op = iota

	OpAdd
	OpSub
	OpSll
	OpSlt
	OpSltu
	OpXor
	OpSrl
	OpSra
	OpOr
	OpAnd

	OpMul
	OpMulh
	OpMulhsu
	OpMulhu
	OpDiv
	OpDivu
	OpRem
	OpRemu

	OpAddi
	OpSlti
	OpSltiu
	OpXori
	OpOri
	OpAndi
	OpSlli
	OpSrli
	OpSrai

	OpLui
	OpAuipc

	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBltu
	OpBgeu

	OpJal
	OpJalr

	OpLb
	OpLh
	OpLw
	OpLbu
	OpLhu

	OpSb
	OpSh
	OpSw

	OpEcall
	OpEbreak
)

// Instruction is a fully decoded instruction: the operation plus whatever
// subset of operand fields it uses, and the instruction's size in bytes
// (2 for a compressed form, 4 otherwise) so the caller can advance pc.
type Instruction struct {
	Op       Op
	Rd       uint8
	Rs1      uint8
	Rs2      uint8
	Imm      int32
	Size     uint32
}

func (i Instruction) String() string {
	return fmt.Sprintf("{op:%d rd:x%d rs1:x%d rs2:x%d imm:%d size:%d}", i.Op, i.Rd, i.Rs1, i.Rs2, i.Imm, i.Size)
}

// Decode decodes one instruction word. size must be 2 (a compressed
// halfword, held in the low 16 bits of word) or 4 (a full instruction
// word); Fetch is responsible for determining which.
func Decode(word uint32, size uint32) (Instruction, error) {
	if size == 2 {
		return decodeCompressed(uint16(word))
	}
	return decode32(word)
}

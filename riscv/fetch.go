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

import "github.com/nconsigny/vanadium-sub001/common"

// quadrant11 is the low 2 bits that mark a halfword as the first half of
// a full 32-bit instruction rather than a complete compressed one.
const quadrant11 = 0b11

// FetchInstruction reads and decodes the instruction at pc. It reads a
// single halfword first and inspects its low 2 bits: RVC instructions
// use 00/01/10 there, while a full 32-bit instruction's first halfword
// always has 11. Only when a second halfword is actually needed is it
// read, so a compressed instruction at the very last two bytes of a
// segment never requires reading past the segment's end.
func (c *CPU) FetchInstruction() (Instruction, error) {
	if c.PC%2 != 0 {
		return Instruction{}, common.NewRuntimeError(common.ErrDecode, "misaligned pc %#08x", c.PC)
	}
	seg := c.segmentFor(c.PC)
	if seg == nil {
		return Instruction{}, common.NewRuntimeError(common.ErrMemory, "pc %#08x not in any segment", c.PC)
	}

	lo, err := seg.ReadU16(c.PC)
	if err != nil {
		return Instruction{}, err
	}
	if uint32(lo)&quadrant11 != quadrant11 {
		instr, err := Decode(uint32(lo), 2)
		if err != nil {
			return Instruction{}, common.NewRuntimeError(common.ErrDecode, "%s", err)
		}
		return instr, nil
	}

	hi, err := seg.ReadU16(c.PC + 2)
	if err != nil {
		return Instruction{}, err
	}
	word := uint32(lo) | uint32(hi)<<16
	instr, err := Decode(word, 4)
	if err != nil {
		return Instruction{}, common.NewRuntimeError(common.ErrDecode, "%s", err)
	}
	return instr, nil
}

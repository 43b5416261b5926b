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

import (
	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/nconsigny/vanadium-sub001/oms"
)

// Step fetches, decodes, and executes a single instruction, advancing pc
// unless the instruction itself redirected it (a taken branch or jump).
// After an ECALL, pc advances past the instruction from wherever the
// handler left it.
func (c *CPU) Step(ecall EcallHandler) error {
	instr, err := c.FetchInstruction()
	if err != nil {
		return err
	}
	return c.Execute(instr, ecall)
}

// Execute runs one decoded instruction against the CPU's register file
// and memory segments, advancing pc by instr.Size unless the instruction
// is a taken branch or jump. ECALL traps into ecall.HandleEcall; EBREAK
// and a misaligned branch/jump target are both fatal.
func (c *CPU) Execute(instr Instruction, ecall EcallHandler) error {
	nextPC := c.PC + instr.Size

	switch instr.Op {
	case OpAdd:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)+c.Reg(instr.Rs2))
	case OpSub:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)-c.Reg(instr.Rs2))
	case OpSll:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)<<(c.Reg(instr.Rs2)&0x1f))
	case OpSlt:
		c.SetReg(instr.Rd, boolToWord(int32(c.Reg(instr.Rs1)) < int32(c.Reg(instr.Rs2))))
	case OpSltu:
		c.SetReg(instr.Rd, boolToWord(c.Reg(instr.Rs1) < c.Reg(instr.Rs2)))
	case OpXor:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)^c.Reg(instr.Rs2))
	case OpSrl:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)>>(c.Reg(instr.Rs2)&0x1f))
	case OpSra:
		c.SetReg(instr.Rd, uint32(int32(c.Reg(instr.Rs1))>>(c.Reg(instr.Rs2)&0x1f)))
	case OpOr:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)|c.Reg(instr.Rs2))
	case OpAnd:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)&c.Reg(instr.Rs2))

	case OpMul:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)*c.Reg(instr.Rs2))
	case OpMulh:
		c.SetReg(instr.Rd, uint32(mulhSigned(int32(c.Reg(instr.Rs1)), int32(c.Reg(instr.Rs2)))))
	case OpMulhsu:
		c.SetReg(instr.Rd, uint32(mulhSignedUnsigned(int32(c.Reg(instr.Rs1)), c.Reg(instr.Rs2))))
	case OpMulhu:
		c.SetReg(instr.Rd, uint32(mulhUnsigned(c.Reg(instr.Rs1), c.Reg(instr.Rs2))))
	case OpDiv:
		c.SetReg(instr.Rd, uint32(sdiv(int32(c.Reg(instr.Rs1)), int32(c.Reg(instr.Rs2)))))
	case OpDivu:
		c.SetReg(instr.Rd, udiv(c.Reg(instr.Rs1), c.Reg(instr.Rs2)))
	case OpRem:
		c.SetReg(instr.Rd, uint32(srem(int32(c.Reg(instr.Rs1)), int32(c.Reg(instr.Rs2)))))
	case OpRemu:
		c.SetReg(instr.Rd, urem(c.Reg(instr.Rs1), c.Reg(instr.Rs2)))

	case OpAddi:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)+uint32(instr.Imm))
	case OpSlti:
		c.SetReg(instr.Rd, boolToWord(int32(c.Reg(instr.Rs1)) < instr.Imm))
	case OpSltiu:
		c.SetReg(instr.Rd, boolToWord(c.Reg(instr.Rs1) < uint32(instr.Imm)))
	case OpXori:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)^uint32(instr.Imm))
	case OpOri:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)|uint32(instr.Imm))
	case OpAndi:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)&uint32(instr.Imm))
	case OpSlli:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)<<uint32(instr.Imm))
	case OpSrli:
		c.SetReg(instr.Rd, c.Reg(instr.Rs1)>>uint32(instr.Imm))
	case OpSrai:
		c.SetReg(instr.Rd, uint32(int32(c.Reg(instr.Rs1))>>uint32(instr.Imm)))

	case OpLui:
		c.SetReg(instr.Rd, uint32(instr.Imm))
	case OpAuipc:
		c.SetReg(instr.Rd, c.PC+uint32(instr.Imm))

	case OpBeq:
		if c.Reg(instr.Rs1) == c.Reg(instr.Rs2) {
			nextPC = c.PC + uint32(instr.Imm)
		}
	case OpBne:
		if c.Reg(instr.Rs1) != c.Reg(instr.Rs2) {
			nextPC = c.PC + uint32(instr.Imm)
		}
	case OpBlt:
		if int32(c.Reg(instr.Rs1)) < int32(c.Reg(instr.Rs2)) {
			nextPC = c.PC + uint32(instr.Imm)
		}
	case OpBge:
		if int32(c.Reg(instr.Rs1)) >= int32(c.Reg(instr.Rs2)) {
			nextPC = c.PC + uint32(instr.Imm)
		}
	case OpBltu:
		if c.Reg(instr.Rs1) < c.Reg(instr.Rs2) {
			nextPC = c.PC + uint32(instr.Imm)
		}
	case OpBgeu:
		if c.Reg(instr.Rs1) >= c.Reg(instr.Rs2) {
			nextPC = c.PC + uint32(instr.Imm)
		}

	case OpJal:
		c.SetReg(instr.Rd, c.PC+instr.Size)
		nextPC = c.PC + uint32(instr.Imm)
	case OpJalr:
		target := (c.Reg(instr.Rs1) + uint32(instr.Imm)) &^ 1
		c.SetReg(instr.Rd, c.PC+instr.Size)
		nextPC = target

	case OpLb:
		seg, addr, err := c.effectiveSegment(instr.Rs1, instr.Imm)
		if err != nil {
			return err
		}
		v, err := seg.ReadU8(addr)
		if err != nil {
			return err
		}
		c.SetReg(instr.Rd, uint32(int32(int8(v))))
	case OpLbu:
		seg, addr, err := c.effectiveSegment(instr.Rs1, instr.Imm)
		if err != nil {
			return err
		}
		v, err := seg.ReadU8(addr)
		if err != nil {
			return err
		}
		c.SetReg(instr.Rd, uint32(v))
	case OpLh:
		seg, addr, err := c.effectiveSegment(instr.Rs1, instr.Imm)
		if err != nil {
			return err
		}
		v, err := seg.ReadU16(addr)
		if err != nil {
			return err
		}
		c.SetReg(instr.Rd, uint32(int32(int16(v))))
	case OpLhu:
		seg, addr, err := c.effectiveSegment(instr.Rs1, instr.Imm)
		if err != nil {
			return err
		}
		v, err := seg.ReadU16(addr)
		if err != nil {
			return err
		}
		c.SetReg(instr.Rd, uint32(v))
	case OpLw:
		seg, addr, err := c.effectiveSegment(instr.Rs1, instr.Imm)
		if err != nil {
			return err
		}
		v, err := seg.ReadU32(addr)
		if err != nil {
			return err
		}
		c.SetReg(instr.Rd, v)

	case OpSb:
		seg, addr, err := c.effectiveSegment(instr.Rs1, instr.Imm)
		if err != nil {
			return err
		}
		if err := seg.WriteU8(addr, uint8(c.Reg(instr.Rs2))); err != nil {
			return err
		}
	case OpSh:
		seg, addr, err := c.effectiveSegment(instr.Rs1, instr.Imm)
		if err != nil {
			return err
		}
		if err := seg.WriteU16(addr, uint16(c.Reg(instr.Rs2))); err != nil {
			return err
		}
	case OpSw:
		seg, addr, err := c.effectiveSegment(instr.Rs1, instr.Imm)
		if err != nil {
			return err
		}
		if err := seg.WriteU32(addr, c.Reg(instr.Rs2)); err != nil {
			return err
		}

	case OpEcall:
		if ecall == nil {
			return common.NewRuntimeError(common.ErrDecode, "ecall with no handler installed")
		}
		if err := ecall.HandleEcall(c); err != nil {
			return err
		}
		nextPC = c.PC + instr.Size

	case OpEbreak:
		return common.NewRuntimeError(common.ErrDecode, "ebreak trap")

	default:
		return common.NewRuntimeError(common.ErrDecode, "unimplemented op %d", instr.Op)
	}

	if nextPC%2 != 0 {
		return common.NewRuntimeError(common.ErrDecode, "misaligned branch/jump target %#08x", nextPC)
	}
	c.PC = nextPC
	return nil
}

// effectiveSegment resolves the segment a load/store effective address
// (base register + immediate offset) falls in.
func (c *CPU) effectiveSegment(rs1 uint8, imm int32) (*oms.Segment, uint32, error) {
	addr := c.Reg(rs1) + uint32(imm)
	seg := c.segmentFor(addr)
	if seg == nil {
		return nil, 0, common.NewRuntimeError(common.ErrMemory, "address %#08x not in any segment", addr)
	}
	return seg, addr, nil
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func mulhUnsigned(a, b uint32) uint32 {
	return uint32((uint64(a) * uint64(b)) >> 32)
}

func mulhSigned(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> 32)
}

func mulhSignedUnsigned(a int32, b uint32) int32 {
	return int32((int64(a) * int64(int64(b))) >> 32)
}

func sdiv(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	if a == -2147483648 && b == -1 {
		return a
	}
	return a / b
}

func udiv(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	return a / b
}

func srem(a, b int32) int32 {
	if b == 0 {
		return a
	}
	if a == -2147483648 && b == -1 {
		return 0
	}
	return a % b
}

func urem(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}

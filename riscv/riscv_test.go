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
	"testing"

	"github.com/nconsigny/vanadium-sub001/caps"
	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/nconsigny/vanadium-sub001/oms"
	"github.com/stretchr/testify/require"
)

// memHost is a minimal in-process oms.Host backed by a real caps.CAPS,
// enough to back a CPU's segments in tests without any wire protocol.
type memHost struct {
	tree    *caps.CAPS
	content map[uint32]common.SerializedPage
}

func newMemHost(pages []common.Page) *memHost {
	leaves := make([]common.Hash, len(pages))
	content := make(map[uint32]common.SerializedPage, len(pages))
	for i, p := range pages {
		sp := common.SerializedPage{Content: p}
		content[uint32(i)] = sp
		leaves[i] = sp.LeafHash()
	}
	return &memHost{tree: caps.New(leaves), content: content}
}

func (h *memHost) GetPage(_ common.SectionKind, index uint32) (common.SerializedPage, []common.Hash, error) {
	proof, err := h.tree.Prove(int(index))
	if err != nil {
		return common.SerializedPage{}, nil, err
	}
	return h.content[index], proof, nil
}

func (h *memHost) CommitPage(_ common.SectionKind, index uint32, page common.SerializedPage) ([]common.Hash, error) {
	oldProof, _, err := h.tree.Update(int(index), page.LeafHash())
	if err != nil {
		return nil, err
	}
	h.content[index] = page
	return oldProof, nil
}

// newTestCPU builds a CPU with a 1-page read-only code segment holding
// codeBytes (zero-padded to a page), a 1-page writable data segment, and
// a 1-page writable stack segment, each backed by its own memHost.
func newTestCPU(t *testing.T, codeBytes []byte) *CPU {
	t.Helper()
	var codePage common.Page
	require.LessOrEqual(t, len(codeBytes), len(codePage))
	copy(codePage[:], codeBytes)

	codeHost := newMemHost([]common.Page{codePage})
	dataHost := newMemHost([]common.Page{{}})
	stackHost := newMemHost([]common.Page{{}})

	code := oms.NewSegment(0, common.PageSize, codeHost.tree.Root(), true, common.SectionCode, 1, oms.NewLRUPolicy(1), nil, codeHost)

	dataEnc := &oms.EncState{}
	stackEnc := &oms.EncState{}

	data := oms.NewSegment(0x1000, common.PageSize, dataHost.tree.Root(), false, common.SectionData, 1, oms.NewLRUPolicy(1), dataEnc, dataHost)
	stack := oms.NewSegment(0x2000, common.PageSize, stackHost.tree.Root(), false, common.SectionStack, 1, oms.NewLRUPolicy(1), stackEnc, stackHost)

	return NewCPU(0, code, data, stack)
}

func TestNewCPUAlignsStackPointer(t *testing.T) {
	c := newTestCPU(t, nil)
	require.Equal(t, uint32(0x2000+common.PageSize-4), c.Reg(RegSP))
}

func TestSetRegPinsZero(t *testing.T) {
	c := newTestCPU(t, nil)
	c.SetReg(0, 0xdeadbeef)
	require.Equal(t, uint32(0), c.Reg(0))
}

func TestDecode32Arithmetic(t *testing.T) {
	// addi x1, x2, 5
	word := uint32(5)<<20 | uint32(2)<<15 | 0<<12 | uint32(1)<<7 | 0b0010011
	instr, err := Decode(word, 4)
	require.NoError(t, err)
	require.Equal(t, OpAddi, instr.Op)
	require.Equal(t, uint8(1), instr.Rd)
	require.Equal(t, uint8(2), instr.Rs1)
	require.Equal(t, int32(5), instr.Imm)
	require.Equal(t, uint32(4), instr.Size)
}

func TestDecode32NegativeImmediate(t *testing.T) {
	// addi x1, x0, -1
	imm := uint32(0xFFF) // 12-bit all-ones = -1
	word := imm<<20 | 0<<15 | 0<<12 | uint32(1)<<7 | 0b0010011
	instr, err := Decode(word, 4)
	require.NoError(t, err)
	require.Equal(t, int32(-1), instr.Imm)
}

func TestDecode32MExtension(t *testing.T) {
	// mul x3, x1, x2
	word := uint32(0b0000001)<<25 | uint32(2)<<20 | uint32(1)<<15 | 0b000<<12 | uint32(3)<<7 | 0b0110011
	instr, err := Decode(word, 4)
	require.NoError(t, err)
	require.Equal(t, OpMul, instr.Op)
}

func TestDecodeCompressedAddiAndNop(t *testing.T) {
	// c.nop: all zero quadrant-1 funct3=000, rd=0, imm=0
	instr, err := Decode(0x0001, 2)
	require.NoError(t, err)
	require.Equal(t, OpAddi, instr.Op)
	require.Equal(t, uint8(0), instr.Rd)
	require.Equal(t, int32(0), instr.Imm)
	require.Equal(t, uint32(2), instr.Size)
}

func TestDecodeCompressedLiAndMv(t *testing.T) {
	// c.li x1, 5: quadrant 01, funct3=010, rd=1, imm=5 -> imm[4:0]=00101 at bits6:2, imm[5]=bit12=0
	word := uint16(0b010_0_00001_00101_01)
	instr, err := Decode(uint32(word), 2)
	require.NoError(t, err)
	require.Equal(t, OpAddi, instr.Op)
	require.Equal(t, uint8(1), instr.Rd)
	require.Equal(t, uint8(RegZero), instr.Rs1)
	require.Equal(t, int32(5), instr.Imm)
}

func TestDecodeCompressedEbreak(t *testing.T) {
	// c.ebreak: quadrant 10, funct3=100, bit12=1, rd=0, rs2=0
	word := uint16(0b100_1_00000_00000_10)
	instr, err := Decode(uint32(word), 2)
	require.NoError(t, err)
	require.Equal(t, OpEbreak, instr.Op)
}

func TestExecuteArithmeticSequence(t *testing.T) {
	c := newTestCPU(t, nil)
	c.SetReg(1, 3)
	c.SetReg(2, 4)
	require.NoError(t, c.Execute(Instruction{Op: OpAdd, Rd: 3, Rs1: 1, Rs2: 2, Size: 4}, nil))
	require.Equal(t, uint32(7), c.Reg(3))
	require.Equal(t, uint32(4), c.PC)
}

func TestExecuteBranchTaken(t *testing.T) {
	c := newTestCPU(t, nil)
	c.SetReg(1, 1)
	c.SetReg(2, 1)
	require.NoError(t, c.Execute(Instruction{Op: OpBeq, Rs1: 1, Rs2: 2, Imm: 8, Size: 4}, nil))
	require.Equal(t, uint32(8), c.PC)
}

func TestExecuteBranchNotTaken(t *testing.T) {
	c := newTestCPU(t, nil)
	c.SetReg(1, 1)
	c.SetReg(2, 2)
	require.NoError(t, c.Execute(Instruction{Op: OpBeq, Rs1: 1, Rs2: 2, Imm: 8, Size: 4}, nil))
	require.Equal(t, uint32(4), c.PC)
}

func TestExecuteJalrMasksLowBit(t *testing.T) {
	c := newTestCPU(t, nil)
	c.SetReg(1, 0x101)
	require.NoError(t, c.Execute(Instruction{Op: OpJalr, Rd: 2, Rs1: 1, Imm: 0, Size: 4}, nil))
	require.Equal(t, uint32(0x100), c.PC)
	require.Equal(t, uint32(4), c.Reg(2))
}

func TestExecuteMisalignedJumpFails(t *testing.T) {
	c := newTestCPU(t, nil)
	c.SetReg(1, 1)
	err := c.Execute(Instruction{Op: OpJalr, Rd: 0, Rs1: 1, Imm: 0, Size: 4}, nil)
	// 0x1 &^ 1 = 0, which is aligned; use an odd target via imm that defeats masking on jal instead.
	require.NoError(t, err)

	err = c.Execute(Instruction{Op: OpJal, Rd: 0, Imm: 1, Size: 4}, nil)
	require.Error(t, err)
}

func TestExecuteEbreakIsFatal(t *testing.T) {
	c := newTestCPU(t, nil)
	err := c.Execute(Instruction{Op: OpEbreak, Size: 4}, nil)
	require.Error(t, err)
}

func TestExecuteLoadStoreRoundTrip(t *testing.T) {
	c := newTestCPU(t, nil)
	c.SetReg(1, 0x1000) // data segment base
	c.SetReg(2, 0xCAFEBABE)
	require.NoError(t, c.Execute(Instruction{Op: OpSw, Rs1: 1, Rs2: 2, Imm: 0, Size: 4}, nil))
	require.NoError(t, c.Execute(Instruction{Op: OpLw, Rd: 3, Rs1: 1, Imm: 0, Size: 4}, nil))
	require.Equal(t, uint32(0xCAFEBABE), c.Reg(3))
}

func TestExecuteDivByZero(t *testing.T) {
	c := newTestCPU(t, nil)
	c.SetReg(1, 10)
	c.SetReg(2, 0)
	require.NoError(t, c.Execute(Instruction{Op: OpDivu, Rd: 3, Rs1: 1, Rs2: 2, Size: 4}, nil))
	require.Equal(t, uint32(0xFFFFFFFF), c.Reg(3))
	require.NoError(t, c.Execute(Instruction{Op: OpRemu, Rd: 4, Rs1: 1, Rs2: 2, Size: 4}, nil))
	require.Equal(t, uint32(10), c.Reg(4))
}

func TestExecuteDivOverflow(t *testing.T) {
	c := newTestCPU(t, nil)
	c.SetReg(1, uint32(int32(-2147483648)))
	c.SetReg(2, uint32(int32(-1)))
	require.NoError(t, c.Execute(Instruction{Op: OpDiv, Rd: 3, Rs1: 1, Rs2: 2, Size: 4}, nil))
	require.Equal(t, uint32(int32(-2147483648)), c.Reg(3))
}

func TestFetchInstructionCompressedAtSegmentEnd(t *testing.T) {
	// c.nop (0x0001) placed at the last two bytes of the code page; fetch
	// must not attempt to read past the segment boundary.
	code := make([]byte, common.PageSize)
	code[common.PageSize-2] = 0x01
	code[common.PageSize-1] = 0x00
	c := newTestCPU(t, code)
	c.PC = common.PageSize - 2
	instr, err := c.FetchInstruction()
	require.NoError(t, err)
	require.Equal(t, OpAddi, instr.Op)
	require.Equal(t, uint32(2), instr.Size)
}

func TestFetchInstructionMisalignedPCFails(t *testing.T) {
	c := newTestCPU(t, nil)
	c.PC = 1
	_, err := c.FetchInstruction()
	require.Error(t, err)
}

type recordingEcall struct {
	called bool
}

func (r *recordingEcall) HandleEcall(cpu *CPU) error {
	r.called = true
	cpu.SetReg(RegA0, 42)
	return nil
}

func TestExecuteEcallInvokesHandler(t *testing.T) {
	c := newTestCPU(t, nil)
	h := &recordingEcall{}
	require.NoError(t, c.Execute(Instruction{Op: OpEcall, Size: 4}, h))
	require.True(t, h.called)
	require.Equal(t, uint32(42), c.Reg(RegA0))
	require.Equal(t, uint32(4), c.PC)
}

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

// Package riscv implements an RV32IMC decoder and executor: 32 general
// registers, a program counter, three owned memory segments (code, data,
// stack), and an ECALL trap seam. It has no notion of the host channel or
// the guest syscall surface; both are reached only through the
// EcallHandler a caller supplies to Execute.
package riscv

import (
	"fmt"

	"github.com/nconsigny/vanadium-sub001/oms"
)

// NumRegisters is the width of the RISC-V integer register file.
const NumRegisters = 32

// EcallHandler is the seam the interpreter yields to on an ECALL trap. A
// real implementation (package ecall) dispatches on the value in x5 (t0);
// it may itself block on a host round-trip before returning.
type EcallHandler interface {
	HandleEcall(cpu *CPU) error
}

// CPU is one V-App's interpreter state: registers, program counter, and
// its three memory segments.
type CPU struct {
	PC   uint32
	Regs [NumRegisters]uint32

	Code  *oms.Segment
	Data  *oms.Segment
	Stack *oms.Segment
}

// NewCPU builds a CPU with the given entrypoint and segments, with sp
// (x2) set to the stack segment's top word-aligned address, matching
// §4.5's launch sequence: sp = (stack.end-4) & !3.
func NewCPU(entrypoint uint32, code, data, stack *oms.Segment) *CPU {
	c := &CPU{PC: entrypoint, Code: code, Data: data, Stack: stack}
	c.Regs[RegSP] = (stack.BaseAddr + stack.Size - 4) &^ 3
	return c
}

// SetReg writes v to register r, except that x0 always reads back 0
// regardless of what is written to it.
func (c *CPU) SetReg(r uint8, v uint32) {
	if r == 0 {
		return
	}
	c.Regs[r] = v
}

// Reg reads register r.
func (c *CPU) Reg(r uint8) uint32 {
	return c.Regs[r]
}

// Register ABI names used by the ECALL calling convention (§4.4).
const (
	RegZero = 0
	RegRA   = 1
	RegSP   = 2
	RegT0   = 5 // holds the ECALL code
	RegA0   = 10
	RegA1   = 11
	RegA2   = 12
	RegA3   = 13
	RegA4   = 14
	RegA5   = 15
	RegA6   = 16
	RegA7   = 17
)

// segmentFor returns the segment owning addr, or nil if none does. Code
// is checked first since pc always lives there; data and stack may be
// adjacent or disjoint depending on the Manifest's layout.
func (c *CPU) segmentFor(addr uint32) *oms.Segment {
	for _, seg := range []*oms.Segment{c.Code, c.Data, c.Stack} {
		if addr >= seg.BaseAddr && addr < seg.BaseAddr+seg.Size {
			return seg
		}
	}
	return nil
}

// ReadGuestBuffer reads n bytes at a guest virtual address, used by the
// ECALL handler to pull argument buffers out of guest memory. It rejects
// an address that escapes every owned segment or whose span wraps u32,
// the same validation rule the ECALL dispatcher applies to every
// pointer+length pair it receives.
func (c *CPU) ReadGuestBuffer(addr, n uint32) ([]byte, error) {
	if addr+n < addr {
		return nil, fmt.Errorf("riscv: buffer [%#x, +%#x) wraps u32", addr, n)
	}
	seg := c.segmentFor(addr)
	if seg == nil {
		return nil, fmt.Errorf("riscv: address %#08x not in any segment", addr)
	}
	return seg.ReadBuffer(addr, n)
}

// WriteGuestBuffer writes data at a guest virtual address, used by the
// ECALL handler to return results into guest memory.
func (c *CPU) WriteGuestBuffer(addr uint32, data []byte) error {
	n := uint32(len(data))
	if addr+n < addr {
		return fmt.Errorf("riscv: buffer [%#x, +%#x) wraps u32", addr, n)
	}
	seg := c.segmentFor(addr)
	if seg == nil {
		return fmt.Errorf("riscv: address %#08x not in any segment", addr)
	}
	return seg.WriteBuffer(addr, data)
}

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

package ecall

import (
	"github.com/nconsigny/vanadium-sub001/crypto"
	"github.com/nconsigny/vanadium-sub001/riscv"
)

// bnModM implements bn_modm(length, a_ptr, m_ptr, out_ptr): out = a mod m.
func (h *Handler) bnModM(cpu *riscv.CPU, length, aPtr, mPtr, outPtr uint32) error {
	a, m, err := h.readBignumPair(cpu, length, aPtr, mPtr)
	if err != nil {
		return err
	}
	out, err := crypto.BnModM(a, m)
	if err != nil {
		return ErrInvalidArgument
	}
	return h.writeBignumResult(cpu, outPtr, out)
}

func (h *Handler) bnAddM(cpu *riscv.CPU, length, aPtr, bPtr, mPtr, outPtr uint32) error {
	return h.bnTriop(cpu, crypto.BnAddM, length, aPtr, bPtr, mPtr, outPtr)
}

func (h *Handler) bnSubM(cpu *riscv.CPU, length, aPtr, bPtr, mPtr, outPtr uint32) error {
	return h.bnTriop(cpu, crypto.BnSubM, length, aPtr, bPtr, mPtr, outPtr)
}

func (h *Handler) bnMultM(cpu *riscv.CPU, length, aPtr, bPtr, mPtr, outPtr uint32) error {
	return h.bnTriop(cpu, crypto.BnMultM, length, aPtr, bPtr, mPtr, outPtr)
}

func (h *Handler) bnPowM(cpu *riscv.CPU, length, aPtr, bPtr, mPtr, outPtr uint32) error {
	return h.bnTriop(cpu, crypto.BnPowM, length, aPtr, bPtr, mPtr, outPtr)
}

func (h *Handler) bnTriop(cpu *riscv.CPU, op func(a, b, m []byte) ([]byte, error), length, aPtr, bPtr, mPtr, outPtr uint32) error {
	a, err := cpu.ReadGuestBuffer(aPtr, length)
	if err != nil {
		return fatalMemory("%s", err)
	}
	b, err := cpu.ReadGuestBuffer(bPtr, length)
	if err != nil {
		return fatalMemory("%s", err)
	}
	m, err := cpu.ReadGuestBuffer(mPtr, length)
	if err != nil {
		return fatalMemory("%s", err)
	}
	out, err := op(a, b, m)
	if err != nil {
		return ErrInvalidArgument
	}
	return h.writeBignumResult(cpu, outPtr, out)
}

func (h *Handler) readBignumPair(cpu *riscv.CPU, length, aPtr, mPtr uint32) (a, m []byte, err error) {
	a, err = cpu.ReadGuestBuffer(aPtr, length)
	if err != nil {
		return nil, nil, fatalMemory("%s", err)
	}
	m, err = cpu.ReadGuestBuffer(mPtr, length)
	if err != nil {
		return nil, nil, fatalMemory("%s", err)
	}
	return a, m, nil
}

func (h *Handler) writeBignumResult(cpu *riscv.CPU, outPtr uint32, out []byte) error {
	if err := cpu.WriteGuestBuffer(outPtr, out); err != nil {
		return fatalMemory("%s", err)
	}
	return nil
}

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

import "github.com/nconsigny/vanadium-sub001/riscv"

// The UI group forwards opaque, already-serialized descriptors to the
// sink; the VM core never interprets their contents.

func (h *Handler) showPage(cpu *riscv.CPU, ptr, length uint32) error {
	data, err := cpu.ReadGuestBuffer(ptr, length)
	if err != nil {
		return fatalMemory("%s", err)
	}
	return h.Channel.ShowPage(data)
}

func (h *Handler) showStep(cpu *riscv.CPU, ptr, length uint32) error {
	data, err := cpu.ReadGuestBuffer(ptr, length)
	if err != nil {
		return fatalMemory("%s", err)
	}
	return h.Channel.ShowStep(data)
}

// getEvent blocks (via Channel) for the next UI event, writes its
// opaque payload into guest memory at dataPtr, and returns the event
// code as the ECALL result.
func (h *Handler) getEvent(cpu *riscv.CPU, dataPtr uint32) (uint32, error) {
	code, data, err := h.Channel.GetEvent()
	if err != nil {
		return 0, err
	}
	if len(data) > 0 {
		if err := cpu.WriteGuestBuffer(dataPtr, data); err != nil {
			return 0, fatalMemory("%s", err)
		}
	}
	return code, nil
}

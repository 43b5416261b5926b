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
	"unicode/utf8"

	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/nconsigny/vanadium-sub001/riscv"
)

// panic and fatal both terminate the run with VAppPanic, carrying the
// guest-supplied UTF-8 message. The only difference the platform draws
// between them is cosmetic (a SDK-level distinction of call site); the
// VM core treats them identically.
func (h *Handler) panic(cpu *riscv.CPU, ptr, length uint32) error {
	return h.reportCrash(cpu, ptr, length)
}

func (h *Handler) fatal(cpu *riscv.CPU, ptr, length uint32) error {
	return h.reportCrash(cpu, ptr, length)
}

func (h *Handler) reportCrash(cpu *riscv.CPU, ptr, length uint32) error {
	msg, err := cpu.ReadGuestBuffer(ptr, length)
	if err != nil {
		return fatalMemory("%s", err)
	}
	// The guest's message is forwarded to the host out-of-band before the
	// final status, so it reaches the host even though the run is about
	// to abort.
	if err := h.sendBytes(msg); err != nil {
		return common.NewRuntimeError(common.ErrProtocol, "%s", err)
	}
	if !utf8.Valid(msg) {
		// Invalid UTF-8 in a crash payload is itself treated as a crash:
		// there is no sensible way to let the guest keep running after
		// it asked to terminate with an unreadable message.
		return common.NewRuntimeError(common.ErrPanic, "non-utf8 crash payload")
	}
	return common.NewRuntimeError(common.ErrPanic, "%s", msg)
}

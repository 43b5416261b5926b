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

// maxRandomChunk bounds a single CSPRNG fill, matching the platform's
// own chunking of get_random_bytes.
const maxRandomChunk = 256

// getRandomBytes fills length bytes of guest memory at ptr with CSPRNG
// output, in chunks of at most maxRandomChunk bytes.
func (h *Handler) getRandomBytes(cpu *riscv.CPU, ptr, length uint32) error {
	addr := ptr
	remaining := length
	for remaining > 0 {
		n := remaining
		if n > maxRandomChunk {
			n = maxRandomChunk
		}
		buf, err := h.Rand(int(n))
		if err != nil {
			return err
		}
		if err := cpu.WriteGuestBuffer(addr, buf); err != nil {
			return fatalMemory("%s", err)
		}
		addr += n
		remaining -= n
	}
	return nil
}

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

// maxChunkBytes bounds a single SendBuffer/ReceiveBuffer wire message,
// matching the platform's own 251-byte payload budget per APDU-style
// exchange (255-byte frame minus a 4-byte header).
const maxChunkBytes = 251

// xsend forwards exactly size bytes from guest memory to the host,
// chunked to maxChunkBytes per round-trip. Each ECALL represents one
// logical transfer even though it may take several suspension points.
func (h *Handler) xsend(cpu *riscv.CPU, ptr, size uint32) error {
	if size == 0 {
		return h.Channel.SendBuffer(0, nil)
	}
	remaining := size
	addr := ptr
	for remaining > 0 {
		chunkLen := remaining
		if chunkLen > maxChunkBytes {
			chunkLen = maxChunkBytes
		}
		chunk, err := cpu.ReadGuestBuffer(addr, chunkLen)
		if err != nil {
			return fatalMemory("%s", err)
		}
		if err := h.Channel.SendBuffer(remaining, chunk); err != nil {
			return err
		}
		addr += chunkLen
		remaining -= chunkLen
	}
	return nil
}

// sendBytes forwards an already-in-hand buffer to the host via the same
// chunking xsend uses, for callers (reportCrash) that have their payload
// in a Go slice rather than guest memory.
func (h *Handler) sendBytes(data []byte) error {
	if len(data) == 0 {
		return h.Channel.SendBuffer(0, nil)
	}
	remaining := uint32(len(data))
	off := uint32(0)
	for remaining > 0 {
		chunkLen := remaining
		if chunkLen > maxChunkBytes {
			chunkLen = maxChunkBytes
		}
		if err := h.Channel.SendBuffer(remaining, data[off:off+chunkLen]); err != nil {
			return err
		}
		off += chunkLen
		remaining -= chunkLen
	}
	return nil
}

// xrecv fills up to maxLen bytes of guest memory at ptr from the host,
// one chunk per suspension point, and returns the total byte count
// received.
func (h *Handler) xrecv(cpu *riscv.CPU, ptr, maxLen uint32) (uint32, error) {
	addr := ptr
	var total uint32
	for {
		remaining, chunk, err := h.Channel.ReceiveBuffer()
		if err != nil {
			return 0, err
		}
		if total+uint32(len(chunk)) > maxLen {
			return 0, ErrInvalidArgument
		}
		if err := cpu.WriteGuestBuffer(addr, chunk); err != nil {
			return 0, fatalMemory("%s", err)
		}
		addr += uint32(len(chunk))
		total += uint32(len(chunk))
		if remaining == 0 {
			break
		}
	}
	return total, nil
}

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

package oms

import "github.com/nconsigny/vanadium-sub001/common"

// ReadU8 reads one byte at addr.
func (s *Segment) ReadU8(addr uint32) (uint8, error) {
	buf, err := s.ReadBuffer(addr, 1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadU16 reads a little-endian halfword at addr, which must be 2-byte aligned.
func (s *Segment) ReadU16(addr uint32) (uint16, error) {
	if err := s.checkBounds(addr, 2, 2); err != nil {
		return 0, err
	}
	buf, err := s.ReadBuffer(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

// ReadU32 reads a little-endian word at addr, which must be 4-byte aligned.
func (s *Segment) ReadU32(addr uint32) (uint32, error) {
	if err := s.checkBounds(addr, 4, 4); err != nil {
		return 0, err
	}
	buf, err := s.ReadBuffer(addr, 4)
	if err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

// WriteU8 writes one byte at addr.
func (s *Segment) WriteU8(addr uint32, v uint8) error {
	return s.WriteBuffer(addr, []byte{v})
}

// WriteU16 writes a little-endian halfword at addr, which must be 2-byte aligned.
func (s *Segment) WriteU16(addr uint32, v uint16) error {
	if err := s.checkBounds(addr, 2, 2); err != nil {
		return err
	}
	return s.WriteBuffer(addr, []byte{byte(v), byte(v >> 8)})
}

// WriteU32 writes a little-endian word at addr, which must be 4-byte aligned.
func (s *Segment) WriteU32(addr uint32, v uint32) error {
	if err := s.checkBounds(addr, 4, 4); err != nil {
		return err
	}
	return s.WriteBuffer(addr, []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// ReadBuffer reads n bytes starting at addr, transparently paging across
// page boundaries.
func (s *Segment) ReadBuffer(addr uint32, n uint32) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if err := s.checkBounds(addr, n, 0); err != nil {
		return nil, err
	}
	out := make([]byte, 0, n)
	cur := addr
	remaining := n
	for remaining > 0 {
		pageIdx := s.pageIndex(cur)
		offset := cur % common.PageSize
		chunk := common.PageSize - offset
		if chunk > remaining {
			chunk = remaining
		}
		slot, err := s.ensurePage(pageIdx)
		if err != nil {
			return nil, err
		}
		out = append(out, slot.data[offset:offset+chunk]...)
		cur += chunk
		remaining -= chunk
	}
	return out, nil
}

// WriteBuffer writes data starting at addr, transparently paging across
// page boundaries and marking every touched slot dirty. Fails with
// WriteToReadOnly on a read-only segment.
func (s *Segment) WriteBuffer(addr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if s.IsReadOnly {
		return errWriteToReadOnly(addr)
	}
	n := uint32(len(data))
	if err := s.checkBounds(addr, n, 0); err != nil {
		return err
	}
	cur := addr
	off := 0
	remaining := n
	for remaining > 0 {
		pageIdx := s.pageIndex(cur)
		pageOffset := cur % common.PageSize
		chunk := common.PageSize - pageOffset
		if chunk > remaining {
			chunk = remaining
		}
		slot, err := s.ensurePage(pageIdx)
		if err != nil {
			return err
		}
		copy(slot.data[pageOffset:pageOffset+chunk], data[off:uint32(off)+chunk])
		slot.dirty = true
		cur += chunk
		off += int(chunk)
		remaining -= chunk
	}
	return nil
}

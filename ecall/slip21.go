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

// maxSLIP21PathBytes bounds the encoded label sequence; maxSLIP21LabelBytes
// bounds any single label within it.
const (
	maxSLIP21PathBytes  = 256
	maxSLIP21LabelBytes = 252
)

// parseSLIP21Labels decodes a guest-memory-resident label sequence: a run
// of 1-byte-length-prefixed labels, back to back, totaling exactly
// len(raw) bytes.
func parseSLIP21Labels(raw []byte) ([][]byte, error) {
	var labels [][]byte
	for i := 0; i < len(raw); {
		n := int(raw[i])
		if n > maxSLIP21LabelBytes {
			return nil, ErrInvalidArgument
		}
		i++
		if i+n > len(raw) {
			return nil, ErrInvalidArgument
		}
		labels = append(labels, raw[i:i+n])
		i += n
	}
	return labels, nil
}

// deriveSLIP21Node implements derive_slip21_node: pathPtr/pathLen encode a
// sequence of length-prefixed labels (at most maxSLIP21PathBytes total,
// each at most maxSLIP21LabelBytes), re-rooted under the platform's fixed
// namespace before derivation. The resulting 32-byte key is written to
// outPtr.
func (h *Handler) deriveSLIP21Node(cpu *riscv.CPU, pathPtr, pathLen, outPtr uint32) error {
	if pathLen == 0 || pathLen > maxSLIP21PathBytes {
		return ErrInvalidArgument
	}
	raw, err := cpu.ReadGuestBuffer(pathPtr, pathLen)
	if err != nil {
		return fatalMemory("%s", err)
	}
	labels, err := parseSLIP21Labels(raw)
	if err != nil {
		return err
	}
	node := crypto.DeriveSLIP21(h.Seed, labels)
	key := node.Key()
	if err := cpu.WriteGuestBuffer(outPtr, key[:]); err != nil {
		return fatalMemory("%s", err)
	}
	return nil
}

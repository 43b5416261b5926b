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
	"testing"

	"github.com/nconsigny/vanadium-sub001/crypto"
	"github.com/stretchr/testify/require"
)

func encodeLabels(labels ...[]byte) []byte {
	var out []byte
	for _, l := range labels {
		out = append(out, byte(len(l)))
		out = append(out, l...)
	}
	return out
}

func TestDeriveSLIP21NodeRoundTrip(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})

	labels := [][]byte{[]byte("wallet"), []byte("account-0")}
	raw := encodeLabels(labels...)
	require.NoError(t, cpu.WriteGuestBuffer(0x1000, raw))

	require.NoError(t, h.deriveSLIP21Node(cpu, 0x1000, uint32(len(raw)), 0x2000))
	got, err := cpu.ReadGuestBuffer(0x2000, 32)
	require.NoError(t, err)

	want := crypto.DeriveSLIP21(h.Seed, labels).Key()
	require.Equal(t, want[:], got)
}

func TestDeriveSLIP21NodeSingleLabelAtMaxSizeSucceeds(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})

	label := make([]byte, maxSLIP21LabelBytes)
	raw := encodeLabels(label)
	require.NoError(t, cpu.WriteGuestBuffer(0x1000, raw))
	require.NoError(t, h.deriveSLIP21Node(cpu, 0x1000, uint32(len(raw)), 0x2000))
}

func TestDeriveSLIP21NodeSingleLabelOverMaxSizeFails(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})

	label := make([]byte, maxSLIP21LabelBytes+1)
	encoded := append([]byte{byte(len(label))}, label...)
	require.NoError(t, cpu.WriteGuestBuffer(0x1000, encoded))
	err := h.deriveSLIP21Node(cpu, 0x1000, uint32(len(encoded)), 0x2000)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDeriveSLIP21NodeTotalExactlyMaxSucceeds(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})

	// Two labels whose 1-byte-length-prefixed encoding sums to exactly
	// maxSLIP21PathBytes.
	label1 := make([]byte, maxSLIP21LabelBytes)
	label2 := make([]byte, maxSLIP21PathBytes-(1+len(label1))-1)
	raw := encodeLabels(label1, label2)
	require.Len(t, raw, maxSLIP21PathBytes)
	require.NoError(t, cpu.WriteGuestBuffer(0x1000, raw))
	require.NoError(t, h.deriveSLIP21Node(cpu, 0x1000, uint32(len(raw)), 0x2000))
}

func TestDeriveSLIP21NodeTotalOverMaxFails(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})

	label1 := make([]byte, maxSLIP21LabelBytes)
	label2 := make([]byte, maxSLIP21PathBytes-(1+len(label1)))
	raw := encodeLabels(label1, label2)
	require.Len(t, raw, maxSLIP21PathBytes+1)
	require.NoError(t, cpu.WriteGuestBuffer(0x1000, raw))
	err := h.deriveSLIP21Node(cpu, 0x1000, uint32(len(raw)), 0x2000)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDeriveSLIP21NodeEmptyPathFails(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})
	err := h.deriveSLIP21Node(cpu, 0x1000, 0, 0x2000)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

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

import (
	"errors"
	"testing"

	"github.com/nconsigny/vanadium-sub001/caps"
	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/nconsigny/vanadium-sub001/crypto"
	"github.com/stretchr/testify/require"
)

// fakeHost is a minimal in-process Host backed by a real caps.CAPS,
// standing in for what the comm/sim packages provide over the wire.
type fakeHost struct {
	tree    *caps.CAPS
	content map[uint32]common.SerializedPage
	tamper  func(pageIndex uint32, sp *common.SerializedPage)
}

func newFakeHost(numPages int, pageContent func(i int) common.Page) *fakeHost {
	leaves := make([]common.Hash, numPages)
	content := make(map[uint32]common.SerializedPage, numPages)
	for i := 0; i < numPages; i++ {
		sp := common.SerializedPage{Content: pageContent(i)}
		content[uint32(i)] = sp
		leaves[i] = sp.LeafHash()
	}
	return &fakeHost{tree: caps.New(leaves), content: content}
}

func (h *fakeHost) GetPage(_ common.SectionKind, index uint32) (common.SerializedPage, []common.Hash, error) {
	sp := h.content[index]
	if h.tamper != nil {
		h.tamper(index, &sp)
	}
	proof, err := h.tree.Prove(int(index))
	if err != nil {
		return common.SerializedPage{}, nil, err
	}
	return sp, proof, nil
}

func (h *fakeHost) CommitPage(_ common.SectionKind, index uint32, page common.SerializedPage) ([]common.Hash, error) {
	oldProof, _, err := h.tree.Update(int(index), page.LeafHash())
	if err != nil {
		return nil, err
	}
	h.content[index] = page
	return oldProof, nil
}

func testEnc() *EncState {
	var key crypto.AESKey
	copy(key[:], []byte("0123456789abcdef"))
	return &EncState{Key: key}
}

func TestReadOnlySegmentRoundTrip(t *testing.T) {
	host := newFakeHost(2, func(i int) common.Page {
		var p common.Page
		p[0] = byte(i)
		return p
	})
	seg := NewSegment(0, 2*common.PageSize, host.tree.Root(), true, common.SectionCode, 1, NewLRUPolicy(1), nil, host)

	b, err := seg.ReadBuffer(0, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{0}, b)

	b, err = seg.ReadBuffer(common.PageSize, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, b)
}

func TestWritableSegmentCommitThenFetch(t *testing.T) {
	host := newFakeHost(4, func(i int) common.Page { return common.Page{} })
	// Pre-seed host pages as encrypted-empty so the segment can decrypt them.
	enc := testEnc()
	for i := 0; i < 4; i++ {
		var empty common.Page
		ct, err := crypto.AESCTR(enc.Key, [12]byte{}, empty[:])
		require.NoError(t, err)
		var sp common.SerializedPage
		sp.Encrypted = true
		copy(sp.Content[:], ct)
		_, _, err = host.tree.Update(i, sp.LeafHash())
		require.NoError(t, err)
		host.content[uint32(i)] = sp
	}

	seg := NewSegment(0, 4*common.PageSize, host.tree.Root(), false, common.SectionData, 2, NewLRUPolicy(2), enc, host)

	pattern := []byte("hello vanadium!!")
	require.NoError(t, seg.WriteBuffer(0, pattern))

	// Force eviction by touching more pages than the 2-slot cache holds.
	_, err := seg.ReadBuffer(2*common.PageSize, 1)
	require.NoError(t, err)
	_, err = seg.ReadBuffer(3*common.PageSize, 1)
	require.NoError(t, err)

	require.NoError(t, seg.Flush())

	got, err := seg.ReadBuffer(0, uint32(len(pattern)))
	require.NoError(t, err)
	require.Equal(t, pattern, got)
}

func TestTamperedPageFailsIntegrity(t *testing.T) {
	host := newFakeHost(1, func(i int) common.Page {
		var p common.Page
		p[0] = 0x42
		return p
	})
	host.tamper = func(_ uint32, sp *common.SerializedPage) {
		sp.Content[0] ^= 0xff
	}
	seg := NewSegment(0, common.PageSize, host.tree.Root(), true, common.SectionCode, 1, NewLRUPolicy(1), nil, host)

	_, err := seg.ReadBuffer(0, 1)
	require.Error(t, err)
	var rerr *common.RuntimeError
	require.True(t, errors.As(err, &rerr))
	require.ErrorIs(t, rerr, common.ErrIntegrity)
}

func TestUnalignedWordReadFails(t *testing.T) {
	host := newFakeHost(1, func(i int) common.Page { return common.Page{} })
	seg := NewSegment(0, common.PageSize, host.tree.Root(), true, common.SectionCode, 1, NewLRUPolicy(1), nil, host)

	_, err := seg.ReadU32(1)
	require.Error(t, err)
	var rerr *common.RuntimeError
	require.True(t, errors.As(err, &rerr))
	require.ErrorIs(t, rerr, common.ErrMemory)
}

func TestOutOfBoundsReadFails(t *testing.T) {
	host := newFakeHost(1, func(i int) common.Page { return common.Page{} })
	seg := NewSegment(0, common.PageSize, host.tree.Root(), true, common.SectionCode, 1, NewLRUPolicy(1), nil, host)

	_, err := seg.ReadU16(common.PageSize - 1)
	require.Error(t, err)
}

func TestWriteToReadOnlyFails(t *testing.T) {
	host := newFakeHost(1, func(i int) common.Page { return common.Page{} })
	seg := NewSegment(0, common.PageSize, host.tree.Root(), true, common.SectionCode, 1, NewLRUPolicy(1), nil, host)

	err := seg.WriteBuffer(0, []byte{1})
	require.Error(t, err)
	var rerr *common.RuntimeError
	require.True(t, errors.As(err, &rerr))
	require.ErrorIs(t, rerr, common.ErrMemory)
}

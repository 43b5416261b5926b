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

package manifest

import (
	"testing"

	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/stretchr/testify/require"
)

func validManifest() *Manifest {
	return &Manifest{
		Version:    CurrentVersion,
		Name:       "demo",
		AppVersion: "1.0",
		Entrypoint: 0x1000,
		Code:       Region{Start: 0x1000, End: 0x2000, InitialRoot: common.Hash{0x01}},
		Data:       Region{Start: 0x2000, End: 0x3000, InitialRoot: common.Hash{0x02}},
		Stack:      Region{Start: 0x3000, End: 0x3000 + MinStackSize, InitialRoot: common.Hash{0x03}},
	}
}

func TestValidateAcceptsWellFormedManifest(t *testing.T) {
	require.NoError(t, validManifest().Validate())
}

func TestValidateRejectsUnalignedRegion(t *testing.T) {
	m := validManifest()
	m.Code.End = m.Code.Start + common.PageSize + 1
	require.ErrorIs(t, m.Validate(), ErrInvalidManifest)
}

func TestValidateRejectsEntrypointOutsideCode(t *testing.T) {
	m := validManifest()
	m.Entrypoint = m.Data.Start
	require.ErrorIs(t, m.Validate(), ErrInvalidManifest)
}

func TestValidateRejectsOverlappingRegions(t *testing.T) {
	m := validManifest()
	m.Data.Start = m.Code.Start
	m.Data.End = m.Code.End
	require.ErrorIs(t, m.Validate(), ErrInvalidManifest)
}

func TestValidateRejectsStackOutsideBounds(t *testing.T) {
	m := validManifest()
	m.Stack.End = m.Stack.Start // zero-size stack
	require.ErrorIs(t, m.Validate(), ErrInvalidManifest)
}

func TestValidateRejectsOverlongName(t *testing.T) {
	m := validManifest()
	long := make([]byte, MaxNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	m.Name = string(long)
	require.ErrorIs(t, m.Validate(), ErrInvalidManifest)
}

func TestCanonicalParseRoundTrip(t *testing.T) {
	m := validManifest()
	raw := m.Canonical()
	require.Len(t, raw, canonicalSize)

	got, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, m.Version, got.Version)
	require.Equal(t, m.Name, got.Name)
	require.Equal(t, m.AppVersion, got.AppVersion)
	require.Equal(t, m.Entrypoint, got.Entrypoint)
	require.Equal(t, m.Code, got.Code)
	require.Equal(t, m.Data, got.Data)
	require.Equal(t, m.Stack, got.Stack)
}

func TestParseRejectsWrongLength(t *testing.T) {
	_, err := Parse([]byte{0x01, 0x02})
	require.ErrorIs(t, err, ErrInvalidManifest)
}

func TestHashIsDeterministicAndSensitiveToContent(t *testing.T) {
	m := validManifest()
	h1 := m.Hash()
	h2 := m.Hash()
	require.Equal(t, h1, h2)

	m2 := validManifest()
	m2.Name = "other"
	require.NotEqual(t, h1, m2.Hash())
}

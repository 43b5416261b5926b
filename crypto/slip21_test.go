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

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveSLIP21Deterministic(t *testing.T) {
	seed := bytes32Seed()
	n1 := DeriveSLIP21(seed, [][]byte{[]byte("myapp"), []byte("seed")})
	n2 := DeriveSLIP21(seed, [][]byte{[]byte("myapp"), []byte("seed")})
	require.Equal(t, n1.Key(), n2.Key())
}

func TestDeriveSLIP21DifferentLabelsDiverge(t *testing.T) {
	seed := bytes32Seed()
	n1 := DeriveSLIP21(seed, [][]byte{[]byte("myapp")})
	n2 := DeriveSLIP21(seed, [][]byte{[]byte("otherapp")})
	require.NotEqual(t, n1.Key(), n2.Key())
}

func TestDeriveSLIP21RootedUnderVanadium(t *testing.T) {
	seed := bytes32Seed()
	master := SLIP21Node(HMACSHA512([]byte(slip21Magic), seed))
	rootedDirectly := slip21Child(master, []byte(slip21SeedRoot))
	expected := slip21Child(rootedDirectly, []byte("label"))

	got := DeriveSLIP21(seed, [][]byte{[]byte("label")})
	require.Equal(t, expected.Key(), got.Key())
}

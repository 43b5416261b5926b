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

func TestECDSASignVerifyRoundTrip(t *testing.T) {
	keyBytes := make([]byte, 32)
	keyBytes[31] = 0x01
	priv, err := PrivateKeyFromBytes(keyBytes)
	require.NoError(t, err)

	hash := SHA256([]byte("vanadium ecdsa test message"))
	sig := ECDSASign(priv, hash[:])
	require.Len(t, sig, 64)
	require.True(t, ECDSAVerify(priv.PubKey(), hash[:], sig))

	tampered := append([]byte(nil), hash[:]...)
	tampered[0] ^= 0xff
	require.False(t, ECDSAVerify(priv.PubKey(), tampered, sig))
}

func TestSchnorrSignVerifyRoundTrip(t *testing.T) {
	keyBytes := make([]byte, 32)
	keyBytes[31] = 0x02
	priv, err := PrivateKeyFromBytes(keyBytes)
	require.NoError(t, err)

	hash := SHA256([]byte("vanadium schnorr test message"))
	sig, err := SchnorrSign(priv, hash[:])
	require.NoError(t, err)
	require.Len(t, sig, 64)
	require.True(t, SchnorrVerify(priv.PubKey(), hash[:], sig))
}

func TestAddPointsMatchesSumOfScalars(t *testing.T) {
	k1 := make([]byte, 32)
	k1[31] = 0x03
	k2 := make([]byte, 32)
	k2[31] = 0x05

	p1, err := PrivateKeyFromBytes(k1)
	require.NoError(t, err)
	p2, err := PrivateKeyFromBytes(k2)
	require.NoError(t, err)

	sum := make([]byte, 32)
	sumInt := (uint64(k1[31]) + uint64(k2[31]))
	sum[31] = byte(sumInt)
	p3, err := PrivateKeyFromBytes(sum)
	require.NoError(t, err)

	added := AddPoints(p1.PubKey(), p2.PubKey())
	require.Equal(t, p3.PubKey().SerializeUncompressed(), added)
}

func TestScalarMultByOneIsIdentity(t *testing.T) {
	keyBytes := make([]byte, 32)
	keyBytes[31] = 0x07
	priv, err := PrivateKeyFromBytes(keyBytes)
	require.NoError(t, err)

	one := make([]byte, 32)
	one[31] = 0x01
	result, err := ScalarMult(one, priv.PubKey())
	require.NoError(t, err)
	require.Equal(t, priv.PubKey().SerializeUncompressed(), result)
}

func TestDeriveBIP32Deterministic(t *testing.T) {
	seed := bytes32Seed()
	node1, err := DeriveBIP32(seed, []uint32{hardenedOffset, hardenedOffset + 1})
	require.NoError(t, err)
	node2, err := DeriveBIP32(seed, []uint32{hardenedOffset, hardenedOffset + 1})
	require.NoError(t, err)
	require.Equal(t, node1, node2)

	node3, err := DeriveBIP32(seed, []uint32{hardenedOffset, hardenedOffset + 2})
	require.NoError(t, err)
	require.NotEqual(t, node1, node3)
}

func TestDeriveBIP32NonHardenedYieldsNonZeroKey(t *testing.T) {
	seed := bytes32Seed()
	node, err := DeriveBIP32(seed, []uint32{0})
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, node.Key)
}

func TestMasterFingerprintDeterministic(t *testing.T) {
	seed := bytes32Seed()
	fp1, err := MasterFingerprint(seed)
	require.NoError(t, err)
	fp2, err := MasterFingerprint(seed)
	require.NoError(t, err)
	require.Equal(t, fp1, fp2)

	other, err := MasterFingerprint(append(append([]byte(nil), seed...), 0x01))
	require.NoError(t, err)
	require.NotEqual(t, fp1, other)
}

func bytes32Seed() []byte {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

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
	"encoding/binary"
	"testing"

	"github.com/nconsigny/vanadium-sub001/crypto"
	"github.com/stretchr/testify/require"
)

func TestGetMasterFingerprintIsDeterministic(t *testing.T) {
	h := newTestHandler(&stubChannel{})
	fp1, err := h.getMasterFingerprint(CurveSecp256k1)
	require.NoError(t, err)
	fp2, err := h.getMasterFingerprint(CurveSecp256k1)
	require.NoError(t, err)
	require.Equal(t, fp1, fp2)
	require.NotZero(t, fp1)
}

func TestGetMasterFingerprintRejectsUnknownCurve(t *testing.T) {
	h := newTestHandler(&stubChannel{})
	_, err := h.getMasterFingerprint(Curve(42))
	require.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestDeriveHDNodeRoundTrip(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})

	// m/44'/0'/0'
	path := []uint32{0x8000002c, 0x80000000, 0x80000000}
	raw := make([]byte, 4*len(path))
	for i, p := range path {
		binary.BigEndian.PutUint32(raw[i*4:], p)
	}
	require.NoError(t, cpu.WriteGuestBuffer(0x1000, raw))

	require.NoError(t, h.deriveHDNode(cpu, CurveSecp256k1, 0x1000, uint32(len(raw)), 0x2000, 0x2100))

	priv, err := cpu.ReadGuestBuffer(0x2000, 32)
	require.NoError(t, err)
	chain, err := cpu.ReadGuestBuffer(0x2100, 32)
	require.NoError(t, err)

	want, err := crypto.DeriveBIP32(h.Seed, path)
	require.NoError(t, err)
	require.Equal(t, want.Key[:], priv)
	require.Equal(t, want.ChainCode[:], chain)
}

func TestDeriveHDNodeRejectsUnalignedPathLength(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})
	require.NoError(t, cpu.WriteGuestBuffer(0x1000, []byte{1, 2, 3}))
	err := h.deriveHDNode(cpu, CurveSecp256k1, 0x1000, 3, 0x2000, 0x2100)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func writeScalar(t *testing.T, cpu interface {
	WriteGuestBuffer(uint32, []byte) error
}, ptr uint32, b byte) {
	t.Helper()
	buf := make([]byte, 32)
	buf[31] = b
	require.NoError(t, cpu.WriteGuestBuffer(ptr, buf))
}

func TestECDSASignVerifyRoundTrip(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})

	writeScalar(t, cpu, 0x1000, 7) // private key
	digest := crypto.SHA256([]byte("message to sign"))
	require.NoError(t, cpu.WriteGuestBuffer(0x1100, digest[:]))

	require.NoError(t, h.ecdsaSign(cpu, CurveSecp256k1, 0x1000, 0x1100, 0x1200))

	priv, err := crypto.PrivateKeyFromBytes(mustRead(t, cpu, 0x1000, 32))
	require.NoError(t, err)
	pub := priv.PubKey().SerializeUncompressed()
	require.NoError(t, cpu.WriteGuestBuffer(0x1300, pub))

	result, err := h.ecdsaVerify(cpu, CurveSecp256k1, 0x1300, 0x1100, 0x1200)
	require.NoError(t, err)
	require.Equal(t, uint32(1), result)
}

func TestECDSAVerifyRejectsWrongDigest(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})

	writeScalar(t, cpu, 0x1000, 7)
	digest := crypto.SHA256([]byte("message to sign"))
	require.NoError(t, cpu.WriteGuestBuffer(0x1100, digest[:]))
	require.NoError(t, h.ecdsaSign(cpu, CurveSecp256k1, 0x1000, 0x1100, 0x1200))

	priv, err := crypto.PrivateKeyFromBytes(mustRead(t, cpu, 0x1000, 32))
	require.NoError(t, err)
	require.NoError(t, cpu.WriteGuestBuffer(0x1300, priv.PubKey().SerializeUncompressed()))

	wrongDigest := crypto.SHA256([]byte("a different message"))
	require.NoError(t, cpu.WriteGuestBuffer(0x1400, wrongDigest[:]))

	result, err := h.ecdsaVerify(cpu, CurveSecp256k1, 0x1300, 0x1400, 0x1200)
	require.NoError(t, err)
	require.Equal(t, uint32(0), result)
}

func TestSchnorrSignVerifyRoundTrip(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})

	writeScalar(t, cpu, 0x1000, 11)
	digest := crypto.SHA256([]byte("schnorr message"))
	require.NoError(t, cpu.WriteGuestBuffer(0x1100, digest[:]))

	require.NoError(t, h.schnorrSign(cpu, CurveSecp256k1, 0x1000, 0x1100, 0x1200))

	priv, err := crypto.PrivateKeyFromBytes(mustRead(t, cpu, 0x1000, 32))
	require.NoError(t, err)
	xOnly := priv.PubKey().SerializeCompressed()[1:]
	require.NoError(t, cpu.WriteGuestBuffer(0x1300, xOnly))

	result, err := h.schnorrVerify(cpu, CurveSecp256k1, 0x1300, 0x1100, 0x1200)
	require.NoError(t, err)
	require.Equal(t, uint32(1), result)
}

func TestEcfpAddPointAndScalarMult(t *testing.T) {
	cpu := newTestCPU(t)
	h := newTestHandler(&stubChannel{})

	privA, err := crypto.PrivateKeyFromBytes(mustScalar(3))
	require.NoError(t, err)
	privB, err := crypto.PrivateKeyFromBytes(mustScalar(5))
	require.NoError(t, err)

	pA := privA.PubKey().SerializeUncompressed()
	pB := privB.PubKey().SerializeUncompressed()
	require.NoError(t, cpu.WriteGuestBuffer(0x1000, pA))
	require.NoError(t, cpu.WriteGuestBuffer(0x1100, pB))

	require.NoError(t, h.ecfpAddPoint(cpu, CurveSecp256k1, 0x1000, 0x1100, 0x1200))
	sum, err := cpu.ReadGuestBuffer(0x1200, 65)
	require.NoError(t, err)

	want := crypto.AddPoints(privA.PubKey(), privB.PubKey())
	require.Equal(t, want, sum)

	// 3 * G must equal pA (the public key of scalar 3), where G is the
	// point whose scalar is 1.
	privOne, err := crypto.PrivateKeyFromBytes(mustScalar(1))
	require.NoError(t, err)
	generator := privOne.PubKey().SerializeUncompressed()
	require.NoError(t, cpu.WriteGuestBuffer(0x1500, generator))
	require.NoError(t, cpu.WriteGuestBuffer(0x1300, mustScalar(3)))
	require.NoError(t, h.ecfpScalarMult(cpu, CurveSecp256k1, 0x1300, 0x1500, 0x1400))
	product, err := cpu.ReadGuestBuffer(0x1400, 65)
	require.NoError(t, err)
	require.Equal(t, pA, product)
}

func mustScalar(b byte) []byte {
	buf := make([]byte, 32)
	buf[31] = b
	return buf
}

func mustRead(t *testing.T, cpu interface {
	ReadGuestBuffer(uint32, uint32) ([]byte, error)
}, ptr, n uint32) []byte {
	t.Helper()
	buf, err := cpu.ReadGuestBuffer(ptr, n)
	require.NoError(t, err)
	return buf
}

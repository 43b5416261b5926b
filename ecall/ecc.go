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

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/nconsigny/vanadium-sub001/crypto"
	"github.com/nconsigny/vanadium-sub001/riscv"
)

// Points cross the ECALL boundary as 65-byte uncompressed SEC1 values,
// scalars and hashes as 32-byte big-endian values, signatures as 64-byte
// compact (r||s) values. Only secp256k1 is implemented.

const (
	pointLen     = 65
	scalarLen    = 32
	signatureLen = 64
)

func checkCurve(curve Curve) error {
	if curve != CurveSecp256k1 {
		return ErrUnsupportedOperation
	}
	return nil
}

// deriveHDNode implements derive_hd_node: path is a sequence of pathLen/4
// big-endian uint32 BIP-32 indices read from guest memory at pathPtr; the
// derived private key and chain code are written to outPrivPtr and
// outChainPtr respectively.
func (h *Handler) deriveHDNode(cpu *riscv.CPU, curve Curve, pathPtr, pathLen, outPrivPtr, outChainPtr uint32) error {
	if err := checkCurve(curve); err != nil {
		return err
	}
	if pathLen%4 != 0 {
		return ErrInvalidArgument
	}
	raw, err := cpu.ReadGuestBuffer(pathPtr, pathLen)
	if err != nil {
		return fatalMemory("%s", err)
	}
	path := make([]uint32, pathLen/4)
	for i := range path {
		path[i] = binary.BigEndian.Uint32(raw[i*4 : i*4+4])
	}
	node, err := crypto.DeriveBIP32(h.Seed, path)
	if err != nil {
		return ErrInvalidArgument
	}
	if err := cpu.WriteGuestBuffer(outPrivPtr, node.Key[:]); err != nil {
		return fatalMemory("%s", err)
	}
	if err := cpu.WriteGuestBuffer(outChainPtr, node.ChainCode[:]); err != nil {
		return fatalMemory("%s", err)
	}
	return nil
}

// getMasterFingerprint implements get_master_fingerprint, returning it
// directly as the ECALL result word.
func (h *Handler) getMasterFingerprint(curve Curve) (uint32, error) {
	if err := checkCurve(curve); err != nil {
		return 0, err
	}
	fp, err := crypto.MasterFingerprint(h.Seed)
	if err != nil {
		return 0, ErrInvalidArgument
	}
	return fp, nil
}

func readPoint(cpu *riscv.CPU, ptr uint32) (*secp256k1.PublicKey, error) {
	raw, err := cpu.ReadGuestBuffer(ptr, pointLen)
	if err != nil {
		return nil, fatalMemory("%s", err)
	}
	pub, err := crypto.ParsePublicKey(raw)
	if err != nil {
		return nil, ErrInvalidArgument
	}
	return pub, nil
}

func readXOnlyPoint(cpu *riscv.CPU, ptr uint32) (*secp256k1.PublicKey, error) {
	raw, err := cpu.ReadGuestBuffer(ptr, scalarLen)
	if err != nil {
		return nil, fatalMemory("%s", err)
	}
	compressed := make([]byte, 0, 33)
	compressed = append(compressed, 0x02)
	compressed = append(compressed, raw...)
	pub, err := crypto.ParsePublicKey(compressed)
	if err != nil {
		return nil, ErrInvalidArgument
	}
	return pub, nil
}

// ecfpAddPoint implements ecfp_add_point: out = P+Q, both points and the
// result in uncompressed form.
func (h *Handler) ecfpAddPoint(cpu *riscv.CPU, curve Curve, pPtr, qPtr, outPtr uint32) error {
	if err := checkCurve(curve); err != nil {
		return err
	}
	p, err := readPoint(cpu, pPtr)
	if err != nil {
		return err
	}
	q, err := readPoint(cpu, qPtr)
	if err != nil {
		return err
	}
	sum := crypto.AddPoints(p, q)
	if err := cpu.WriteGuestBuffer(outPtr, sum); err != nil {
		return fatalMemory("%s", err)
	}
	return nil
}

// ecfpScalarMult implements ecfp_scalar_mult: out = k*P.
func (h *Handler) ecfpScalarMult(cpu *riscv.CPU, curve Curve, kPtr, pPtr, outPtr uint32) error {
	if err := checkCurve(curve); err != nil {
		return err
	}
	k, err := cpu.ReadGuestBuffer(kPtr, scalarLen)
	if err != nil {
		return fatalMemory("%s", err)
	}
	p, err := readPoint(cpu, pPtr)
	if err != nil {
		return err
	}
	product, err := crypto.ScalarMult(k, p)
	if err != nil {
		return ErrInvalidArgument
	}
	if err := cpu.WriteGuestBuffer(outPtr, product); err != nil {
		return fatalMemory("%s", err)
	}
	return nil
}

func readPrivateKey(cpu *riscv.CPU, ptr uint32) (*secp256k1.PrivateKey, error) {
	raw, err := cpu.ReadGuestBuffer(ptr, scalarLen)
	if err != nil {
		return nil, fatalMemory("%s", err)
	}
	priv, err := crypto.PrivateKeyFromBytes(raw)
	if err != nil {
		return nil, ErrInvalidArgument
	}
	return priv, nil
}

// ecdsaSign implements ecdsa_sign: a compact (r||s) signature over a
// pre-hashed 32-byte digest.
func (h *Handler) ecdsaSign(cpu *riscv.CPU, curve Curve, privPtr, hashPtr, outSigPtr uint32) error {
	if err := checkCurve(curve); err != nil {
		return err
	}
	priv, err := readPrivateKey(cpu, privPtr)
	if err != nil {
		return err
	}
	digest, err := cpu.ReadGuestBuffer(hashPtr, scalarLen)
	if err != nil {
		return fatalMemory("%s", err)
	}
	sig := crypto.ECDSASign(priv, digest)
	if err := cpu.WriteGuestBuffer(outSigPtr, sig); err != nil {
		return fatalMemory("%s", err)
	}
	return nil
}

// ecdsaVerify implements ecdsa_verify, returning 1 for a valid signature
// and 0 otherwise (an invalid signature is not a recoverable-error ABI
// failure — it is a legitimate, expected result).
func (h *Handler) ecdsaVerify(cpu *riscv.CPU, curve Curve, pubPtr, hashPtr, sigPtr uint32) (uint32, error) {
	if err := checkCurve(curve); err != nil {
		return 0, err
	}
	pub, err := readPoint(cpu, pubPtr)
	if err != nil {
		return 0, err
	}
	digest, err := cpu.ReadGuestBuffer(hashPtr, scalarLen)
	if err != nil {
		return 0, fatalMemory("%s", err)
	}
	sig, err := cpu.ReadGuestBuffer(sigPtr, signatureLen)
	if err != nil {
		return 0, fatalMemory("%s", err)
	}
	if crypto.ECDSAVerify(pub, digest, sig) {
		return 1, nil
	}
	return 0, nil
}

// schnorrSign implements schnorr_sign per BIP-340, over a 32-byte private
// key and a pre-hashed 32-byte digest.
func (h *Handler) schnorrSign(cpu *riscv.CPU, curve Curve, privPtr, hashPtr, outSigPtr uint32) error {
	if err := checkCurve(curve); err != nil {
		return err
	}
	priv, err := readPrivateKey(cpu, privPtr)
	if err != nil {
		return err
	}
	digest, err := cpu.ReadGuestBuffer(hashPtr, scalarLen)
	if err != nil {
		return fatalMemory("%s", err)
	}
	sig, err := crypto.SchnorrSign(priv, digest)
	if err != nil {
		return ErrInvalidArgument
	}
	if err := cpu.WriteGuestBuffer(outSigPtr, sig); err != nil {
		return fatalMemory("%s", err)
	}
	return nil
}

// schnorrVerify implements schnorr_verify; pub is a 32-byte x-only point.
func (h *Handler) schnorrVerify(cpu *riscv.CPU, curve Curve, pubPtr, hashPtr, sigPtr uint32) (uint32, error) {
	if err := checkCurve(curve); err != nil {
		return 0, err
	}
	pub, err := readXOnlyPoint(cpu, pubPtr)
	if err != nil {
		return 0, err
	}
	digest, err := cpu.ReadGuestBuffer(hashPtr, scalarLen)
	if err != nil {
		return 0, fatalMemory("%s", err)
	}
	sig, err := cpu.ReadGuestBuffer(sigPtr, signatureLen)
	if err != nil {
		return 0, fatalMemory("%s", err)
	}
	if crypto.SchnorrVerify(pub, digest, sig) {
		return 1, nil
	}
	return 0, nil
}

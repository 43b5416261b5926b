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
	"encoding/binary"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// ErrInvalidScalar is returned when a bignum or private key scalar is not
// reduced modulo the curve order, or is zero.
var ErrInvalidScalar = errors.New("crypto: invalid secp256k1 scalar")

// ErrInvalidPoint is returned when a serialized point fails to parse.
var ErrInvalidPoint = errors.New("crypto: invalid secp256k1 point")

// PrivateKeyFromBytes parses a 32-byte big-endian scalar as a secp256k1
// private key, rejecting zero and out-of-range values.
func PrivateKeyFromBytes(b []byte) (*secp256k1.PrivateKey, error) {
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow || scalar.IsZero() {
		return nil, ErrInvalidScalar
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}

// ParsePublicKey parses a compressed or uncompressed SEC1 point.
func ParsePublicKey(b []byte) (*secp256k1.PublicKey, error) {
	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, ErrInvalidPoint
	}
	return pk, nil
}

// ECDSASign signs hash (already reduced to 32 bytes) with priv, using
// RFC-6979 deterministic nonce generation over SHA-256, and returns a
// compact (64-byte r||s) signature.
func ECDSASign(priv *secp256k1.PrivateKey, hash []byte) []byte {
	sig := dcrecdsa.Sign(priv, hash)
	return serializeCompactECDSA(sig)
}

func serializeCompactECDSA(sig *dcrecdsa.Signature) []byte {
	der := sig.Serialize()
	// der is a DER-encoded ECDSA signature; re-parse to pull out r,s as
	// fixed 32-byte big-endian halves for the guest ABI's fixed-width
	// return convention.
	parsed, err := dcrecdsa.ParseDERSignature(der)
	if err != nil {
		// Sign() always returns a well-formed signature; this cannot fail.
		panic(err)
	}
	out := make([]byte, 64)
	rBytes := parsed.R().Bytes()
	sBytes := parsed.S().Bytes()
	copy(out[32-len(rBytes):32], rBytes)
	copy(out[64-len(sBytes):64], sBytes)
	return out
}

// ECDSAVerify verifies a compact (r||s) signature against hash and pub.
func ECDSAVerify(pub *secp256k1.PublicKey, hash, sig []byte) bool {
	if len(sig) != 64 {
		return false
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return false
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return false
	}
	signature := dcrecdsa.NewSignature(&r, &s)
	return signature.Verify(hash, pub)
}

// SchnorrSign produces a BIP-340 Schnorr signature over hash with priv.
func SchnorrSign(priv *secp256k1.PrivateKey, hash []byte) ([]byte, error) {
	btcecPriv, _ := btcec.PrivKeyFromBytes(priv.Serialize())
	sig, err := schnorr.Sign(btcecPriv, hash)
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

// SchnorrVerify verifies a BIP-340 Schnorr signature over hash with pub
// (a 32-byte x-only public key).
func SchnorrVerify(pub *secp256k1.PublicKey, hash, sig []byte) bool {
	xOnly, err := schnorr.ParsePubKey(pub.SerializeCompressed()[1:])
	if err != nil {
		return false
	}
	parsed, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(hash, xOnly)
}

// AddPoints returns P+Q on the secp256k1 curve in uncompressed (65-byte)
// form, implementing the ecfp_add_point ECALL.
func AddPoints(p, q *secp256k1.PublicKey) []byte {
	var jp, jq, jr secp256k1.JacobianPoint
	p.AsJacobian(&jp)
	q.AsJacobian(&jq)
	secp256k1.AddNonConst(&jp, &jq, &jr)
	jr.ToAffine()
	result := secp256k1.NewPublicKey(&jr.X, &jr.Y)
	return result.SerializeUncompressed()
}

// ScalarMult returns k*P on the secp256k1 curve in uncompressed form,
// implementing the ecfp_scalar_mult ECALL.
func ScalarMult(k []byte, p *secp256k1.PublicKey) ([]byte, error) {
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(k); overflow {
		return nil, ErrInvalidScalar
	}
	var jp, jr secp256k1.JacobianPoint
	p.AsJacobian(&jp)
	secp256k1.ScalarMultNonConst(&scalar, &jp, &jr)
	jr.ToAffine()
	result := secp256k1.NewPublicKey(&jr.X, &jr.Y)
	return result.SerializeUncompressed(), nil
}

// BIP32Node is a derived extended key: the 32-byte private scalar and its
// 32-byte chain code.
type BIP32Node struct {
	Key       [32]byte
	ChainCode [32]byte
}

const hardenedOffset = 0x80000000

// bip32Master derives the master node from a platform seed, per BIP-32:
// I = HMAC-SHA512("Bitcoin seed", seed); IL is the master key, IR the
// master chain code.
func bip32Master(seed []byte) BIP32Node {
	i := HMACSHA512([]byte("Bitcoin seed"), seed)
	var n BIP32Node
	copy(n.Key[:], i[:32])
	copy(n.ChainCode[:], i[32:])
	return n
}

// bip32CKDPriv derives one private child node from a parent node and a
// path component. Hardened indices have the top bit of index set.
func bip32CKDPriv(parent BIP32Node, index uint32) (BIP32Node, error) {
	var data []byte
	if index >= hardenedOffset {
		data = make([]byte, 0, 37)
		data = append(data, 0x00)
		data = append(data, parent.Key[:]...)
	} else {
		priv, err := PrivateKeyFromBytes(parent.Key[:])
		if err != nil {
			return BIP32Node{}, err
		}
		data = priv.PubKey().SerializeCompressed()
	}
	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], index)
	data = append(data, idxBuf[:]...)

	i := HMACSHA512(parent.ChainCode[:], data)
	il, ir := i[:32], i[32:]

	var ilScalar, parentScalar secp256k1.ModNScalar
	if overflow := ilScalar.SetByteSlice(il); overflow {
		return BIP32Node{}, ErrInvalidScalar
	}
	if overflow := parentScalar.SetByteSlice(parent.Key[:]); overflow {
		return BIP32Node{}, ErrInvalidScalar
	}
	childScalar := new(secp256k1.ModNScalar).Add2(&ilScalar, &parentScalar)
	if childScalar.IsZero() {
		return BIP32Node{}, ErrInvalidScalar
	}

	var child BIP32Node
	childBytes := childScalar.Bytes()
	copy(child.Key[:], childBytes[:])
	copy(child.ChainCode[:], ir)
	return child, nil
}

// DeriveBIP32 derives the node at the given hardened/non-hardened path
// from the master seed, implementing the ECC group's derive_hd_node
// ECALL.
func DeriveBIP32(seed []byte, path []uint32) (BIP32Node, error) {
	node := bip32Master(seed)
	var err error
	for _, idx := range path {
		node, err = bip32CKDPriv(node, idx)
		if err != nil {
			return BIP32Node{}, err
		}
	}
	return node, nil
}

// MasterFingerprint computes the BIP-32 master key fingerprint: the first
// four bytes of RIPEMD160(SHA256(serP(masterPubkey))), implementing the
// get_master_fingerprint ECALL.
func MasterFingerprint(seed []byte) (uint32, error) {
	master := bip32Master(seed)
	priv, err := PrivateKeyFromBytes(master.Key[:])
	if err != nil {
		return 0, err
	}
	compressed := priv.PubKey().SerializeCompressed()
	sha := SHA256(compressed)
	ripe := RIPEMD160(sha[:])
	return binary.BigEndian.Uint32(ripe[:4]), nil
}

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
	"errors"
	"math/big"
)

// MaxBignumSize is the widest operand the bn_* ECALLs accept, in bytes.
// It exceeds the 256-bit width of a fixed-size curve scalar type, which is
// why this package reaches for math/big instead of a fixed-width
// integer, which would need a second, wider type for this operand range.
const MaxBignumSize = 64

// ErrBignumTooWide is returned when an operand exceeds MaxBignumSize.
var ErrBignumTooWide = errors.New("crypto: bignum operand exceeds maximum size")

// ErrBignumZeroModulus is returned when a modular operation is given a
// zero modulus.
var ErrBignumZeroModulus = errors.New("crypto: bignum modulus is zero")

// ErrBignumNotReduced is returned when an operand is not already reduced
// modulo the operation's modulus, which bn_addm/subm/multm require of
// both operands and bn_powm requires of its base.
var ErrBignumNotReduced = errors.New("crypto: bignum operand not reduced modulo modulus")

func bignumToInt(b []byte) (*big.Int, error) {
	if len(b) > MaxBignumSize {
		return nil, ErrBignumTooWide
	}
	return new(big.Int).SetBytes(b), nil
}

// bignumResult re-renders x as a big-endian byte slice of exactly width
// bytes, the same width the guest supplied its operands in.
func bignumResult(x *big.Int, width int) []byte {
	out := make([]byte, width)
	x.FillBytes(out)
	return out
}

// BnModM computes a mod m, implementing the bn_modm ECALL.
func BnModM(a, m []byte) ([]byte, error) {
	aInt, err := bignumToInt(a)
	if err != nil {
		return nil, err
	}
	mInt, err := bignumToInt(m)
	if err != nil {
		return nil, err
	}
	if mInt.Sign() == 0 {
		return nil, ErrBignumZeroModulus
	}
	r := new(big.Int).Mod(aInt, mInt)
	return bignumResult(r, len(m)), nil
}

// BnAddM computes (a+b) mod m, implementing the bn_addm ECALL. a and b
// must already be reduced modulo m.
func BnAddM(a, b, m []byte) ([]byte, error) {
	return bnModOp(a, b, m, new(big.Int).Add)
}

// BnSubM computes (a-b) mod m, implementing the bn_subm ECALL. a and b
// must already be reduced modulo m.
func BnSubM(a, b, m []byte) ([]byte, error) {
	return bnModOp(a, b, m, new(big.Int).Sub)
}

// BnMultM computes (a*b) mod m, implementing the bn_multm ECALL. a and b
// must already be reduced modulo m.
func BnMultM(a, b, m []byte) ([]byte, error) {
	return bnModOp(a, b, m, new(big.Int).Mul)
}

func bnModOp(a, b, m []byte, op func(x, y, z *big.Int) *big.Int) ([]byte, error) {
	aInt, err := bignumToInt(a)
	if err != nil {
		return nil, err
	}
	bInt, err := bignumToInt(b)
	if err != nil {
		return nil, err
	}
	mInt, err := bignumToInt(m)
	if err != nil {
		return nil, err
	}
	if mInt.Sign() == 0 {
		return nil, ErrBignumZeroModulus
	}
	if aInt.Cmp(mInt) >= 0 || bInt.Cmp(mInt) >= 0 {
		return nil, ErrBignumNotReduced
	}
	r := op(aInt, bInt, nil)
	r.Mod(r, mInt)
	return bignumResult(r, len(m)), nil
}

// BnPowM computes (a^e) mod m, implementing the bn_powm ECALL.
func BnPowM(a, e, m []byte) ([]byte, error) {
	aInt, err := bignumToInt(a)
	if err != nil {
		return nil, err
	}
	eInt, err := bignumToInt(e)
	if err != nil {
		return nil, err
	}
	mInt, err := bignumToInt(m)
	if err != nil {
		return nil, err
	}
	if mInt.Sign() == 0 {
		return nil, ErrBignumZeroModulus
	}
	if aInt.Cmp(mInt) >= 0 {
		return nil, ErrBignumNotReduced
	}
	r := new(big.Int).Exp(aInt, eInt, mInt)
	return bignumResult(r, len(m)), nil
}

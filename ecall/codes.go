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

// Package ecall implements the guest syscall surface a V-App reaches
// through a RISC-V ECALL trap: process control, buffered I/O with the
// host, UI forwarding, a CSPRNG, stateful hashing, fixed-width modular
// bignum arithmetic, secp256k1/BIP32 key derivation and signing, and
// SLIP-21. Handler implements riscv.EcallHandler; it never talks to the
// host channel directly for anything other than I/O and UI, and never
// touches guest memory except through the CPU it is handed.
package ecall

// Code identifies which syscall t0 (x5) selected on ECALL entry. The
// numbering below for the process/IO/hash/bignum groups matches the
// platform's own assignment one for one; the UI/RNG/ECC/SLIP-21 groups
// have no numbering fixed by that source, so this package assigns its
// own contiguous block for them (documented in DESIGN.md).
type Code uint32

const (
	CodeFatal Code = 1
	CodeXsend Code = 2
	CodeXrecv Code = 3
	CodeExit  Code = 4

	CodePanic Code = 11
	CodeUxIdle Code = 12

	CodeShowPage Code = 20
	CodeShowStep Code = 21
	CodeGetEvent Code = 22

	CodeGetRandomBytes Code = 30

	CodeBnModM  Code = 110
	CodeBnAddM  Code = 111
	CodeBnSubM  Code = 112
	CodeBnMultM Code = 113
	CodeBnPowM  Code = 114

	CodeHashInit   Code = 150
	CodeHashUpdate Code = 151
	CodeHashFinal  Code = 152

	CodeDeriveHDNode         Code = 160
	CodeGetMasterFingerprint Code = 161
	CodeEcfpAddPoint         Code = 162
	CodeEcfpScalarMult       Code = 163
	CodeECDSASign            Code = 164
	CodeECDSAVerify          Code = 165
	CodeSchnorrSign          Code = 166
	CodeSchnorrVerify        Code = 167

	CodeDeriveSLIP21Node Code = 170
)

// HashAlgorithm identifies which digest hash_init/update/final operates
// on; it is the first argument (a0) to all three calls.
type HashAlgorithm uint32

const (
	HashSHA256 HashAlgorithm = iota
	HashSHA512
	HashRIPEMD160
)

// Curve identifies the elliptic curve an ECC ECALL targets. Only
// secp256k1 is implemented; any other value is UnsupportedOperation.
type Curve uint32

const (
	CurveSecp256k1 Curve = 0
)

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
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/nconsigny/vanadium-sub001/riscv"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is required by the hash ECALL group, not a choice
)

// HashContext describes the ABI layout the guest pre-allocates for a
// stateful hash: an algorithm tag, the running digest state, and a
// 64-bit length counter. This package does not itself round-trip that
// struct's bytes on every call — it keeps the live hash.Hash keyed by
// the guest context pointer for the run's duration, which is
// observationally identical to the guest and far simpler than
// marshaling Go's internal hasher state on every update.
type HashContext struct {
	Algorithm HashAlgorithm
	StateSize int // 32 (SHA-256), 64 (SHA-512), 20 (RIPEMD-160)
	LenOffset int // byte offset of the 8-byte length counter within the struct
}

// HashContextLayouts gives the ABI struct layout per algorithm: state
// bytes followed by an 8-byte length counter.
var HashContextLayouts = map[HashAlgorithm]HashContext{
	HashSHA256:    {Algorithm: HashSHA256, StateSize: 32, LenOffset: 32},
	HashSHA512:    {Algorithm: HashSHA512, StateSize: 64, LenOffset: 64},
	HashRIPEMD160: {Algorithm: HashRIPEMD160, StateSize: 20, LenOffset: 20},
}

func newHasher(alg HashAlgorithm) (hash.Hash, error) {
	switch alg {
	case HashSHA256:
		return sha256.New(), nil
	case HashSHA512:
		return sha512.New(), nil
	case HashRIPEMD160:
		return ripemd160.New(), nil
	default:
		return nil, ErrUnsupportedOperation
	}
}

func (h *Handler) hashInit(cpu *riscv.CPU, alg HashAlgorithm, ctxPtr uint32) error {
	hasher, err := newHasher(alg)
	if err != nil {
		return err
	}
	h.hashStates[ctxPtr] = hasher
	return nil
}

func (h *Handler) hashUpdate(cpu *riscv.CPU, alg HashAlgorithm, ctxPtr, ptr, length uint32) error {
	hasher, ok := h.hashStates[ctxPtr]
	if !ok {
		return ErrInvalidArgument
	}
	data, err := cpu.ReadGuestBuffer(ptr, length)
	if err != nil {
		return fatalMemory("%s", err)
	}
	hasher.Write(data) //nolint:errcheck // hash.Hash.Write never errors
	return nil
}

func (h *Handler) hashFinal(cpu *riscv.CPU, alg HashAlgorithm, ctxPtr, outPtr uint32) error {
	hasher, ok := h.hashStates[ctxPtr]
	if !ok {
		return ErrInvalidArgument
	}
	digest := hasher.Sum(nil)
	delete(h.hashStates, ctxPtr)
	if err := cpu.WriteGuestBuffer(outPtr, digest); err != nil {
		return fatalMemory("%s", err)
	}
	return nil
}

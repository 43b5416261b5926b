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

// Package common holds types and constants shared by every Vanadium VM
// core component: the page/segment data model, the error taxonomy, and
// the host-facing status codes.
package common

import (
	"crypto/sha256"
	"fmt"
)

// PageSize is the fixed size, in bytes, of one guest memory page.
const PageSize = 256

// NonceSize is the width of the AES-CTR nonce embedded in a serialized
// encrypted page.
const NonceSize = 12

// SerializedPageSize is the size of the leaf blob hashed into CAPS:
// 1 flag byte + a 12-byte nonce + PageSize bytes of content.
const SerializedPageSize = 1 + NonceSize + PageSize

// HashSize is the width of a SHA-256 digest, used throughout as the CAPS
// node/leaf hash width.
const HashSize = sha256.Size

// Hash is a 32-byte SHA-256 digest.
type Hash [HashSize]byte

// SectionKind identifies which of a V-App's three memory regions a page
// request or commit refers to.
type SectionKind uint8

const (
	SectionCode SectionKind = iota
	SectionData
	SectionStack
)

func (k SectionKind) String() string {
	switch k {
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	case SectionStack:
		return "stack"
	default:
		return fmt.Sprintf("SectionKind(%d)", uint8(k))
	}
}

// Page is PAGE_SIZE bytes of raw guest content.
type Page [PageSize]byte

// PageStart computes page_start(address), matching the original
// implementation's page_start helper: the address rounded down to the
// nearest page boundary.
func PageStart(address uint32) uint32 {
	return address &^ (PageSize - 1)
}

// SerializedPage is the 269-byte leaf blob: encrypted_flag || nonce ||
// ciphertext-or-cleartext. It is what gets hashed into CAPS and what
// crosses the wire to/from the host.
type SerializedPage struct {
	Encrypted bool
	Nonce     [NonceSize]byte
	Content   Page
}

// Bytes serializes the page to its canonical 269-byte wire form.
func (p *SerializedPage) Bytes() []byte {
	out := make([]byte, SerializedPageSize)
	if p.Encrypted {
		out[0] = 1
	}
	copy(out[1:1+NonceSize], p.Nonce[:])
	copy(out[1+NonceSize:], p.Content[:])
	return out
}

// ParseSerializedPage decodes a 269-byte wire blob into a SerializedPage.
func ParseSerializedPage(raw []byte) (*SerializedPage, error) {
	if len(raw) != SerializedPageSize {
		return nil, fmt.Errorf("vanadium: serialized page has wrong length %d, want %d", len(raw), SerializedPageSize)
	}
	sp := &SerializedPage{Encrypted: raw[0] == 1}
	copy(sp.Nonce[:], raw[1:1+NonceSize])
	copy(sp.Content[:], raw[1+NonceSize:])
	return sp, nil
}

// LeafHash computes SHA256(serialized_page), the CAPS leaf hash.
func (p *SerializedPage) LeafHash() Hash {
	return sha256.Sum256(p.Bytes())
}

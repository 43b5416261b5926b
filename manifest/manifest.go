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

// Package manifest implements the authenticated description of a V-App's
// memory layout and entrypoint (§4.5), its canonical encoding, and the
// device registration-key lifecycle.
package manifest

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/nconsigny/vanadium-sub001/crypto"
)

// Field-width limits on the Manifest's two free-text fields.
const (
	MaxNameLen    = 32
	MaxAppVerLen  = 32
	CurrentVersion = 1
)

// Stack size bounds, in bytes: a bounded stack without a fixed size,
// mirroring the platform's own default page-budget for a V-App (64
// pages, 16KiB).
const (
	MinStackSize = common.PageSize
	MaxStackSize = 64 * common.PageSize
)

// Region describes one of the three memory segments a Manifest lays out:
// a half-open, page-aligned byte range plus the CAPS root it starts from.
type Region struct {
	Start       uint32
	End         uint32
	InitialRoot common.Hash
}

// Size returns the region's byte length.
func (r Region) Size() uint32 { return r.End - r.Start }

func (r Region) validate(name string) error {
	if r.End < r.Start {
		return fmt.Errorf("manifest: %s region end %#x precedes start %#x", name, r.End, r.Start)
	}
	if r.Start%common.PageSize != 0 || r.Size()%common.PageSize != 0 {
		return fmt.Errorf("manifest: %s region [%#x,%#x) is not page-aligned", name, r.Start, r.End)
	}
	return nil
}

func (r Region) overlaps(o Region) bool {
	return r.Start < o.End && o.Start < r.End
}

// Manifest is the authenticated description of a V-App's memory layout,
// entrypoint, and initial Merkle roots (§3).
type Manifest struct {
	Version    uint32
	Name       string
	AppVersion string
	Entrypoint uint32
	Code       Region
	Data       Region
	Stack      Region
}

// ErrInvalidManifest is wrapped by every Validate failure.
var ErrInvalidManifest = errors.New("manifest: invalid")

// Validate checks every invariant from §3: page alignment, entrypoint
// placement, non-overlapping segments, and stack size bounds.
func (m *Manifest) Validate() error {
	if len(m.Name) > MaxNameLen {
		return fmt.Errorf("%w: name exceeds %d bytes", ErrInvalidManifest, MaxNameLen)
	}
	if len(m.AppVersion) > MaxAppVerLen {
		return fmt.Errorf("%w: app_version exceeds %d bytes", ErrInvalidManifest, MaxAppVerLen)
	}
	for _, r := range []struct {
		name string
		reg  Region
	}{{"code", m.Code}, {"data", m.Data}, {"stack", m.Stack}} {
		if err := r.reg.validate(r.name); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidManifest, err)
		}
	}
	if m.Entrypoint < m.Code.Start || m.Entrypoint >= m.Code.End {
		return fmt.Errorf("%w: entrypoint %#x outside code region", ErrInvalidManifest, m.Entrypoint)
	}
	if m.Code.overlaps(m.Data) || m.Code.overlaps(m.Stack) || m.Data.overlaps(m.Stack) {
		return fmt.Errorf("%w: segments overlap", ErrInvalidManifest)
	}
	if size := m.Stack.Size(); size < MinStackSize || size > MaxStackSize {
		return fmt.Errorf("%w: stack size %d outside [%d,%d]", ErrInvalidManifest, size, MinStackSize, MaxStackSize)
	}
	return nil
}

// canonicalSize is the fixed wire size of a canonically-encoded Manifest:
// version(4) + name(32) + app_version(32) + entrypoint(4) + 3*region(40).
const canonicalSize = 4 + MaxNameLen + MaxAppVerLen + 4 + 3*(4+4+common.HashSize)

// Canonical encodes the Manifest to its fixed-width wire form. Every
// field has a statically known size, so a flat encoding/binary layout
// serves exactly as well as a variable-length codec here and is simpler
// (see DESIGN.md for why this is a stdlib choice, not a library gap).
func (m *Manifest) Canonical() []byte {
	out := make([]byte, 0, canonicalSize)
	var u32 [4]byte

	binary.BigEndian.PutUint32(u32[:], m.Version)
	out = append(out, u32[:]...)
	out = append(out, padded(m.Name, MaxNameLen)...)
	out = append(out, padded(m.AppVersion, MaxAppVerLen)...)
	binary.BigEndian.PutUint32(u32[:], m.Entrypoint)
	out = append(out, u32[:]...)
	for _, r := range []Region{m.Code, m.Data, m.Stack} {
		binary.BigEndian.PutUint32(u32[:], r.Start)
		out = append(out, u32[:]...)
		binary.BigEndian.PutUint32(u32[:], r.End)
		out = append(out, u32[:]...)
		out = append(out, r.InitialRoot[:]...)
	}
	return out
}

func padded(s string, width int) []byte {
	out := make([]byte, width)
	copy(out, s)
	return out
}

// Parse decodes a canonically-encoded Manifest, without validating its
// invariants (call Validate separately).
func Parse(raw []byte) (*Manifest, error) {
	if len(raw) != canonicalSize {
		return nil, fmt.Errorf("%w: wrong length %d, want %d", ErrInvalidManifest, len(raw), canonicalSize)
	}
	m := &Manifest{}
	off := 0
	readU32 := func() uint32 {
		v := binary.BigEndian.Uint32(raw[off : off+4])
		off += 4
		return v
	}
	m.Version = readU32()
	m.Name = trimPadding(raw[off : off+MaxNameLen])
	off += MaxNameLen
	m.AppVersion = trimPadding(raw[off : off+MaxAppVerLen])
	off += MaxAppVerLen
	m.Entrypoint = readU32()
	for _, region := range []*Region{&m.Code, &m.Data, &m.Stack} {
		region.Start = readU32()
		region.End = readU32()
		copy(region.InitialRoot[:], raw[off:off+common.HashSize])
		off += common.HashSize
	}
	return m, nil
}

func trimPadding(b []byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return string(b[:i])
}

// Hash returns SHA256(canonical_bytes), the manifest_hash of §4.5.
func (m *Manifest) Hash() common.Hash {
	return common.Hash(crypto.SHA256(m.Canonical()))
}

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

package oms

import (
	"github.com/nconsigny/vanadium-sub001/caps"
	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/nconsigny/vanadium-sub001/crypto"
	"github.com/nconsigny/vanadium-sub001/vlog"
)

var log = vlog.New("component", "oms")

// Segment exposes one of a run's three memory regions (code/data/stack)
// to the interpreter. The bulk of its pages live on the host; Segment
// keeps only the region's current Merkle root, a bounded page cache, and
// (for writable segments) a reference to the run's shared encryption
// state.
type Segment struct {
	BaseAddr   uint32
	Size       uint32
	PageCount  uint32
	IsReadOnly bool
	Section    common.SectionKind

	root common.Hash
	Cache *PageCache
	Enc   *EncState // nil for read-only segments
	Host  Host
}

// NewSegment builds a segment over [baseAddr, baseAddr+size), initialized
// to initialRoot (taken from the Manifest), with the given cache capacity
// and eviction policy. Writable segments require a shared EncState.
func NewSegment(baseAddr, size uint32, initialRoot common.Hash, readOnly bool, section common.SectionKind, cacheCapacity int, policy EvictionPolicy, enc *EncState, host Host) *Segment {
	return &Segment{
		BaseAddr:   baseAddr,
		Size:       size,
		PageCount:  (size + common.PageSize - 1) / common.PageSize,
		IsReadOnly: readOnly,
		Section:    section,
		root:       initialRoot,
		Cache:      NewPageCache(cacheCapacity, policy),
		Enc:        enc,
		Host:       host,
	}
}

// Root returns the segment's current CAPS root.
func (s *Segment) Root() common.Hash { return s.root }

func (s *Segment) pageIndex(addr uint32) uint32 {
	return (addr - s.BaseAddr) / common.PageSize
}

func (s *Segment) checkBounds(addr uint32, width uint32, align uint32) error {
	if addr < s.BaseAddr || addr+width < addr || addr+width > s.BaseAddr+s.Size {
		return errAddressOutOfBounds(addr, width, s.BaseAddr, s.Size)
	}
	if align > 1 && addr%align != 0 {
		return errUnaligned(addr, int(align))
	}
	return nil
}

// ensurePage guarantees pageIndex is resident, fetching it from the host
// on a miss (committing and evicting a victim first if the cache is
// full), and returns the resident slot.
func (s *Segment) ensurePage(pageIndex uint32) (*cacheSlot, error) {
	if slot, ok := s.Cache.Lookup(pageIndex); ok {
		s.Cache.Policy.OnAccess(slot, pageIndex)
		return s.Cache.Slot(slot), nil
	}
	if len(s.Cache.slots) == 0 {
		return nil, errCacheFull()
	}

	slot, ok := s.Cache.FreeSlot()
	if !ok {
		victim := s.Cache.Policy.ChooseVictim()
		victimSlot := s.Cache.Slot(victim)
		log.Debug("evicting page", "section", s.Section, "index", victimSlot.pageIndex, "dirty", victimSlot.dirty)
		if victimSlot.dirty {
			if err := s.commitSlot(victim); err != nil {
				return nil, err
			}
		}
		s.Cache.Invalidate(victim)
		slot = victim
	}

	log.Debug("page miss", "section", s.Section, "index", pageIndex)
	page, proof, err := s.Host.GetPage(s.Section, pageIndex)
	if err != nil {
		return nil, errHostProtocol(err.Error())
	}
	leafHash := page.LeafHash()
	if caps.VerifyPath(leafHash, int(pageIndex), proof) != s.root {
		return nil, errIntegrityFailure(pageIndex)
	}

	// A writable page is Encrypted once it has been committed by the
	// device at least once; before that its baseline state (matching
	// initial_root, which a manifest-building tool computes the same way
	// as a read-only segment's) is plaintext zero-fill. A read-only
	// segment's pages are never anything else.
	var content common.Page
	if page.Encrypted {
		if s.IsReadOnly {
			return nil, errIntegrityFailure(pageIndex)
		}
		plain, err := crypto.AESCTR(s.Enc.Key, page.Nonce, page.Content[:])
		if err != nil {
			return nil, errHostProtocol(err.Error())
		}
		copy(content[:], plain)
	} else {
		content = page.Content
	}

	s.Cache.Install(slot, pageIndex, content, leafHash)
	s.Cache.Policy.OnLoad(slot, pageIndex)
	return s.Cache.Slot(slot), nil
}

// commitSlot encrypts and sends the dirty slot's content to the host,
// authenticates the exchange against the segment's current root, and
// advances the root to reflect the new leaf. Only after this succeeds is
// the slot clean.
func (s *Segment) commitSlot(slot int) error {
	cs := s.Cache.Slot(slot)
	nonce := s.Enc.NextNonce()
	ciphertext, err := crypto.AESCTR(s.Enc.Key, nonce, cs.data[:])
	if err != nil {
		return errHostProtocol(err.Error())
	}
	var sp common.SerializedPage
	sp.Encrypted = true
	sp.Nonce = nonce
	copy(sp.Content[:], ciphertext)

	oldLeafProof, err := s.Host.CommitPage(s.Section, cs.pageIndex, sp)
	if err != nil {
		return errHostProtocol(err.Error())
	}
	if caps.VerifyPath(cs.leafHash, int(cs.pageIndex), oldLeafProof) != s.root {
		return errIntegrityFailure(cs.pageIndex)
	}

	newLeaf := sp.LeafHash()
	s.root = caps.VerifyPath(newLeaf, int(cs.pageIndex), oldLeafProof)
	cs.leafHash = newLeaf
	cs.dirty = false
	log.Debug("committed page", "section", s.Section, "index", cs.pageIndex)
	return nil
}

// Flush commits every dirty resident slot, used at the end of a run so no
// writes are lost even if they never triggered an eviction.
func (s *Segment) Flush() error {
	for i := range s.Cache.slots {
		if s.Cache.slots[i].valid && s.Cache.slots[i].dirty {
			if err := s.commitSlot(i); err != nil {
				return err
			}
		}
	}
	return nil
}

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

// Package oms implements the Outsourced Memory Segment: a flat,
// byte-addressable guest memory region backed by a bounded in-device page
// cache, a pluggable eviction policy, and an untrusted host holding the
// bulk of the pages. See EncState and Segment for the confidentiality and
// integrity machinery; CAPS lives in the sibling caps package and is used
// here only through its stateless VerifyPath helper — the device keeps
// just the segment's current root, not the full leaf table, and relies on
// host-supplied Merkle proofs for every page it touches.
package oms

import "github.com/nconsigny/vanadium-sub001/common"

type cacheSlot struct {
	valid     bool
	pageIndex uint32
	data      common.Page
	dirty     bool
	leafHash  common.Hash // leaf hash last verified against the segment root
}

// PageCache is the bounded set of resident pages for one segment.
type PageCache struct {
	slots  []cacheSlot
	byPage map[uint32]int
	Policy EvictionPolicy
}

// NewPageCache builds a cache with the given slot capacity and eviction
// policy.
func NewPageCache(capacity int, policy EvictionPolicy) *PageCache {
	return &PageCache{
		slots:  make([]cacheSlot, capacity),
		byPage: make(map[uint32]int, capacity),
		Policy: policy,
	}
}

// Lookup returns the slot index holding pageIndex, if resident.
func (c *PageCache) Lookup(pageIndex uint32) (int, bool) {
	slot, ok := c.byPage[pageIndex]
	return slot, ok
}

// Slot returns a pointer to the slot at the given index.
func (c *PageCache) Slot(slot int) *cacheSlot {
	return &c.slots[slot]
}

// FreeSlot returns an unused slot index, if one exists.
func (c *PageCache) FreeSlot() (int, bool) {
	for i := range c.slots {
		if !c.slots[i].valid {
			return i, true
		}
	}
	return 0, false
}

// Invalidate clears a slot, removing it from the page index and notifying
// the eviction policy. Callers must have already committed the slot if it
// was dirty.
func (c *PageCache) Invalidate(slot int) {
	s := &c.slots[slot]
	if s.valid {
		delete(c.byPage, s.pageIndex)
		c.Policy.OnInvalidate(slot, s.pageIndex)
	}
	*s = cacheSlot{}
}

// Install places pageIndex's content into slot, marking it clean.
func (c *PageCache) Install(slot int, pageIndex uint32, data common.Page, leafHash common.Hash) {
	c.slots[slot] = cacheSlot{valid: true, pageIndex: pageIndex, data: data, leafHash: leafHash}
	c.byPage[pageIndex] = slot
}

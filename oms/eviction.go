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
	lru "github.com/hashicorp/golang-lru/simplelru"
)

// EvictionPolicy decides which cache slot to reclaim on a miss. Every
// method is keyed by slot index, not page index: the cache owns the
// mapping between the two and calls these hooks at the points where the
// original policy traits (`on_access`, `on_load`, `choose_victim`,
// `on_invalidate`) are invoked.
type EvictionPolicy interface {
	OnAccess(slot int, pageIndex uint32)
	OnLoad(slot int, pageIndex uint32)
	ChooseVictim() int
	OnInvalidate(slot int, pageIndex uint32)
}

// LRUPolicy is strict least-recently-used ordering over slot indices,
// built on hashicorp/golang-lru's simplelru. Because the set of keys is
// exactly the fixed set of slot indices [0, numSlots), Add never
// introduces a key beyond the configured capacity and so never triggers
// simplelru's own auto-eviction — ChooseVictim (via GetOldest) always
// peeks without removing, letting the caller commit a dirty victim
// before it is actually reclaimed.
type LRUPolicy struct {
	lru *lru.LRU
}

// NewLRUPolicy builds an LRU policy for a cache with numSlots slots.
func NewLRUPolicy(numSlots int) *LRUPolicy {
	l, err := lru.NewLRU(numSlots, nil)
	if err != nil {
		// Only returned for a non-positive size, which is a configuration bug.
		panic(err)
	}
	return &LRUPolicy{lru: l}
}

func (p *LRUPolicy) OnAccess(slot int, pageIndex uint32) { p.lru.Add(slot, pageIndex) }
func (p *LRUPolicy) OnLoad(slot int, pageIndex uint32)   { p.lru.Add(slot, pageIndex) }

func (p *LRUPolicy) ChooseVictim() int {
	key, _, ok := p.lru.GetOldest()
	if !ok {
		return 0
	}
	return key.(int)
}

func (p *LRUPolicy) OnInvalidate(slot int, _ uint32) {
	p.lru.Remove(slot)
}

// twoQState is a slot's membership in the 2Q queue structure.
type twoQState int

const (
	twoQFree twoQState = iota
	twoQA1
	twoQAm
)

// TwoQPolicy implements the 2Q replacement algorithm (Johnson & Shasha,
// VLDB 1994): an A1 FIFO admission queue, an Am LRU retention queue, and
// a bounded ghost list A1-out of recently evicted A1 page indices. A page
// that re-enters via A1-out is promoted straight to Am, giving scan-heavy
// access patterns a chance to avoid polluting the LRU-tracked working
// set. States are tracked by linear scan over slots, acceptable for the
// small cache sizes an on-device page cache ever holds.
type TwoQPolicy struct {
	states       []twoQState
	timestamps   []uint32
	globalCount  uint32
	a1Max        int
	a1Size       int
	a1out        []uint32
	a1outMax     int
}

// NewTwoQPolicy builds a 2Q policy for numSlots slots, with the given A1
// and A1-out capacities. a1Max must be smaller than numSlots.
func NewTwoQPolicy(numSlots, a1Max, a1outMax int) *TwoQPolicy {
	if a1Max >= numSlots {
		panic("oms: 2Q a1Max must be smaller than numSlots")
	}
	return &TwoQPolicy{
		states:     make([]twoQState, numSlots),
		timestamps: make([]uint32, numSlots),
		a1Max:      a1Max,
		a1outMax:   a1outMax,
	}
}

// DefaultTwoQSizing returns the default A1/A1-out sizing
// for a cache of the given capacity: a1_max = slots/4, a1out_max = slots/2.
func DefaultTwoQSizing(slots int) (a1Max, a1outMax int) {
	return slots / 4, slots / 2
}

func (p *TwoQPolicy) OnAccess(slot int, _ uint32) {
	p.globalCount++
	if p.states[slot] == twoQAm {
		p.timestamps[slot] = p.globalCount
	}
	// A1 hits do not move, per the admission-queue semantics.
}

func (p *TwoQPolicy) OnLoad(slot int, pageIndex uint32) {
	p.globalCount++
	if pos := p.indexInA1out(pageIndex); pos >= 0 {
		p.a1out = append(p.a1out[:pos], p.a1out[pos+1:]...)
		p.states[slot] = twoQAm
		p.timestamps[slot] = p.globalCount
		return
	}
	p.states[slot] = twoQA1
	p.timestamps[slot] = p.globalCount
	p.a1Size++
}

func (p *TwoQPolicy) indexInA1out(pageIndex uint32) int {
	for i, v := range p.a1out {
		if v == pageIndex {
			return i
		}
	}
	return -1
}

func (p *TwoQPolicy) ChooseVictim() int {
	if p.a1Size >= p.a1Max {
		if victim, ok := p.oldestInState(twoQA1); ok {
			return victim
		}
		return p.mustOldestInState(twoQAm)
	}
	if victim, ok := p.oldestInState(twoQAm); ok {
		return victim
	}
	return p.mustOldestInState(twoQA1)
}

func (p *TwoQPolicy) oldestInState(state twoQState) (int, bool) {
	oldest := ^uint32(0)
	victim := -1
	for i, s := range p.states {
		if s == state && p.timestamps[i] < oldest {
			oldest = p.timestamps[i]
			victim = i
		}
	}
	return victim, victim >= 0
}

func (p *TwoQPolicy) mustOldestInState(state twoQState) int {
	victim, ok := p.oldestInState(state)
	if !ok {
		// Every resident slot is in A1 or Am; a cache with no free slots
		// and no victim in either queue cannot happen.
		panic("oms: 2Q cache has no eviction candidate")
	}
	return victim
}

func (p *TwoQPolicy) OnInvalidate(slot int, pageIndex uint32) {
	if p.states[slot] == twoQA1 {
		p.a1Size--
		if len(p.a1out) == p.a1outMax {
			if p.a1outMax == 0 {
				p.states[slot] = twoQFree
				return
			}
			p.a1out = p.a1out[1:]
		}
		p.a1out = append(p.a1out, pageIndex)
	}
	p.states[slot] = twoQFree
}

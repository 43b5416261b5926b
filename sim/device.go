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

// Package sim is an in-process stand-in for the untrusted host: a page
// store per segment, a UI event queue, and xsend/xrecv byte pipes. It
// implements comm.Channel directly, with no wire framing, matching the
// "host round-trip modeled as a direct synchronous call" design the VM
// core assumes; config.Config.Simulated selects it in place of a real
// transport.
package sim

import (
	"fmt"
	"sync"

	"github.com/nconsigny/vanadium-sub001/caps"
	"github.com/nconsigny/vanadium-sub001/common"
)

// section is one segment's simulated page store: a CAPS accumulator over
// the serialized pages currently backing the segment, plus a one-shot
// tamper hook tests use to corrupt a page on its next read (exercising
// integrity-check failure on the device side).
type section struct {
	mu      sync.Mutex
	accum   *caps.CAPS
	pages   []common.SerializedPage
	tampers map[uint32]func(*common.SerializedPage)
}

func newSection(pageCount int) *section {
	leaves := make([]common.Hash, pageCount)
	pages := make([]common.SerializedPage, pageCount)
	for i := range pages {
		// Baseline state for every segment is plaintext zero-fill; see
		// oms.Segment.ensurePage for why a writable segment's Encrypted
		// flag only toggles true once the device has committed to it.
		leaves[i] = pages[i].LeafHash()
	}
	return &section{accum: caps.New(leaves), pages: pages}
}

// Root returns the section's current CAPS root, the value a Manifest's
// Region.InitialRoot must match before any run against this Device.
func (s *section) Root() common.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accum.Root()
}

// Tamper arranges for the next GetPage of pageIndex to run mutate over
// the stored page before it is returned, without updating the stored
// CAPS leaf — simulating a host that lies about page content.
func (s *section) Tamper(pageIndex uint32, mutate func(*common.SerializedPage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tampers == nil {
		s.tampers = make(map[uint32]func(*common.SerializedPage))
	}
	s.tampers[pageIndex] = mutate
}

func (s *section) getPage(index uint32) (common.SerializedPage, []common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(index) >= len(s.pages) {
		return common.SerializedPage{}, nil, caps.ErrPageNotFound
	}
	proof, err := s.accum.Prove(int(index))
	if err != nil {
		return common.SerializedPage{}, nil, err
	}
	page := s.pages[index]
	if mutate, ok := s.tampers[index]; ok {
		mutate(&page)
		delete(s.tampers, index)
	}
	return page, proof, nil
}

func (s *section) commitPage(index uint32, page common.SerializedPage) ([]common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(index) >= len(s.pages) {
		return nil, caps.ErrPageNotFound
	}
	oldProof, err := s.accum.Prove(int(index))
	if err != nil {
		return nil, err
	}
	if _, _, err := s.accum.Update(int(index), page.LeafHash()); err != nil {
		return nil, err
	}
	s.pages[index] = page
	return oldProof, nil
}

// Device is the full simulated host: page stores for the three segments,
// a UI event queue, and xsend/xrecv pipes. The zero value is not usable;
// build one with NewDevice.
type Device struct {
	sections map[common.SectionKind]*section

	events    []event
	uiHistory [][]byte // ShowPage/ShowStep payloads, in call order, for test assertions

	mu        sync.Mutex
	outbox    []byte   // bytes most recently received from the guest via SendBuffer
	inbox     [][]byte // chunks queued for the guest's next xrecv, in order
	idleCalls int
}

type event struct {
	code uint32
	data []byte
}

// NewDevice builds a Device with the given page counts for the code,
// data, and stack segments respectively, all starting at the baseline
// plaintext zero-fill state.
func NewDevice(codePages, dataPages, stackPages int) *Device {
	return &Device{
		sections: map[common.SectionKind]*section{
			common.SectionCode:  newSection(codePages),
			common.SectionData:  newSection(dataPages),
			common.SectionStack: newSection(stackPages),
		},
	}
}

// Roots returns the three segments' current CAPS roots, in code/data/
// stack order, for building a Manifest that targets this Device.
func (d *Device) Roots() (code, data, stack common.Hash) {
	return d.sections[common.SectionCode].Root(),
		d.sections[common.SectionData].Root(),
		d.sections[common.SectionStack].Root()
}

// LoadCode seeds the code segment's page content directly (code is
// read-only and never committed by the device, so it has no other way to
// become non-zero) and returns the resulting root.
func (d *Device) LoadCode(pages []common.Page) common.Hash {
	sec := d.sections[common.SectionCode]
	sec.mu.Lock()
	defer sec.mu.Unlock()
	for i, p := range pages {
		if i >= len(sec.pages) {
			break
		}
		sp := common.SerializedPage{Content: p}
		sec.pages[i] = sp
		sec.accum.Update(i, sp.LeafHash())
	}
	return sec.accum.Root()
}

// Tamper corrupts the next read of the given section/page, exercising
// the device's integrity check.
func (d *Device) Tamper(section common.SectionKind, pageIndex uint32, mutate func(*common.SerializedPage)) {
	d.sections[section].Tamper(pageIndex, mutate)
}

// GetPage implements oms.Host.
func (d *Device) GetPage(section common.SectionKind, index uint32) (common.SerializedPage, []common.Hash, error) {
	sec, ok := d.sections[section]
	if !ok {
		return common.SerializedPage{}, nil, fmt.Errorf("sim: unknown section %s", section)
	}
	return sec.getPage(index)
}

// CommitPage implements oms.Host.
func (d *Device) CommitPage(section common.SectionKind, index uint32, page common.SerializedPage) ([]common.Hash, error) {
	sec, ok := d.sections[section]
	if !ok {
		return nil, fmt.Errorf("sim: unknown section %s", section)
	}
	return sec.commitPage(index, page)
}

// GetVersion implements comm.Channel.
func (d *Device) GetVersion() (string, error) {
	return "vanadium-sim-1.0", nil
}

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

import "github.com/nconsigny/vanadium-sub001/common"

// Host is the comm-layer seam a Segment uses to round-trip with the
// untrusted host. A real implementation (package comm) maps each method
// onto the suspend-on-InterruptedExecution / resume-on-Continue protocol
// of §6; a test implementation (package sim) can answer in-process.
//
// CommitPage folds the wire-level CommitPage/CommitPageContent two-message
// exchange into one call: the host is given the new serialized page and
// replies with a Merkle proof for the segment's previous leaf at index,
// which the caller uses to authenticate the commit before advancing its
// root.
type Host interface {
	GetPage(section common.SectionKind, index uint32) (page common.SerializedPage, proof []common.Hash, err error)
	CommitPage(section common.SectionKind, index uint32, page common.SerializedPage) (oldLeafProof []common.Hash, err error)
}

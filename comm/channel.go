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

// Package comm defines the abstract contract between the VM core and the
// untrusted host: the command surface (GetVersion/RegisterVApp/
// StartVApp/Continue) and the side-channel tags a run uses while
// StartVApp is in flight (GetPage/CommitPage/CommitPageContent/
// SendBuffer/ReceiveBuffer). Wire framing of these messages onto a
// concrete transport is out of scope; Channel exposes each side-channel
// exchange as a single blocking call, matching the "host round-trip
// modeled as a direct synchronous call" design this VM core assumes.
package comm

import (
	"github.com/nconsigny/vanadium-sub001/ecall"
	"github.com/nconsigny/vanadium-sub001/oms"
)

// Channel is everything the session controller, OMS, and ECALL handler
// need from the host for the duration of one run: the page store
// round-trips oms.Host defines, the guest syscall round-trips
// ecall.Channel defines, and GetVersion for the command surface outside
// any run. A concrete implementation owns the real wire transport (or,
// for tests, package sim's in-memory loopback); this package only
// describes the contract.
type Channel interface {
	oms.Host
	ecall.Channel

	// GetVersion answers the device's version string, the one command
	// that exists outside any run.
	GetVersion() (string, error)
}

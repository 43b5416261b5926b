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

// This component's failure taxonomy. Every one of these is fatal to the
// current run; all wrap a common.RuntimeError via common.NewRuntimeError.

func errAddressOutOfBounds(addr, width, base, size uint32) *common.RuntimeError {
	return common.NewRuntimeError(common.ErrMemory,
		"address %#x (width %d) out of bounds for segment [%#x,%#x)", addr, width, base, base+size)
}

func errUnaligned(addr uint32, width int) *common.RuntimeError {
	return common.NewRuntimeError(common.ErrMemory, "address %#x is not %d-byte aligned", addr, width)
}

func errWriteToReadOnly(addr uint32) *common.RuntimeError {
	return common.NewRuntimeError(common.ErrMemory, "write to read-only segment at address %#x", addr)
}

func errIntegrityFailure(pageIndex uint32) *common.RuntimeError {
	return common.NewRuntimeError(common.ErrIntegrity, "page %d failed Merkle verification against segment root", pageIndex)
}

func errCacheFull() *common.RuntimeError {
	return common.NewRuntimeError(common.ErrProtocol, "page cache has no free slot and no eviction candidate")
}

func errHostProtocol(detail string) *common.RuntimeError {
	return common.NewRuntimeError(common.ErrProtocol, "%s", detail)
}

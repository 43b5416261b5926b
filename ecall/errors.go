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
	"errors"

	"github.com/nconsigny/vanadium-sub001/common"
)

// ErrInvalidArgument and ErrUnsupportedOperation are recoverable: the
// dispatcher turns them into a failure value returned to the guest in
// a0 rather than aborting the run. Any other error returned from a
// handler method is treated as fatal.
var (
	ErrInvalidArgument     = errors.New("vanadium: ecall invalid argument")
	ErrUnsupportedOperation = errors.New("vanadium: ecall unsupported operation")
)

// ExitError is returned by the process group's exit ECALL. It is not a
// failure: the session controller catches it to end the run normally
// and report Status to the host.
type ExitError struct {
	Status int32
}

func (e *ExitError) Error() string { return "vanadium: guest exit" }

// isRecoverable reports whether err should be mapped to an ABI failure
// code and returned to the guest, instead of aborting the run.
func isRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrUnsupportedOperation)
}

func fatalMemory(format string, args ...interface{}) error {
	return common.NewRuntimeError(common.ErrMemory, format, args...)
}

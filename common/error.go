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

package common

import (
	"errors"
	"fmt"
)

// Taxonomy sentinels. Every fatal failure surfaced by the VM core wraps
// exactly one of these; callers use errors.Is to classify a RuntimeError
// without caring which component raised it.
var (
	// ErrProtocol is returned when a host message is malformed or arrives
	// out of the expected sequence.
	ErrProtocol = errors.New("vanadium: host protocol error")

	// ErrIntegrity is returned when a Merkle proof fails to reconstruct the
	// expected root on a page read or commit.
	ErrIntegrity = errors.New("vanadium: integrity check failed")

	// ErrMemory is returned for guest address-out-of-bounds, unaligned
	// access, or a write to a read-only segment.
	ErrMemory = errors.New("vanadium: memory error")

	// ErrDecode is returned for an unknown opcode, a misaligned program
	// counter, or an EBREAK trap.
	ErrDecode = errors.New("vanadium: decode/execute error")

	// ErrSignature is returned when the registration HMAC does not match
	// at launch.
	ErrSignature = errors.New("vanadium: signature verification failed")

	// ErrPanic wraps a guest-reported panic/fatal condition.
	ErrPanic = errors.New("vanadium: guest panic")
)

// Status is one of the device-to-host status codes from §6.
type Status uint16

const (
	StatusOK                   Status = 0x9000
	StatusInterruptedExecution Status = 0x9001
	StatusIncorrectData        Status = 0x6a80
	StatusWrongApduLength      Status = 0x6700
	StatusSignatureFail        Status = 0x6a85 // #nosec -- not a secret
	StatusVMRuntimeError       Status = 0x6f01
	StatusVAppPanic            Status = 0x6f02
	StatusInsNotSupported      Status = 0x6d00
	StatusWrongP1P2            Status = 0x6b00
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInterruptedExecution:
		return "InterruptedExecution"
	case StatusIncorrectData:
		return "IncorrectData"
	case StatusWrongApduLength:
		return "WrongApduLength"
	case StatusSignatureFail:
		return "SignatureFail"
	case StatusVMRuntimeError:
		return "VMRuntimeError"
	case StatusVAppPanic:
		return "VAppPanic"
	case StatusInsNotSupported:
		return "InsNotSupported"
	case StatusWrongP1P2:
		return "WrongP1P2"
	default:
		return fmt.Sprintf("Status(0x%04x)", uint16(s))
	}
}

// RuntimeError is the fatal-error value propagated up through OMS, the
// interpreter, the ECALL handler, and the session controller. It pairs a
// host-visible Status with the taxonomy sentinel it wraps and any extra
// context describing what went wrong.
type RuntimeError struct {
	Status Status
	Kind   error // one of the sentinels above
	Detail string
}

func (e *RuntimeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (%s)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Detail, e.Status)
}

func (e *RuntimeError) Unwrap() error { return e.Kind }

// NewRuntimeError builds a RuntimeError, deriving the host status code from
// the taxonomy sentinel unless the sentinel is ErrPanic, which always maps
// to StatusVAppPanic regardless of detail.
func NewRuntimeError(kind error, format string, args ...interface{}) *RuntimeError {
	status := StatusVMRuntimeError
	switch {
	case errors.Is(kind, ErrSignature):
		status = StatusSignatureFail
	case errors.Is(kind, ErrPanic):
		status = StatusVAppPanic
	case errors.Is(kind, ErrProtocol):
		status = StatusVMRuntimeError
	}
	return &RuntimeError{Status: status, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

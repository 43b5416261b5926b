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

// Package vlog is a thin shim over log15, re-exporting the root logger's
// type and constructor so call sites read vlog.New/vlog.Logger instead of
// reaching into log15 directly, the same per-package logger convention
// go-probe uses throughout its subsystems.
package vlog

import "github.com/inconshreveable/log15"

// Logger is log15's structured logger.
type Logger = log15.Logger

// New returns a sub-logger of the process root, with ctx attached to
// every record it emits: vlog.New("component", "oms").
func New(ctx ...interface{}) Logger {
	return log15.New(ctx...)
}

// Root returns the process-wide root logger.
func Root() Logger {
	return log15.Root()
}

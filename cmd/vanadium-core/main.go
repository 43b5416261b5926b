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

// Command vanadium-core wires config, the registration-key store, and
// the session controller together over package sim's in-process channel
// and runs a single trivial V-App end to end, for manual smoke-testing.
// It is not a UX surface or a client CLI (see SPEC_FULL.md Non-goals);
// there is no real host transport to dial yet.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/nconsigny/vanadium-sub001/config"
	"github.com/nconsigny/vanadium-sub001/manifest"
	"github.com/nconsigny/vanadium-sub001/session"
	"github.com/nconsigny/vanadium-sub001/sim"
	"github.com/nconsigny/vanadium-sub001/vlog"
)

var configPath = flag.String("config", "", "TOML configuration file (defaults to config.Default())")

// smokeProgram is "exit(0)": addi a0, zero, 0; addi t0, zero, CodeExit; ecall.
var smokeProgram = []byte{
	0x13, 0x05, 0x00, 0x00,
	0x93, 0x02, 0x40, 0x00,
	0x73, 0x00, 0x00, 0x00,
}

func main() {
	flag.Parse()
	log := vlog.Root()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Crit("failed to load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if !cfg.Simulated {
		log.Crit("no real host transport is wired yet; rerun with a simulated config")
		os.Exit(1)
	}

	store := &manifest.FileKeyStore{Path: cfg.RegistrationKeyPath}
	registrar := manifest.NewRegistrar(store)
	ctl := session.New(cfg, registrar, make([]byte, 32))

	device := sim.NewDevice(1, 1, 1)
	device.LoadCode([]common.Page{toPage(smokeProgram)})
	codeRoot, dataRoot, stackRoot := device.Roots()

	m := &manifest.Manifest{
		Version:    manifest.CurrentVersion,
		Name:       "smoke-test",
		AppVersion: "1.0",
		Entrypoint: 0,
		Code:       manifest.Region{Start: 0, End: common.PageSize, InitialRoot: codeRoot},
		Data:       manifest.Region{Start: common.PageSize, End: 2 * common.PageSize, InitialRoot: dataRoot},
		Stack:      manifest.Region{Start: 2 * common.PageSize, End: 3 * common.PageSize, InitialRoot: stackRoot},
	}

	raw := m.Canonical()
	hmac, err := ctl.Register(raw)
	if err != nil {
		log.Crit("registration failed", "err", err)
		os.Exit(1)
	}

	result, err := ctl.Run(raw, hmac, device)
	if err != nil {
		log.Error("run failed", "status", result.Status, "err", err)
		os.Exit(1)
	}
	fmt.Printf("run complete: status=%s exit=%d\n", result.Status, result.Exit)
}

func toPage(program []byte) common.Page {
	var p common.Page
	copy(p[:], program)
	return p
}

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

// Package session implements the device-side main loop: Idle while
// waiting for a command, Running while a V-App executes. Every host
// round-trip a run needs (page miss, page commit, ECALL I/O) is a direct
// blocking call into the comm.Channel the run was started with, so the
// interpreter loop itself never has to model suspension explicitly; the
// Channel implementation (package sim, or a real transport) owns that.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nconsigny/vanadium-sub001/comm"
	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/nconsigny/vanadium-sub001/config"
	"github.com/nconsigny/vanadium-sub001/crypto"
	"github.com/nconsigny/vanadium-sub001/ecall"
	"github.com/nconsigny/vanadium-sub001/manifest"
	"github.com/nconsigny/vanadium-sub001/oms"
	"github.com/nconsigny/vanadium-sub001/riscv"
	"github.com/nconsigny/vanadium-sub001/vlog"
)

// Version is the device version string GetVersion answers.
const Version = "vanadium-1.0"

// Result is what a completed run reports to the host: either a normal
// guest exit status or a fatal RuntimeError's Status.
type Result struct {
	Status common.Status
	Exit   int32 // valid only when Status == common.StatusOK
}

// Controller is the device's single session: one registration-key
// lifecycle, one "is a run in flight" gate. It rejects a second StartVApp
// while Running (§5).
type Controller struct {
	cfg       config.Config
	registrar *manifest.Registrar
	seed      []byte // simulated device seed consumed by HD/SLIP-21 ECALLs
	log       vlog.Logger

	mu      sync.Mutex
	running bool
}

// New builds a Controller. seed is the simulated device's root seed.
func New(cfg config.Config, registrar *manifest.Registrar, seed []byte) *Controller {
	return &Controller{
		cfg:       cfg,
		registrar: registrar,
		seed:      seed,
		log:       vlog.New("component", "session"),
	}
}

// GetVersion answers the one command available outside a run.
func (c *Controller) GetVersion() string { return Version }

// Register parses and validates rawManifest, then returns the
// registration HMAC for it (§4.5). The device retains no per-app state.
func (c *Controller) Register(rawManifest []byte) ([32]byte, error) {
	m, err := manifest.Parse(rawManifest)
	if err != nil {
		return [32]byte{}, err
	}
	if err := m.Validate(); err != nil {
		return [32]byte{}, err
	}
	return c.registrar.Register(m)
}

// acquireRun enforces "no concurrent StartVApp" and returns a release
// function.
func (c *Controller) acquireRun() (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil, common.NewRuntimeError(common.ErrProtocol, "a run is already in progress")
	}
	c.running = true
	return func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}, nil
}

// Run verifies the launch HMAC, builds the three OMS segments and the
// interpreter from rawManifest over ch, and executes the V-App to
// completion, reporting the outcome as a Result (§4.6).
func (c *Controller) Run(rawManifest []byte, providedHMAC [32]byte, ch comm.Channel) (Result, error) {
	release, err := c.acquireRun()
	if err != nil {
		return Result{}, err
	}
	defer release()

	m, err := manifest.Parse(rawManifest)
	if err != nil {
		return Result{}, err
	}
	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	if err := c.registrar.VerifyLaunch(m, providedHMAC); err != nil {
		return Result{}, err
	}

	cpu, handler, err := c.buildRun(m, ch)
	if err != nil {
		return Result{}, err
	}

	c.log.Debug("run starting", "entrypoint", m.Entrypoint, "name", m.Name)
	for {
		err := cpu.Step(handler)
		if err == nil {
			continue
		}
		var exitErr *ecall.ExitError
		if errors.As(err, &exitErr) {
			c.log.Debug("run exited", "status", exitErr.Status)
			return Result{Status: common.StatusOK, Exit: exitErr.Status}, nil
		}
		var rerr *common.RuntimeError
		if errors.As(err, &rerr) {
			c.log.Debug("run terminated", "status", rerr.Status, "err", rerr.Error())
			return Result{Status: rerr.Status}, rerr
		}
		return Result{Status: common.StatusVMRuntimeError}, err
	}
}

func (c *Controller) buildRun(m *manifest.Manifest, ch comm.Channel) (*riscv.CPU, *ecall.Handler, error) {
	code, err := c.buildSegment(m.Code, true, common.SectionCode, c.cfg.Code, nil, ch)
	if err != nil {
		return nil, nil, err
	}
	enc, err := newEncState()
	if err != nil {
		return nil, nil, err
	}
	data, err := c.buildSegment(m.Data, false, common.SectionData, c.cfg.Data, enc, ch)
	if err != nil {
		return nil, nil, err
	}
	stack, err := c.buildSegment(m.Stack, false, common.SectionStack, c.cfg.Stack, enc, ch)
	if err != nil {
		return nil, nil, err
	}

	cpu := riscv.NewCPU(m.Entrypoint, code, data, stack)
	handler := ecall.NewHandler(ch, c.seed)
	return cpu, handler, nil
}

// newEncState generates a fresh per-run AES-128 key for the two writable
// segments to share; the send-nonce counter starts at zero.
func newEncState() (*oms.EncState, error) {
	raw, err := crypto.RandomBytes(16)
	if err != nil {
		return nil, err
	}
	var key crypto.AESKey
	copy(key[:], raw)
	return &oms.EncState{Key: key}, nil
}

func (c *Controller) buildSegment(r manifest.Region, readOnly bool, section common.SectionKind, segCfg config.SegmentConfig, enc *oms.EncState, host oms.Host) (*oms.Segment, error) {
	policy, err := buildPolicy(segCfg)
	if err != nil {
		return nil, err
	}
	return oms.NewSegment(r.Start, r.Size(), r.InitialRoot, readOnly, section, segCfg.CacheCapacity, policy, enc, host), nil
}

func buildPolicy(segCfg config.SegmentConfig) (oms.EvictionPolicy, error) {
	switch segCfg.Eviction {
	case config.EvictionLRU, "":
		return oms.NewLRUPolicy(segCfg.CacheCapacity), nil
	case config.EvictionTwoQ:
		a1Max, a1outMax := oms.DefaultTwoQSizing(segCfg.CacheCapacity)
		return oms.NewTwoQPolicy(segCfg.CacheCapacity, a1Max, a1outMax), nil
	default:
		return nil, fmt.Errorf("session: unknown eviction policy %q", segCfg.Eviction)
	}
}

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
	"hash"

	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/nconsigny/vanadium-sub001/crypto"
	"github.com/nconsigny/vanadium-sub001/riscv"
	"github.com/nconsigny/vanadium-sub001/vlog"
)

var log = vlog.New("component", "ecall")

// Channel is the narrow set of host round-trips the ECALL handler
// itself issues; it is a subset of the full comm.Channel contract so
// this package does not need to depend on comm.
type Channel interface {
	// SendBuffer forwards one chunk of a logical xsend transfer; totalLen
	// is the remaining length including this chunk.
	SendBuffer(totalLen uint32, chunk []byte) error
	// ReceiveBuffer fetches the next chunk of a logical xrecv transfer;
	// remaining is the length still to come after this chunk (0 means
	// this was the last one).
	ReceiveBuffer() (remaining uint32, chunk []byte, err error)
	ShowPage(data []byte) error
	ShowStep(data []byte) error
	GetEvent() (code uint32, data []byte, err error)
	UxIdle() error
}

// Handler implements riscv.EcallHandler over a Channel and a simulated
// device seed used for BIP32/SLIP-21 derivation.
type Handler struct {
	Channel Channel
	Seed    []byte

	// Rand supplies CSPRNG bytes; defaults to crypto.RandomBytes. Tests
	// override it for determinism.
	Rand func(n int) ([]byte, error)

	hashStates map[uint32]hash.Hash
}

// NewHandler builds a Handler. seed is the simulated device's root seed,
// consumed only by the HD-derivation and SLIP-21 ECALLs.
func NewHandler(channel Channel, seed []byte) *Handler {
	return &Handler{
		Channel:    channel,
		Seed:       seed,
		Rand:       crypto.RandomBytes,
		hashStates: make(map[uint32]hash.Hash),
	}
}

// HandleEcall dispatches on t0 (x5), the ECALL code, reading arguments
// from a0..a7 and writing results back to a0 (and a1 where a second
// return word is needed) per the calling convention. A recoverable
// error (ErrInvalidArgument, ErrUnsupportedOperation) is translated to
// an ABI failure value in a0 rather than aborting the run; any other
// error propagates and is fatal, except *ExitError which the session
// controller (not this package) treats as normal termination.
func (h *Handler) HandleEcall(cpu *riscv.CPU) error {
	code := Code(cpu.Reg(riscv.RegT0))
	a0, a1, a2, a3 := cpu.Reg(riscv.RegA0), cpu.Reg(riscv.RegA1), cpu.Reg(riscv.RegA2), cpu.Reg(riscv.RegA3)

	var result uint32
	var result2 uint32
	var err error

	switch code {
	case CodeExit:
		return &ExitError{Status: int32(a0)}
	case CodePanic:
		err = h.panic(cpu, a0, a1)
	case CodeFatal:
		err = h.fatal(cpu, a0, a1)

	case CodeXsend:
		err = h.xsend(cpu, a0, a1)
	case CodeXrecv:
		result, err = h.xrecv(cpu, a0, a1)

	case CodeShowPage:
		err = h.showPage(cpu, a0, a1)
	case CodeShowStep:
		err = h.showStep(cpu, a0, a1)
	case CodeGetEvent:
		result, err = h.getEvent(cpu, a0)
	case CodeUxIdle:
		err = h.Channel.UxIdle()

	case CodeGetRandomBytes:
		err = h.getRandomBytes(cpu, a0, a1)

	case CodeHashInit:
		err = h.hashInit(cpu, HashAlgorithm(a0), a1)
	case CodeHashUpdate:
		err = h.hashUpdate(cpu, HashAlgorithm(a0), a1, a2, a3)
	case CodeHashFinal:
		err = h.hashFinal(cpu, HashAlgorithm(a0), a1, a2)

	case CodeBnModM:
		err = h.bnModM(cpu, a0, a1, a2, a3)
	case CodeBnAddM:
		err = h.bnAddM(cpu, a0, a1, a2, a3, cpu.Reg(riscv.RegA4))
	case CodeBnSubM:
		err = h.bnSubM(cpu, a0, a1, a2, a3, cpu.Reg(riscv.RegA4))
	case CodeBnMultM:
		err = h.bnMultM(cpu, a0, a1, a2, a3, cpu.Reg(riscv.RegA4))
	case CodeBnPowM:
		err = h.bnPowM(cpu, a0, a1, a2, a3, cpu.Reg(riscv.RegA4))

	case CodeDeriveHDNode:
		err = h.deriveHDNode(cpu, Curve(a0), a1, a2, a3, cpu.Reg(riscv.RegA4))
	case CodeGetMasterFingerprint:
		result, err = h.getMasterFingerprint(Curve(a0))
	case CodeEcfpAddPoint:
		err = h.ecfpAddPoint(cpu, Curve(a0), a1, a2, a3)
	case CodeEcfpScalarMult:
		err = h.ecfpScalarMult(cpu, Curve(a0), a1, a2, a3)
	case CodeECDSASign:
		err = h.ecdsaSign(cpu, Curve(a0), a1, a2, a3)
	case CodeECDSAVerify:
		result, err = h.ecdsaVerify(cpu, Curve(a0), a1, a2, a3)
	case CodeSchnorrSign:
		err = h.schnorrSign(cpu, Curve(a0), a1, a2, a3)
	case CodeSchnorrVerify:
		result, err = h.schnorrVerify(cpu, Curve(a0), a1, a2, a3)

	case CodeDeriveSLIP21Node:
		err = h.deriveSLIP21Node(cpu, a0, a1, a2)

	default:
		log.Debug("unknown ecall code", "code", code)
		return common.NewRuntimeError(common.ErrDecode, "unknown ecall code %d", code)
	}

	if err != nil {
		if isRecoverable(err) {
			log.Debug("recoverable ecall error", "code", code, "err", err)
			cpu.SetReg(riscv.RegA0, 0xFFFFFFFF)
			return nil
		}
		log.Debug("fatal ecall error", "code", code, "err", err)
		return err
	}
	cpu.SetReg(riscv.RegA0, result)
	cpu.SetReg(riscv.RegA1, result2)
	return nil
}

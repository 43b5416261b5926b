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

package manifest

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/nconsigny/vanadium-sub001/common"
	"github.com/nconsigny/vanadium-sub001/crypto"
)

// KeyStore is the NVM seam the registration key is persisted through.
// Load returns 32 zero bytes for "never written".
type KeyStore interface {
	Load() ([32]byte, error)
	Save(key [32]byte) error
}

// FileKeyStore persists the registration key as a single file, written
// atomically via write-to-temp-then-rename so a crash mid-write can
// never leave a torn key on disk.
type FileKeyStore struct {
	Path string
}

// Load reads the key file, treating a missing file as "uninitialized"
// (all zeros) rather than an error.
func (s *FileKeyStore) Load() ([32]byte, error) {
	var key [32]byte
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return key, nil
	}
	if err != nil {
		return key, err
	}
	if len(data) != 32 {
		return key, os.ErrInvalid
	}
	copy(key[:], data)
	return key, nil
}

// Save atomically persists key to disk.
func (s *FileKeyStore) Save(key [32]byte) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".regkey-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(key[:]); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.Path)
}

// Registrar holds the device's single process-wide registration key,
// generating and persisting it on first use (§4.5, §9 "Global state").
// It is safe for concurrent use, though the session controller's
// cooperative single-threading means contention never actually occurs.
type Registrar struct {
	store KeyStore

	mu  sync.Mutex
	key [32]byte
}

// NewRegistrar builds a Registrar backed by store. The key is not loaded
// until first use.
func NewRegistrar(store KeyStore) *Registrar {
	return &Registrar{store: store}
}

// loadOrGenerateKey returns the registration key, generating and persisting it on the
// first call if the stored value is the all-zero sentinel. The
// uninitialized check is deliberately not constant-time: the stored
// bytes are not secret when they are all zero by definition (§4.5). A
// legitimately-generated key that happens to be all-zero would collide
// with this sentinel and trigger silent regeneration; the probability is
// architecturally negligible and documented, not mitigated (§9(b)).
func (r *Registrar) loadOrGenerateKey() ([32]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.key == ([32]byte{}) {
		loaded, err := r.store.Load()
		if err != nil {
			return [32]byte{}, err
		}
		r.key = loaded
	}
	if crypto.IsAllZero(r.key[:]) {
		fresh, err := crypto.RandomBytes(32)
		if err != nil {
			return [32]byte{}, err
		}
		var k [32]byte
		copy(k[:], fresh)
		if err := r.store.Save(k); err != nil {
			return [32]byte{}, err
		}
		r.key = k
	}
	return r.key, nil
}

// Register computes the registration HMAC for a Manifest, generating the
// device's registration key on first use. Registering the same Manifest
// twice yields the identical HMAC (§8 "HMAC determinism").
func (r *Registrar) Register(m *Manifest) ([32]byte, error) {
	key, err := r.loadOrGenerateKey()
	if err != nil {
		return [32]byte{}, err
	}
	hash := m.Hash()
	return crypto.HMACSHA256(key[:], hash[:]), nil
}

// VerifyLaunch recomputes the expected HMAC for m and compares it to
// providedHMAC in constant time, per §4.5's launch verification step.
func (r *Registrar) VerifyLaunch(m *Manifest, providedHMAC [32]byte) error {
	key, err := r.loadOrGenerateKey()
	if err != nil {
		return err
	}
	hash := m.Hash()
	expected := crypto.HMACSHA256(key[:], hash[:])
	if !crypto.ConstantTimeCompare(expected[:], providedHMAC[:]) {
		return common.NewRuntimeError(common.ErrSignature, "registration HMAC mismatch")
	}
	return nil
}

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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsSimulatedWithLRUCaches(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.Simulated)
	require.Equal(t, EvictionLRU, cfg.Data.Eviction)
	require.Greater(t, cfg.Code.CacheCapacity, 0)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vanadium.toml")
	contents := "Simulated = false\n\n[Data]\nCacheCapacity = 2\nEviction = \"2q\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.False(t, cfg.Simulated)
	require.Equal(t, 2, cfg.Data.CacheCapacity)
	require.Equal(t, EvictionTwoQ, cfg.Data.Eviction)
	// Unset sections fall back to Default()'s values.
	require.Equal(t, EvictionLRU, cfg.Code.Eviction)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

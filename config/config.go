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

// Package config holds the device-wide settings the session controller is
// built from: per-segment page cache sizing and eviction policy choice,
// the registration key's NVM path, and whether to run against the
// in-process simulated host instead of a real transport.
package config

import (
	"bufio"
	"os"
	"reflect"

	"github.com/naoina/toml"
)

// EvictionPolicyKind selects a segment's cache eviction policy.
type EvictionPolicyKind string

const (
	EvictionLRU  EvictionPolicyKind = "lru"
	EvictionTwoQ EvictionPolicyKind = "2q"
)

// SegmentConfig configures one segment's page cache.
type SegmentConfig struct {
	CacheCapacity int
	Eviction      EvictionPolicyKind
}

// Config is the device's full runtime configuration.
type Config struct {
	Code  SegmentConfig
	Data  SegmentConfig
	Stack SegmentConfig

	// RegistrationKeyPath is the NVM file the registration key is
	// persisted to.
	RegistrationKeyPath string

	// Simulated, when true, swaps the host channel for package sim's
	// in-process loopback rather than a real transport.
	Simulated bool
}

// Default returns the configuration cmd/vanadium-core and tests build
// against absent an override file: a 4-slot LRU cache per segment.
func Default() Config {
	seg := SegmentConfig{CacheCapacity: 4, Eviction: EvictionLRU}
	return Config{
		Code:                seg,
		Data:                seg,
		Stack:               seg,
		RegistrationKeyPath: "vanadium-registration.key",
		Simulated:           true,
	}
}

// tomlSettings matches field names verbatim between the TOML file and
// the Go struct, the same normalization cmd/gprobe's own config loader
// applies.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
}

// Load reads a TOML file into cfg, starting from Default() and
// overriding only the fields the file sets.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

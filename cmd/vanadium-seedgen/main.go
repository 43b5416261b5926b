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

// Command vanadium-seedgen prints a fresh BIP-39 mnemonic and the
// 64-byte seed derived from it, for seeding a simulated device's
// session.Controller outside of tests. It is a development aid, not a
// V-App SDK or client CLI (see SPEC_FULL.md Non-goals).
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/nconsigny/vanadium-sub001/crypto"
	"github.com/tyler-smith/go-bip39"
)

var passphrase = flag.String("passphrase", "", "optional BIP-39 passphrase")

func main() {
	flag.Parse()

	entropy, err := crypto.RandomBytes(16) // 128 bits -> 12-word mnemonic
	if err != nil {
		fmt.Fprintln(os.Stderr, "vanadium-seedgen:", err)
		os.Exit(1)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vanadium-seedgen:", err)
		os.Exit(1)
	}
	seed := bip39.NewSeed(mnemonic, *passphrase)

	fmt.Println("mnemonic:", mnemonic)
	fmt.Println("seed:", hex.EncodeToString(seed))
}

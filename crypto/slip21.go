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

package crypto

// slip21Magic is the fixed HMAC key used to derive the SLIP-21 master node
// from the platform seed.
const slip21Magic = "Symmetric key seed"

// slip21SeedRoot is the label Vanadium re-roots every SLIP-21 tree under,
// so that two V-Apps deriving the "same" SLIP-21 path never collide with
// whatever the platform's own SLIP-21 usage is.
const slip21SeedRoot = "VANADIUM"

// SLIP21Node is a derived SLIP-21 node: a 64-byte value whose first half
// chains to children and whose second half is the key bytes exposed to
// the guest.
type SLIP21Node [64]byte

func slip21Child(parent SLIP21Node, label []byte) SLIP21Node {
	data := make([]byte, 0, 1+len(label))
	data = append(data, 0x00)
	data = append(data, label...)
	return SLIP21Node(HMACSHA512(parent[:32], data))
}

// DeriveSLIP21 derives the node at the given sequence of labels from the
// platform seed, implementing the derive_slip21_node ECALL. Every path is
// re-rooted under the fixed "VANADIUM" label before the caller-supplied
// labels are applied, so a V-App can never reach a node outside its own
// subtree of the platform's SLIP-21 namespace.
//
// The returned node's last 32 bytes are the key material handed back to
// the guest; the first 32 bytes are the chaining key used to derive
// further children and are never exposed.
func DeriveSLIP21(seed []byte, labels [][]byte) SLIP21Node {
	master := SLIP21Node(HMACSHA512([]byte(slip21Magic), seed))
	node := slip21Child(master, []byte(slip21SeedRoot))
	for _, label := range labels {
		node = slip21Child(node, label)
	}
	return node
}

// Key returns the 32-byte key material exposed to the guest for this node:
// the node's last 32 bytes. The first 32 bytes are the HMAC key used to
// derive children and must never be returned here.
func (n SLIP21Node) Key() [32]byte {
	var out [32]byte
	copy(out[:], n[32:])
	return out
}

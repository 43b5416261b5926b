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

package oms

import "github.com/nconsigny/vanadium-sub001/crypto"

// EncState holds the per-run AES-CTR key and send-nonce counter shared by
// every writable segment in a run. It is owned by the session controller
// and handed to each writable Segment by reference, matching the
// "encryption state is shared across segments, owned by the controller"
// design note.
type EncState struct {
	Key       crypto.AESKey
	SendNonce [12]byte
}

// NextNonce increments the send nonce and returns the new value. The
// sequence is monotone and never repeats within a run: it is advanced
// exactly once per commit, never reused, and never rewound.
func (e *EncState) NextNonce() [12]byte {
	e.SendNonce = crypto.IncrementNonceBE(e.SendNonce)
	return e.SendNonce
}

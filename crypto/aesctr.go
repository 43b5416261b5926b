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

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// AESKey is a 16-byte AES-128 key.
type AESKey [16]byte

// AESCTR encrypts or decrypts (the operation is its own inverse) src with
// AES-128 in CTR mode under key and the given 12-byte nonce, the latter
// right-padded with a zero 32-bit counter block as CTR requires.
func AESCTR(key AESKey, nonce [12]byte, src []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: aes key setup: %w", err)
	}
	var iv [16]byte
	copy(iv[:12], nonce[:])
	stream := cipher.NewCTR(block, iv[:])
	dst := make([]byte, len(src))
	stream.XORKeyStream(dst, src)
	return dst, nil
}

// IncrementNonceBE increments a 12-byte nonce as a big-endian counter with
// carry, matching the EncState.send_nonce monotonic-increase rule: the
// sequence must never repeat within a run.
func IncrementNonceBE(nonce [12]byte) [12]byte {
	out := nonce
	for i := len(out) - 1; i >= 0; i-- {
		out[i]++
		if out[i] != 0 {
			break
		}
	}
	return out
}

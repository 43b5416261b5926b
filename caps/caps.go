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

// Package caps implements the Content-Addressed Page Store: a fixed-shape
// Merkle accumulator over a segment's pages. It is a pure data structure
// with no I/O, tracking only hashes — page content lives in the OMS cache
// and on the host.
//
// The accumulator is a complete binary tree over a power-of-two leaf
// count. When the segment's page count is not a power of two, the tree is
// right-extended with a conventional zero-hash sentinel up to the next
// power of two; this balancing rule is fixed and must be identical on
// device and host, exactly as it must be for any Merkle structure shared
// across a trust boundary (see trie.Trie's emptyRoot handling for the
// analogous convention in a variable-shape trie).
package caps

import (
	"crypto/sha256"
	"fmt"

	"github.com/nconsigny/vanadium-sub001/common"
)

// ErrPageNotFound is returned by Prove/Update when the index is out of
// range for the segment's logical page count. It is the only error this
// package produces.
var ErrPageNotFound = fmt.Errorf("caps: page not found")

// zeroHash is the sentinel leaf hash used to pad a segment whose page
// count is not a power of two up to the next power of two. Both device
// and host must use the all-zero 32-byte value; it never collides with a
// genuine SHA-256 digest with overwhelming probability.
var zeroHash = common.Hash{}

// CAPS is the per-segment Merkle accumulator. The zero value is not
// usable; construct one with New.
type CAPS struct {
	leaves   []common.Hash // logical leaves, length == numLeaves (not padded)
	size     int           // padded size, next power of two >= len(leaves)
	levels   [][]common.Hash
	numLeaves int
}

// New builds a complete binary accumulator over the given leaf hashes,
// right-extending with zeroHash if numLeaves is not a power of two.
func New(leaves []common.Hash) *CAPS {
	c := &CAPS{
		leaves:    append([]common.Hash(nil), leaves...),
		numLeaves: len(leaves),
	}
	c.size = nextPow2(len(leaves))
	if c.size == 0 {
		c.size = 1
	}
	c.rebuild()
	return c
}

func nextPow2(n int) int {
	if n <= 1 {
		return n
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func hashPair(l, r common.Hash) common.Hash {
	h := sha256.New()
	h.Write(l[:])
	h.Write(r[:])
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// rebuild recomputes every level of the tree from c.leaves. It is called
// only from New; Update does not call it and instead recomputes only the
// path from the changed leaf to the root, see below.
func (c *CAPS) rebuild() {
	level := make([]common.Hash, c.size)
	for i := 0; i < c.size; i++ {
		if i < c.numLeaves {
			level[i] = c.leaves[i]
		} else {
			level[i] = zeroHash
		}
	}
	c.levels = [][]common.Hash{level}
	for len(level) > 1 {
		next := make([]common.Hash, len(level)/2)
		for i := range next {
			next[i] = hashPair(level[2*i], level[2*i+1])
		}
		c.levels = append(c.levels, next)
		level = next
	}
}

// Root returns the current accumulator root.
func (c *CAPS) Root() common.Hash {
	top := c.levels[len(c.levels)-1]
	return top[0]
}

// Prove returns the sibling hashes from leaf i up to the root, length
// ceil(log2(size)).
func (c *CAPS) Prove(i int) ([]common.Hash, error) {
	if i < 0 || i >= c.numLeaves {
		return nil, ErrPageNotFound
	}
	path := make([]common.Hash, 0, len(c.levels)-1)
	idx := i
	for level := 0; level < len(c.levels)-1; level++ {
		sibling := idx ^ 1
		path = append(path, c.levels[level][sibling])
		idx >>= 1
	}
	return path, nil
}

// Update replaces the leaf at i with newLeaf, returning the Merkle path of
// the *previous* leaf (so a caller can let the host prove that the page it
// is about to overwrite was genuinely the one last committed) together
// with the new root.
func (c *CAPS) Update(i int, newLeaf common.Hash) (oldProof []common.Hash, newRoot common.Hash, err error) {
	if i < 0 || i >= c.numLeaves {
		return nil, common.Hash{}, ErrPageNotFound
	}
	oldProof, err = c.Prove(i)
	if err != nil {
		return nil, common.Hash{}, err
	}

	c.leaves[i] = newLeaf
	idx := i
	c.levels[0][idx] = newLeaf
	for level := 0; level < len(c.levels)-1; level++ {
		parent := idx / 2
		left := c.levels[level][parent*2]
		right := c.levels[level][parent*2+1]
		c.levels[level+1][parent] = hashPair(left, right)
		idx = parent
	}
	return oldProof, c.Root(), nil
}

// VerifyPath reconstructs a candidate root from a leaf hash and its
// sibling path, walking bottom-up using the leaf's index to decide, at
// each level, whether the sibling is the left or right child.
func VerifyPath(leaf common.Hash, index int, path []common.Hash) common.Hash {
	cur := leaf
	idx := index
	for _, sib := range path {
		if idx%2 == 0 {
			cur = hashPair(cur, sib)
		} else {
			cur = hashPair(sib, cur)
		}
		idx >>= 1
	}
	return cur
}

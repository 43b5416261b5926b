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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUPolicyEvictsOldest(t *testing.T) {
	p := NewLRUPolicy(3)
	p.OnLoad(0, 10)
	p.OnLoad(1, 11)
	p.OnLoad(2, 12)
	p.OnAccess(0, 10) // refresh slot 0; slot 1 is now the oldest

	require.Equal(t, 1, p.ChooseVictim())
}

func TestTwoQAdmitsIntoA1ThenPromotesFromGhost(t *testing.T) {
	p := NewTwoQPolicy(4, 1, 2) // a1Max=1, a1outMax=2

	p.OnLoad(0, 100) // A1
	require.Equal(t, twoQA1, p.states[0])

	p.OnLoad(1, 101) // A1 full (a1Max=1) -> victim should be slot 0
	victim := p.ChooseVictim()
	require.Equal(t, 0, victim)

	p.OnInvalidate(victim, 100) // evicted from A1 -> goes to A1-out
	require.Contains(t, p.a1out, uint32(100))

	p.OnLoad(0, 100) // page 100 re-enters via A1-out -> promoted to Am
	require.Equal(t, twoQAm, p.states[0])
	require.NotContains(t, p.a1out, uint32(100))
}

func TestTwoQEvictsFromA1WhenA1IsAtCapacity(t *testing.T) {
	p := NewTwoQPolicy(4, 2, 2)
	p.OnLoad(0, 1)
	p.OnLoad(1, 2)
	// a1Size=2 >= a1Max=2: evict from A1.
	require.Contains(t, []int{0, 1}, p.ChooseVictim())
}

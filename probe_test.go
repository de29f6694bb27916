// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package freqhash

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// visitOrder returns the order in which locate examines the slots of a table
// with the given capacity when nothing matches.
func visitOrder(strategy Strategy, home, capacity int) []int {
	m := New(capacity, strategy)
	var order []int
	_, ok := m.locate(strategy, home, func(i int) bool {
		order = append(order, i)
		return false
	})
	if ok {
		panic("unexpected match")
	}
	return order
}

func TestProbeSeq(t *testing.T) {
	genSeq := func(s Strategy, n, home, capacity int) []int {
		seq := makeProbeSeq(s, home, capacity)
		vals := make([]int, n)
		for i := 0; i < n; i++ {
			vals[i] = seq.offset
			seq = seq.next()
		}
		return vals
	}

	require.Equal(t, []int{3, 4, 0, 1, 2}, genSeq(Linear, 5, 3, 5))
	// h + i² for i = 0..7 with capacity 16.
	require.Equal(t, []int{0, 1, 4, 9, 0, 9, 4, 1}, genSeq(Quadratic, 8, 0, 16))
	require.Equal(t, []int{5, 6, 9, 14, 5, 14, 9, 6}, genSeq(Quadratic, 8, 5, 16))
	// Large capacities do not overflow the square.
	require.Equal(t, []int{7, 8, 11, 16}, genSeq(Quadratic, 4, 7, 1<<40))

	seq := makeProbeSeq(Linear, 0, 3)
	for i := 0; i < 3; i++ {
		require.False(t, seq.done())
		seq = seq.next()
	}
	require.True(t, seq.done())
}

func TestLocateOrder(t *testing.T) {
	testCases := []struct {
		strategy Strategy
		home     int
		capacity int
		expected []int
	}{
		{Linear, 0, 1, []int{0}},
		{Linear, 3, 5, []int{3, 4, 0, 1, 2}},
		{Quadratic, 0, 1, []int{0}},
		// Squares mod 5 are {0, 1, 4}; 2 and 3 are swept afterwards.
		{Quadratic, 0, 5, []int{0, 1, 4, 2, 3}},
		{Quadratic, 3, 5, []int{3, 4, 2, 0, 1}},
		{Quadratic, 0, 8, []int{0, 1, 4, 2, 3, 5, 6, 7}},
		{Quadratic, 6, 8, []int{6, 7, 2, 0, 1, 3, 4, 5}},
	}
	for _, c := range testCases {
		t.Run("", func(t *testing.T) {
			require.Equal(t, c.expected, visitOrder(c.strategy, c.home, c.capacity))
		})
	}
}

func TestLocateVisitsEverySlotOnce(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			for capacity := 1; capacity <= 64; capacity++ {
				for home := 0; home < capacity; home++ {
					order := visitOrder(s, home, capacity)
					require.Equal(t, home, order[0])
					sort.Ints(order)
					expected := make([]int, capacity)
					for i := range expected {
						expected[i] = i
					}
					require.Equal(t, expected, order, "capacity=%d home=%d", capacity, home)
				}
			}
		})
	}
}

func TestLocateRepeated(t *testing.T) {
	// Successive probes on the same table must not see stale visits.
	m := New(7, Quadratic)
	for i := 0; i < 5; i++ {
		idx, ok := m.locate(Quadratic, 2, func(i int) bool { return i == 6 })
		require.True(t, ok)
		require.EqualValues(t, 6, idx)
	}
}

func TestVisitSetEpochWrap(t *testing.T) {
	v := makeVisitSet(4)
	v.epoch = ^uint32(0) - 1
	v.reset()
	require.True(t, v.mark(1))
	require.False(t, v.mark(1))
	// The next reset wraps the epoch to zero, which must not make stale
	// stamps look visited.
	v.reset()
	require.EqualValues(t, 1, v.epoch)
	for i := 0; i < 4; i++ {
		require.True(t, v.mark(i))
	}
	require.True(t, v.full())
}

func TestParseStrategy(t *testing.T) {
	testCases := []struct {
		in       string
		expected Strategy
		err      bool
	}{
		{"linear", Linear, false},
		{"Quadratic", Quadratic, false},
		{" LINEAR ", Linear, false},
		{"cubic", 0, true},
		{"", 0, true},
	}
	for _, c := range testCases {
		t.Run(c.in, func(t *testing.T) {
			s, err := ParseStrategy(c.in)
			if c.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.expected, s)
		})
	}

	require.Equal(t, "linear", Linear.String())
	require.Equal(t, "quadratic", Quadratic.String())
	require.Equal(t, "Strategy(7)", Strategy(7).String())
}

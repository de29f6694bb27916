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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortCountersByHits(t *testing.T) {
	c := make([]Counter, 6)
	resetCounters(c)
	c[1].hits = 2
	c[3].hits = 5
	c[4].hits = 2

	sortCountersByHits(c)
	var slots []int
	for _, x := range c {
		slots = append(slots, x.slot)
	}
	// Equal counts keep ascending slot order.
	require.Equal(t, []int{3, 1, 4, 0, 2, 5}, slots)

	resetCounters(c)
	for i, x := range c {
		require.Equal(t, Counter{slot: i}, x)
	}
}

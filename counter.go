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

import "sort"

// Counter records how many successful searches landed on a slot. Outside of
// a reorganization counters[i].slot == i; during one the counters are sorted
// and slot remembers which snapshot entry the counter belongs to.
type Counter struct {
	hits uint64
	slot int
}

// resetCounters restores the canonical state: zero hits and the identity
// permutation of slot indexes.
func resetCounters(c []Counter) {
	for i := range c {
		c[i] = Counter{slot: i}
	}
}

// sortCountersByHits orders c by descending hit count. Ties keep their
// current relative order so that the replay order is deterministic.
func sortCountersByHits(c []Counter) {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].hits > c[j].hits
	})
}

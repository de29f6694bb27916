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
	"fmt"
	"strings"
)

// Strategy selects the probe sequence a Table uses for Insert and Search. It
// is fixed for the lifetime of the table.
type Strategy uint8

const (
	// Linear probing visits h, h+1, h+2, ... (mod capacity).
	Linear Strategy = iota
	// Quadratic probing visits h, h+1², h+2², ... (mod capacity). Slots the
	// quadratic cycle never reaches are visited afterwards in ascending order
	// from h so that every slot is examined exactly once.
	Quadratic
)

func (s Strategy) String() string {
	switch s {
	case Linear:
		return "linear"
	case Quadratic:
		return "quadratic"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy returns the Strategy named by s (case-insensitive).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return Linear, nil
	case "quadratic":
		return Quadratic, nil
	}
	return 0, fmt.Errorf("unknown probing strategy %q", s)
}

func (s Strategy) valid() bool {
	return s == Linear || s == Quadratic
}

// probeSeq maintains the state for a probe sequence. For Linear the offset at
// index i is (home + i) mod capacity. For Quadratic it is (home + i²) mod
// capacity, where i² mod capacity is maintained incrementally in square so
// that large capacities do not overflow.
//
// Both sequences are exhausted after capacity steps. A linear sequence has
// visited every slot by then. The quadratic residues repeat with period
// capacity, so nothing new can be reached by continuing; locate finishes the
// job with a sweep over the slots that were skipped.
type probeSeq struct {
	strategy Strategy
	capacity int
	home     int
	offset   int
	index    int
	square   int
}

func makeProbeSeq(strategy Strategy, home, capacity int) probeSeq {
	return probeSeq{
		strategy: strategy,
		capacity: capacity,
		home:     home,
		offset:   home,
	}
}

func (s probeSeq) next() probeSeq {
	switch s.strategy {
	case Linear:
		s.offset++
		if s.offset == s.capacity {
			s.offset = 0
		}
	case Quadratic:
		// (i+1)² = i² + 2i + 1
		s.square = (s.square + 2*s.index + 1) % s.capacity
		s.offset = (s.home + s.square) % s.capacity
	}
	s.index++
	return s
}

func (s probeSeq) done() bool {
	return s.index >= s.capacity
}

func (s probeSeq) String() string {
	return fmt.Sprintf("strategy=%s capacity=%d home=%d offset=%d index=%d",
		s.strategy, s.capacity, s.home, s.offset, s.index)
}

// visitSet records which slots a quadratic probe has examined. Each slot
// holds the epoch in which it was last visited, so starting a new probe is
// O(1) instead of clearing capacity entries. The stamps start zeroed and the
// first epoch is 1, so no slot is considered visited before it is marked.
type visitSet struct {
	stamps []uint32
	epoch  uint32
	count  int
}

func makeVisitSet(capacity int) visitSet {
	return visitSet{stamps: make([]uint32, capacity)}
}

// reset forgets all visits.
func (v *visitSet) reset() {
	v.epoch++
	if v.epoch == 0 {
		clear(v.stamps)
		v.epoch = 1
	}
	v.count = 0
}

// mark records a visit to slot i, returning false if i was already visited
// since the last reset.
func (v *visitSet) mark(i int) bool {
	if v.stamps[i] == v.epoch {
		return false
	}
	v.stamps[i] = v.epoch
	v.count++
	return true
}

// full reports whether every slot has been visited.
func (v *visitSet) full() bool {
	return v.count == len(v.stamps)
}

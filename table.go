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

// package freqhash is a fixed-capacity open-addressing hash table of string
// keys whose deletions reorder the table by access frequency.
//
// # Probing
//
// Every key lives directly in the slot array at a position determined by a
// probe sequence that starts at the key's home index. Two sequences are
// available and one is chosen when the table is created: Linear visits
// h, h+1, h+2, ... and Quadratic visits h, h+1², h+2², ... (mod capacity).
// Quadratic residues do not cover every slot for most capacities, so once the
// quadratic cycle closes the slots it skipped are swept in ascending order.
// Either way a probe examines each slot at most once and an operation never
// does more than capacity slot checks.
//
// Insert places a key in the first empty slot along its probe sequence. It
// never looks for an existing copy, so duplicates may coexist, and when the
// sequence is exhausted without finding an empty slot the key is silently
// dropped. Search returns the first slot holding the key and counts the hit
// against that slot.
//
// # Reorganization
//
// Remove locates the key with linear probing regardless of the configured
// strategy, clears the slot and then reorganizes the whole table: the
// per-slot hit counters are sorted in descending order, the slots are
// snapshotted and cleared, and every surviving key is re-inserted in counter
// order. Since Insert takes the first empty slot along the chain, keys that
// were searched most often end up earliest in any chain they share with
// colder keys. Finally the counters are reset to zero. The pass costs
// O(capacity·log capacity) per successful Remove.
//
// # Hashing
//
// The default hash sums radix^p mod capacity over the positions p of a key's
// symbols, so it only depends on the length of the key. Keys of equal length
// share a home index and a probe chain, which is the situation the
// reorganization is designed to help with. A different hash function can be
// specified using the WithHash option.
//
// Slots carry an explicit occupancy marker, so the empty string is a valid
// key.
package freqhash

import (
	"fmt"
	"strings"
)

const debug = false

// Slot holds a key and whether the slot is occupied.
type Slot struct {
	key  string
	used bool
}

// Table is a fixed-capacity open-addressing hash table with Insert, Search,
// and Remove operations. Every successful Remove reorganizes the table so
// that frequently searched keys move to the front of their probe chains.
//
// A Table is NOT goroutine-safe.
type Table struct {
	// The hash function mapping a key to its home index.
	hash hashFn
	// The allocator to use for the slots and counters slices.
	allocator Allocator
	// The probe sequence used by Insert and Search. Remove always uses
	// Linear.
	strategy Strategy
	// slots is capacity in length.
	slots []Slot
	// counters is capacity in length and parallel to slots outside of a
	// reorganization.
	counters []Counter
	// visited tracks the slots examined by a quadratic probe. It is unused
	// for linear tables.
	visited visitSet
	// The total number of slots, fixed at construction.
	capacity int
	// The number of occupied slots.
	used int
}

// New constructs a new Table with the specified capacity and probe strategy.
// The capacity never changes. New panics if capacity is not positive or the
// strategy is unknown.
func New(capacity int, strategy Strategy, options ...option) *Table {
	if capacity <= 0 {
		panic(fmt.Sprintf("freqhash: invalid capacity %d", capacity))
	}
	if !strategy.valid() {
		panic(fmt.Sprintf("freqhash: invalid strategy %s", strategy))
	}

	t := &Table{
		hash:      positionalHash,
		allocator: defaultAllocator{},
		strategy:  strategy,
		capacity:  capacity,
	}

	for _, op := range options {
		op.apply(t)
	}

	t.slots = t.allocator.AllocSlots(capacity)
	t.counters = t.allocator.AllocCounters(capacity)
	resetCounters(t.counters)
	if strategy == Quadratic {
		t.visited = makeVisitSet(capacity)
	}

	t.checkInvariants()
	return t
}

// Close closes the table, releasing any memory back to its configured
// allocator. It is unnecessary to close a table using the default allocator.
// It is invalid to use a Table after it has been closed, though Close itself
// is idempotent.
func (t *Table) Close() {
	if t.slots != nil {
		t.allocator.FreeSlots(t.slots)
		t.slots = nil
	}
	if t.counters != nil {
		t.allocator.FreeCounters(t.counters)
		t.counters = nil
	}
	t.visited = visitSet{}
	t.used = 0
}

// Insert places key in the first empty slot of its probe sequence. Insert
// does not check whether key is already present. If the sequence is
// exhausted without finding an empty slot the key is dropped.
func (t *Table) Insert(key string) {
	t.insert(key)
	t.checkInvariants()
}

func (t *Table) insert(key string) {
	h := t.home(key)
	i, ok := t.locate(t.strategy, h, t.isEmpty)
	if !ok {
		if debug {
			fmt.Printf("insert(%q): home=%d dropped, no empty slot\n", key, h)
		}
		return
	}
	if debug {
		fmt.Printf("insert(%q): home=%d index=%d\n", key, h, i)
	}
	t.slots[i] = Slot{key: key, used: true}
	t.used++
}

// Search reports whether key is present. A successful search increments the
// hit counter of the slot that held the key, which determines the key's
// position after the next reorganization.
func (t *Table) Search(key string) bool {
	i, ok := t.locate(t.strategy, t.home(key), t.holds(key))
	if !ok {
		if debug {
			fmt.Printf("search(%q): not found\n", key)
		}
		return false
	}
	t.counters[i].hits++
	if debug {
		fmt.Printf("search(%q): index=%d hits=%d\n", key, i, t.counters[i].hits)
	}
	// The match predicate already guarantees equality.
	return t.slots[i].key == key
}

// Remove deletes the first occurrence of key reached by a linear scan from
// its home index and then reorganizes the table. It is a noop to remove a
// non-existent key.
//
// NB: Remove uses linear probing even when the table was created with
// Quadratic. A linear scan visits every slot, so the key is found wherever
// the quadratic sequence placed it.
func (t *Table) Remove(key string) {
	i, ok := t.locate(Linear, t.home(key), t.holds(key))
	if !ok {
		if debug {
			fmt.Printf("remove(%q): not found\n", key)
		}
		t.checkInvariants()
		return
	}
	if debug {
		fmt.Printf("remove(%q): index=%d used=%d\n", key, i, t.used-1)
	}
	t.slots[i] = Slot{}
	t.used--
	t.counters[i].hits = 0
	t.reorganize()
	t.checkInvariants()
}

// reorganize re-inserts every key in descending order of its slot's hit
// count and resets the counters.
func (t *Table) reorganize() {
	sortCountersByHits(t.counters)

	snapshot := t.allocator.AllocSlots(t.capacity)
	copy(snapshot, t.slots)
	clear(t.slots)
	t.used = 0

	if debug {
		fmt.Printf("reorganize: capacity=%d survivors=%d\n", t.capacity, countUsed(snapshot))
	}

	// Re-insertion cannot fail: there are fewer keys than slots and both
	// strategies visit every slot before giving up.
	for _, c := range t.counters {
		if s := snapshot[c.slot]; s.used {
			t.insert(s.key)
		}
	}

	t.allocator.FreeSlots(snapshot)
	resetCounters(t.counters)

	if debug {
		fmt.Printf("reorganize: done: used=%d\n%s", t.used, t.debugString())
	}
}

// Clear removes all keys from the table and resets the hit counters. It does
// not reorganize.
func (t *Table) Clear() {
	clear(t.slots)
	resetCounters(t.counters)
	t.used = 0
	t.checkInvariants()
}

// All calls yield sequentially for each occupied slot in index order, with
// the slot index and its key. If yield returns false, iteration stops.
func (t *Table) All(yield func(slot int, key string) bool) {
	for i := range t.slots {
		if s := t.slots[i]; s.used {
			if !yield(i, s.key) {
				return
			}
		}
	}
}

// Len returns the number of keys in the table, counting duplicates.
func (t *Table) Len() int {
	return t.used
}

// Capacity returns the fixed number of slots in the table.
func (t *Table) Capacity() int {
	return t.capacity
}

// Strategy returns the probe strategy used by Insert and Search.
func (t *Table) Strategy() Strategy {
	return t.strategy
}

// home returns the home index of key, always in [0, capacity).
func (t *Table) home(key string) int {
	h := t.hash(key, t.capacity) % t.capacity
	if h < 0 {
		h += t.capacity
	}
	return h
}

func (t *Table) isEmpty(i int) bool {
	return !t.slots[i].used
}

func (t *Table) holds(key string) func(i int) bool {
	return func(i int) bool {
		s := &t.slots[i]
		return s.used && s.key == key
	}
}

// locate walks the probe sequence for strategy starting at home and returns
// the first index for which match returns true. ok is false if every slot
// was examined without a match.
func (t *Table) locate(strategy Strategy, home int, match func(i int) bool) (index int, ok bool) {
	seq := makeProbeSeq(strategy, home, t.capacity)
	if debug {
		fmt.Printf("locate: %s\n", seq)
	}

	if strategy == Linear {
		for ; !seq.done(); seq = seq.next() {
			if match(seq.offset) {
				return seq.offset, true
			}
		}
		return 0, false
	}

	v := &t.visited
	v.reset()
	for ; !seq.done() && !v.full(); seq = seq.next() {
		if !v.mark(seq.offset) {
			continue
		}
		if match(seq.offset) {
			return seq.offset, true
		}
	}

	// Sweep the slots the quadratic cycle never reached.
	for n := 0; n < t.capacity && !v.full(); n++ {
		i := home + n
		if i >= t.capacity {
			i -= t.capacity
		}
		if v.mark(i) && match(i) {
			return i, true
		}
	}
	return 0, false
}

func countUsed(slots []Slot) int {
	var n int
	for i := range slots {
		if slots[i].used {
			n++
		}
	}
	return n
}

func (t *Table) checkInvariants() {
	if invariants {
		if len(t.slots) != t.capacity || len(t.counters) != t.capacity {
			panic(fmt.Sprintf("invariant failed: capacity=%d but len(slots)=%d len(counters)=%d",
				t.capacity, len(t.slots), len(t.counters)))
		}

		// Counters must be in canonical order outside of a reorganization.
		for i, c := range t.counters {
			if c.slot != i {
				panic(fmt.Sprintf("invariant failed: counter(%d) refers to slot %d\n%s",
					i, c.slot, t.debugString()))
			}
			if c.hits != 0 && !t.slots[i].used {
				panic(fmt.Sprintf("invariant failed: empty slot(%d) has %d hits\n%s",
					i, c.hits, t.debugString()))
			}
		}

		// For every occupied slot, verify the key is reachable along the
		// configured probe sequence. A duplicate may be found at an earlier
		// slot, which is fine.
		var used int
		for i := range t.slots {
			s := t.slots[i]
			if !s.used {
				continue
			}
			used++
			if _, ok := t.locate(t.strategy, t.home(s.key), t.holds(s.key)); !ok {
				panic(fmt.Sprintf("invariant failed: slot(%d): %q not found [home=%d]\n%s",
					i, s.key, t.home(s.key), t.debugString()))
			}
		}

		if used != t.used {
			panic(fmt.Sprintf("invariant failed: found %d used slots, but used count is %d\n%s",
				used, t.used, t.debugString()))
		}
	}
}

func (t *Table) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d  strategy=%s\n", t.capacity, t.used, t.strategy)
	for i := range t.slots {
		c := t.counters[i]
		if s := t.slots[i]; s.used {
			fmt.Fprintf(&buf, "  %4d: %q [home=%d hits=%d counter-slot=%d]\n",
				i, s.key, t.home(s.key), c.hits, c.slot)
		} else {
			fmt.Fprintf(&buf, "  %4d: empty [hits=%d counter-slot=%d]\n", i, c.hits, c.slot)
		}
	}
	return buf.String()
}

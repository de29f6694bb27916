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

// option provide an interface to do work on Table while it is being created.
type option interface {
	apply(t *Table)
}

type hashOption struct {
	hash func(key string, capacity int) int
}

func (op hashOption) apply(t *Table) {
	t.hash = op.hash
}

// WithHash is an option to specify the hash function to use for a Table. The
// function receives the table capacity and should return a home index in
// [0, capacity); values outside that range are reduced modulo capacity.
func WithHash(hash func(key string, capacity int) int) option {
	return hashOption{hash}
}

// Allocator specifies an interface for allocating and releasing memory used
// by a Table. The default allocator utilizes Go's builtin make() and allows
// the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that slots and
// counters be freed then Table.Close must be called in order to ensure
// FreeSlots and FreeCounters are called.
type Allocator interface {
	// AllocSlots should return a slice equivalent to make([]Slot, n). It is
	// also used for the snapshot taken during a reorganization.
	AllocSlots(n int) []Slot

	// AllocCounters should return a slice equivalent to make([]Counter, n).
	AllocCounters(n int) []Counter

	// FreeSlots can optional release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by AllocSlots.
	FreeSlots(v []Slot)

	// FreeCounters can optional release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocCounters.
	FreeCounters(v []Counter)
}

type defaultAllocator struct{}

func (defaultAllocator) AllocSlots(n int) []Slot {
	return make([]Slot, n)
}

func (defaultAllocator) AllocCounters(n int) []Counter {
	return make([]Counter, n)
}

func (defaultAllocator) FreeSlots(v []Slot) {
}

func (defaultAllocator) FreeCounters(v []Counter) {
}

type allocatorOption struct {
	allocator Allocator
}

func (op allocatorOption) apply(t *Table) {
	t.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a Table.
func WithAllocator(allocator Allocator) option {
	return allocatorOption{allocator}
}

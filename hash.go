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

import "math/bits"

// radix is the base of the positional hash. It matches the size of the
// lowercase alphabet plus one, although the symbols themselves never
// contribute to the result.
const radix = 27

// hashFn maps a key to a home index. The returned value is reduced modulo
// the table capacity by the caller, so it need not be in range.
type hashFn func(key string, capacity int) int

// positionalHash is the default hash function. For the symbol at position p,
// counting from the end of the key, it accumulates radix^p mod capacity and
// reduces the sum modulo capacity after each addition.
//
// Only the position of each symbol contributes, so every key of a given
// length hashes to the same home index. This is a known weakness: the probe
// sequence and the frequency-ordered reorganization are what keep lookups
// working when chains collide.
func positionalHash(key string, capacity int) int {
	n := uint64(capacity)
	var h uint64
	// pow walks radix^0, radix^1, ... which corresponds to the symbols from
	// the last one backwards.
	pow := 1 % n
	for i := len(key) - 1; i >= 0; i-- {
		h = (h + pow) % n
		pow = mulMod(pow, radix, n)
	}
	return int(h)
}

// mulMod returns a*b mod n without overflowing for any a < n.
func mulMod(a, b, n uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi%n, lo, n)
	return rem
}

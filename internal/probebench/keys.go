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

package probebench

import (
	"fmt"
	"math/rand"

	"github.com/cockroachdb/freqhash"
	"github.com/zeebo/xxh3"
)

// Generated words use the printable ASCII range [' ', '~'].
const (
	minSymbol = ' '
	maxSymbol = '~'
)

// RandomWord returns a word of n printable ASCII symbols.
func RandomWord(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(minSymbol + rng.Intn(maxSymbol-minSymbol+1))
	}
	return string(b)
}

// RandomWords returns count words of n symbols each.
func RandomWords(rng *rand.Rand, count, n int) []string {
	words := make([]string, count)
	for i := range words {
		words[i] = RandomWord(rng, n)
	}
	return words
}

func xxh3Hash(key string, capacity int) int {
	return int(xxh3.HashString(key) % uint64(capacity))
}

// hashFunc returns the hash function named by name. A nil function selects
// the table's default positional hash.
func hashFunc(name string) (func(key string, capacity int) int, error) {
	switch name {
	case HashPositional, "":
		return nil, nil
	case HashXXH3:
		return xxh3Hash, nil
	}
	return nil, fmt.Errorf("unknown hash function %q", name)
}

// newTable builds the table described by cfg. cfg must be valid.
func newTable(cfg *Config) (*freqhash.Table, error) {
	strategy, err := freqhash.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	hash, err := hashFunc(cfg.Hash)
	if err != nil {
		return nil, err
	}
	if hash == nil {
		return freqhash.New(cfg.Capacity, strategy), nil
	}
	return freqhash.New(cfg.Capacity, strategy, freqhash.WithHash(hash)), nil
}

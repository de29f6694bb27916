package freqhash

import (
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/aclements/go-perfevent/perfbench"
	"github.com/zeebo/xxh3"
)

func xxh3Hash(key string, capacity int) int {
	return int(xxh3.HashString(key) % uint64(capacity))
}

func BenchmarkTableSearchHit(b *testing.B) {
	benchStrategies(b, benchSizes(benchmarkTableSearchHit))
}

func BenchmarkTableSearchMiss(b *testing.B) {
	benchStrategies(b, benchSizes(benchmarkTableSearchMiss))
}

func BenchmarkTableInsert(b *testing.B) {
	benchStrategies(b, benchSizes(benchmarkTableInsert))
}

func BenchmarkTableRemove(b *testing.B) {
	benchStrategies(b, benchSizes(benchmarkTableRemove))
}

func benchStrategies(b *testing.B, f func(b *testing.B, s Strategy, options ...option)) {
	for _, s := range strategies {
		b.Run("probe="+s.String(), func(b *testing.B) {
			b.Run("hash=positional", func(b *testing.B) { f(b, s) })
			b.Run("hash=xxh3", func(b *testing.B) { f(b, s, WithHash(xxh3Hash)) })
		})
	}
}

func benchSizes(
	f func(b *testing.B, n int, s Strategy, options ...option),
) func(b *testing.B, s Strategy, options ...option) {
	var cases = []int{
		16,
		64,
		256,
		1024,
		5000,
	}

	return func(b *testing.B, s Strategy, options ...option) {
		for _, n := range cases {
			b.Run("len="+strconv.Itoa(n), func(b *testing.B) { f(b, n, s, options...) })
		}
	}
}

// genKeys returns keys of varying length so that the positional hash spreads
// them over a handful of chains.
func genKeys(start, end int) []string {
	keys := make([]string, end-start)
	for i := range keys {
		keys[i] = strconv.Itoa(start + i)
	}
	return keys
}

// fill inserts keys until the table is 3/4 full.
func fill(m *Table) []string {
	keys := genKeys(0, m.Capacity()*3/4)
	for _, k := range keys {
		m.Insert(k)
	}
	return keys
}

func benchmarkTableSearchHit(b *testing.B, n int, s Strategy, options ...option) {
	m := New(n, s, options...)
	keys := fill(m)
	b.ResetTimer()
	perfbench.Open(b)
	var ok bool
	for i := 0; i < b.N; i++ {
		ok = m.Search(keys[i%len(keys)])
	}
	b.StopTimer()
	fmt.Fprint(io.Discard, ok)
}

func benchmarkTableSearchMiss(b *testing.B, n int, s Strategy, options ...option) {
	m := New(n, s, options...)
	fill(m)
	miss := genKeys(-n, 0)
	b.ResetTimer()
	perfbench.Open(b)
	var ok bool
	for i := 0; i < b.N; i++ {
		ok = m.Search(miss[i%len(miss)])
	}
	b.StopTimer()
	fmt.Fprint(io.Discard, ok)
}

func benchmarkTableInsert(b *testing.B, n int, s Strategy, options ...option) {
	keys := genKeys(0, n)
	m := New(n, s, options...)
	b.ResetTimer()
	perfbench.Open(b)
	for i := 0; i < b.N; i++ {
		if i%n == 0 {
			b.StopTimer()
			m.Clear()
			b.StartTimer()
		}
		m.Insert(keys[i%n])
	}
}

// benchmarkTableRemove measures a Remove and its reorganization pass,
// followed by re-inserting the removed key to keep the load constant.
func benchmarkTableRemove(b *testing.B, n int, s Strategy, options ...option) {
	m := New(n, s, options...)
	keys := fill(m)
	for i := range keys {
		if i%4 == 0 {
			m.Search(keys[i])
		}
	}
	b.ResetTimer()
	perfbench.Open(b)
	for i := 0; i < b.N; i++ {
		k := keys[i%len(keys)]
		m.Remove(k)
		m.Insert(k)
	}
}

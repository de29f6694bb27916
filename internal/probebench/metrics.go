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
	"io"
	"os"

	"github.com/VictoriaMetrics/metrics"
)

// Phases of a round.
const (
	phaseInsert       = "insert"
	phaseRandomSearch = "random_search"
	phaseRemove       = "remove"
	phaseTimedSearch  = "timed_search"
)

// Metrics holds the counters and histograms of a run in their own set so
// that runs do not share state through the global registry.
type Metrics struct {
	set    *metrics.Set
	phases map[string]*metrics.Histogram
	hits   *metrics.Counter
	misses *metrics.Counter
}

func newMetrics() *Metrics {
	set := metrics.NewSet()
	m := &Metrics{
		set:    set,
		phases: make(map[string]*metrics.Histogram),
		hits:   set.NewCounter(`probebench_searches_total{result="hit"}`),
		misses: set.NewCounter(`probebench_searches_total{result="miss"}`),
	}
	for _, p := range []string{phaseInsert, phaseRandomSearch, phaseRemove, phaseTimedSearch} {
		m.phases[p] = set.NewHistogram(fmt.Sprintf(`probebench_phase_duration_seconds{phase=%q}`, p))
	}
	return m
}

// observeTable registers a gauge tracking the number of keys in the table.
func (m *Metrics) observeTable(size func() int) {
	m.set.GetOrCreateGauge("probebench_table_keys", func() float64 {
		return float64(size())
	})
}

// WritePrometheus writes all metrics in Prometheus text exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}

// writeFile replaces path with the current metrics.
func (m *Metrics) writeFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	m.WritePrometheus(f)
	if err = f.Close(); err != nil {
		return fmt.Errorf("close metrics file %s: %w", path, err)
	}
	return nil
}

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

// Package probebench measures search latency of a freqhash.Table after
// frequency-ordered reorganization.
//
// Every round inserts capacity fresh random words into the same table, runs
// capacity searches for randomly chosen words of that round, removes one
// random word (which reorganizes the table by hit count) and finally times a
// search for every word of the round. Tables are never resized, so from the
// second round on most insertions are dropped and the timed searches mix hits
// and misses. The average timed search over all rounds is the result.
package probebench

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/cockroachdb/freqhash"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Result summarizes a run.
type Result struct {
	RunID     string
	Rounds    int
	AvgSearch time.Duration // Mean duration of a round's timed search phase.
	Hits      int64         // Timed searches that found their key.
	Misses    int64         // Timed searches that did not.
	Keys      int           // Keys left in the table after the last round.
}

// Runner executes benchmark rounds against a single table.
type Runner struct {
	cfg     *Config
	log     zerolog.Logger
	rng     *rand.Rand
	table   *freqhash.Table
	metrics *Metrics
}

// NewRunner validates cfg and prepares a run.
func NewRunner(cfg *Config, logger zerolog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	table, err := newTable(cfg)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	r := &Runner{
		cfg:     cfg,
		log:     logger,
		rng:     rand.New(rand.NewSource(seed)),
		table:   table,
		metrics: newMetrics(),
	}
	r.metrics.observeTable(table.Len)
	return r, nil
}

// Metrics returns the metrics recorded by the runner.
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Run executes all rounds, then writes the report and metrics files if they
// are configured. It stops between phases if ctx is canceled.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := r.log.With().Str("run", res.RunID).Logger()

	log.Info().
		Str("strategy", r.table.Strategy().String()).
		Str("hash", r.cfg.Hash).
		Str("capacity", humanize.Comma(int64(r.cfg.Capacity))).
		Int("wordSize", r.cfg.WordSize).
		Int("rounds", r.cfg.Rounds).
		Msg("starting probe benchmark")

	var total time.Duration
	for i := 0; i < r.cfg.Rounds; i++ {
		d, err := r.round(ctx, res)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		total += d
		res.Rounds++
		log.Debug().
			Int("round", i).
			Dur("timedSearch", d).
			Int("keys", r.table.Len()).
			Msg("round complete")
	}

	res.AvgSearch = total / time.Duration(res.Rounds)
	res.Keys = r.table.Len()

	log.Info().
		Str("avgSearch", formatMillis(res.AvgSearch)+"ms").
		Str("hits", humanize.Comma(res.Hits)).
		Str("misses", humanize.Comma(res.Misses)).
		Int("keys", res.Keys).
		Msg("probe benchmark finished")

	if r.cfg.ReportPath != "" {
		if err := AppendReport(r.cfg.ReportPath, r.cfg, res); err != nil {
			return nil, err
		}
		log.Info().Str("path", r.cfg.ReportPath).Msg("report appended")
	}
	if r.cfg.MetricsPath != "" {
		if err := r.metrics.writeFile(r.cfg.MetricsPath); err != nil {
			return nil, err
		}
		log.Info().Str("path", r.cfg.MetricsPath).Msg("metrics written")
	}
	return res, nil
}

// round runs the four phases of a round and returns the duration of the
// timed search phase.
func (r *Runner) round(ctx context.Context, res *Result) (time.Duration, error) {
	n := r.cfg.Capacity

	start := time.Now()
	words := RandomWords(r.rng, n, r.cfg.WordSize)
	for _, w := range words {
		r.table.Insert(w)
	}
	r.metrics.phases[phaseInsert].UpdateDuration(start)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	start = time.Now()
	for i := 0; i < n; i++ {
		r.table.Search(words[r.rng.Intn(n)])
	}
	r.metrics.phases[phaseRandomSearch].UpdateDuration(start)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	start = time.Now()
	r.table.Remove(words[r.rng.Intn(n)])
	r.metrics.phases[phaseRemove].UpdateDuration(start)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var hits int64
	start = time.Now()
	for _, w := range words {
		if r.table.Search(w) {
			hits++
		}
	}
	d := time.Since(start)
	r.metrics.phases[phaseTimedSearch].UpdateDuration(start)

	res.Hits += hits
	res.Misses += int64(n) - hits
	r.metrics.hits.Add(int(hits))
	r.metrics.misses.Add(n - int(hits))
	return d, nil
}

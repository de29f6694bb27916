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
	"os"
	"path/filepath"

	"github.com/cockroachdb/freqhash"
	"gopkg.in/yaml.v3"
)

// Hash function names accepted in Config.Hash.
const (
	HashPositional = "positional"
	HashXXH3       = "xxh3"
)

// Config describes a benchmark run.
type Config struct {
	Capacity int    `yaml:"capacity"`  // Number of slots in the table; also keys inserted per round.
	Strategy string `yaml:"strategy"`  // "linear" or "quadratic".
	Hash     string `yaml:"hash"`      // "positional" or "xxh3".
	WordSize int    `yaml:"word_size"` // Length of every generated key.
	Rounds   int    `yaml:"rounds"`    // Number of insert/search/remove/timed-search rounds.
	// Seed for key generation and random picks. Zero seeds from the clock.
	Seed        int64  `yaml:"seed"`
	ReportPath  string `yaml:"report_path"`  // Report file, appended to. Empty disables it.
	MetricsPath string `yaml:"metrics_path"` // Prometheus text dump. Empty disables it.
	LogLevel    string `yaml:"log_level"`
}

// DefaultConfig returns the configuration of the reference run: a 5000-slot
// linear table searched with 100-symbol words over 5 rounds.
func DefaultConfig() *Config {
	return &Config{
		Capacity:   5000,
		Strategy:   freqhash.Linear.String(),
		Hash:       HashPositional,
		WordSize:   100,
		Rounds:     5,
		ReportPath: "result_probing.txt",
		LogLevel:   "info",
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (*Config, error) {
	path, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute config filepath: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if _, err := freqhash.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if _, err := hashFunc(c.Hash); err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	if c.WordSize <= 0 {
		return fmt.Errorf("word_size must be positive, got %d", c.WordSize)
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
	}
	return nil
}

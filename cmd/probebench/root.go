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

package main

import (
	"fmt"

	"github.com/cockroachdb/freqhash/internal/probebench"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// version is overridden at link time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd(logger zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "probebench",
		Short:         "Benchmark frequency-ordered open addressing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(logger), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the probebench version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}

// runFlags mirrors probebench.Config. Only flags set on the command line
// override the config file.
type runFlags struct {
	configPath string
	cfg        probebench.Config
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	def := probebench.DefaultConfig()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fs.IntVar(&f.cfg.Capacity, "capacity", def.Capacity, "number of table slots and keys per round")
	fs.StringVar(&f.cfg.Strategy, "strategy", def.Strategy, "probe strategy: linear or quadratic")
	fs.StringVar(&f.cfg.Hash, "hash", def.Hash, "hash function: positional or xxh3")
	fs.IntVar(&f.cfg.WordSize, "word-size", def.WordSize, "length of generated keys")
	fs.IntVar(&f.cfg.Rounds, "rounds", def.Rounds, "number of rounds")
	fs.Int64Var(&f.cfg.Seed, "seed", def.Seed, "random seed (0 seeds from the clock)")
	fs.StringVar(&f.cfg.ReportPath, "report", def.ReportPath, "report file to append to (empty disables)")
	fs.StringVar(&f.cfg.MetricsPath, "metrics", def.MetricsPath, "Prometheus metrics output file (empty disables)")
	fs.StringVar(&f.cfg.LogLevel, "log-level", def.LogLevel, "log level")
}

// resolve loads the config file, if any, and applies explicitly set flags
// on top of it.
func (f *runFlags) resolve(fs *pflag.FlagSet) (*probebench.Config, error) {
	cfg := probebench.DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = probebench.LoadConfig(f.configPath); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "capacity":
			cfg.Capacity = f.cfg.Capacity
		case "strategy":
			cfg.Strategy = f.cfg.Strategy
		case "hash":
			cfg.Hash = f.cfg.Hash
		case "word-size":
			cfg.WordSize = f.cfg.WordSize
		case "rounds":
			cfg.Rounds = f.cfg.Rounds
		case "seed":
			cfg.Seed = f.cfg.Seed
		case "report":
			cfg.ReportPath = f.cfg.ReportPath
		case "metrics":
			cfg.MetricsPath = f.cfg.MetricsPath
		case "log-level":
			cfg.LogLevel = f.cfg.LogLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunCmd(logger zerolog.Logger) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the search benchmark and append the result to the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.resolve(cmd.Flags())
			if err != nil {
				return err
			}

			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			logger := logger.Level(level)
			logger.Info().Msgf("[config] loaded=%+v", *cfg)

			r, err := probebench.NewRunner(cfg, logger)
			if err != nil {
				return err
			}
			res, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}
			return probebench.WriteReport(cmd.OutOrStdout(), cfg, res)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

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
	"strconv"
	"time"
)

// WriteReport writes the two-line report entry for a run:
//
//	Searching with words of size <word_size> and hash table of size <capacity>
//	<average timed search> ms
func WriteReport(w io.Writer, cfg *Config, res *Result) error {
	_, err := fmt.Fprintf(w, "Searching with words of size %d and hash table of size %d\n%s ms\n",
		cfg.WordSize, cfg.Capacity, formatMillis(res.AvgSearch))
	return err
}

// AppendReport appends the report entry for a run to path, creating the file
// if necessary.
func AppendReport(path string, cfg *Config, res *Result) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}
	if err = WriteReport(f, cfg, res); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report file %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close report file %s: %w", path, err)
	}
	return nil
}

// formatMillis renders d in milliseconds with six significant digits.
func formatMillis(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'g', 6, 64)
}

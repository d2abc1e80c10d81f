// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/telekom/tracelens/internal/logger"
	"gopkg.in/yaml.v3"
)

// Stage names used in reports, metrics and spans.
const (
	StageExtract   = "extract"
	StageAggregate = "aggregate"
	StageFilter    = "filter"
	StageBin       = "bin"
	StageVerify    = "verify"
)

// Stats counts the records seen while scanning one input.
type Stats struct {
	// Records is the number of usable records.
	Records int `yaml:"records"`
	// Malformed is the number of skipped records.
	Malformed int `yaml:"malformed"`
}

// Add returns the sum of both stats.
func (s Stats) Add(o Stats) Stats {
	return Stats{Records: s.Records + o.Records, Malformed: s.Malformed + o.Malformed}
}

// FileReport summarizes the processing of one input file.
type FileReport struct {
	Path  string `yaml:"path"`
	Stats `yaml:",inline"`
	// Empty is true if the file had no usable records.
	Empty bool `yaml:"empty,omitempty"`
	// Skipped is true if the file was not processed because its output already existed.
	Skipped bool `yaml:"skipped,omitempty"`
}

// Report is the summary of one run of a stage. It is logged at the end of
// every run and can be written to a YAML file.
type Report struct {
	Stage    string        `yaml:"stage"`
	Started  time.Time     `yaml:"started"`
	Duration time.Duration `yaml:"duration"`
	Files    []FileReport  `yaml:"files"`
	Output   string        `yaml:"output,omitempty"`
	// Extra holds stage specific result figures, e.g. the size of the candidate set.
	Extra map[string]int `yaml:"extra,omitempty"`
}

// NewReport starts a new report for the given stage.
func NewReport(stage string) *Report {
	return &Report{Stage: stage, Started: time.Now().UTC()}
}

// Add records the outcome of one input file.
func (r *Report) Add(fr FileReport) {
	r.Files = append(r.Files, fr)
}

// Set stores a stage specific figure.
func (r *Report) Set(name string, value int) {
	if r.Extra == nil {
		r.Extra = map[string]int{}
	}
	r.Extra[name] = value
}

// Totals returns the summed stats over all files.
func (r *Report) Totals() Stats {
	var total Stats
	for _, f := range r.Files {
		total = total.Add(f.Stats)
	}
	return total
}

// Finish stops the run clock and logs the summary, including skipped-record counts.
func (r *Report) Finish(ctx context.Context) {
	log := logger.FromContext(ctx)
	r.Duration = time.Since(r.Started)
	total := r.Totals()

	for _, f := range r.Files {
		if f.Malformed > 0 {
			log.WarnContext(ctx, "Skipped malformed records", "stage", r.Stage, "path", f.Path, "malformed", f.Malformed)
		}
		if f.Empty {
			log.WarnContext(ctx, "Input had no usable records", "stage", r.Stage, "path", f.Path)
		}
	}

	args := []any{
		"stage", r.Stage,
		"files", len(r.Files),
		"records", total.Records,
		"malformed", total.Malformed,
		"duration", r.Duration.String(),
	}
	for k, v := range r.Extra {
		args = append(args, k, v)
	}
	log.InfoContext(ctx, "Run finished", args...)
}

// Write stores the report as YAML at path.
func (r *Report) Write(path string) (err error) {
	f, err := os.Create(path) // #nosec G304 // path is provided by the operator
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package framework

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
	"github.com/telekom/tracelens/cmd"
	"github.com/telekom/tracelens/test"
)

// Directories and files of the pipeline workspace.
const (
	ReferenceDir  = "reference"
	ArtifactDir   = "artifacts"
	CandidateFile = "candidates.csv"
	OutageDir     = "outage"
	FilteredDir   = "filtered"
	BinFile       = "bins.csv"
)

// E2E is an end-to-end test running the whole pipeline through the command line.
type E2E struct {
	t   *testing.T
	dir string

	filter    []string
	reference []string
	outage    []string

	running int32
}

// New creates a new end-to-end test with an empty workspace.
func New(t *testing.T) *E2E {
	return &E2E{t: t, dir: t.TempDir()}
}

// WithFilter sets the monitored region and any further flags of the extract and bin stages.
func (e *E2E) WithFilter(spec string, flags ...string) *E2E {
	e.filter = append([]string{"--filter", spec}, flags...)
	return e
}

// WithReferenceFile adds a measurement file of the reference period.
func (e *E2E) WithReferenceFile(name string, content []byte) *E2E {
	e.reference = append(e.reference, test.WriteFile(e.t, e.Path(ReferenceDir), name, content))
	return e
}

// WithOutageFile adds a measurement file of the outage period.
func (e *E2E) WithOutageFile(name string, content []byte) *E2E {
	e.outage = append(e.outage, test.WriteFile(e.t, e.Path(OutageDir), name, content))
	return e
}

// Path returns the path of elem within the workspace.
func (e *E2E) Path(elem ...string) string {
	return filepath.Join(append([]string{e.dir}, elem...)...)
}

// Exec runs a single tracelens command with the given arguments.
func (e *E2E) Exec(ctx context.Context, args ...string) error {
	e.t.Helper()
	viper.Reset()
	c := cmd.BuildCmd("e2e")
	c.SetArgs(args)
	e.t.Logf("Running tracelens %v", args)
	return c.ExecuteContext(ctx)
}

// Run runs all stages of the pipeline in order:
// extract for every reference file, aggregate, filter for every outage file and bin.
func (e *E2E) Run(ctx context.Context, extra ...string) error {
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		e.t.Fatal("E2E.Run must be called once")
	}
	if len(e.filter) == 0 {
		e.t.Fatal("E2E.Run requires a filter, use E2E.WithFilter")
	}

	for _, f := range e.reference {
		args := slices.Concat([]string{"extract", f, e.Path(ArtifactDir)}, e.filter, extra)
		if err := e.Exec(ctx, args...); err != nil {
			return fmt.Errorf("extract %q: %w", f, err)
		}
	}

	if err := e.Exec(ctx, slices.Concat([]string{"aggregate", e.Path(ArtifactDir), e.Path(CandidateFile)}, extra)...); err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	for _, f := range e.outage {
		args := slices.Concat([]string{"filter", f, e.Path(CandidateFile), e.Path(FilteredDir)}, extra)
		if err := e.Exec(ctx, args...); err != nil {
			return fmt.Errorf("filter %q: %w", f, err)
		}
	}

	args := slices.Concat([]string{"bin", e.Path(FilteredDir), e.Path(BinFile)}, e.filter, extra)
	if err := e.Exec(ctx, args...); err != nil {
		return fmt.Errorf("bin: %w", err)
	}
	return nil
}

// isRunning returns true if the test is running.
func (e *E2E) isRunning() bool {
	return atomic.LoadInt32(&e.running) == 1
}

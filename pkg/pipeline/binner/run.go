// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package binner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/tracelens/internal/helper"
	"github.com/telekom/tracelens/internal/logger"
	"github.com/telekom/tracelens/internal/traceroute"
	"github.com/telekom/tracelens/pkg/measurement"
	"github.com/telekom/tracelens/pkg/pipeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ResultFiles returns the measurement result files in dir in ascending order.
func ResultFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+measurement.Suffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list result files: %w", err)
	}
	slices.Sort(files)
	return files, nil
}

// Runner runs the bin stage over many measurement files.
//
// Files are classified concurrently but always merged in the order they are
// given, so the output does not depend on scheduling.
type Runner struct {
	region  traceroute.Region
	size    int64
	workers int
	metrics metrics
	tracer  trace.Tracer
}

// NewRunner returns a runner binning into bins of size seconds with at most
// workers files classified at once.
func NewRunner(region traceroute.Region, size int64, workers int) (*Runner, error) {
	if size <= 0 {
		return nil, pipeline.ErrConfiguration{Field: "binning.binSize", Reason: fmt.Sprintf("must be positive, got %d", size)}
	}
	if workers <= 0 {
		return nil, pipeline.ErrConfiguration{Field: "binning.workers", Reason: fmt.Sprintf("must be positive, got %d", workers)}
	}
	return &Runner{
		region:  region,
		size:    size,
		workers: workers,
		metrics: newMetrics(),
		tracer:  otel.Tracer(pipeline.StageBin),
	}, nil
}

// GetMetricCollectors returns all metric collectors of the runner
func (r *Runner) GetMetricCollectors() []prometheus.Collector {
	return r.metrics.GetCollectors()
}

type fileResult struct {
	observations []Observation
	report       pipeline.FileReport
}

// Run bins all traceroutes of files and writes the bins to output.
func (r *Runner) Run(ctx context.Context, files []string, output string) ([]pipeline.FileReport, []Bin, error) {
	ctx, span := r.tracer.Start(ctx, "binner.run", trace.WithAttributes(
		attribute.Int("files", len(files)),
		attribute.Int64("binSize", r.size),
	))
	defer span.End()
	log := logger.FromContext(ctx)

	results := make([]fileResult, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, file := range files {
		g.Go(func() error {
			res, err := r.classifyFile(gCtx, file)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, helper.WrapError(ctx, err, "failed to classify result files")
	}

	b, err := New(r.size, r.region)
	if err != nil {
		return nil, nil, err
	}
	reports := make([]pipeline.FileReport, 0, len(results))
	for _, res := range results {
		for _, o := range res.observations {
			b.AddObservation(o)
		}
		reports = append(reports, res.report)
	}

	bins := b.Bins()
	if err := writeBins(output, bins); err != nil {
		return reports, nil, helper.WrapError(ctx, err, "failed to write bins")
	}

	r.metrics.SetBins(bins)
	span.SetAttributes(attribute.Int("bins", len(bins)))
	log.InfoContext(ctx, "Binned traceroutes", "files", len(files), "bins", len(bins), "output", output)
	return reports, bins, nil
}

func (r *Runner) classifyFile(ctx context.Context, path string) (res fileResult, err error) {
	ctx, span := r.tracer.Start(ctx, "binner.classify", trace.WithAttributes(attribute.String("file", path)))
	defer span.End()
	log := logger.FromContext(ctx).With("file", path)

	if err := ctx.Err(); err != nil {
		return res, err
	}

	f, err := measurement.Open(path)
	if err != nil {
		return res, err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	sc := measurement.NewScanner(f, measurement.WithMalformedHandler(func(mErr pipeline.ErrMalformedRecord) {
		log.DebugContext(ctx, "Skipping malformed record", "error", mErr)
	}))
	for tr := range sc.Traceroutes() {
		res.observations = append(res.observations, Observe(tr, r.region))
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("failed to read %q: %w", path, err)
	}

	res.report = pipeline.FileReport{Path: path, Stats: sc.Stats(), Empty: sc.Stats().Records == 0}
	r.metrics.SetFile(res.report.Stats)
	if res.report.Empty {
		log.WarnContext(ctx, "Result file has no usable records", "error", pipeline.ErrEmptyInput{Path: path})
	}
	log.DebugContext(ctx, "Classified result file", "records", res.report.Records, "malformed", res.report.Malformed)
	return res, nil
}

func writeBins(path string, bins []Bin) error {
	f, err := measurement.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, bins); err != nil {
		return errors.Join(err, f.Abort())
	}
	return f.Close()
}

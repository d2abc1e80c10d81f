// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package candidates

import (
	"context"
	"errors"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/tracelens/internal/helper"
	"github.com/telekom/tracelens/internal/logger"
	"github.com/telekom/tracelens/internal/traceroute"
	"github.com/telekom/tracelens/pkg/measurement"
	"github.com/telekom/tracelens/pkg/pipeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Extractor runs the extract stage on single measurement files.
type Extractor struct {
	region  traceroute.Region
	force   bool
	metrics metrics
	tracer  trace.Tracer
}

// NewExtractor returns an extractor classifying traceroutes against region.
// Existing artifacts are only overwritten if force is set.
func NewExtractor(region traceroute.Region, force bool) *Extractor {
	return &Extractor{
		region:  region,
		force:   force,
		metrics: newMetrics(),
		tracer:  otel.Tracer(pipeline.StageExtract),
	}
}

// GetMetricCollectors returns all metric collectors of the extractor
func (e *Extractor) GetMetricCollectors() []prometheus.Collector {
	return e.metrics.GetCollectors()
}

// Run extracts the verdicts of the measurement file at input and writes its
// artifacts to outDir.
func (e *Extractor) Run(ctx context.Context, input, outDir string) (fr pipeline.FileReport, err error) {
	ctx, span := e.tracer.Start(ctx, "candidates.extract", trace.WithAttributes(attribute.String("file", input)))
	defer span.End()
	log := logger.FromContext(ctx).With("file", input)
	ctx = logger.IntoContext(ctx, log)

	fr = pipeline.FileReport{Path: input}
	name := measurement.BaseName(input)
	if !e.force && ArtifactsExist(outDir, name) {
		log.InfoContext(ctx, "Artifacts already exist, skipping file", "outDir", outDir)
		fr.Skipped = true
		return fr, nil
	}

	r, err := measurement.Open(input)
	if err != nil {
		return fr, helper.WrapError(ctx, err, "failed to open measurement file")
	}
	defer func() {
		err = errors.Join(err, r.Close())
	}()

	v, stats, err := e.extract(ctx, r)
	fr.Stats = stats
	if err != nil {
		return fr, helper.WrapError(ctx, err, "failed to read measurement file")
	}
	if stats.Records == 0 {
		fr.Empty = true
		log.WarnContext(ctx, "Writing empty artifacts", "error", pipeline.ErrEmptyInput{Path: input})
	}

	if err := WriteArtifacts(outDir, name, v); err != nil {
		return fr, helper.WrapError(ctx, err, "failed to write artifacts")
	}
	e.metrics.SetExtracted(stats, v)
	span.SetAttributes(
		attribute.Int("candidates", len(v.Candidates)),
		attribute.Int("disqualified", len(v.Disqualified)),
	)
	log.InfoContext(ctx, "Extracted candidates",
		"candidates", len(v.Candidates),
		"disqualified", len(v.Disqualified),
		"records", stats.Records,
		"malformed", stats.Malformed,
	)
	return fr, nil
}

func (e *Extractor) extract(ctx context.Context, r io.Reader) (Verdicts, pipeline.Stats, error) {
	log := logger.FromContext(ctx)
	sc := measurement.NewScanner(r, measurement.WithMalformedHandler(func(mErr pipeline.ErrMalformedRecord) {
		log.DebugContext(ctx, "Skipping malformed record", "error", mErr)
	}))
	v := Extract(sc.Traceroutes(), e.region)
	return v, sc.Stats(), sc.Err()
}

// Aggregator runs the aggregate stage.
type Aggregator struct {
	minTraceroutes int
	metrics        metrics
	tracer         trace.Tracer
}

// NewAggregator returns an aggregator keeping keys with at least minTraceroutes valid traceroutes.
func NewAggregator(minTraceroutes int) *Aggregator {
	return &Aggregator{
		minTraceroutes: minTraceroutes,
		metrics:        newMetrics(),
		tracer:         otel.Tracer(pipeline.StageAggregate),
	}
}

// GetMetricCollectors returns all metric collectors of the aggregator
func (a *Aggregator) GetMetricCollectors() []prometheus.Collector {
	return a.metrics.GetCollectors()
}

// Run aggregates all artifacts in dir and writes the candidate set to output.
func (a *Aggregator) Run(ctx context.Context, dir, output string) (Set, error) {
	ctx, span := a.tracer.Start(ctx, "candidates.aggregate", trace.WithAttributes(attribute.String("dir", dir)))
	defer span.End()
	log := logger.FromContext(ctx)

	artifacts, err := LoadArtifacts(ctx, dir)
	if err != nil {
		return nil, helper.WrapError(ctx, err, "failed to load artifacts")
	}
	if len(artifacts) == 0 {
		log.WarnContext(ctx, "No artifacts found", "dir", dir)
	}

	s, ex := AggregateWithExclusions(artifacts, a.minTraceroutes)
	if err := writeFile(output, func(w io.Writer) error { return WriteSet(w, s) }); err != nil {
		return nil, helper.WrapError(ctx, err, "failed to write candidate set")
	}

	a.metrics.SetAggregated(s, ex)
	span.SetAttributes(attribute.Int("candidates", len(s)))
	log.InfoContext(ctx, "Aggregated candidate set",
		"artifacts", len(artifacts),
		"candidates", len(s),
		"excludedDisqualified", ex.Disqualified,
		"excludedThreshold", ex.BelowThreshold,
		"minTraceroutes", a.minTraceroutes,
	)
	return s, nil
}

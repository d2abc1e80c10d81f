// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/tracelens/internal/helper"
	"github.com/telekom/tracelens/internal/logger"
	"github.com/telekom/tracelens/pkg/measurement"
	"github.com/telekom/tracelens/pkg/pipeline"
	"github.com/telekom/tracelens/pkg/pipeline/candidates"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Records copies every record of sc whose key is in set to w, unchanged and
// in input order. It returns the number of copied records.
func Records(sc *measurement.Scanner, set candidates.Set, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	matched := 0
	for sc.Scan() {
		rec := sc.Record()
		if !set.Contains(rec.Traceroute.Key()) {
			continue
		}
		if _, err := bw.Write(rec.Raw); err != nil {
			return matched, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return matched, err
		}
		matched++
	}
	if err := sc.Err(); err != nil {
		return matched, err
	}
	return matched, bw.Flush()
}

// Filter runs the filter stage on single measurement files.
type Filter struct {
	set     candidates.Set
	force   bool
	metrics metrics
	tracer  trace.Tracer
}

// New returns a filter keeping the records of the given candidate set.
// Existing outputs are only overwritten if force is set.
func New(set candidates.Set, force bool) *Filter {
	return &Filter{
		set:     set,
		force:   force,
		metrics: newMetrics(),
		tracer:  otel.Tracer(pipeline.StageFilter),
	}
}

// GetMetricCollectors returns all metric collectors of the filter
func (f *Filter) GetMetricCollectors() []prometheus.Collector {
	return f.metrics.GetCollectors()
}

// OutputPath returns the path the filtered records of input are written to.
func OutputPath(input, outDir string) string {
	return filepath.Join(outDir, filepath.Base(input))
}

// Run filters the measurement file at input into a file of the same name in outDir.
func (f *Filter) Run(ctx context.Context, input, outDir string) (fr pipeline.FileReport, err error) {
	ctx, span := f.tracer.Start(ctx, "filter.run", trace.WithAttributes(attribute.String("file", input)))
	defer span.End()
	log := logger.FromContext(ctx).With("file", input)
	ctx = logger.IntoContext(ctx, log)

	fr = pipeline.FileReport{Path: input}
	output := OutputPath(input, outDir)
	same, err := samePath(input, output)
	if err != nil {
		return fr, helper.WrapError(ctx, err, "failed to resolve output path")
	}
	if same {
		return fr, helper.WrapError(ctx, pipeline.ErrConfiguration{
			Field:  "output",
			Reason: fmt.Sprintf("output %q would overwrite its input", output),
		}, "refusing to filter %q", input)
	}
	if !f.force && measurement.Exists(output) {
		log.InfoContext(ctx, "Output already exists, skipping file", "output", output)
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

	out, err := measurement.Create(output)
	if err != nil {
		return fr, helper.WrapError(ctx, err, "failed to create output file")
	}

	sc := measurement.NewScanner(r, measurement.WithMalformedHandler(func(mErr pipeline.ErrMalformedRecord) {
		log.DebugContext(ctx, "Skipping malformed record", "error", mErr)
	}))
	matched, err := Records(sc, f.set, out)
	fr.Stats = sc.Stats()
	if err != nil {
		return fr, helper.WrapError(ctx, errors.Join(err, out.Abort()), "failed to filter measurement file")
	}
	if err := out.Close(); err != nil {
		return fr, helper.WrapError(ctx, err, "failed to write output file")
	}

	if fr.Records == 0 {
		fr.Empty = true
		log.WarnContext(ctx, "Wrote empty output", "error", pipeline.ErrEmptyInput{Path: input})
	}
	f.metrics.Set(fr.Stats, matched)
	span.SetAttributes(attribute.Int("matched", matched))
	log.InfoContext(ctx, "Filtered measurement file",
		"output", output,
		"matched", matched,
		"records", fr.Records,
		"malformed", fr.Malformed,
	)
	return fr, nil
}

// samePath reports whether a and b refer to the same file.
func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}

	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}

// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/telekom/tracelens/internal/helper"
	"github.com/telekom/tracelens/pkg/pipeline"
	"github.com/telekom/tracelens/pkg/pipeline/candidates"
	"github.com/telekom/tracelens/pkg/pipeline/filter"
)

// NewCmdFilter creates the filter command
func NewCmdFilter() *cobra.Command {
	return &cobra.Command{
		Use:   "filter <measurement-file> <candidate-file> <output-dir>",
		Short: "Keep only the traceroutes of the candidate set",
		Long: "Copies every record of an outage measurement file whose (probe, destination) pair is in the\n" +
			"candidate set to a file of the same name in the output directory.",
		Args:    cobra.ExactArgs(3),
		PreRunE: bindFlags(nil),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, pipeline.StageFilter, func(ctx context.Context, s *session) error {
				return runFilter(ctx, s, args[0], args[1], args[2])
			})
		},
	}
}

func runFilter(ctx context.Context, s *session, input, setPath, outDir string) error {
	set, err := candidates.LoadSet(setPath)
	if err != nil {
		return helper.WrapError(ctx, err, "failed to load candidate set")
	}
	s.report.Set("candidates", len(set))

	f := filter.New(set, s.cfg.Output.Force)
	if err := s.telemetry.Register(f.GetMetricCollectors()...); err != nil {
		return err
	}

	s.report.Output = filter.OutputPath(input, outDir)
	fr, err := f.Run(ctx, input, outDir)
	s.report.Add(fr)
	return err
}

// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/telekom/tracelens/pkg/config"
	"github.com/telekom/tracelens/pkg/pipeline"
	"github.com/telekom/tracelens/pkg/pipeline/candidates"
)

// NewCmdAggregate creates the aggregate command
func NewCmdAggregate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate <artifact-dir> <output-file>",
		Short: "Merge extracted candidates into the final candidate set",
		Long: "Sums the valid traceroute counts of all extracted measurement files, drops every pair that was\n" +
			"disqualified at least once, and keeps the pairs reaching the minimum number of traceroutes.",
		Args: cobra.ExactArgs(2),
		PreRunE: bindFlags(map[string]string{
			"candidates.minTraceroutes": "min-traceroutes",
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, pipeline.StageAggregate, func(ctx context.Context, s *session) error {
				return runAggregate(ctx, s, args[0], args[1])
			})
		},
	}
	cmd.Flags().IntP("min-traceroutes", "m", config.DefaultMinTraceroutes, "minimum number of valid traceroutes of a candidate")
	return cmd
}

func runAggregate(ctx context.Context, s *session, dir, output string) error {
	a := candidates.NewAggregator(s.cfg.Candidates.MinTraceroutes)
	if err := s.telemetry.Register(a.GetMetricCollectors()...); err != nil {
		return err
	}

	s.report.Output = output
	set, err := a.Run(ctx, dir, output)
	if err != nil {
		return err
	}
	s.report.Set("candidates", len(set))
	return nil
}

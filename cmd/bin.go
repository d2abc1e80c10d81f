// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"maps"

	"github.com/spf13/cobra"
	"github.com/telekom/tracelens/internal/helper"
	"github.com/telekom/tracelens/internal/logger"
	"github.com/telekom/tracelens/pkg/config"
	"github.com/telekom/tracelens/pkg/pipeline"
	"github.com/telekom/tracelens/pkg/pipeline/binner"
)

// NewCmdBin creates the bin command
func NewCmdBin() *cobra.Command {
	keys := map[string]string{
		"binning.binSize": "bin-size",
		"binning.workers": "workers",
	}
	maps.Copy(keys, filterFlags)

	cmd := &cobra.Command{
		Use:   "bin <results-dir> <output-file>",
		Short: "Sort filtered traceroutes into time bins",
		Long: "Classifies every traceroute of the result files in a directory and counts, per time bin, whether\n" +
			"it reached its destination and whether it crossed the monitored region.",
		Args:    cobra.ExactArgs(2),
		PreRunE: bindFlags(keys),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, pipeline.StageBin, func(ctx context.Context, s *session) error {
				return runBin(ctx, s, args[0], args[1])
			})
		},
	}
	addFilterFlags(cmd)
	cmd.Flags().Int64P("bin-size", "b", config.DefaultBinSize, "bin size in seconds")
	cmd.Flags().IntP("workers", "n", config.DefaultWorkers, "number of result files classified concurrently")
	return cmd
}

func runBin(ctx context.Context, s *session, dir, output string) error {
	region, err := s.region(ctx)
	if err != nil {
		return err
	}

	files, err := binner.ResultFiles(dir)
	if err != nil {
		return helper.WrapError(ctx, err, "failed to find result files")
	}
	if len(files) == 0 {
		logger.FromContext(ctx).WarnContext(ctx, "No result files found", "dir", dir)
	}

	r, err := binner.NewRunner(region, s.cfg.Binning.BinSize, s.cfg.Binning.Workers)
	if err != nil {
		return err
	}
	if err := s.telemetry.Register(r.GetMetricCollectors()...); err != nil {
		return err
	}

	s.report.Output = output
	reports, bins, err := r.Run(ctx, files, output)
	for _, fr := range reports {
		s.report.Add(fr)
	}
	if err != nil {
		return err
	}
	s.report.Set("bins", len(bins))
	return nil
}

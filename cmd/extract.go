// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/telekom/tracelens/pkg/pipeline"
	"github.com/telekom/tracelens/pkg/pipeline/candidates"
)

// NewCmdExtract creates the extract command
func NewCmdExtract() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <measurement-file> <output-dir>",
		Short: "Extract candidate keys from a reference measurement file",
		Long: "Classifies every traceroute of a reference measurement file and writes the valid traceroute\n" +
			"count per (probe, destination) and the disqualified pairs to the output directory.",
		Args:    cobra.ExactArgs(2),
		PreRunE: bindFlags(filterFlags),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, pipeline.StageExtract, func(ctx context.Context, s *session) error {
				return runExtract(ctx, s, args[0], args[1])
			})
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func runExtract(ctx context.Context, s *session, input, outDir string) error {
	region, err := s.region(ctx)
	if err != nil {
		return err
	}

	e := candidates.NewExtractor(region, s.cfg.Output.Force)
	if err := s.telemetry.Register(e.GetMetricCollectors()...); err != nil {
		return err
	}

	s.report.Output = outDir
	fr, err := e.Run(ctx, input, outDir)
	s.report.Add(fr)
	return err
}

// filterFlags maps the configuration keys of the filter flags.
var filterFlags = map[string]string{
	"filter.spec":      "filter",
	"filter.asMapping": "as-mapping",
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("filter", "f", "", "monitored region: a prefix, an AS number, or a file listing prefixes and AS numbers")
	cmd.Flags().String("as-mapping", "", "AS-to-prefix mapping in ipasn format, required to filter by AS number")
}

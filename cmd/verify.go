// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/telekom/tracelens/internal/logger"
	"github.com/telekom/tracelens/pkg/measurement"
	"github.com/telekom/tracelens/pkg/pipeline"
)

// NewCmdVerify creates the verify command
func NewCmdVerify() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "verify <measurement-file>...",
		Short: "Check measurement files for broken records",
		Long: "Reads measurement files completely and reports malformed records and read errors,\n" +
			"e.g. from truncated downloads. Broken files can be deleted.",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: bindFlags(nil),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, pipeline.StageVerify, func(ctx context.Context, s *session) error {
				return runVerify(ctx, s, args, remove)
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "delete broken files")
	return cmd
}

func runVerify(ctx context.Context, s *session, files []string, remove bool) error {
	log := logger.FromContext(ctx)
	broken := 0
	for _, path := range files {
		stats, err := measurement.Verify(ctx, path)
		s.report.Add(pipeline.FileReport{Path: path, Stats: stats, Empty: err == nil && stats.Records == 0})
		if err == nil && stats.Malformed == 0 {
			log.InfoContext(ctx, "File is intact", "path", path, "records", stats.Records)
			continue
		}

		broken++
		log.WarnContext(ctx, "File is broken", "path", path, "malformed", stats.Malformed, "error", err)
		if remove {
			if rErr := os.Remove(path); rErr != nil {
				log.ErrorContext(ctx, "Failed to delete broken file", "path", path, "error", rErr)
				return fmt.Errorf("failed to delete %q: %w", path, rErr)
			}
			log.InfoContext(ctx, "Deleted broken file", "path", path)
		}
	}

	s.report.Set("broken", broken)
	if broken > 0 && !remove {
		return fmt.Errorf("%d of %d files are broken", broken, len(files))
	}
	return nil
}

// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/tracelens/internal/logger"
	"github.com/telekom/tracelens/pkg/config"
	"github.com/telekom/tracelens/pkg/pipeline"
	"github.com/telekom/tracelens/pkg/prefix"
	"github.com/telekom/tracelens/pkg/telemetry"
)

// persistentFlags maps the configuration keys of the root command flags.
var persistentFlags = map[string]string{
	"output.report":         "report",
	"output.force":          "force",
	"telemetry.metricsFile": "metrics-file",
}

// bindFlags binds the given flags of cmd to their configuration keys.
// Flags are bound when the command runs, as several commands share keys.
func bindFlags(keys map[string]string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		for key, name := range persistentFlags {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return fmt.Errorf("failed to bind flag %q: %w", name, err)
			}
		}
		for key, name := range keys {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return fmt.Errorf("failed to bind flag %q: %w", name, err)
			}
		}
		return nil
	}
}

// session holds everything a stage needs while it runs.
type session struct {
	cfg       *config.Config
	telemetry telemetry.Provider
	report    *pipeline.Report
}

// run loads and validates the configuration, sets up telemetry and runs fn.
// The run report, metrics and traces are flushed when fn returns, also on failure.
func run(cmd *cobra.Command, stage string, fn func(ctx context.Context, s *session) error) (err error) {
	ctx, cancel := logger.NewContextWithLogger(cmd.Context())
	defer cancel()
	log := logger.FromContext(ctx).With("stage", stage)
	ctx = logger.IntoContext(ctx, log)

	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		log.ErrorContext(ctx, "Failed to parse configuration", "error", err)
		return fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(ctx, stage); err != nil {
		return err
	}

	s := &session{
		cfg:       &cfg,
		telemetry: telemetry.New(cfg.Telemetry),
		report:    pipeline.NewReport(stage),
	}
	if cfg.HasTelemetry() {
		if err := s.telemetry.InitTracing(ctx); err != nil {
			return err
		}
	}
	defer func() {
		err = errors.Join(err, s.close(ctx))
	}()

	log.DebugContext(ctx, "Starting stage")
	return fn(ctx, s)
}

func (s *session) close(ctx context.Context) (err error) {
	s.report.Finish(ctx)
	if s.cfg.Output.Report != "" {
		if wErr := s.report.Write(s.cfg.Output.Report); wErr != nil {
			logger.FromContext(ctx).ErrorContext(ctx, "Failed to write run report", "error", wErr)
			err = errors.Join(err, wErr)
		}
	}
	err = errors.Join(err, s.telemetry.WriteMetrics(ctx))
	return errors.Join(err, s.telemetry.Shutdown(ctx))
}

// region resolves the monitored region from the filter configuration.
func (s *session) region(ctx context.Context) (*prefix.Matcher, error) {
	var mapping prefix.ASMapping
	if s.cfg.HasASMapping() {
		m, err := prefix.LoadASMapping(s.cfg.Filter.ASMapping)
		if err != nil {
			return nil, errors.Join(pipeline.ErrConfiguration{Field: "filter.asMapping", Reason: "failed to load mapping"}, err)
		}
		mapping = m
	}

	m, err := prefix.NewFromFilter(ctx, s.cfg.Filter.Spec, mapping)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).InfoContext(ctx, "Monitoring region", "prefixes", len(m.Prefixes()))
	return m, nil
}

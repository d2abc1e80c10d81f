// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/telekom/tracelens/internal/logger"
	"github.com/telekom/tracelens/pkg/pipeline"
)

// Validate validates the configuration for the given stage.
// All violations are reported at once.
func (c *Config) Validate(ctx context.Context, stage string) (err error) {
	log := logger.FromContext(ctx)

	switch stage {
	case pipeline.StageExtract, pipeline.StageBin:
		if strings.TrimSpace(c.Filter.Spec) == "" {
			log.ErrorContext(ctx, "A filter is required", "stage", stage)
			err = errors.Join(err, pipeline.ErrConfiguration{Field: "filter.spec", Reason: "must not be empty"})
		}
	case pipeline.StageAggregate, pipeline.StageFilter, pipeline.StageVerify:
	default:
		return pipeline.ErrConfiguration{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", stage)}
	}

	if c.Candidates.MinTraceroutes <= 0 {
		log.ErrorContext(ctx, "The minimum number of traceroutes must be positive", "minTraceroutes", c.Candidates.MinTraceroutes)
		err = errors.Join(err, pipeline.ErrConfiguration{
			Field:  "candidates.minTraceroutes",
			Reason: fmt.Sprintf("must be positive, got %d", c.Candidates.MinTraceroutes),
		})
	}

	if vErr := c.Binning.Validate(ctx); vErr != nil {
		log.ErrorContext(ctx, "The binning configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if c.HasTelemetry() {
		if vErr := c.Telemetry.Validate(ctx); vErr != nil {
			log.ErrorContext(ctx, "The telemetry configuration is invalid")
			err = errors.Join(err, pipeline.ErrConfiguration{Field: "telemetry", Reason: vErr.Error()})
		}
	}

	if err != nil {
		return fmt.Errorf("validation of configuration failed: %w", err)
	}
	return nil
}

// Validate validates the binning configuration
func (c *BinningConfig) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)
	if c.BinSize <= 0 {
		log.ErrorContext(ctx, "The bin size must be positive", "binSize", c.BinSize)
		err = errors.Join(err, pipeline.ErrConfiguration{
			Field:  "binning.binSize",
			Reason: fmt.Sprintf("must be positive, got %d", c.BinSize),
		})
	}
	if c.Workers <= 0 {
		log.ErrorContext(ctx, "The number of workers must be positive", "workers", c.Workers)
		err = errors.Join(err, pipeline.ErrConfiguration{
			Field:  "binning.workers",
			Reason: fmt.Sprintf("must be positive, got %d", c.Workers),
		})
	}
	return err
}

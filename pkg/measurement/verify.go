// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package measurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/telekom/tracelens/internal/logger"
	"github.com/telekom/tracelens/pkg/pipeline"
)

// Verify reads the measurement file at path completely. It returns the record
// counts and an error if the file cannot be read to its end.
func Verify(ctx context.Context, path string) (stats pipeline.Stats, err error) {
	log := logger.FromContext(ctx).With("path", path)

	r, err := Open(path)
	if err != nil {
		return stats, err
	}
	defer func() {
		err = errors.Join(err, r.Close())
	}()

	sc := NewScanner(r, WithMalformedHandler(func(mErr pipeline.ErrMalformedRecord) {
		log.WarnContext(ctx, "Malformed record", "line", mErr.Line, "reason", mErr.Reason)
	}))
	for sc.Scan() {
	}
	if err := sc.Err(); err != nil {
		return sc.Stats(), fmt.Errorf("failed to read %q: %w", path, err)
	}
	return sc.Stats(), nil
}

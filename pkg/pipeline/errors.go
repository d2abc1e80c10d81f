// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
)

// ErrConfiguration is returned when a parameter or the filter specification is invalid.
// It is fatal and reported before any processing starts.
type ErrConfiguration struct {
	Field  string
	Reason string
}

func (e ErrConfiguration) Error() string {
	return fmt.Sprintf("invalid configuration field %q: %s", e.Field, e.Reason)
}

// ErrMalformedRecord is returned for a measurement record that cannot be decoded
// or lacks a required field. The record is skipped and counted.
type ErrMalformedRecord struct {
	Line   int
	Reason string
}

func (e ErrMalformedRecord) Error() string {
	return fmt.Sprintf("malformed record on line %d: %s", e.Line, e.Reason)
}

// ErrEmptyInput is returned when an input file has no usable records.
// It is not fatal: the stage writes an empty output.
type ErrEmptyInput struct {
	Path string
}

func (e ErrEmptyInput) Error() string {
	return fmt.Sprintf("no usable records in %q", e.Path)
}

// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package framework

import (
	"bytes"
	"os"

	"github.com/stretchr/testify/assert"
	"github.com/telekom/tracelens/test"
)

// e2eFileAsserter is a file asserter for end-to-end tests.
type e2eFileAsserter struct {
	e2e   *E2E
	path  string
	want  *string
	lines int
}

// FileAssertion creates a new assertion for the file at path within the workspace.
func (e *E2E) FileAssertion(path ...string) *e2eFileAsserter {
	return &e2eFileAsserter{e2e: e, path: e.Path(path...), lines: -1}
}

// WithContent sets the expected content of the file. Compressed files are compared decompressed.
func (a *e2eFileAsserter) WithContent(want string) *e2eFileAsserter {
	a.want = &want
	return a
}

// WithLines sets the expected number of lines of the file.
func (a *e2eFileAsserter) WithLines(n int) *e2eFileAsserter {
	a.lines = n
	return a
}

// Assert asserts that the file exists and runs the content validations.
func (a *e2eFileAsserter) Assert() {
	t := a.e2e.t
	t.Helper()
	if !a.e2e.isRunning() {
		t.Fatal("e2eFileAsserter.Assert must be called after E2E.Run")
	}

	if _, err := os.Stat(a.path); err != nil {
		t.Errorf("Expected output %q: %v", a.path, err)
		return
	}

	got := test.ReadFile(t, a.path)
	if a.want != nil {
		assert.Equal(t, *a.want, string(got), "Unexpected content of %s", a.path)
	}
	if a.lines >= 0 {
		assert.Equal(t, a.lines, bytes.Count(got, []byte("\n")), "Unexpected number of lines in %s", a.path)
	}
}

// Missing asserts that the file does not exist.
func (a *e2eFileAsserter) Missing() {
	t := a.e2e.t
	t.Helper()
	if _, err := os.Stat(a.path); err == nil {
		t.Errorf("Expected no output at %q", a.path)
	}
}

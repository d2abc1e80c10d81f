// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package measurement

import (
	"bufio"
	"bytes"
	"io"
	"iter"

	"github.com/telekom/tracelens/internal/traceroute"
	"github.com/telekom/tracelens/pkg/pipeline"
)

// maxLineSize bounds a single measurement record. Traceroutes with many
// hops and replies regularly exceed bufio's default of 64 KiB.
const maxLineSize = 16 << 20

// Record is one usable measurement record.
type Record struct {
	// Traceroute is the decoded traceroute.
	Traceroute traceroute.Traceroute
	// Raw holds the undecoded line without its trailing newline.
	// It is only valid until the next call to [Scanner.Scan].
	Raw []byte
}

// Scanner reads measurement records line by line. Lines that cannot be
// decoded are skipped and counted; they never stop the scan.
type Scanner struct {
	sc          *bufio.Scanner
	line        int
	rec         Record
	stats       pipeline.Stats
	onMalformed func(pipeline.ErrMalformedRecord)
}

// ScannerOption configures a [Scanner].
type ScannerOption func(*Scanner)

// WithMalformedHandler registers a function called for every skipped record.
func WithMalformedHandler(fn func(pipeline.ErrMalformedRecord)) ScannerOption {
	return func(s *Scanner) {
		s.onMalformed = fn
	}
}

// NewScanner returns a scanner reading from r.
func NewScanner(r io.Reader, opts ...ScannerOption) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	s := &Scanner{sc: sc}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan advances to the next usable record. It returns false at the end of
// the input or on a read error, which is then returned by [Scanner.Err].
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		s.line++
		raw := bytes.TrimSpace(s.sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		tr, err := Decode(raw)
		if err != nil {
			s.stats.Malformed++
			if s.onMalformed != nil {
				s.onMalformed(pipeline.ErrMalformedRecord{Line: s.line, Reason: err.Error()})
			}
			continue
		}

		s.stats.Records++
		s.rec = Record{Traceroute: tr, Raw: raw}
		return true
	}
	return false
}

// Record returns the most recent record read by [Scanner.Scan].
func (s *Scanner) Record() Record {
	return s.rec
}

// Err returns the first non-EOF read error.
func (s *Scanner) Err() error {
	return s.sc.Err()
}

// Stats returns the counts of usable and skipped records so far.
func (s *Scanner) Stats() pipeline.Stats {
	return s.stats
}

// Traceroutes returns an iterator over the remaining decoded traceroutes.
// Callers must check [Scanner.Err] once the iteration is done.
func (s *Scanner) Traceroutes() iter.Seq[traceroute.Traceroute] {
	return func(yield func(traceroute.Traceroute) bool) {
		for s.Scan() {
			if !yield(s.rec.Traceroute) {
				return
			}
		}
	}
}

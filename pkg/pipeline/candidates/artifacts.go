// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package candidates

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/telekom/tracelens/internal/logger"
	"github.com/telekom/tracelens/internal/traceroute"
	"github.com/telekom/tracelens/pkg/measurement"
)

const (
	// CandidatesSuffix is the suffix of the per-file candidate counts.
	CandidatesSuffix = ".candidates.csv"
	// DisqualifiedSuffix is the suffix of the per-file disqualified keys.
	DisqualifiedSuffix = ".non-candidates.gob.bz2"
)

var candidatesHeader = []string{"prb_id", "dst_addr", "num_tr"}

// CandidatesPath returns the path of the candidate counts of the measurement file name in dir.
func CandidatesPath(dir, name string) string {
	return filepath.Join(dir, name+CandidatesSuffix)
}

// DisqualifiedPath returns the path of the disqualified keys of the measurement file name in dir.
func DisqualifiedPath(dir, name string) string {
	return filepath.Join(dir, name+DisqualifiedSuffix)
}

// disqualifiedFile is the gob layout of the disqualified keys.
type disqualifiedFile struct {
	Keys []disqualifiedKey
}

type disqualifiedKey struct {
	ProbeID     int
	Destination string
}

// WriteCandidates writes the candidate counts of v as CSV, sorted by key.
func WriteCandidates(w io.Writer, v Verdicts) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(candidatesHeader); err != nil {
		return err
	}
	for _, k := range v.CandidateKeys() {
		row := []string{strconv.Itoa(k.ProbeID), k.Destination.String(), strconv.Itoa(v.Candidates[k])}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCandidates reads candidate counts written by [WriteCandidates].
func ReadCandidates(r io.Reader) (map[traceroute.Key]int, error) {
	counts := map[traceroute.Key]int{}
	err := readKeyCounts(r, candidatesHeader, func(k traceroute.Key, n int) {
		counts[k] += n
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// WriteDisqualified writes the disqualified keys of v as gob, sorted by key.
func WriteDisqualified(w io.Writer, v Verdicts) error {
	keys := v.DisqualifiedKeys()
	f := disqualifiedFile{Keys: make([]disqualifiedKey, 0, len(keys))}
	for _, k := range keys {
		f.Keys = append(f.Keys, disqualifiedKey{ProbeID: k.ProbeID, Destination: k.Destination.String()})
	}
	return gob.NewEncoder(w).Encode(f)
}

// ReadDisqualified reads disqualified keys written by [WriteDisqualified].
func ReadDisqualified(r io.Reader) (map[traceroute.Key]struct{}, error) {
	var f disqualifiedFile
	if err := gob.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode disqualified keys: %w", err)
	}
	keys := make(map[traceroute.Key]struct{}, len(f.Keys))
	for _, dk := range f.Keys {
		addr, err := netip.ParseAddr(dk.Destination)
		if err != nil {
			return nil, fmt.Errorf("invalid disqualified destination %q: %w", dk.Destination, err)
		}
		keys[traceroute.Key{ProbeID: dk.ProbeID, Destination: addr}] = struct{}{}
	}
	return keys, nil
}

// WriteArtifacts writes both artifacts of the measurement file name to dir.
// Each artifact only appears once it was written completely.
func WriteArtifacts(dir, name string, v Verdicts) error {
	if err := writeFile(CandidatesPath(dir, name), func(w io.Writer) error { return WriteCandidates(w, v) }); err != nil {
		return err
	}
	return writeFile(DisqualifiedPath(dir, name), func(w io.Writer) error { return WriteDisqualified(w, v) })
}

// ArtifactsExist reports whether both artifacts of the measurement file name exist in dir.
func ArtifactsExist(dir, name string) bool {
	return measurement.Exists(CandidatesPath(dir, name)) && measurement.Exists(DisqualifiedPath(dir, name))
}

// LoadArtifacts reads the artifacts of every measurement file found in dir,
// in ascending order of the file names. Both artifacts of a file must exist:
// a missing half means its extraction did not finish, and aggregating without
// it could let disqualified keys back into the candidate set.
func LoadArtifacts(ctx context.Context, dir string) ([]Verdicts, error) {
	log := logger.FromContext(ctx)

	names := map[string]struct{}{}
	for _, suffix := range []string{CandidatesSuffix, DisqualifiedSuffix} {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
		if err != nil {
			return nil, fmt.Errorf("failed to list artifacts: %w", err)
		}
		for _, m := range matches {
			names[strings.TrimSuffix(filepath.Base(m), suffix)] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	slices.Sort(sorted)

	artifacts := make([]Verdicts, 0, len(sorted))
	for _, name := range sorted {
		cPath, dPath := CandidatesPath(dir, name), DisqualifiedPath(dir, name)
		for _, p := range []string{cPath, dPath} {
			if !measurement.Exists(p) {
				log.ErrorContext(ctx, "Incomplete artifacts", "name", name, "missing", p)
				return nil, fmt.Errorf("artifact %q is missing, re-run extract for measurement file %q", p, name)
			}
		}

		counts, err := readFile(cPath, ReadCandidates)
		if err != nil {
			return nil, err
		}
		keys, err := readFile(dPath, ReadDisqualified)
		if err != nil {
			return nil, err
		}
		v := Verdicts{Candidates: counts, Disqualified: keys}

		log.DebugContext(ctx, "Loaded artifacts", "name", name, "candidates", len(v.Candidates), "disqualified", len(v.Disqualified))
		artifacts = append(artifacts, v)
	}
	return artifacts, nil
}

// readKeyCounts parses a CSV of (probe, destination, count) rows with the given header.
func readKeyCounts(r io.Reader, header []string, fn func(traceroute.Key, int)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.ReuseRecord = true

	got, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("missing header %q", strings.Join(header, ","))
	}
	if err != nil {
		return err
	}
	if !slices.Equal(got, header) {
		return fmt.Errorf("unexpected header %q, want %q", strings.Join(got, ","), strings.Join(header, ","))
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := cr.FieldPos(0)

		probe, err := strconv.Atoi(row[0])
		if err != nil {
			return fmt.Errorf("line %d: invalid probe id %q", line, row[0])
		}
		addr, err := netip.ParseAddr(row[1])
		if err != nil {
			return fmt.Errorf("line %d: invalid destination %q", line, row[1])
		}
		n, err := strconv.Atoi(row[2])
		if err != nil || n < 0 {
			return fmt.Errorf("line %d: invalid count %q", line, row[2])
		}
		fn(traceroute.Key{ProbeID: probe, Destination: addr}, n)
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := measurement.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		return errors.Join(fmt.Errorf("failed to write %q: %w", path, err), f.Abort())
	}
	return f.Close()
}

func readFile[T any](path string, fn func(io.Reader) (T, error)) (v T, err error) {
	r, err := measurement.Open(path)
	if err != nil {
		return v, err
	}
	defer func() {
		err = errors.Join(err, r.Close())
	}()

	v, err = fn(r)
	if err != nil {
		return v, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return v, nil
}

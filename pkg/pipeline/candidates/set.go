// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package candidates

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/telekom/tracelens/internal/traceroute"
)

var setHeader = []string{"probe_id", "destination", "valid_traceroute_count"}

// Set is the final candidate set: every key with enough valid traceroutes
// and no disqualification in any reference file, mapped to its total count.
type Set map[traceroute.Key]int

// Contains reports whether key is a candidate.
func (s Set) Contains(key traceroute.Key) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the keys of the set in ascending order.
func (s Set) Keys() []traceroute.Key {
	keys := make([]traceroute.Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	traceroute.SortKeys(keys)
	return keys
}

// WriteSet writes the set as CSV, sorted by key.
func WriteSet(w io.Writer, s Set) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(setHeader); err != nil {
		return err
	}
	for _, k := range s.Keys() {
		if err := cw.Write([]string{strconv.Itoa(k.ProbeID), k.Destination.String(), strconv.Itoa(s[k])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSet reads a set written by [WriteSet].
func ReadSet(r io.Reader) (Set, error) {
	s := Set{}
	err := readKeyCounts(r, setHeader, func(k traceroute.Key, n int) {
		s[k] = n
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LoadSet reads the set stored at path.
func LoadSet(path string) (Set, error) {
	return readFile(path, ReadSet)
}

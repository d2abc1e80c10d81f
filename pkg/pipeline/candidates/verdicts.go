// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package candidates

import (
	"iter"

	"github.com/telekom/tracelens/internal/traceroute"
)

// Verdicts holds the per-key outcome of one measurement file.
//
// A key is either a candidate with the number of its valid traceroutes or
// disqualified, never both. Once disqualified, a key stays disqualified
// for the rest of the file.
type Verdicts struct {
	// Candidates maps every never-disqualified key to its valid traceroute count.
	Candidates map[traceroute.Key]int
	// Disqualified holds every key with at least one invalid traceroute.
	Disqualified map[traceroute.Key]struct{}
}

// NewVerdicts returns empty verdicts.
func NewVerdicts() Verdicts {
	return Verdicts{
		Candidates:   map[traceroute.Key]int{},
		Disqualified: map[traceroute.Key]struct{}{},
	}
}

// Observe records one traceroute of key.
func (v Verdicts) Observe(key traceroute.Key, valid bool) {
	if _, ok := v.Disqualified[key]; ok {
		return
	}
	if !valid {
		delete(v.Candidates, key)
		v.Disqualified[key] = struct{}{}
		return
	}
	v.Candidates[key]++
}

// CandidateKeys returns the candidate keys in ascending order.
func (v Verdicts) CandidateKeys() []traceroute.Key {
	keys := make([]traceroute.Key, 0, len(v.Candidates))
	for k := range v.Candidates {
		keys = append(keys, k)
	}
	traceroute.SortKeys(keys)
	return keys
}

// DisqualifiedKeys returns the disqualified keys in ascending order.
func (v Verdicts) DisqualifiedKeys() []traceroute.Key {
	keys := make([]traceroute.Key, 0, len(v.Disqualified))
	for k := range v.Disqualified {
		keys = append(keys, k)
	}
	traceroute.SortKeys(keys)
	return keys
}

// Extract classifies every traceroute against region and returns the
// verdicts of the whole sequence. A traceroute is valid if it reached its
// destination and crossed the region; any other traceroute disqualifies its key.
func Extract(traceroutes iter.Seq[traceroute.Traceroute], region traceroute.Region) Verdicts {
	v := NewVerdicts()
	for tr := range traceroutes {
		v.Observe(tr.Key(), traceroute.Classify(tr, region).Valid())
	}
	return v
}

// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package candidates

import (
	"github.com/telekom/tracelens/internal/traceroute"
)

// Exclusions counts the keys dropped while aggregating.
type Exclusions struct {
	// Disqualified is the number of keys with valid traceroutes that were
	// disqualified in at least one file.
	Disqualified int
	// BelowThreshold is the number of keys with too few valid traceroutes.
	BelowThreshold int
}

// Aggregate merges the verdicts of all reference files into the candidate set.
//
// A key is kept if it was never disqualified and its summed valid count is at
// least minTraceroutes. The result does not depend on the order of artifacts.
func Aggregate(artifacts []Verdicts, minTraceroutes int) Set {
	s, _ := AggregateWithExclusions(artifacts, minTraceroutes)
	return s
}

// AggregateWithExclusions is [Aggregate] but also reports why keys were dropped.
func AggregateWithExclusions(artifacts []Verdicts, minTraceroutes int) (Set, Exclusions) {
	disqualified := map[traceroute.Key]struct{}{}
	counts := map[traceroute.Key]int{}
	for _, a := range artifacts {
		for k := range a.Disqualified {
			disqualified[k] = struct{}{}
		}
		for k, n := range a.Candidates {
			counts[k] += n
		}
	}

	var ex Exclusions
	s := Set{}
	for k, n := range counts {
		if _, ok := disqualified[k]; ok {
			ex.Disqualified++
			continue
		}
		if n < minTraceroutes {
			ex.BelowThreshold++
			continue
		}
		s[k] = n
	}
	return s, ex
}

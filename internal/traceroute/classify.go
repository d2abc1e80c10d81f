// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import "net/netip"

// Region is the monitored part of the network a traceroute may cross.
type Region interface {
	// Contains returns true if addr lies within the region.
	Contains(addr netip.Addr) bool
}

// Status is the classification of a single traceroute.
type Status struct {
	// Reached is true if the final hop was answered by the destination.
	Reached bool
	// Traversed is true if at least one hop lies within the monitored region.
	Traversed bool
	// RTT is the mean round trip time of the final hop in milliseconds.
	// It is only set if HasRTT is true.
	RTT    float64
	HasRTT bool
}

// Classify computes the status of tr against the given region.
func Classify(tr Traceroute, region Region) Status {
	s := Status{
		Reached:   ReachedDestination(tr),
		Traversed: TraversedRegion(tr, region),
	}
	s.RTT, s.HasRTT = FinalRTT(tr)
	return s
}

// Valid reports whether the traceroute both reached its destination
// and crossed the monitored region.
func (s Status) Valid() bool {
	return s.Reached && s.Traversed
}

// ReachedDestination returns true if any reply of the final hop came from
// the destination address.
//
// Only the final hop is authoritative: a destination that answers an earlier
// hop while the final hop times out does not count as reached.
func ReachedDestination(tr Traceroute) bool {
	hop, ok := tr.finalHop()
	if !ok || hop.Failed() || !tr.Destination.IsValid() {
		return false
	}
	for _, r := range hop.Replies {
		if !r.TimedOut() && r.Addr == tr.Destination {
			return true
		}
	}
	return false
}

// TraversedRegion returns true if any reply address of any hop is contained
// in the region. Timeouts and failed hops are skipped.
func TraversedRegion(tr Traceroute, region Region) bool {
	if region == nil {
		return false
	}
	for _, hop := range tr.Hops {
		if hop.Failed() {
			continue
		}
		for _, r := range hop.Replies {
			if r.TimedOut() {
				continue
			}
			if region.Contains(r.Addr) {
				return true
			}
		}
	}
	return false
}

// FinalRTT returns the mean RTT over all replies of the final hop that carry one.
// The second return value is false if there is no such reply.
func FinalRTT(tr Traceroute) (float64, bool) {
	hop, ok := tr.finalHop()
	if !ok || hop.Failed() {
		return 0, false
	}
	var (
		mean  float64
		count int
	)
	for _, r := range hop.Replies {
		if !r.HasRTT {
			continue
		}
		count++
		mean += (r.RTT - mean) / float64(count)
	}
	return mean, count > 0
}

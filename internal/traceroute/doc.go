// Package traceroute models completed traceroute measurement results
// and classifies them against a monitored network region.
//
// A [Traceroute] is identified over time by its [Key], the pair of probe
// and destination. Classification answers two independent questions:
//
//   - did the traceroute reach its destination ([ReachedDestination])
//   - did it cross the monitored region ([TraversedRegion])
//
// The region is anything implementing [Region], usually a prefix matcher.
// All functions in this package are pure and never fail for well-formed input.
//
// Typical usage:
//
//	status := traceroute.Classify(tr, matcher)
//	if status.Valid() {
//		// tr reached its destination through the monitored region
//	}
package traceroute

// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package binner

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/telekom/tracelens/internal/traceroute"
	"github.com/telekom/tracelens/pkg/pipeline"
)

var header = []string{
	"bin_timestamp",
	"num_tr",
	"target_pfx",
	"target_no_pfx",
	"no_target_pfx",
	"no_target_no_pfx",
	"target_pfx_rtt_count",
	"target_pfx_rtt_avg",
	"target_no_pfx_rtt_count",
	"target_no_pfx_rtt_avg",
}

// RTT is a running mean of round trip times.
type RTT struct {
	Count int
	Mean  float64
}

// Add adds x to the running mean.
func (r *RTT) Add(x float64) {
	r.Count++
	r.Mean += (x - r.Mean) / float64(r.Count)
}

// Bin holds the traceroute outcomes of one time window [Start, Start+size).
// Every traceroute is counted in exactly one of the four outcome counters.
type Bin struct {
	Start int64
	// TargetPfx counts traceroutes that reached the destination and crossed the region.
	TargetPfx int
	// TargetNoPfx counts traceroutes that reached the destination without crossing the region.
	TargetNoPfx int
	// NoTargetPfx counts traceroutes that crossed the region without reaching the destination.
	NoTargetPfx int
	// NoTargetNoPfx counts traceroutes that did neither.
	NoTargetNoPfx int

	TargetPfxRTT   RTT
	TargetNoPfxRTT RTT
}

// Total returns the number of traceroutes in the bin.
func (b Bin) Total() int {
	return b.TargetPfx + b.TargetNoPfx + b.NoTargetPfx + b.NoTargetNoPfx
}

func (b *Bin) add(s traceroute.Status) {
	switch {
	case s.Reached && s.Traversed:
		b.TargetPfx++
		if s.HasRTT {
			b.TargetPfxRTT.Add(s.RTT)
		}
	case s.Reached:
		b.TargetNoPfx++
		if s.HasRTT {
			b.TargetNoPfxRTT.Add(s.RTT)
		}
	case s.Traversed:
		b.NoTargetPfx++
	default:
		b.NoTargetNoPfx++
	}
}

// Observation is a classified traceroute.
type Observation struct {
	Timestamp int64
	Status    traceroute.Status
}

// Observe classifies tr against region.
func Observe(tr traceroute.Traceroute, region traceroute.Region) Observation {
	return Observation{Timestamp: tr.Timestamp, Status: traceroute.Classify(tr, region)}
}

// Binner sorts traceroutes into fixed-size time bins.
type Binner struct {
	size   int64
	region traceroute.Region
	bins   map[int64]*Bin
}

// New returns a binner with bins of size seconds.
func New(size int64, region traceroute.Region) (*Binner, error) {
	if size <= 0 {
		return nil, pipeline.ErrConfiguration{Field: "binning.binSize", Reason: fmt.Sprintf("must be positive, got %d", size)}
	}
	return &Binner{size: size, region: region, bins: map[int64]*Bin{}}, nil
}

// Start returns the start of the bin of size seconds containing ts.
func Start(ts, size int64) int64 {
	start := ts - ts%size
	if ts%size < 0 {
		start -= size
	}
	return start
}

// Add classifies tr and adds it to its bin.
func (b *Binner) Add(tr traceroute.Traceroute) {
	b.AddObservation(Observe(tr, b.region))
}

// AddObservation adds an already classified traceroute to its bin.
func (b *Binner) AddObservation(o Observation) {
	start := Start(o.Timestamp, b.size)
	bin, ok := b.bins[start]
	if !ok {
		bin = &Bin{Start: start}
		b.bins[start] = bin
	}
	bin.add(o.Status)
}

// Bins returns all populated bins in ascending order.
func (b *Binner) Bins() []Bin {
	bins := make([]Bin, 0, len(b.bins))
	for _, bin := range b.bins {
		bins = append(bins, *bin)
	}
	slices.SortFunc(bins, func(x, y Bin) int {
		return cmp.Compare(x.Start, y.Start)
	})
	return bins
}

// WriteCSV writes bins as CSV with one row per bin.
func WriteCSV(w io.Writer, bins []Bin) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, b := range bins {
		row := []string{
			strconv.FormatInt(b.Start, 10),
			strconv.Itoa(b.Total()),
			strconv.Itoa(b.TargetPfx),
			strconv.Itoa(b.TargetNoPfx),
			strconv.Itoa(b.NoTargetPfx),
			strconv.Itoa(b.NoTargetNoPfx),
			strconv.Itoa(b.TargetPfxRTT.Count),
			formatFloat(b.TargetPfxRTT.Mean),
			strconv.Itoa(b.TargetNoPfxRTT.Count),
			formatFloat(b.TargetNoPfxRTT.Mean),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

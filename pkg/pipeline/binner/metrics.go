// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package binner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/tracelens/pkg/pipeline"
)

// metrics defines the metric collectors of the bin stage
type metrics struct {
	records  *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	bins     prometheus.Gauge
}

// newMetrics initializes metric collectors of the bin stage
func newMetrics() metrics {
	return metrics{
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracelens_bin_records_total",
				Help: "Total number of measurement records read by the bin stage.",
			},
			[]string{"status"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracelens_bin_traceroutes_total",
				Help: "Total number of binned traceroutes by outcome.",
			},
			[]string{"outcome"},
		),
		bins: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracelens_bin_populated_bins",
				Help: "Number of populated bins in the last output.",
			},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.records,
		m.outcomes,
		m.bins,
	}
}

// SetFile sets the record metrics of one classified measurement file
func (m *metrics) SetFile(stats pipeline.Stats) {
	m.records.WithLabelValues("usable").Add(float64(stats.Records))
	m.records.WithLabelValues("malformed").Add(float64(stats.Malformed))
}

// SetBins sets the metrics of the binned output
func (m *metrics) SetBins(bins []Bin) {
	m.bins.Set(float64(len(bins)))
	for _, b := range bins {
		m.outcomes.WithLabelValues("target_pfx").Add(float64(b.TargetPfx))
		m.outcomes.WithLabelValues("target_no_pfx").Add(float64(b.TargetNoPfx))
		m.outcomes.WithLabelValues("no_target_pfx").Add(float64(b.NoTargetPfx))
		m.outcomes.WithLabelValues("no_target_no_pfx").Add(float64(b.NoTargetNoPfx))
	}
}

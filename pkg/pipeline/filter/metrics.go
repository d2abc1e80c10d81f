// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/tracelens/pkg/pipeline"
)

// metrics defines the metric collectors of the filter stage
type metrics struct {
	records *prometheus.CounterVec
	matched prometheus.Counter
}

// newMetrics initializes metric collectors of the filter stage
func newMetrics() metrics {
	return metrics{
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracelens_filter_records_total",
				Help: "Total number of measurement records read by the filter stage.",
			},
			[]string{"status"},
		),
		matched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tracelens_filter_matched_records_total",
				Help: "Total number of records belonging to the candidate set.",
			},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.records,
		m.matched,
	}
}

// Set sets the metrics of one filtered measurement file
func (m *metrics) Set(stats pipeline.Stats, matched int) {
	m.records.WithLabelValues("usable").Add(float64(stats.Records))
	m.records.WithLabelValues("malformed").Add(float64(stats.Malformed))
	m.matched.Add(float64(matched))
}

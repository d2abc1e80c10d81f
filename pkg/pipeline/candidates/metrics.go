// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package candidates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/tracelens/pkg/pipeline"
)

// metrics defines the metric collectors of the extract and aggregate stages
type metrics struct {
	records  *prometheus.CounterVec
	keys     *prometheus.GaugeVec
	set      prometheus.Gauge
	excluded *prometheus.GaugeVec
}

// newMetrics initializes metric collectors of the candidate stages
func newMetrics() metrics {
	return metrics{
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracelens_extract_records_total",
				Help: "Total number of measurement records read by the extract stage.",
			},
			[]string{"status"},
		),
		keys: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tracelens_extract_keys",
				Help: "Number of keys per verdict in the last extracted measurement file.",
			},
			[]string{"verdict"},
		),
		set: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracelens_aggregate_candidates",
				Help: "Number of keys in the aggregated candidate set.",
			},
		),
		excluded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tracelens_aggregate_excluded_keys",
				Help: "Number of keys dropped while aggregating, by reason.",
			},
			[]string{"reason"},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.records,
		m.keys,
		m.set,
		m.excluded,
	}
}

// SetExtracted sets the metrics of one extracted measurement file
func (m *metrics) SetExtracted(stats pipeline.Stats, v Verdicts) {
	m.records.WithLabelValues("usable").Add(float64(stats.Records))
	m.records.WithLabelValues("malformed").Add(float64(stats.Malformed))
	m.keys.WithLabelValues("candidate").Set(float64(len(v.Candidates)))
	m.keys.WithLabelValues("disqualified").Set(float64(len(v.Disqualified)))
}

// SetAggregated sets the metrics of the aggregated candidate set
func (m *metrics) SetAggregated(s Set, ex Exclusions) {
	m.set.Set(float64(len(s)))
	m.excluded.WithLabelValues("disqualified").Set(float64(ex.Disqualified))
	m.excluded.WithLabelValues("threshold").Set(float64(ex.BelowThreshold))
}

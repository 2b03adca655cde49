// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes used as metric label values.
const (
	outcomeImported     = "imported"
	outcomeDeduplicated = "deduplicated"
	outcomeFailed       = "failed"
	outcomeCancelled    = "cancelled"
)

// Metrics holds the Prometheus collectors for the importer. A nil *Metrics
// records nothing.
type Metrics struct {
	imports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bytes    prometheus.Counter
	active   prometheus.Gauge
	fields   *prometheus.CounterVec
}

// NewMetrics creates the importer collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		imports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paper_ingest",
			Name:      "imports_total",
			Help:      "Imports by outcome (imported, deduplicated, failed, cancelled).",
		}, []string{"outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "paper_ingest",
			Name:      "import_duration_seconds",
			Help:      "Wall time of an import from start to terminal state.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"outcome"}),
		bytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "paper_ingest",
			Name:      "stored_bytes_total",
			Help:      "Bytes written to the content store.",
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "paper_ingest",
			Name:      "active_imports",
			Help:      "Imports registered and not yet finished.",
		}),
		fields: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paper_ingest",
			Name:      "degraded_fields_total",
			Help:      "Metadata fields whose extraction failed.",
		}, []string{"field"}),
	}
}

func (m *Metrics) observe(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) addBytes(n int) {
	if m == nil {
		return
	}
	m.bytes.Add(float64(n))
}

func (m *Metrics) setActive(n int) {
	if m == nil {
		return
	}
	m.active.Set(float64(n))
}

func (m *Metrics) degraded(field string) {
	if m == nil {
		return
	}
	m.fields.WithLabelValues(field).Inc()
}

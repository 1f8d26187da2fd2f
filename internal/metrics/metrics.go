// Package metrics exposes Prometheus collectors for the ingestion pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event outcome label values.
const (
	OutcomeScored  = "scored"
	OutcomeDeduped = "deduped"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// IngestMetrics tracks ingestion outcomes and batch latency. All methods are
// nil-safe so tests can run without a registry.
type IngestMetrics struct {
	eventsTotal     *prometheus.CounterVec
	batchDuration   prometheus.Histogram
	batchSize       prometheus.Histogram
	recomputesTotal *prometheus.CounterVec
	flagsTotal      prometheus.Counter
}

// NewIngestMetrics registers the pipeline collectors in the default registry.
func NewIngestMetrics() *IngestMetrics {
	return &IngestMetrics{
		eventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_events_total",
				Help: "Ingestion events processed, labelled by outcome.",
			},
			[]string{"outcome"},
		),
		batchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_batch_duration_seconds",
				Help:    "Wall time spent processing one ingestion batch.",
				Buckets: prometheus.DefBuckets,
			},
		),
		batchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_batch_size",
				Help:    "Number of events per ingestion batch.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		recomputesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attempt_recomputes_total",
				Help: "Recompute requests, labelled by outcome.",
			},
			[]string{"outcome"},
		),
		flagsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "attempt_flags_total",
				Help: "Flags recorded on attempts.",
			},
		),
	}
}

func (m *IngestMetrics) RecordEvent(outcome string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(outcome).Inc()
}

func (m *IngestMetrics) ObserveBatch(size int, d time.Duration) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(size))
	m.batchDuration.Observe(d.Seconds())
}

func (m *IngestMetrics) RecordRecompute(outcome string) {
	if m == nil {
		return
	}
	m.recomputesTotal.WithLabelValues(outcome).Inc()
}

func (m *IngestMetrics) RecordFlag() {
	if m == nil {
		return
	}
	m.flagsTotal.Inc()
}

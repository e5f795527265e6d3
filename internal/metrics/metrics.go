// Package metrics provides Prometheus metrics for ingestion, ranking, and
// agent verdicts.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gamerec"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// IngestItemsTotal tracks ingested payloads by classification.
	IngestItemsTotal *prometheus.CounterVec
	// IngestFailuresTotal tracks payloads that failed to ingest.
	IngestFailuresTotal prometheus.Counter
	// RankDuration tracks full ranking runs in seconds.
	RankDuration prometheus.Histogram
	// AgentVerdictsTotal tracks agent verdicts by outcome.
	AgentVerdictsTotal *prometheus.CounterVec
}

// New registers the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		IngestItemsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_items_total",
				Help:      "Total number of ingested catalog payloads by classification",
			},
			[]string{"classification"},
		),
		IngestFailuresTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_failures_total",
				Help:      "Total number of catalog payloads that failed to ingest",
			},
		),
		RankDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rank_duration_seconds",
				Help:      "Duration of ranking runs in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		AgentVerdictsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_verdicts_total",
				Help:      "Total number of agent verdicts by outcome",
			},
			[]string{"recommend"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveIngest records one ingested payload.
func (m *Metrics) ObserveIngest(classification string) {
	if m == nil {
		return
	}
	m.IngestItemsTotal.WithLabelValues(classification).Inc()
}

// ObserveIngestFailure records one failed payload.
func (m *Metrics) ObserveIngestFailure() {
	if m == nil {
		return
	}
	m.IngestFailuresTotal.Inc()
}

// ObserveRank records the duration of a ranking run that started at start.
func (m *Metrics) ObserveRank(start time.Time) {
	if m == nil {
		return
	}
	m.RankDuration.Observe(time.Since(start).Seconds())
}

// ObserveVerdict records one agent verdict.
func (m *Metrics) ObserveVerdict(recommend bool) {
	if m == nil {
		return
	}
	m.AgentVerdictsTotal.WithLabelValues(strconv.FormatBool(recommend)).Inc()
}

// Package metrics provides Prometheus metrics for the discovery pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Manager owns every collector. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	itemsFetched   *prometheus.CounterVec
	itemsRejected  *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
	sourceLatency  *prometheus.HistogramVec
	extractions    *prometheus.CounterVec
	judgeLatency   prometheus.Histogram
	opportunities  prometheus.Counter
}

// NewManager creates a manager on its own registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ideavalidator",
		histogramBuckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Category analyses by outcome",
	}, []string{"category", "outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a full category analysis",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	m.itemsFetched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "fetch",
		Name:      "items_total",
		Help:      "Content items accepted by the fetch stage",
	}, []string{"category"})

	m.itemsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "fetch",
		Name:      "rejected_total",
		Help:      "Candidates dropped by quality filters",
	}, []string{"reason"})

	m.sourceFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "source",
		Name:      "failures_total",
		Help:      "Failed content source calls by operation",
	}, []string{"operation"})

	m.sourceLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "source",
		Name:      "request_duration_seconds",
		Help:      "Content source request latency",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.extractions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "extract",
		Name:      "total",
		Help:      "Signal extractions by outcome",
	}, []string{"outcome"})

	m.judgeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "extract",
		Name:      "judge_duration_seconds",
		Help:      "Judgment service call latency",
		Buckets:   m.histogramBuckets,
	})

	m.opportunities = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "opportunities_total",
		Help:      "Opportunities returned by analyses",
	})
}

// Registry exposes the underlying registry for gathering.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in Prometheus text format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RunFinished records a completed analysis.
func (m *Manager) RunFinished(category, outcome string, took time.Duration, opportunities int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(category, outcome).Inc()
	m.runDuration.Observe(took.Seconds())
	m.opportunities.Add(float64(opportunities))
}

// ItemFetched counts an accepted content item.
func (m *Manager) ItemFetched(category string) {
	if m == nil {
		return
	}
	m.itemsFetched.WithLabelValues(category).Inc()
}

// ItemRejected counts a filtered candidate.
func (m *Manager) ItemRejected(reason string) {
	if m == nil {
		return
	}
	m.itemsRejected.WithLabelValues(reason).Inc()
}

// SourceRequest records latency and failure of a content source call.
func (m *Manager) SourceRequest(operation string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.sourceLatency.WithLabelValues(operation).Observe(took.Seconds())
	if err != nil {
		m.sourceFailures.WithLabelValues(operation).Inc()
	}
}

// Extraction records one extraction outcome and the judge latency.
func (m *Manager) Extraction(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome).Inc()
	if took > 0 {
		m.judgeLatency.Observe(took.Seconds())
	}
}

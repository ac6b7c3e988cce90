// Package metrics exposes Prometheus collectors for checks.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "safelink"

// Check outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeBusy         = "busy"
)

// AI assessment outcomes.
const (
	AIScored   = "scored"
	AIInferred = "inferred"
	AIDegraded = "degraded"
	AISkipped  = "skipped"
)

// Metrics owns a private registry so tests and multiple servers in one
// process do not collide on the default registerer. All methods are safe on
// a nil *Metrics.
type Metrics struct {
	registry        *prometheus.Registry
	checks          *prometheus.CounterVec
	aiAssessments   *prometheus.CounterVec
	historyFailures prometheus.Counter
	finalScores     prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "URL checks by outcome.",
		}, []string{"outcome"}),
		aiAssessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_assessments_total",
			Help:      "AI assessments by outcome.",
		}, []string{"outcome"}),
		historyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_persist_failures_total",
			Help:      "Failed writes of the history list.",
		}),
		finalScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score",
			Help:      "Distribution of final safety scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
	}
	reg.MustRegister(
		m.checks,
		m.aiAssessments,
		m.historyFailures,
		m.finalScores,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCheck counts a check outcome.
func (m *Metrics) ObserveCheck(outcome string) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(outcome).Inc()
}

// ObserveScore records a final score.
func (m *Metrics) ObserveScore(score int) {
	if m == nil {
		return
	}
	m.finalScores.Observe(float64(score))
}

// ObserveAI counts an AI assessment outcome.
func (m *Metrics) ObserveAI(outcome string) {
	if m == nil {
		return
	}
	m.aiAssessments.WithLabelValues(outcome).Inc()
}

// HistoryFailure counts a failed history write.
func (m *Metrics) HistoryFailure() {
	if m == nil {
		return
	}
	m.historyFailures.Inc()
}

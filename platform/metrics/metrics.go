// Package metrics exposes Prometheus collectors for the intake pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "filmdecks"

// Outcome labels shared by the collectors.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeNotFound = "not_found"
	OutcomeSkipped  = "skipped"
)

// PipelineMetrics counts lead creation, enrichment, and notification outcomes.
type PipelineMetrics struct {
	leadsCreated       *prometheus.CounterVec
	enrichmentTotal    *prometheus.CounterVec
	enrichmentDuration prometheus.Histogram
	notificationsTotal *prometheus.CounterVec
}

// NewPipelineMetrics registers the collectors on reg, or on the default
// registerer when reg is nil.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		leadsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_created_total",
			Help:      "Leads persisted from questionnaire submissions, by initial status",
		}, []string{"status"}),
		enrichmentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_total",
			Help:      "Enrichment attempts by outcome",
		}, []string{"outcome"}),
		enrichmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enrichment_duration_seconds",
			Help:      "Time spent waiting on the analysis engine",
			Buckets:   []float64{1, 5, 15, 60, 180, 300, 600, 900, 1200},
		}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Best-effort notifications by kind and outcome",
		}, []string{"kind", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadsCreated, m.enrichmentTotal, m.enrichmentDuration, m.notificationsTotal)
	return m
}

func (m *PipelineMetrics) ObserveLeadCreated(status string) {
	if m == nil {
		return
	}
	m.leadsCreated.WithLabelValues(status).Inc()
}

func (m *PipelineMetrics) ObserveEnrichment(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.enrichmentTotal.WithLabelValues(outcome).Inc()
	if seconds > 0 {
		m.enrichmentDuration.Observe(seconds)
	}
}

func (m *PipelineMetrics) ObserveNotification(kind, outcome string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind, outcome).Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the supervision request engine.
type Metrics struct {
	RequestsCreated        *prometheus.CounterVec
	RequestsResolved       *prometheus.CounterVec
	RequestsRejectedByRule prometheus.Counter
	CreateDuration         prometheus.Histogram
	RespondDuration        prometheus.Histogram
}

// New creates a Metrics instance with all supervision module metrics
// registered on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "thesisflow_supervision_requests_created_total",
			Help: "Supervision requests created, by request type",
		}, []string{"type"}),
		RequestsResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "thesisflow_supervision_requests_resolved_total",
			Help: "Supervision requests resolved, by type and decision",
		}, []string{"type", "decision"}),
		RequestsRejectedByRule: promauto.NewCounter(prometheus.CounterOpts{
			Name: "thesisflow_supervision_requests_blocked_total",
			Help: "Request creations rejected by validation or authorization rules",
		}),
		CreateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "thesisflow_supervision_create_duration_seconds",
			Help:    "Duration of CreateRequest operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		RespondDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "thesisflow_supervision_respond_duration_seconds",
			Help:    "Duration of Respond operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCreated records a persisted request.
func (m *Metrics) IncrementCreated(reqType string) {
	m.RequestsCreated.WithLabelValues(reqType).Inc()
}

// IncrementResolved records a resolution.
func (m *Metrics) IncrementResolved(reqType, decision string) {
	m.RequestsResolved.WithLabelValues(reqType, decision).Inc()
}

// IncrementBlocked records a creation rejected by a business rule.
func (m *Metrics) IncrementBlocked() {
	m.RequestsRejectedByRule.Inc()
}

// ObserveCreate records the duration of a CreateRequest operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

// ObserveRespond records the duration of a Respond operation.
func (m *Metrics) ObserveRespond(start time.Time) {
	m.RespondDuration.Observe(time.Since(start).Seconds())
}

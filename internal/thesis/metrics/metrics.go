package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the thesis lifecycle module.
type Metrics struct {
	ThesesCreated       prometheus.Counter
	LifecycleBlocked    prometheus.Counter
	StatusTransitions   *prometheus.CounterVec
	CreateDuration      prometheus.Histogram
	SupervisorsAssigned *prometheus.CounterVec
}

// New creates a Metrics instance with all thesis module metrics
// registered on the default registry.
func New() *Metrics {
	return &Metrics{
		ThesesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "thesisflow_theses_created_total",
			Help: "Total number of theses created",
		}),
		LifecycleBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "thesisflow_thesis_mutations_blocked_total",
			Help: "Mutation attempts rejected by lifecycle state guards",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "thesisflow_thesis_status_transitions_total",
			Help: "Thesis status transitions by target state",
		}, []string{"to"}),
		CreateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "thesisflow_thesis_create_duration_seconds",
			Help:    "Duration of CreateThesis operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SupervisorsAssigned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "thesisflow_supervisors_assigned_total",
			Help: "Supervisor assignments by slot",
		}, []string{"slot"}),
	}
}

// IncrementThesesCreated records a successful thesis creation.
func (m *Metrics) IncrementThesesCreated() {
	m.ThesesCreated.Inc()
}

// IncrementLifecycleBlocked records a mutation rejected by a state guard.
func (m *Metrics) IncrementLifecycleBlocked() {
	m.LifecycleBlocked.Inc()
}

// IncrementTransition records a status transition.
func (m *Metrics) IncrementTransition(to string) {
	m.StatusTransitions.WithLabelValues(to).Inc()
}

// ObserveCreate records the duration of a CreateThesis operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

// IncrementSupervisorAssigned records a supervisor assignment.
func (m *Metrics) IncrementSupervisorAssigned(slot string) {
	m.SupervisorsAssigned.WithLabelValues(slot).Inc()
}

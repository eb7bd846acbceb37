package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the offer and application engine.
type Metrics struct {
	OffersCreated        prometheus.Counter
	OfferTransitions     *prometheus.CounterVec
	ApplicationsCreated  prometheus.Counter
	ApplicationsResolved *prometheus.CounterVec
	ApplicationsBlocked  prometheus.Counter
}

// New creates a Metrics instance with all offer module metrics
// registered on the default registry.
func New() *Metrics {
	return &Metrics{
		OffersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "thesisflow_offers_created_total",
			Help: "Thesis offers created",
		}),
		OfferTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "thesisflow_offer_transitions_total",
			Help: "Offer status transitions, by target status",
		}, []string{"to"}),
		ApplicationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "thesisflow_offer_applications_created_total",
			Help: "Applications submitted to open offers",
		}),
		ApplicationsResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "thesisflow_offer_applications_resolved_total",
			Help: "Applications resolved, by decision",
		}, []string{"decision"}),
		ApplicationsBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "thesisflow_offer_applications_blocked_total",
			Help: "Applications rejected because the offer was not open",
		}),
	}
}

// IncrementOfferCreated records a persisted offer.
func (m *Metrics) IncrementOfferCreated() {
	m.OffersCreated.Inc()
}

// IncrementOfferTransition records a status change.
func (m *Metrics) IncrementOfferTransition(to string) {
	m.OfferTransitions.WithLabelValues(to).Inc()
}

// IncrementApplicationCreated records a submitted application.
func (m *Metrics) IncrementApplicationCreated() {
	m.ApplicationsCreated.Inc()
}

// IncrementApplicationResolved records a resolution.
func (m *Metrics) IncrementApplicationResolved(decision string) {
	m.ApplicationsResolved.WithLabelValues(decision).Inc()
}

// IncrementApplicationBlocked records an application refused because
// the offer was closed, archived, or expired.
func (m *Metrics) IncrementApplicationBlocked() {
	m.ApplicationsBlocked.Inc()
}

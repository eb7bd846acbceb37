// Package app composes the domain services over a chosen store set.
// Embedding programs and the server binary share this wiring instead of
// repeating it.
package app

import (
	"log/slog"

	"thesisflow/internal/identity"
	"thesisflow/internal/offer"
	offermetrics "thesisflow/internal/offer/metrics"
	"thesisflow/internal/supervision"
	supervisionmetrics "thesisflow/internal/supervision/metrics"
	"thesisflow/internal/thesis"
	thesismetrics "thesisflow/internal/thesis/metrics"
	"thesisflow/pkg/platform/audit"
)

// Stores bundles the per-module persistence implementations. All three
// must come from the same backend so cross-module operations share one
// transaction scope.
type Stores struct {
	Theses   thesis.Store
	Requests supervision.Store
	Offers   offer.Store
}

// App is the assembled domain: the thesis lifecycle manager, the
// supervision request engine, and the offer board, wired to one
// identity oracle and one audit pipeline.
type App struct {
	Theses   *thesis.Service
	Requests *supervision.Service
	Offers   *offer.Service
	Auditor  *audit.Publisher
}

type Option func(*options)

type options struct {
	logger      *slog.Logger
	txRunner    supervision.TxRunner
	withMetrics bool
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTxRunner supplies the transactional unit-of-work for the accept
// path. Omit it with memory stores.
func WithTxRunner(runner supervision.TxRunner) Option {
	return func(o *options) { o.txRunner = runner }
}

// WithPrometheusMetrics registers the per-module collectors on the
// default registry. Leave it off in tests to avoid duplicate
// registration.
func WithPrometheusMetrics() Option {
	return func(o *options) { o.withMetrics = true }
}

// New wires the services. The delete cascade from theses to their
// supervision requests is registered here so memory stores behave like
// the Postgres foreign keys.
func New(stores Stores, oracle identity.Oracle, auditStore audit.Store, opts ...Option) *App {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	auditor := audit.NewPublisher(auditStore)

	thesisOpts := []thesis.Option{
		thesis.WithLogger(o.logger),
		thesis.WithAuditPublisher(auditor),
	}
	supervisionOpts := []supervision.Option{
		supervision.WithLogger(o.logger),
		supervision.WithAuditPublisher(auditor),
	}
	offerOpts := []offer.Option{
		offer.WithLogger(o.logger),
		offer.WithAuditPublisher(auditor),
	}
	if o.withMetrics {
		thesisOpts = append(thesisOpts, thesis.WithMetrics(thesismetrics.New()))
		supervisionOpts = append(supervisionOpts, supervision.WithMetrics(supervisionmetrics.New()))
		offerOpts = append(offerOpts, offer.WithMetrics(offermetrics.New()))
	}
	if o.txRunner != nil {
		supervisionOpts = append(supervisionOpts, supervision.WithTxRunner(o.txRunner))
	}

	theses := thesis.NewService(stores.Theses, oracle, thesisOpts...)
	requests := supervision.NewService(stores.Requests, theses, oracle, supervisionOpts...)
	theses.RegisterDeleteCascade(requests.RemoveForThesis)
	offers := offer.NewService(stores.Offers, oracle, offerOpts...)

	return &App{
		Theses:   theses,
		Requests: requests,
		Offers:   offers,
		Auditor:  auditor,
	}
}

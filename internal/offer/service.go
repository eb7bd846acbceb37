package offer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"thesisflow/internal/identity"
	id "thesisflow/pkg/domain"
	dErrors "thesisflow/pkg/domain-errors"
	"thesisflow/pkg/platform/audit"
	"thesisflow/pkg/platform/sentinel"
	"thesisflow/pkg/requestcontext"
)

// AuditPublisher is the slice of the audit pipeline this module emits to.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Metrics is the observability surface the service increments.
type Metrics interface {
	IncrementOfferCreated()
	IncrementOfferTransition(to string)
	IncrementApplicationCreated()
	IncrementApplicationResolved(decision string)
	IncrementApplicationBlocked()
}

// Service is the offer board: tutors advertise supervision capacity,
// students apply to open offers. Applications carry the same terminal
// resolution protocol as supervision requests, but acceptance does not
// touch any thesis; the accepted student still goes through the
// supervision request flow once their thesis exists.
type Service struct {
	store   Store
	oracle  identity.Oracle
	logger  *slog.Logger
	auditor AuditPublisher
	metrics Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, oracle identity.Oracle, opts ...Option) *Service {
	s := &Service{
		store:  store,
		oracle: oracle,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOfferInput carries the offer-creation parameters.
type CreateOfferInput struct {
	Tutor       id.UserID
	Title       string
	Description string
	SubjectArea id.SubjectAreaID
	MaxStudents *int
	ExpiresAt   *time.Time
}

// CreateOffer publishes a new OPEN offer. The tutor must hold the Tutor
// role and cover the offer's subject area.
func (s *Service) CreateOffer(ctx context.Context, input CreateOfferInput) (*ThesisOffer, error) {
	isTutor, err := s.oracle.HasRole(ctx, input.Tutor, identity.RoleTutor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve tutor roles")
	}
	if !isTutor {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "offer author must be a tutor")
	}
	areas, err := s.oracle.SubjectAreasOf(ctx, input.Tutor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve tutor subject areas")
	}
	if !identity.CoversSubjectArea(areas, input.SubjectArea) {
		return nil, dErrors.New(dErrors.CodeConflict, "tutor does not cover this subject area")
	}

	now := requestcontext.Now(ctx)
	o, err := NewThesisOffer(id.NewOfferID(), input.Tutor, input.Title, input.Description,
		input.SubjectArea, input.MaxStudents, input.ExpiresAt, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, reasonOf(err))
		}
		return nil, err
	}

	if err := s.store.CreateOffer(ctx, o); err != nil {
		return nil, wrapOfferErr(err)
	}

	s.emit(ctx, audit.Event{
		ActorID: input.Tutor,
		Subject: o.ID.String(),
		Action:  audit.EventOfferCreated,
	})
	if s.metrics != nil {
		s.metrics.IncrementOfferCreated()
	}
	return o, nil
}

// GetOffer loads a single offer.
func (s *Service) GetOffer(ctx context.Context, offerID id.OfferID) (*ThesisOffer, error) {
	o, err := s.store.FindOfferByID(ctx, offerID)
	if err != nil {
		return nil, wrapOfferErr(err)
	}
	return o, nil
}

// CloseOffer moves an OPEN offer to CLOSED. Only the offer's tutor may
// close it.
func (s *Service) CloseOffer(ctx context.Context, offerID id.OfferID, actor id.UserID) (*ThesisOffer, error) {
	return s.transition(ctx, offerID, actor, StatusClosed, audit.EventOfferClosed,
		func(o *ThesisOffer) error { return o.CanClose() })
}

// ArchiveOffer moves an offer to ARCHIVED, its final state. Only the
// offer's tutor may archive it.
func (s *Service) ArchiveOffer(ctx context.Context, offerID id.OfferID, actor id.UserID) (*ThesisOffer, error) {
	return s.transition(ctx, offerID, actor, StatusArchived, audit.EventOfferArchived,
		func(o *ThesisOffer) error { return o.CanArchive() })
}

func (s *Service) transition(ctx context.Context, offerID id.OfferID, actor id.UserID, to OfferStatus, action audit.Action, guard func(*ThesisOffer) error) (*ThesisOffer, error) {
	now := requestcontext.Now(ctx)
	o, err := s.store.ExecuteOffer(ctx, offerID,
		func(o *ThesisOffer) error {
			if o.Tutor != actor {
				return dErrors.New(dErrors.CodeUnauthorized, "only the offer's tutor may change its state")
			}
			if err := guard(o); err != nil {
				return dErrors.New(dErrors.CodeConflict, reasonOf(err))
			}
			return nil
		},
		func(o *ThesisOffer) { o.ApplyStatus(to, now) },
	)
	if err != nil {
		return nil, wrapOfferErr(err)
	}

	s.emit(ctx, audit.Event{ActorID: actor, Subject: o.ID.String(), Action: action})
	if s.metrics != nil {
		s.metrics.IncrementOfferTransition(string(to))
	}
	return o, nil
}

// Apply submits a student's application to an open offer.
//
// The two failure modes stay distinguishable for callers: a missing
// offer is NotFound, a closed, archived, or expired offer is a state
// conflict. MaxStudents is not checked here; the cap is advisory and
// the tutor arbitrates among pending applications.
func (s *Service) Apply(ctx context.Context, offerID id.OfferID, student id.UserID, message string) (*Application, error) {
	isStudent, err := s.oracle.HasRole(ctx, student, identity.RoleStudent)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve applicant roles")
	}
	if !isStudent {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "applicant must be a student")
	}

	o, err := s.store.FindOfferByID(ctx, offerID)
	if err != nil {
		return nil, wrapOfferErr(err)
	}
	now := requestcontext.Now(ctx)
	if !o.IsOpen(now) {
		if s.metrics != nil {
			s.metrics.IncrementApplicationBlocked()
		}
		return nil, dErrors.New(dErrors.CodeConflict, "thesis offer does not have open state anymore")
	}

	a, err := NewApplication(id.NewApplicationID(), o.ID, student, message, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, reasonOf(err))
		}
		return nil, err
	}
	if err := s.store.CreateApplication(ctx, a); err != nil {
		return nil, wrapApplicationErr(err)
	}

	s.emit(ctx, audit.Event{
		ActorID: student,
		Subject: a.ID.String(),
		Action:  audit.EventApplicationCreated,
		Reason:  o.ID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementApplicationCreated()
	}
	return a, nil
}

// RespondToApplication resolves a pending application. Only the offer's
// tutor may respond; a resolved application rejects further responses.
func (s *Service) RespondToApplication(ctx context.Context, appID id.ApplicationID, responder id.UserID, accepted bool, message string) (*Application, error) {
	a, err := s.store.FindApplicationByID(ctx, appID)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	o, err := s.store.FindOfferByID(ctx, a.OfferID)
	if err != nil {
		return nil, wrapOfferErr(err)
	}
	if o.Tutor != responder {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the offer's tutor may respond to applications")
	}

	now := requestcontext.Now(ctx)
	resolved, err := s.store.ExecuteApplication(ctx, appID,
		func(a *Application) error {
			if err := a.CanResolve(); err != nil {
				return dErrors.New(dErrors.CodeConflict, reasonOf(err))
			}
			return nil
		},
		func(a *Application) { a.ApplyResolution(accepted, message, now) },
	)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}

	action := audit.EventApplicationRejected
	decision := "rejected"
	if accepted {
		action = audit.EventApplicationAccepted
		decision = "accepted"
	}
	s.emit(ctx, audit.Event{
		ActorID:  responder,
		Subject:  resolved.ID.String(),
		Action:   action,
		Decision: decision,
	})
	if s.metrics != nil {
		s.metrics.IncrementApplicationResolved(decision)
	}
	return resolved, nil
}

// ListOffersByTutor returns a tutor's offers, newest first.
func (s *Service) ListOffersByTutor(ctx context.Context, tutor id.UserID) ([]*ThesisOffer, error) {
	offers, err := s.store.ListOffersByTutor(ctx, tutor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list offers")
	}
	return offers, nil
}

// ListOpenOffers returns offers currently accepting applications,
// newest first, optionally filtered by subject area. Offers past their
// expiry are filtered out even while their stored status is OPEN.
func (s *Service) ListOpenOffers(ctx context.Context, area *id.SubjectAreaID) ([]*ThesisOffer, error) {
	offers, err := s.store.ListOpenOffers(ctx, area)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list offers")
	}
	now := requestcontext.Now(ctx)
	open := offers[:0]
	for _, o := range offers {
		if o.IsOpen(now) {
			open = append(open, o)
		}
	}
	return open, nil
}

// ListApplicationsByOffer returns an offer's applications, newest
// first.
func (s *Service) ListApplicationsByOffer(ctx context.Context, offerID id.OfferID) ([]*Application, error) {
	apps, err := s.store.ListApplicationsByOffer(ctx, offerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// ListApplicationsByStudent returns a student's applications, newest
// first.
func (s *Service) ListApplicationsByStudent(ctx context.Context, student id.UserID) ([]*Application, error) {
	apps, err := s.store.ListApplicationsByStudent(ctx, student)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.Error("audit emit failed", "action", event.Action, "subject", event.Subject, "error", err)
	}
}

func wrapOfferErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "thesis offer not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "thesis offer already exists")
	default:
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "offer store failure")
	}
}

func wrapApplicationErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "application already exists")
	default:
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "application store failure")
	}
}

func reasonOf(err error) string {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

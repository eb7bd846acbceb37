package thesis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
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

// Metrics is the observability surface the service increments. Kept as
// an interface so unit tests can run without a prometheus registry.
type Metrics interface {
	IncrementThesesCreated()
	IncrementLifecycleBlocked()
	IncrementTransition(to string)
	ObserveCreate(start time.Time)
	IncrementSupervisorAssigned(slot string)
}

// Service is the thesis lifecycle manager. It owns the thesis status
// state machine and enforces edit-ability rules; it does not drive
// transitions itself beyond the administrative Submit/Defend actions.
type Service struct {
	store    Store
	oracle   identity.Oracle
	logger   *slog.Logger
	auditor  AuditPublisher
	metrics  Metrics
	cascades []func(ctx context.Context, thesisID id.ThesisID) error
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

// WithDeleteCascade registers a hook run before a thesis is removed,
// used to delete dependent records. With Postgres stores the foreign
// keys cascade on their own; memory stores rely on these hooks.
func WithDeleteCascade(fn func(ctx context.Context, thesisID id.ThesisID) error) Option {
	return func(s *Service) { s.cascades = append(s.cascades, fn) }
}

// RegisterDeleteCascade adds a cascade hook after construction. The
// supervision engine registers itself this way since it depends on this
// service and cannot be present at construction time.
func (s *Service) RegisterDeleteCascade(fn func(ctx context.Context, thesisID id.ThesisID) error) {
	s.cascades = append(s.cascades, fn)
}

func NewService(store Store, oracle identity.Oracle, opts ...Option) *Service {
	s := &Service{store: store, oracle: oracle, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateThesis registers a new thesis for a student owner. Supervisors
// start unset; they are populated only through accepted supervision
// requests.
func (s *Service) CreateThesis(ctx context.Context, title, description string, owner id.UserID, subjectArea *id.SubjectAreaID) (*Thesis, error) {
	start := time.Now()
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "thesis title is required")
	}
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "thesis owner is required")
	}

	isStudent, err := s.oracle.HasRole(ctx, owner, identity.RoleStudent)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve owner roles")
	}
	if !isStudent {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "thesis owner must be a student")
	}

	now := requestcontext.Now(ctx)
	t, err := NewThesis(id.NewThesisID(), title, description, owner, subjectArea, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create thesis")
	}

	s.emit(ctx, audit.Event{
		ActorID: owner,
		Subject: t.ID.String(),
		Action:  audit.EventThesisCreated,
	})
	if s.metrics != nil {
		s.metrics.IncrementThesesCreated()
		s.metrics.ObserveCreate(start)
	}
	return t, nil
}

// Get loads a single thesis.
func (s *Service) Get(ctx context.Context, thesisID id.ThesisID) (*Thesis, error) {
	t, err := s.store.FindByID(ctx, thesisID)
	if err != nil {
		return nil, wrapThesisErr(err)
	}
	return t, nil
}

// Changes describes a partial thesis update. Nil fields are untouched.
type Changes struct {
	Title       *string
	Description *string
	SubjectArea *id.SubjectAreaID
	DocumentRef *string
}

func (c Changes) isEmpty() bool {
	return c.Title == nil && c.Description == nil && c.SubjectArea == nil && c.DocumentRef == nil
}

// Update applies content changes, enforcing the edit-ability rules:
// full allow in IN_DISCUSSION, subject area frozen once REGISTERED, all
// edits rejected after submission or defense.
func (s *Service) Update(ctx context.Context, thesisID id.ThesisID, changes Changes) (*Thesis, error) {
	if changes.isEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no changes provided")
	}
	if changes.Title != nil && strings.TrimSpace(*changes.Title) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "thesis title cannot be empty")
	}

	now := requestcontext.Now(ctx)
	t, err := s.store.Execute(ctx, thesisID,
		func(t *Thesis) error {
			if err := t.CanEditContent(); err != nil {
				return err
			}
			if changes.SubjectArea != nil {
				if err := t.CanChangeSubjectArea(); err != nil {
					return err
				}
			}
			return nil
		},
		func(t *Thesis) {
			if changes.Title != nil {
				t.Title = strings.TrimSpace(*changes.Title)
			}
			if changes.Description != nil {
				t.Description = *changes.Description
			}
			if changes.SubjectArea != nil {
				t.SubjectArea = changes.SubjectArea
			}
			if changes.DocumentRef != nil {
				t.DocumentRef = *changes.DocumentRef
			}
			t.UpdatedAt = now
		},
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			s.incrementBlocked()
			return nil, dErrors.New(dErrors.CodeConflict, reasonOf(err))
		}
		return nil, wrapThesisErr(err)
	}

	s.emit(ctx, audit.Event{Subject: t.ID.String(), Action: audit.EventThesisUpdated})
	return t, nil
}

// Submit transitions a registered thesis to SUBMITTED. Administrative
// action; the thesis is frozen afterwards.
func (s *Service) Submit(ctx context.Context, thesisID id.ThesisID) (*Thesis, error) {
	return s.transition(ctx, thesisID, StatusSubmitted, audit.EventThesisSubmitted,
		func(t *Thesis) error { return t.CanSubmit() },
		func(t *Thesis, now time.Time) { t.ApplySubmission(now) })
}

// Defend transitions a submitted thesis to DEFENDED.
func (s *Service) Defend(ctx context.Context, thesisID id.ThesisID) (*Thesis, error) {
	return s.transition(ctx, thesisID, StatusDefended, audit.EventThesisDefended,
		func(t *Thesis) error { return t.CanDefend() },
		func(t *Thesis, now time.Time) { t.ApplyDefense(now) })
}

func (s *Service) transition(ctx context.Context, thesisID id.ThesisID, to Status, action audit.Action,
	validate func(*Thesis) error, apply func(*Thesis, time.Time)) (*Thesis, error) {
	now := requestcontext.Now(ctx)
	t, err := s.store.Execute(ctx, thesisID,
		validate,
		func(t *Thesis) { apply(t, now) },
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			s.incrementBlocked()
			return nil, dErrors.New(dErrors.CodeConflict, reasonOf(err))
		}
		return nil, wrapThesisErr(err)
	}

	s.emit(ctx, audit.Event{Subject: t.ID.String(), Action: action})
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(to))
	}
	return t, nil
}

// AssignSupervisor populates a supervisor slot on acceptance of a
// supervision request. Only the supervision engine calls this; role
// membership was validated at request-creation time. The Execute guard
// re-asserts primary ≠ secondary and that the slot is still unset, so
// the second of two competing accepts fails instead of overwriting.
func (s *Service) AssignSupervisor(ctx context.Context, thesisID id.ThesisID, slot SupervisorSlot, user id.UserID) (*Thesis, error) {
	if user.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "supervisor is required")
	}
	now := requestcontext.Now(ctx)
	t, err := s.store.Execute(ctx, thesisID,
		func(t *Thesis) error { return t.CanAssignSupervisor(slot, user) },
		func(t *Thesis) { t.ApplySupervisor(slot, user, now) },
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeConflict, reasonOf(err))
		}
		return nil, wrapThesisErr(err)
	}

	action := audit.EventSupervisorAssigned
	if slot == SlotSecondary {
		action = audit.EventCoSupervisorAssigned
	}
	s.emit(ctx, audit.Event{ActorID: user, Subject: t.ID.String(), Action: action})
	if s.metrics != nil {
		s.metrics.IncrementSupervisorAssigned(string(slot))
	}
	return t, nil
}

// SetBillingStatus updates the billing axis. Billing is independent of
// the lifecycle lock: invoicing typically happens after submission.
func (s *Service) SetBillingStatus(ctx context.Context, thesisID id.ThesisID, billing BillingStatus) (*Thesis, error) {
	switch billing {
	case BillingNone, BillingInvoiced, BillingPaid:
	default:
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid billing status %q", billing)
	}
	now := requestcontext.Now(ctx)
	t, err := s.store.Execute(ctx, thesisID,
		func(*Thesis) error { return nil },
		func(t *Thesis) {
			t.BillingStatus = billing
			t.UpdatedAt = now
		},
	)
	if err != nil {
		return nil, wrapThesisErr(err)
	}
	return t, nil
}

// Delete removes a thesis together with its supervision requests: the
// registered cascade hooks run first, then the row itself goes.
func (s *Service) Delete(ctx context.Context, thesisID id.ThesisID) error {
	if _, err := s.Get(ctx, thesisID); err != nil {
		return err
	}
	for _, cascade := range s.cascades {
		if err := cascade(ctx, thesisID); err != nil {
			return err
		}
	}
	if err := s.store.Delete(ctx, thesisID); err != nil {
		return wrapThesisErr(err)
	}
	s.emit(ctx, audit.Event{Subject: thesisID.String(), Action: audit.EventThesisDeleted})
	return nil
}

// ListByOwner returns a student's theses, newest first.
func (s *Service) ListByOwner(ctx context.Context, owner id.UserID) ([]*Thesis, error) {
	theses, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list theses")
	}
	return theses, nil
}

// ListBySupervisor returns theses where the tutor supervises, newest
// first.
func (s *Service) ListBySupervisor(ctx context.Context, tutor id.UserID) ([]*Thesis, error) {
	theses, err := s.store.ListBySupervisor(ctx, tutor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list theses")
	}
	return theses, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if event.ActorID.IsNil() {
		event.ActorID = requestcontext.ActorID(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.Error("audit emit failed", "action", event.Action, "subject", event.Subject, "error", err)
	}
}

func (s *Service) incrementBlocked() {
	if s.metrics != nil {
		s.metrics.IncrementLifecycleBlocked()
	}
}

func wrapThesisErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "thesis not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "thesis already exists")
	default:
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "thesis store failure")
	}
}

func reasonOf(err error) string {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

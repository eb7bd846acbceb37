package supervision

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"thesisflow/internal/identity"
	"thesisflow/internal/thesis"
	id "thesisflow/pkg/domain"
	dErrors "thesisflow/pkg/domain-errors"
	"thesisflow/pkg/platform/audit"
	"thesisflow/pkg/platform/sentinel"
	"thesisflow/pkg/requestcontext"
)

// ThesisDirectory is the slice of the thesis lifecycle manager this
// engine consults and mutates. Supervisor assignment goes through it so
// the lifecycle manager's optimistic guard applies.
type ThesisDirectory interface {
	Get(ctx context.Context, thesisID id.ThesisID) (*thesis.Thesis, error)
	AssignSupervisor(ctx context.Context, thesisID id.ThesisID, slot thesis.SupervisorSlot, user id.UserID) (*thesis.Thesis, error)
}

// AuditPublisher is the slice of the audit pipeline this module emits to.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TxRunner executes a function as one atomic unit against the entity
// store. With Postgres stores this is a real transaction; with memory
// stores it is a pass-through.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics is the observability surface the service increments.
type Metrics interface {
	IncrementCreated(reqType string)
	IncrementResolved(reqType, decision string)
	IncrementBlocked()
	ObserveCreate(start time.Time)
	ObserveRespond(start time.Time)
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Service is the supervision request engine: it owns request creation,
// role and expertise validation, and the accept/reject resolution that
// mutates the thesis's supervisor assignments. The accept path is the
// only write path that populates those assignments; forcing every
// assignment through the validated request protocol is the point of the
// design.
type Service struct {
	requests Store
	theses   ThesisDirectory
	oracle   identity.Oracle
	tx       TxRunner
	logger   *slog.Logger
	auditor  AuditPublisher
	metrics  Metrics
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

func WithTxRunner(tx TxRunner) Option {
	return func(s *Service) { s.tx = tx }
}

func NewService(requests Store, theses ThesisDirectory, oracle identity.Oracle, opts ...Option) *Service {
	s := &Service{
		requests: requests,
		theses:   theses,
		oracle:   oracle,
		tx:       passthroughTx{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequestInput carries the request-creation parameters.
type CreateRequestInput struct {
	Requester id.UserID
	ThesisID  id.ThesisID
	Receiver  id.UserID
	Type      RequestType
	Message   string
	Window    *Window
}

// CreateRequest validates and persists a new pending supervision
// request.
//
// Rules, in order:
//  1. The thesis must exist.
//  2. The receiver must hold the Tutor role.
//  3. When the thesis has a subject area, the receiver must cover it.
//  4. SUPERVISION: the requester must be a student and the thesis owner.
//  5. CO_SUPERVISION: the requester must be the thesis's current primary
//     tutor, and must not address themselves.
//
// No uniqueness constraint applies to concurrently pending requests for
// the same thesis and type: multiple tutors may be asked in parallel,
// first accept wins.
func (s *Service) CreateRequest(ctx context.Context, input CreateRequestInput) (*Request, error) {
	start := time.Now()
	if !input.Type.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid request type %q", input.Type)
	}
	if input.Requester.IsNil() || input.Receiver.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "requester and receiver are required")
	}

	target, err := s.theses.Get(ctx, input.ThesisID)
	if err != nil {
		return nil, err
	}

	if err := s.validateReceiver(ctx, target, input.Receiver); err != nil {
		s.incrementBlocked()
		return nil, err
	}

	switch input.Type {
	case TypeSupervision:
		if err := s.validateSupervisionRequester(ctx, target, input.Requester); err != nil {
			s.incrementBlocked()
			return nil, err
		}
	case TypeCoSupervision:
		if err := s.validateCoSupervisionRequester(ctx, target, input.Requester, input.Receiver); err != nil {
			s.incrementBlocked()
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	request, err := NewRequest(id.NewRequestID(), target.ID, input.Requester, input.Receiver, input.Type, input.Message, input.Window, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, reasonOf(err))
		}
		return nil, err
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, wrapRequestErr(err)
	}

	s.emit(ctx, audit.Event{
		ActorID: input.Requester,
		Subject: request.ID.String(),
		Action:  audit.EventRequestCreated,
		Reason:  string(input.Type),
	})
	if s.metrics != nil {
		s.metrics.IncrementCreated(string(input.Type))
		s.metrics.ObserveCreate(start)
	}
	return request, nil
}

// validateReceiver enforces the tutor-role and expertise-matching rules.
func (s *Service) validateReceiver(ctx context.Context, target *thesis.Thesis, receiver id.UserID) error {
	isTutor, err := s.oracle.HasRole(ctx, receiver, identity.RoleTutor)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve receiver roles")
	}
	if !isTutor {
		return dErrors.New(dErrors.CodeValidation, "receiver must be a tutor")
	}

	if target.SubjectArea == nil {
		return nil
	}
	areas, err := s.oracle.SubjectAreasOf(ctx, receiver)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve receiver subject areas")
	}
	if !identity.CoversSubjectArea(areas, *target.SubjectArea) {
		return dErrors.New(dErrors.CodeConflict, "tutor does not cover this subject area")
	}
	return nil
}

func (s *Service) validateSupervisionRequester(ctx context.Context, target *thesis.Thesis, requester id.UserID) error {
	isStudent, err := s.oracle.HasRole(ctx, requester, identity.RoleStudent)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve requester roles")
	}
	if !isStudent || requester != target.Owner {
		return dErrors.New(dErrors.CodeUnauthorized, "only the thesis owner may request supervision")
	}
	return nil
}

func (s *Service) validateCoSupervisionRequester(ctx context.Context, target *thesis.Thesis, requester, receiver id.UserID) error {
	isTutor, err := s.oracle.HasRole(ctx, requester, identity.RoleTutor)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve requester roles")
	}
	if !isTutor || target.Tutor == nil || *target.Tutor != requester {
		return dErrors.New(dErrors.CodeUnauthorized, "only the thesis's primary tutor may request co-supervision")
	}
	if receiver == requester {
		return dErrors.New(dErrors.CodeConflict, "tutor cannot co-supervise their own supervision")
	}
	return nil
}

// Respond resolves a pending request. Only the addressed tutor may
// resolve it; a second response to an already-resolved request is
// rejected. On acceptance the thesis supervisor slot is assigned inside
// the same unit of work, guarded against a competing accept: when the
// slot is already taken the whole response fails and the request stays
// pending.
func (s *Service) Respond(ctx context.Context, requestID id.RequestID, responder id.UserID, accepted bool, message string) (*Request, error) {
	start := time.Now()
	if responder.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "responder is required")
	}

	var resolved *Request
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.requests.FindByID(txCtx, requestID)
		if err != nil {
			return wrapRequestErr(err)
		}
		if request.Receiver != responder {
			return dErrors.New(dErrors.CodeUnauthorized, "only the addressed tutor may respond to the request")
		}
		if err := request.CanResolve(); err != nil {
			return dErrors.New(dErrors.CodeConflict, reasonOf(err))
		}

		// Assign before resolving: when the optimistic slot guard
		// fails, the request must stay pending.
		if accepted {
			slot := thesis.SlotPrimary
			if request.Type == TypeCoSupervision {
				slot = thesis.SlotSecondary
			}
			if _, err := s.theses.AssignSupervisor(txCtx, request.ThesisID, slot, request.Receiver); err != nil {
				return err
			}
		}

		now := requestcontext.Now(txCtx)
		resolved, err = s.requests.Execute(txCtx, requestID,
			func(r *Request) error {
				if r.Receiver != responder {
					return dErrors.New(dErrors.CodeUnauthorized, "only the addressed tutor may respond to the request")
				}
				if err := r.CanResolve(); err != nil {
					return dErrors.New(dErrors.CodeConflict, reasonOf(err))
				}
				return nil
			},
			func(r *Request) {
				r.ApplyResolution(accepted, message, now)
			},
		)
		if err != nil {
			return wrapRequestErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := audit.EventRequestRejected
	decision := "rejected"
	if accepted {
		action = audit.EventRequestAccepted
		decision = "accepted"
	}
	s.emit(ctx, audit.Event{
		ActorID:  responder,
		Subject:  resolved.ID.String(),
		Action:   action,
		Decision: decision,
	})
	if s.metrics != nil {
		s.metrics.IncrementResolved(string(resolved.Type), decision)
		s.metrics.ObserveRespond(start)
	}
	return resolved, nil
}

// Get loads a single request.
func (s *Service) Get(ctx context.Context, requestID id.RequestID) (*Request, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, wrapRequestErr(err)
	}
	return request, nil
}

// ListByParticipant returns requests where the user is requester or
// receiver, newest first.
func (s *Service) ListByParticipant(ctx context.Context, userID id.UserID) ([]*Request, error) {
	requests, err := s.requests.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return requests, nil
}

// ListReceivedBy returns requests addressed to a tutor, newest first.
func (s *Service) ListReceivedBy(ctx context.Context, receiver id.UserID) ([]*Request, error) {
	requests, err := s.requests.ListByReceiver(ctx, receiver)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return requests, nil
}

// ListSentBy returns requests a tutor sent (co-supervision proposals),
// newest first.
func (s *Service) ListSentBy(ctx context.Context, requester id.UserID) ([]*Request, error) {
	requests, err := s.requests.ListByRequester(ctx, requester)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return requests, nil
}

// ListByThesis returns all requests for one thesis, newest first.
func (s *Service) ListByThesis(ctx context.Context, thesisID id.ThesisID) ([]*Request, error) {
	requests, err := s.requests.ListByThesis(ctx, thesisID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return requests, nil
}

// RemoveForThesis deletes all requests of a thesis. Invoked as the
// cascade step of thesis deletion.
func (s *Service) RemoveForThesis(ctx context.Context, thesisID id.ThesisID) error {
	if err := s.requests.DeleteByThesis(ctx, thesisID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cascade request deletion")
	}
	return nil
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

func (s *Service) incrementBlocked() {
	if s.metrics != nil {
		s.metrics.IncrementBlocked()
	}
}

func wrapRequestErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "supervision request not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "supervision request already exists")
	default:
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "request store failure")
	}
}

func reasonOf(err error) string {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

package supervision

import (
	"time"

	id "thesisflow/pkg/domain"
	dErrors "thesisflow/pkg/domain-errors"
)

// RequestType distinguishes primary supervision proposals from
// co-supervision proposals.
type RequestType string

const (
	TypeSupervision   RequestType = "SUPERVISION"
	TypeCoSupervision RequestType = "CO_SUPERVISION"
)

var validTypes = map[RequestType]bool{
	TypeSupervision:   true,
	TypeCoSupervision: true,
}

// ParseRequestType constructs a RequestType from external input.
func ParseRequestType(s string) (RequestType, error) {
	t := RequestType(s)
	if !validTypes[t] {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid request type %q", s)
	}
	return t, nil
}

func (t RequestType) IsValid() bool {
	return validTypes[t]
}

// RequestStatus is the request resolution state. ACCEPTED and REJECTED
// are terminal.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusAccepted RequestStatus = "ACCEPTED"
	StatusRejected RequestStatus = "REJECTED"
)

// Window is an optional planned supervision period attached to a
// request.
type Window struct {
	Start time.Time
	End   time.Time
}

// Request is a supervision proposal linking a requester and a tutor
// receiver to a thesis.
//
// Invariants:
//   - Receiver holds the Tutor role and covers the thesis subject area
//     (validated at creation).
//   - Once resolved the request is terminal; no further transitions.
//   - Acceptance of a SUPERVISION request is the only path that sets
//     the thesis primary tutor; CO_SUPERVISION likewise for the second
//     supervisor.
type Request struct {
	ID         id.RequestID
	ThesisID   id.ThesisID
	Requester  id.UserID
	Receiver   id.UserID
	Type       RequestType
	Status     RequestStatus
	Message    string
	Window     *Window
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// NewRequest constructs a pending request. Cross-entity validation
// (roles, ownership, expertise) happens in the service before this is
// persisted.
func NewRequest(requestID id.RequestID, thesisID id.ThesisID, requester, receiver id.UserID, reqType RequestType, message string, window *Window, now time.Time) (*Request, error) {
	if !reqType.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "invalid request type %q", reqType)
	}
	if requester.IsNil() || receiver.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "requester and receiver are required")
	}
	if window != nil && window.End.Before(window.Start) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "supervision window end must not precede start")
	}
	return &Request{
		ID:        requestID,
		ThesisID:  thesisID,
		Requester: requester,
		Receiver:  receiver,
		Type:      reqType,
		Status:    StatusPending,
		Message:   message,
		Window:    window,
		CreatedAt: now,
	}, nil
}

// IsResolved reports whether the request reached a terminal status.
func (r *Request) IsResolved() bool {
	return r.Status == StatusAccepted || r.Status == StatusRejected
}

// CanResolve enforces the terminal-state guard: a resolved request
// rejects further responses.
func (r *Request) CanResolve() error {
	if r.IsResolved() {
		return dErrors.New(dErrors.CodeInvariantViolation, "request is already resolved")
	}
	return nil
}

// ApplyResolution moves the request to its terminal status. Call
// CanResolve first; the pair is used inside store Execute callbacks.
func (r *Request) ApplyResolution(accepted bool, message string, now time.Time) {
	if accepted {
		r.Status = StatusAccepted
	} else {
		r.Status = StatusRejected
	}
	if message != "" {
		r.Message = message
	}
	resolvedAt := now
	r.ResolvedAt = &resolvedAt
}

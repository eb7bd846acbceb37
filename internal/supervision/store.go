package supervision

import (
	"context"

	id "thesisflow/pkg/domain"
)

// Store persists supervision requests. Implementations return sentinel
// errors; the service translates them to coded domain errors.
type Store interface {
	Create(ctx context.Context, r *Request) error
	FindByID(ctx context.Context, requestID id.RequestID) (*Request, error)
	// Execute atomically validates and mutates one request, holding the
	// implementation's lock across both callbacks. This is the terminal
	// state guard: a concurrent second response fails validation under
	// the same lock that serialized the first.
	Execute(ctx context.Context, requestID id.RequestID, validate func(*Request) error, mutate func(*Request)) (*Request, error)
	// DeleteByThesis removes all requests for a thesis (cascade on
	// thesis deletion).
	DeleteByThesis(ctx context.Context, thesisID id.ThesisID) error
	// ListByParticipant returns requests where the user is requester or
	// receiver, newest first.
	ListByParticipant(ctx context.Context, userID id.UserID) ([]*Request, error)
	ListByReceiver(ctx context.Context, receiver id.UserID) ([]*Request, error)
	ListByRequester(ctx context.Context, requester id.UserID) ([]*Request, error)
	ListByThesis(ctx context.Context, thesisID id.ThesisID) ([]*Request, error)
}

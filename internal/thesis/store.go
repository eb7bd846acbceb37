package thesis

import (
	"context"

	id "thesisflow/pkg/domain"
)

// Store persists theses. Implementations return sentinel errors
// (pkg/platform/sentinel); the service translates them to coded domain
// errors.
type Store interface {
	Create(ctx context.Context, t *Thesis) error
	FindByID(ctx context.Context, thesisID id.ThesisID) (*Thesis, error)
	// Execute atomically validates and mutates one thesis. The
	// implementation holds its lock (mutex or SELECT ... FOR UPDATE)
	// across both callbacks so the validate result cannot go stale
	// before the mutation commits. Returns the mutated thesis.
	Execute(ctx context.Context, thesisID id.ThesisID, validate func(*Thesis) error, mutate func(*Thesis)) (*Thesis, error)
	// Delete removes a thesis. Supervision requests referencing it are
	// removed by the same operation (cascade).
	Delete(ctx context.Context, thesisID id.ThesisID) error
	ListByOwner(ctx context.Context, owner id.UserID) ([]*Thesis, error)
	ListBySupervisor(ctx context.Context, tutor id.UserID) ([]*Thesis, error)
}

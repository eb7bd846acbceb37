package offer

import (
	"context"

	id "thesisflow/pkg/domain"
)

// Store persists offers and their applications. Implementations return
// sentinel errors (pkg/platform/sentinel); the service translates them
// into domain errors.
type Store interface {
	CreateOffer(ctx context.Context, offer *ThesisOffer) error
	FindOfferByID(ctx context.Context, offerID id.OfferID) (*ThesisOffer, error)
	// ExecuteOffer applies validate-then-mutate atomically against the
	// current stored offer.
	ExecuteOffer(ctx context.Context, offerID id.OfferID, validate func(*ThesisOffer) error, mutate func(*ThesisOffer)) (*ThesisOffer, error)
	ListOffersByTutor(ctx context.Context, tutor id.UserID) ([]*ThesisOffer, error)
	// ListOpenOffers returns offers with stored status OPEN, newest
	// first, optionally filtered by subject area. Expiry filtering is
	// the caller's concern.
	ListOpenOffers(ctx context.Context, area *id.SubjectAreaID) ([]*ThesisOffer, error)

	CreateApplication(ctx context.Context, app *Application) error
	FindApplicationByID(ctx context.Context, appID id.ApplicationID) (*Application, error)
	ExecuteApplication(ctx context.Context, appID id.ApplicationID, validate func(*Application) error, mutate func(*Application)) (*Application, error)
	ListApplicationsByOffer(ctx context.Context, offerID id.OfferID) ([]*Application, error)
	ListApplicationsByStudent(ctx context.Context, student id.UserID) ([]*Application, error)
}

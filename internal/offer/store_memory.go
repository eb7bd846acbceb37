package offer

import (
	"context"
	"sort"
	"sync"

	id "thesisflow/pkg/domain"
	"thesisflow/pkg/platform/sentinel"
)

// MemoryStore is an in-memory Store for unit tests and local
// development.
type MemoryStore struct {
	mu           sync.RWMutex
	offers       map[id.OfferID]*ThesisOffer
	applications map[id.ApplicationID]*Application
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		offers:       make(map[id.OfferID]*ThesisOffer),
		applications: make(map[id.ApplicationID]*Application),
	}
}

func cloneOffer(o *ThesisOffer) *ThesisOffer {
	clone := *o
	if o.MaxStudents != nil {
		n := *o.MaxStudents
		clone.MaxStudents = &n
	}
	if o.ExpiresAt != nil {
		t := *o.ExpiresAt
		clone.ExpiresAt = &t
	}
	return &clone
}

func cloneApplication(a *Application) *Application {
	clone := *a
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		clone.ResolvedAt = &t
	}
	return &clone
}

func (s *MemoryStore) CreateOffer(_ context.Context, o *ThesisOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.offers[o.ID]; exists {
		return sentinel.ErrConflict
	}
	s.offers[o.ID] = cloneOffer(o)
	return nil
}

func (s *MemoryStore) FindOfferByID(_ context.Context, offerID id.OfferID) (*ThesisOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.offers[offerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneOffer(o), nil
}

func (s *MemoryStore) ExecuteOffer(_ context.Context, offerID id.OfferID, validate func(*ThesisOffer) error, mutate func(*ThesisOffer)) (*ThesisOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[offerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(o); err != nil {
		return nil, err
	}
	mutate(o)
	return cloneOffer(o), nil
}

func (s *MemoryStore) ListOffersByTutor(_ context.Context, tutor id.UserID) ([]*ThesisOffer, error) {
	return s.filterOffers(func(o *ThesisOffer) bool { return o.Tutor == tutor }), nil
}

func (s *MemoryStore) ListOpenOffers(_ context.Context, area *id.SubjectAreaID) ([]*ThesisOffer, error) {
	return s.filterOffers(func(o *ThesisOffer) bool {
		if o.Status != StatusOpen {
			return false
		}
		return area == nil || o.SubjectArea == *area
	}), nil
}

func (s *MemoryStore) CreateApplication(_ context.Context, a *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.applications[a.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, ok := s.offers[a.OfferID]; !ok {
		return sentinel.ErrNotFound
	}
	s.applications[a.ID] = cloneApplication(a)
	return nil
}

func (s *MemoryStore) FindApplicationByID(_ context.Context, appID id.ApplicationID) (*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applications[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApplication(a), nil
}

func (s *MemoryStore) ExecuteApplication(_ context.Context, appID id.ApplicationID, validate func(*Application) error, mutate func(*Application)) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(a); err != nil {
		return nil, err
	}
	mutate(a)
	return cloneApplication(a), nil
}

func (s *MemoryStore) ListApplicationsByOffer(_ context.Context, offerID id.OfferID) ([]*Application, error) {
	return s.filterApplications(func(a *Application) bool { return a.OfferID == offerID }), nil
}

func (s *MemoryStore) ListApplicationsByStudent(_ context.Context, student id.UserID) ([]*Application, error) {
	return s.filterApplications(func(a *Application) bool { return a.Student == student }), nil
}

func (s *MemoryStore) filterOffers(match func(*ThesisOffer) bool) []*ThesisOffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ThesisOffer
	for _, o := range s.offers {
		if match(o) {
			out = append(out, cloneOffer(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) filterApplications(match func(*Application) bool) []*Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Application
	for _, a := range s.applications {
		if match(a) {
			out = append(out, cloneApplication(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

package thesis

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
	mu     sync.RWMutex
	theses map[id.ThesisID]*Thesis
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{theses: make(map[id.ThesisID]*Thesis)}
}

func (s *MemoryStore) Create(_ context.Context, t *Thesis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.theses[t.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *t
	s.theses[t.ID] = &clone
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, thesisID id.ThesisID) (*Thesis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.theses[thesisID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (s *MemoryStore) Execute(_ context.Context, thesisID id.ThesisID, validate func(*Thesis) error, mutate func(*Thesis)) (*Thesis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.theses[thesisID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(t); err != nil {
		return nil, err
	}
	mutate(t)
	clone := *t
	return &clone, nil
}

func (s *MemoryStore) Delete(_ context.Context, thesisID id.ThesisID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.theses[thesisID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.theses, thesisID)
	return nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, owner id.UserID) ([]*Thesis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Thesis
	for _, t := range s.theses {
		if t.Owner == owner {
			clone := *t
			out = append(out, &clone)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) ListBySupervisor(_ context.Context, tutor id.UserID) ([]*Thesis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Thesis
	for _, t := range s.theses {
		if (t.Tutor != nil && *t.Tutor == tutor) || (t.SecondSupervisor != nil && *t.SecondSupervisor == tutor) {
			clone := *t
			out = append(out, &clone)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(theses []*Thesis) {
	sort.Slice(theses, func(i, j int) bool {
		return theses[i].CreatedAt.After(theses[j].CreatedAt)
	})
}

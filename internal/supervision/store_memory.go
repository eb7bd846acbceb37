package supervision

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
	mu       sync.RWMutex
	requests map[id.RequestID]*Request
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[id.RequestID]*Request)}
}

func cloneRequest(r *Request) *Request {
	clone := *r
	if r.Window != nil {
		w := *r.Window
		clone.Window = &w
	}
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		clone.ResolvedAt = &t
	}
	return &clone
}

func (s *MemoryStore) Create(_ context.Context, r *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[r.ID]; exists {
		return sentinel.ErrConflict
	}
	s.requests[r.ID] = cloneRequest(r)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, requestID id.RequestID) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRequest(r), nil
}

func (s *MemoryStore) Execute(_ context.Context, requestID id.RequestID, validate func(*Request) error, mutate func(*Request)) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	mutate(r)
	return cloneRequest(r), nil
}

func (s *MemoryStore) DeleteByThesis(_ context.Context, thesisID id.ThesisID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for reqID, r := range s.requests {
		if r.ThesisID == thesisID {
			delete(s.requests, reqID)
		}
	}
	return nil
}

func (s *MemoryStore) ListByParticipant(_ context.Context, userID id.UserID) ([]*Request, error) {
	return s.filter(func(r *Request) bool {
		return r.Requester == userID || r.Receiver == userID
	}), nil
}

func (s *MemoryStore) ListByReceiver(_ context.Context, receiver id.UserID) ([]*Request, error) {
	return s.filter(func(r *Request) bool { return r.Receiver == receiver }), nil
}

func (s *MemoryStore) ListByRequester(_ context.Context, requester id.UserID) ([]*Request, error) {
	return s.filter(func(r *Request) bool { return r.Requester == requester }), nil
}

func (s *MemoryStore) ListByThesis(_ context.Context, thesisID id.ThesisID) ([]*Request, error) {
	return s.filter(func(r *Request) bool { return r.ThesisID == thesisID }), nil
}

func (s *MemoryStore) filter(match func(*Request) bool) []*Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Request
	for _, r := range s.requests {
		if match(r) {
			out = append(out, cloneRequest(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

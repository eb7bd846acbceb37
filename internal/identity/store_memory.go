package identity

import (
	"context"
	"sync"

	id "thesisflow/pkg/domain"
)

// MemoryOracle is an in-memory Oracle for unit tests and local
// development. Grant methods are not part of the Oracle interface;
// tests seed state through them directly.
type MemoryOracle struct {
	mu    sync.RWMutex
	roles map[id.UserID]map[Role]bool
	areas map[id.UserID][]id.SubjectAreaID
}

var _ Oracle = (*MemoryOracle)(nil)

func NewMemoryOracle() *MemoryOracle {
	return &MemoryOracle{
		roles: make(map[id.UserID]map[Role]bool),
		areas: make(map[id.UserID][]id.SubjectAreaID),
	}
}

// GrantRole records a role for a user.
func (o *MemoryOracle) GrantRole(userID id.UserID, role Role) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.roles[userID] == nil {
		o.roles[userID] = make(map[Role]bool)
	}
	o.roles[userID][role] = true
}

// AssociateSubjectArea records a subject-area association for a tutor.
func (o *MemoryOracle) AssociateSubjectArea(userID id.UserID, area id.SubjectAreaID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.areas[userID] = append(o.areas[userID], area)
}

func (o *MemoryOracle) HasRole(_ context.Context, userID id.UserID, role Role) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.roles[userID][role], nil
}

func (o *MemoryOracle) SubjectAreasOf(_ context.Context, userID id.UserID) ([]id.SubjectAreaID, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	areas := make([]id.SubjectAreaID, len(o.areas[userID]))
	copy(areas, o.areas[userID])
	return areas, nil
}

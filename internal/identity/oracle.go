// Package identity answers role and expertise questions for the
// workflow engines. The engines never manage identity themselves; they
// consult the Oracle before gating a mutation.
package identity

import (
	"context"

	id "thesisflow/pkg/domain"
)

// Role names a capability a user can hold.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

// Oracle resolves role membership and subject-area associations.
//
// Implementations: PostgresOracle (the single real one), CachedOracle
// (redis read-through decorator), MemoryOracle (test fake).
type Oracle interface {
	// HasRole reports whether the user holds the given role.
	HasRole(ctx context.Context, userID id.UserID, role Role) (bool, error)
	// SubjectAreasOf returns the subject areas the user is associated
	// with. Empty for users without tutor expertise records.
	SubjectAreasOf(ctx context.Context, userID id.UserID) ([]id.SubjectAreaID, error)
}

// CoversSubjectArea reports whether area appears in areas.
func CoversSubjectArea(areas []id.SubjectAreaID, area id.SubjectAreaID) bool {
	for _, a := range areas {
		if a == area {
			return true
		}
	}
	return false
}

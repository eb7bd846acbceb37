// Package domain defines typed identifiers shared across modules.
//
// Each ID is a distinct type over uuid.UUID so the compiler rejects
// cross-entity mixups (passing a ThesisID where a UserID is expected).
// Construct from external input via the ParseXxxID functions, which
// enforce the invariant that IDs are valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "thesisflow/pkg/domain-errors"
)

type (
	// UserID identifies a student, tutor, or administrator.
	UserID uuid.UUID
	// ThesisID identifies a thesis aggregate.
	ThesisID uuid.UUID
	// RequestID identifies a supervision request.
	RequestID uuid.UUID
	// OfferID identifies a thesis offer.
	OfferID uuid.UUID
	// ApplicationID identifies a thesis offer application.
	ApplicationID uuid.UUID
	// SubjectAreaID identifies a subject area.
	SubjectAreaID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s id cannot be empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "invalid %s id", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s id cannot be nil", kind)
	}
	return u, nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

// ParseThesisID constructs a ThesisID from external input.
func ParseThesisID(s string) (ThesisID, error) {
	u, err := parseUUID(s, "thesis")
	return ThesisID(u), err
}

// ParseRequestID constructs a RequestID from external input.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s, "request")
	return RequestID(u), err
}

// ParseOfferID constructs an OfferID from external input.
func ParseOfferID(s string) (OfferID, error) {
	u, err := parseUUID(s, "offer")
	return OfferID(u), err
}

// ParseApplicationID constructs an ApplicationID from external input.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application")
	return ApplicationID(u), err
}

// ParseSubjectAreaID constructs a SubjectAreaID from external input.
func ParseSubjectAreaID(s string) (SubjectAreaID, error) {
	u, err := parseUUID(s, "subject area")
	return SubjectAreaID(u), err
}

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id ThesisID) String() string      { return uuid.UUID(id).String() }
func (id RequestID) String() string     { return uuid.UUID(id).String() }
func (id OfferID) String() string       { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id SubjectAreaID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ThesisID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id OfferID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SubjectAreaID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewUserID mints a random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewThesisID mints a random ThesisID.
func NewThesisID() ThesisID { return ThesisID(uuid.New()) }

// NewRequestID mints a random RequestID.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// NewOfferID mints a random OfferID.
func NewOfferID() OfferID { return OfferID(uuid.New()) }

// NewApplicationID mints a random ApplicationID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewSubjectAreaID mints a random SubjectAreaID.
func NewSubjectAreaID() SubjectAreaID { return SubjectAreaID(uuid.New()) }

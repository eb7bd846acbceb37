package offer

import (
	"time"

	id "thesisflow/pkg/domain"
	dErrors "thesisflow/pkg/domain-errors"
)

// OfferStatus is the advertisement lifecycle state. CLOSED and ARCHIVED
// are terminal.
type OfferStatus string

const (
	StatusOpen     OfferStatus = "OPEN"
	StatusClosed   OfferStatus = "CLOSED"
	StatusArchived OfferStatus = "ARCHIVED"
)

// ApplicationStatus mirrors the supervision request vocabulary.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

const maxTitleLength = 256

// ThesisOffer is a tutor's advertised supervision capacity. Students
// discover open offers and apply; acceptance of an application is
// handled by the tutor, outside the offer's own state machine.
//
// MaxStudents is advisory: it is displayed to students and carried on
// the offer but not enforced as an application cap. Expiry makes an
// OPEN offer behave as closed without a status change.
type ThesisOffer struct {
	ID          id.OfferID
	Tutor       id.UserID
	Title       string
	Description string
	SubjectArea id.SubjectAreaID
	Status      OfferStatus
	MaxStudents *int
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewThesisOffer constructs an OPEN offer. Role validation happens in
// the service.
func NewThesisOffer(offerID id.OfferID, tutor id.UserID, title, description string, area id.SubjectAreaID, maxStudents *int, expiresAt *time.Time, now time.Time) (*ThesisOffer, error) {
	if tutor.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "offer tutor is required")
	}
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "offer title is required")
	}
	if len(title) > maxTitleLength {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "offer title exceeds %d characters", maxTitleLength)
	}
	if area.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "offer subject area is required")
	}
	if maxStudents != nil && *maxStudents < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "max students must be positive")
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "offer expiry must be in the future")
	}
	return &ThesisOffer{
		ID:          offerID,
		Tutor:       tutor,
		Title:       title,
		Description: description,
		SubjectArea: area,
		Status:      StatusOpen,
		MaxStudents: maxStudents,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsOpen reports whether the offer accepts applications at the given
// instant. An expired offer is treated as not open even while its
// stored status is still OPEN.
func (o *ThesisOffer) IsOpen(now time.Time) bool {
	if o.Status != StatusOpen {
		return false
	}
	if o.ExpiresAt != nil && !now.Before(*o.ExpiresAt) {
		return false
	}
	return true
}

// CanClose guards the OPEN → CLOSED transition.
func (o *ThesisOffer) CanClose() error {
	if o.Status != StatusOpen {
		return dErrors.New(dErrors.CodeInvariantViolation, "thesis offer does not have open state anymore")
	}
	return nil
}

// CanArchive guards the transition into ARCHIVED. Archiving is allowed
// from OPEN or CLOSED; an archived offer is final.
func (o *ThesisOffer) CanArchive() error {
	if o.Status == StatusArchived {
		return dErrors.New(dErrors.CodeInvariantViolation, "thesis offer is already archived")
	}
	return nil
}

func (o *ThesisOffer) ApplyStatus(status OfferStatus, now time.Time) {
	o.Status = status
	o.UpdatedAt = now
}

// Application is a student's response to an open offer.
type Application struct {
	ID         id.ApplicationID
	OfferID    id.OfferID
	Student    id.UserID
	Status     ApplicationStatus
	Message    string
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// NewApplication constructs a pending application. Offer openness is
// validated in the service against the loaded offer.
func NewApplication(appID id.ApplicationID, offerID id.OfferID, student id.UserID, message string, now time.Time) (*Application, error) {
	if student.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant is required")
	}
	return &Application{
		ID:        appID,
		OfferID:   offerID,
		Student:   student,
		Status:    ApplicationPending,
		Message:   message,
		CreatedAt: now,
	}, nil
}

// IsResolved reports whether the application reached a terminal status.
func (a *Application) IsResolved() bool {
	return a.Status == ApplicationAccepted || a.Status == ApplicationRejected
}

// CanResolve rejects a second response to a resolved application.
func (a *Application) CanResolve() error {
	if a.IsResolved() {
		return dErrors.New(dErrors.CodeInvariantViolation, "application is already resolved")
	}
	return nil
}

// ApplyResolution moves the application to its terminal status.
func (a *Application) ApplyResolution(accepted bool, message string, now time.Time) {
	if accepted {
		a.Status = ApplicationAccepted
	} else {
		a.Status = ApplicationRejected
	}
	if message != "" {
		a.Message = message
	}
	resolvedAt := now
	a.ResolvedAt = &resolvedAt
}

package thesis

import (
	"time"

	id "thesisflow/pkg/domain"
	dErrors "thesisflow/pkg/domain-errors"
)

// Status is the thesis lifecycle state. Transitions are monotonic:
// IN_DISCUSSION → REGISTERED → SUBMITTED → DEFENDED, no backward moves.
type Status string

const (
	StatusInDiscussion Status = "IN_DISCUSSION"
	StatusRegistered   Status = "REGISTERED"
	StatusSubmitted    Status = "SUBMITTED"
	StatusDefended     Status = "DEFENDED"
)

var statusRank = map[Status]int{
	StatusInDiscussion: 0,
	StatusRegistered:   1,
	StatusSubmitted:    2,
	StatusDefended:     3,
}

// IsValid checks the status is a known enum value.
func (s Status) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo enforces monotonic forward movement.
func (s Status) CanTransitionTo(next Status) bool {
	from, ok := statusRank[s]
	to, ok2 := statusRank[next]
	return ok && ok2 && to == from+1
}

// BillingStatus is an independent axis from the lifecycle status.
type BillingStatus string

const (
	BillingNone     BillingStatus = "NONE"
	BillingInvoiced BillingStatus = "INVOICED"
	BillingPaid     BillingStatus = "PAID"
)

// SupervisorSlot selects which supervisor field an accepted request
// populates.
type SupervisorSlot string

const (
	SlotPrimary   SupervisorSlot = "primary"
	SlotSecondary SupervisorSlot = "secondary"
)

// Thesis is the aggregate root for the supervision workflow.
//
// Invariants:
//   - Owner holds the Student role at creation time and is immutable.
//   - Tutor and second supervisor, if set, hold the Tutor role; they are
//     populated only through accepted supervision requests.
//   - Tutor ≠ second supervisor.
//   - Subject area is immutable once the thesis is registered.
//   - Status moves forward only; SUBMITTED and DEFENDED freeze the
//     record entirely.
type Thesis struct {
	ID               id.ThesisID
	Title            string
	Description      string
	Status           Status
	BillingStatus    BillingStatus
	Owner            id.UserID
	Tutor            *id.UserID
	SecondSupervisor *id.UserID
	SubjectArea      *id.SubjectAreaID
	DocumentRef      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewThesis constructs a thesis in REGISTERED state with billing NONE.
// Supervisors start unset; only accepted supervision requests populate
// them.
func NewThesis(thesisID id.ThesisID, title, description string, owner id.UserID, subjectArea *id.SubjectAreaID, now time.Time) (*Thesis, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "thesis title cannot be empty")
	}
	if len(title) > 256 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "thesis title must be 256 characters or less")
	}
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "thesis owner is required")
	}
	return &Thesis{
		ID:            thesisID,
		Title:         title,
		Description:   description,
		Status:        StatusRegistered,
		BillingStatus: BillingNone,
		Owner:         owner,
		SubjectArea:   subjectArea,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsLocked reports whether the record is frozen entirely.
func (t *Thesis) IsLocked() bool {
	return t.Status == StatusSubmitted || t.Status == StatusDefended
}

// CanEditContent checks whether title/description/document edits are
// allowed in the current state.
func (t *Thesis) CanEditContent() error {
	if t.IsLocked() {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot modify thesis after submission or defense")
	}
	return nil
}

// CanChangeSubjectArea distinguishes the registration freeze from the
// submission lock so callers can report the right reason.
func (t *Thesis) CanChangeSubjectArea() error {
	if t.IsLocked() {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot modify thesis after submission or defense")
	}
	if t.Status == StatusRegistered {
		return dErrors.New(dErrors.CodeInvariantViolation, "subject area is immutable after registration")
	}
	return nil
}

// CanSubmit checks the REGISTERED → SUBMITTED transition.
func (t *Thesis) CanSubmit() error {
	if !t.Status.CanTransitionTo(StatusSubmitted) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "thesis in state %s cannot be submitted", t.Status)
	}
	return nil
}

// ApplySubmission transitions the thesis to SUBMITTED.
func (t *Thesis) ApplySubmission(now time.Time) {
	t.Status = StatusSubmitted
	t.UpdatedAt = now
}

// CanDefend checks the SUBMITTED → DEFENDED transition.
func (t *Thesis) CanDefend() error {
	if !t.Status.CanTransitionTo(StatusDefended) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "thesis in state %s cannot be defended", t.Status)
	}
	return nil
}

// ApplyDefense transitions the thesis to DEFENDED.
func (t *Thesis) ApplyDefense(now time.Time) {
	t.Status = StatusDefended
	t.UpdatedAt = now
}

// CanAssignSupervisor checks the optimistic assignment guard: the slot
// must still be unset (first accept wins) and primary ≠ secondary.
func (t *Thesis) CanAssignSupervisor(slot SupervisorSlot, user id.UserID) error {
	switch slot {
	case SlotPrimary:
		if t.Tutor != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "thesis already has a supervisor")
		}
		if t.SecondSupervisor != nil && *t.SecondSupervisor == user {
			return dErrors.New(dErrors.CodeInvariantViolation, "supervisor and second supervisor must differ")
		}
	case SlotSecondary:
		if t.SecondSupervisor != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "thesis already has a second supervisor")
		}
		if t.Tutor != nil && *t.Tutor == user {
			return dErrors.New(dErrors.CodeInvariantViolation, "supervisor and second supervisor must differ")
		}
	default:
		return dErrors.Newf(dErrors.CodeInvariantViolation, "unknown supervisor slot %q", slot)
	}
	return nil
}

// ApplySupervisor sets the supervisor slot. Call CanAssignSupervisor
// first; the pair is used inside store Execute callbacks.
func (t *Thesis) ApplySupervisor(slot SupervisorSlot, user id.UserID, now time.Time) {
	u := user
	switch slot {
	case SlotPrimary:
		t.Tutor = &u
	case SlotSecondary:
		t.SecondSupervisor = &u
	}
	t.UpdatedAt = now
}

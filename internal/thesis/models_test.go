package thesis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "thesisflow/pkg/domain"
	dErrors "thesisflow/pkg/domain-errors"
)

func newRegisteredThesis(t *testing.T) *Thesis {
	t.Helper()
	area := id.NewSubjectAreaID()
	th, err := NewThesis(id.NewThesisID(), "Formal Verification of Workflow Engines", "", id.NewUserID(), &area, time.Now())
	require.NoError(t, err)
	return th
}

func TestNewThesis(t *testing.T) {
	t.Run("initializes registered with billing none and no supervisors", func(t *testing.T) {
		th := newRegisteredThesis(t)
		assert.Equal(t, StatusRegistered, th.Status)
		assert.Equal(t, BillingNone, th.BillingStatus)
		assert.Nil(t, th.Tutor)
		assert.Nil(t, th.SecondSupervisor)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewThesis(id.NewThesisID(), "", "", id.NewUserID(), nil, time.Now())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects missing owner", func(t *testing.T) {
		_, err := NewThesis(id.NewThesisID(), "Title", "", id.UserID{}, nil, time.Now())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestStatusTransitions(t *testing.T) {
	t.Run("monotonic forward only", func(t *testing.T) {
		assert.True(t, StatusInDiscussion.CanTransitionTo(StatusRegistered))
		assert.True(t, StatusRegistered.CanTransitionTo(StatusSubmitted))
		assert.True(t, StatusSubmitted.CanTransitionTo(StatusDefended))

		assert.False(t, StatusSubmitted.CanTransitionTo(StatusRegistered))
		assert.False(t, StatusDefended.CanTransitionTo(StatusSubmitted))
		assert.False(t, StatusInDiscussion.CanTransitionTo(StatusSubmitted))
		assert.False(t, StatusRegistered.CanTransitionTo(StatusDefended))
	})
}

func TestEditGuards(t *testing.T) {
	t.Run("in discussion allows everything", func(t *testing.T) {
		th := newRegisteredThesis(t)
		th.Status = StatusInDiscussion
		assert.NoError(t, th.CanEditContent())
		assert.NoError(t, th.CanChangeSubjectArea())
	})

	t.Run("registered freezes subject area but not content", func(t *testing.T) {
		th := newRegisteredThesis(t)
		assert.NoError(t, th.CanEditContent())

		err := th.CanChangeSubjectArea()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.Contains(t, err.Error(), "immutable after registration")
	})

	t.Run("submitted and defended lock all edits", func(t *testing.T) {
		for _, status := range []Status{StatusSubmitted, StatusDefended} {
			th := newRegisteredThesis(t)
			th.Status = status

			err := th.CanEditContent()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "after submission or defense")

			err = th.CanChangeSubjectArea()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "after submission or defense")
		}
	})
}

func TestSupervisorAssignmentGuards(t *testing.T) {
	tutor := id.NewUserID()
	second := id.NewUserID()

	t.Run("assigns primary then secondary", func(t *testing.T) {
		th := newRegisteredThesis(t)
		now := time.Now()

		require.NoError(t, th.CanAssignSupervisor(SlotPrimary, tutor))
		th.ApplySupervisor(SlotPrimary, tutor, now)
		require.NotNil(t, th.Tutor)
		assert.Equal(t, tutor, *th.Tutor)

		require.NoError(t, th.CanAssignSupervisor(SlotSecondary, second))
		th.ApplySupervisor(SlotSecondary, second, now)
		require.NotNil(t, th.SecondSupervisor)
		assert.Equal(t, second, *th.SecondSupervisor)
		assert.Equal(t, tutor, *th.Tutor, "primary unchanged by secondary assignment")
	})

	t.Run("occupied slot rejects reassignment", func(t *testing.T) {
		th := newRegisteredThesis(t)
		th.ApplySupervisor(SlotPrimary, tutor, time.Now())

		err := th.CanAssignSupervisor(SlotPrimary, second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already has a supervisor")
	})

	t.Run("primary and secondary must differ", func(t *testing.T) {
		th := newRegisteredThesis(t)
		th.ApplySupervisor(SlotPrimary, tutor, time.Now())

		err := th.CanAssignSupervisor(SlotSecondary, tutor)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must differ")
	})
}

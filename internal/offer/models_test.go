package offer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "thesisflow/pkg/domain"
	dErrors "thesisflow/pkg/domain-errors"
)

func TestNewThesisOffer(t *testing.T) {
	now := time.Now()
	tutor := id.NewUserID()
	area := id.NewSubjectAreaID()

	t.Run("valid offer starts open", func(t *testing.T) {
		o, err := NewThesisOffer(id.NewOfferID(), tutor, "Formal Verification of Raft", "", area, nil, nil, now)
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, o.Status)
		assert.Nil(t, o.MaxStudents)
		assert.Nil(t, o.ExpiresAt)
	})

	t.Run("requires title", func(t *testing.T) {
		_, err := NewThesisOffer(id.NewOfferID(), tutor, "", "", area, nil, nil, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("requires subject area", func(t *testing.T) {
		_, err := NewThesisOffer(id.NewOfferID(), tutor, "Topic", "", id.SubjectAreaID{}, nil, nil, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects non-positive max students", func(t *testing.T) {
		zero := 0
		_, err := NewThesisOffer(id.NewOfferID(), tutor, "Topic", "", area, &zero, nil, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects expiry in the past", func(t *testing.T) {
		past := now.Add(-time.Hour)
		_, err := NewThesisOffer(id.NewOfferID(), tutor, "Topic", "", area, nil, &past, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestOfferOpenness(t *testing.T) {
	now := time.Now()
	tutor := id.NewUserID()
	area := id.NewSubjectAreaID()

	t.Run("expiry makes an open offer behave closed", func(t *testing.T) {
		expiry := now.Add(time.Hour)
		o, err := NewThesisOffer(id.NewOfferID(), tutor, "Topic", "", area, nil, &expiry, now)
		require.NoError(t, err)
		assert.True(t, o.IsOpen(now))
		assert.False(t, o.IsOpen(expiry))
		assert.False(t, o.IsOpen(expiry.Add(time.Minute)))
	})

	t.Run("close is terminal", func(t *testing.T) {
		o, err := NewThesisOffer(id.NewOfferID(), tutor, "Topic", "", area, nil, nil, now)
		require.NoError(t, err)
		require.NoError(t, o.CanClose())
		o.ApplyStatus(StatusClosed, now)
		assert.False(t, o.IsOpen(now))

		err = o.CanClose()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not have open state anymore")
	})

	t.Run("archive allowed from open and closed but not twice", func(t *testing.T) {
		o, err := NewThesisOffer(id.NewOfferID(), tutor, "Topic", "", area, nil, nil, now)
		require.NoError(t, err)
		require.NoError(t, o.CanArchive())
		o.ApplyStatus(StatusClosed, now)
		require.NoError(t, o.CanArchive())
		o.ApplyStatus(StatusArchived, now)
		assert.Error(t, o.CanArchive())
	})
}

func TestApplicationResolution(t *testing.T) {
	now := time.Now()

	a, err := NewApplication(id.NewApplicationID(), id.NewOfferID(), id.NewUserID(), "interested", now)
	require.NoError(t, err)
	assert.Equal(t, ApplicationPending, a.Status)
	require.NoError(t, a.CanResolve())

	a.ApplyResolution(true, "welcome", now)
	assert.Equal(t, ApplicationAccepted, a.Status)
	assert.Equal(t, "welcome", a.Message)
	require.NotNil(t, a.ResolvedAt)

	err = a.CanResolve()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already resolved")
}

package dErrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "thesis not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches wrapped code", func(t *testing.T) {
		inner := New(CodeInvariantViolation, "thesis already submitted")
		outer := Wrap(inner, CodeConflict, "cannot modify thesis")
		assert.True(t, HasCode(outer, CodeConflict))
		assert.True(t, HasCode(outer, CodeInvariantViolation))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("respond: %w", New(CodeUnauthorized, "not the receiver"))
		assert.True(t, HasCode(err, CodeUnauthorized))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("preserves cause chain", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeInternal, "failed to load thesis")
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "failed to load thesis")
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "empty title")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

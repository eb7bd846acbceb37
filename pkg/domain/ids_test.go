package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "thesisflow/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseThesisID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseRequestID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseOfferID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, OfferID(valid), id)
		assert.Equal(t, valid.String(), id.String())
	})
}

func TestIsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.False(t, NewUserID().IsNil())
}

// TestTypeDistinction documents the compile-time invariant: distinct ID
// types are not interchangeable.
func TestTypeDistinction(t *testing.T) {
	userID := NewUserID()
	thesisID := NewThesisID()

	// These would fail to compile if types were interchangeable:
	// var _ UserID = thesisID   // type mismatch
	// var _ ThesisID = userID   // type mismatch

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(thesisID))
}

// TestParseID_SecurityInvariants validates trust-boundary parsing rules.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE theses;--", true},
		{"path traversal", "../../../etc/passwd", true},
		{"null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"uppercase UUID", strings.ToUpper(uuid.New().String()), false},
		{"valid UUID", uuid.New().String(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUserID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealerRoundTrip(t *testing.T) {
	s, err := NewSealer("top-secret")
	require.NoError(t, err)

	sealed, err := s.Seal("tok123")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "tok123")

	again, err := s.Seal("tok123")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "tok123", plain)
}

func TestSealerRejectsForeignValues(t *testing.T) {
	a, err := NewSealer("one")
	require.NoError(t, err)
	b, err := NewSealer("two")
	require.NoError(t, err)

	sealed, err := a.Seal("tok")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.Error(t, err)
	_, err = a.Open("plain-token")
	assert.Error(t, err)

	_, err = NewSealer("")
	assert.Error(t, err)
}

func TestInspectToken(t *testing.T) {
	token, err := SignToken("user-1", "admin", "secret", time.Hour)
	require.NoError(t, err)

	info, err := InspectToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.Subject)
	assert.Equal(t, "admin", info.Role)
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(time.Now().Add(2*time.Hour)))

	_, err = InspectToken("opaque-token")
	assert.ErrorIs(t, err, ErrNotJWT)
}

func TestProfileIDs(t *testing.T) {
	id := NewProfileID()
	assert.True(t, ValidProfileID(id))
	assert.False(t, ValidProfileID("../etc"))
	assert.Len(t, GenerateULID(), 26)
}

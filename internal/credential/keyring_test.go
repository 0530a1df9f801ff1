package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/model"
)

func newTestStore(env map[string]string) *Store {
	s := NewStore(keyring.NewArrayKeyring(nil))
	s.getenv = func(k string) string { return env[k] }
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestStore(nil)

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.SetToken("  abc123 "))
	tok, err = s.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok)

	require.NoError(t, s.ClearToken())
	tok, err = s.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)

	assert.NoError(t, s.ClearToken(), "clearing twice is fine")
}

func TestTokenEnvironmentWins(t *testing.T) {
	s := newTestStore(map[string]string{TokenEnv: "from-env"})
	require.NoError(t, s.SetToken("from-keyring"))

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)
}

func TestSetTokenRejectsBlank(t *testing.T) {
	s := newTestStore(nil)
	err := s.SetToken("   ")
	assert.True(t, model.IsValidationError(err))
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(nil)
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

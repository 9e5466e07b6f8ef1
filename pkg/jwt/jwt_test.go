package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateAccessToken("7f1f0b3e-1b7a-4a53-9d55-5f3b1a0c2c11", "reader")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "7f1f0b3e-1b7a-4a53-9d55-5f3b1a0c2c11", claims.UserID)
	assert.Equal(t, "reader", claims.Username)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateRefreshToken("some-user")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour, time.Hour).GenerateAccessToken("u", "n")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour, time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateAccessToken("u", "n")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

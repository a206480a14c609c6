package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("secret", "sparkchat")

	token, err := manager.GenerateToken("user-1", "pro", "access", time.Hour)
	require.NoError(t, err)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "pro", claims.Plan)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "sparkchat", claims.Issuer)
}

func TestJWTTokenPair(t *testing.T) {
	manager := NewJWTManager("secret", "sparkchat")

	pair, err := manager.GenerateTokenPair("user-1", "free", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := manager.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", access.Type)

	refresh, err := manager.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Type)
}

func TestJWTExpired(t *testing.T) {
	manager := NewJWTManager("secret", "sparkchat")

	token, err := manager.GenerateToken("user-1", "pro", "access", -time.Minute)
	require.NoError(t, err)

	_, err = manager.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", "sparkchat").GenerateToken("user-1", "pro", "access", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", "sparkchat").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTGarbage(t *testing.T) {
	_, err := NewJWTManager("secret", "sparkchat").ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := mgr.GenerateToken(userID, "chef@example.com")
	require.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "chef@example.com", claims.Email)
	assert.Equal(t, "savora", claims.Issuer)
}

func TestJWT_WrongSecretRejected(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour).GenerateToken(uuid.New(), "chef@example.com")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWT_ExpiredTokenRejected(t *testing.T) {
	mgr := NewJWTManager("test-secret", -time.Minute)
	token, err := mgr.GenerateToken(uuid.New(), "chef@example.com")
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWT_GarbageRejected(t *testing.T) {
	_, err := NewJWTManager("test-secret", time.Hour).ValidateToken("not.a.token")
	assert.Error(t, err)
}

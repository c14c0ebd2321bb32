package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, RoleProvider)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleProvider, claims.Role)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", 15*time.Minute, 24*time.Hour)
	verifier := NewJWTManager("secret-b", 15*time.Minute, 24*time.Hour)

	token, err := issuer.GenerateAccessToken(uuid.New(), RoleUser)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, 24*time.Hour)

	token, err := manager.GenerateAccessToken(uuid.New(), RoleUser)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTManager_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	_, err := manager.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleProvider.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("superuser").IsValid())
}

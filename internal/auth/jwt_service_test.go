package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	service := NewJWTService("access-secret", "refresh-secret")
	snapshot := UserSnapshot{
		ID:        12,
		Email:     "jane@example.com",
		Slug:      "jane-doe",
		AvatarURL: "uploads/avatars/a/b/c/d/rest",
		IsAdmin:   true,
	}

	token, err := service.GenerateAccessToken(snapshot)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, snapshot, claims.UserSnapshot)

	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(AccessTokenExpiry), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTService_RefreshTokenHasNoExpiry(t *testing.T) {
	service := NewJWTService("access-secret", "refresh-secret")

	token, err := service.GenerateRefreshToken(UserSnapshot{ID: 12})
	require.NoError(t, err)

	claims, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestJWTService_SecretsAreNotInterchangeable(t *testing.T) {
	service := NewJWTService("access-secret", "refresh-secret")

	access, err := service.GenerateAccessToken(UserSnapshot{ID: 12})
	require.NoError(t, err)
	refresh, err := service.GenerateRefreshToken(UserSnapshot{ID: 12})
	require.NoError(t, err)

	_, err = service.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = service.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	service := NewJWTService("access-secret", "refresh-secret")
	other := NewJWTService("other-secret", "other-refresh")

	token, err := other.GenerateAccessToken(UserSnapshot{ID: 12})
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
}

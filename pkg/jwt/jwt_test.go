package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "test-access-secret-key-for-testing-purposes"
	testRefreshSecret = "test-refresh-secret-key-for-testing-purposes"
)

func TestNewService(t *testing.T) {
	service := NewService(
		testAccessSecret,
		testRefreshSecret,
		time.Hour,
		24*time.Hour,
	)

	assert.NotNil(t, service)
	assert.Equal(t, testAccessSecret, service.accessSecret)
	assert.Equal(t, testRefreshSecret, service.refreshSecret)
	assert.Equal(t, time.Hour, service.accessExpiry)
	assert.Equal(t, 24*time.Hour, service.refreshExpiry)
}

func TestGenerateAccessToken(t *testing.T) {
	service := NewService(testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
	memberID := uuid.New()
	email := "volunteer@example.com"
	role := "MEMBER"

	token, err := service.GenerateAccessToken(memberID, email, role)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Validate the generated token
	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, memberID, claims.MemberID)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, role, claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestGenerateRefreshToken(t *testing.T) {
	service := NewService(testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
	memberID := uuid.New()
	email := "volunteer@example.com"

	token, err := service.GenerateRefreshToken(memberID, email)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Validate the generated token
	claims, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, memberID, claims.MemberID)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestValidateAccessToken(t *testing.T) {
	service := NewService(testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
	memberID := uuid.New()
	email := "admin@example.com"
	role := "ADMIN"

	// Generate valid token
	token, err := service.GenerateAccessToken(memberID, email, role)
	require.NoError(t, err)

	// Test valid token
	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, memberID, claims.MemberID)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, role, claims.Role)

	// Test invalid token
	_, err = service.ValidateAccessToken("invalid.token.here")
	assert.Error(t, err)

	// Test token with wrong secret
	wrongService := NewService("wrong-secret", testRefreshSecret, time.Hour, 24*time.Hour)
	_, err = wrongService.ValidateAccessToken(token)
	assert.Error(t, err)

	// Refresh token must not validate as access token
	refresh, err := service.GenerateRefreshToken(memberID, email)
	require.NoError(t, err)
	_, err = service.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestValidateRefreshToken(t *testing.T) {
	service := NewService(testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
	memberID := uuid.New()
	email := "volunteer@example.com"

	// Generate valid token
	token, err := service.GenerateRefreshToken(memberID, email)
	require.NoError(t, err)

	// Test valid token
	claims, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, memberID, claims.MemberID)

	// Test invalid token
	_, err = service.ValidateRefreshToken("invalid.token.here")
	assert.Error(t, err)

	// Test token with wrong secret
	wrongService := NewService(testAccessSecret, "wrong-secret", time.Hour, 24*time.Hour)
	_, err = wrongService.ValidateRefreshToken(token)
	assert.Error(t, err)
}

func TestIsTokenExpired(t *testing.T) {
	memberID := uuid.New()
	email := "volunteer@example.com"

	t.Run("Fresh Token", func(t *testing.T) {
		service := NewService(testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
		token, err := service.GenerateAccessToken(memberID, email, "MEMBER")
		require.NoError(t, err)
		assert.False(t, service.IsTokenExpired(token))
	})

	t.Run("Expired Token", func(t *testing.T) {
		service := NewService(testAccessSecret, testRefreshSecret, -time.Hour, 24*time.Hour)
		token, err := service.GenerateAccessToken(memberID, email, "MEMBER")
		require.NoError(t, err)
		assert.True(t, service.IsTokenExpired(token))
	})

	t.Run("Malformed Token Is Not Expired", func(t *testing.T) {
		// A token that cannot be parsed is invalid, not expired, so
		// clients are not told to refresh it.
		service := NewService(testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
		assert.False(t, service.IsTokenExpired("not-a-token"))
	})
}

func TestGetTokenExpiry(t *testing.T) {
	service := NewService(testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
	memberID := uuid.New()

	token, err := service.GenerateAccessToken(memberID, "volunteer@example.com", "MEMBER")
	require.NoError(t, err)

	expiry, err := service.GetTokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, time.Minute)

	_, err = service.GetTokenExpiry("not-a-token")
	assert.Error(t, err)
}

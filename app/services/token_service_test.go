package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-secret-key-that-is-long-enough-for-hmac"

func newTestTokenService(t *testing.T, accessTTL, refreshTTL time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(accessTTL, refreshTTL, "plexlink", "plexlink-api", false, "", "", testSecretKey)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RequiresSecretWithoutRSA(t *testing.T) {
	_, err := NewTokenService(time.Hour, 24*time.Hour, "plexlink", "plexlink-api", false, "", "", "")
	assert.Error(t, err)
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	access, refresh, err := svc.GenerateTokens("alice", true)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Netid)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
	assert.NotEqual(t, claims.TokenID, refreshClaims.TokenID)
}

func TestTokenService_ReportsConfiguredAccessTTL(t *testing.T) {
	svc := newTestTokenService(t, 90*time.Minute, 24*time.Hour)
	assert.Equal(t, 90*time.Minute, svc.AccessTokenTTL())
}

func TestTokenService_ValidateRejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)

	_, err = svc.ValidateToken("")
	assert.Error(t, err)
}

func TestTokenService_ValidateRejectsWrongKey(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)
	other, err := NewTokenService(time.Hour, 24*time.Hour, "plexlink", "plexlink-api", false, "", "", "another-secret-key-also-long-enough-here")
	require.NoError(t, err)

	access, _, err := svc.GenerateTokens("alice", false)
	require.NoError(t, err)

	_, err = other.ValidateToken(access)
	assert.Error(t, err)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute, -time.Minute)

	access, _, err := svc.GenerateTokens("alice", false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_RefreshRotatesTokens(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	_, refresh, err := svc.GenerateTokens("alice", false)
	require.NoError(t, err)

	newAccess, newRefresh, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEmpty(t, newRefresh)

	claims, err := svc.ValidateToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Netid)
	assert.Equal(t, "access", claims.TokenType)
}

func TestTokenService_RefreshRejectsAccessToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	access, _, err := svc.GenerateTokens("alice", false)
	require.NoError(t, err)

	_, _, err = svc.RefreshToken(access)
	assert.Error(t, err)
}

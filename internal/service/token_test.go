package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/govintel_gateway/internal/models"
)

func TestTokenService_RefreshPersistsNewAccessToken(t *testing.T) {
	s := newTestServices(t)
	store := NewMemoryTokenStore(models.TokenPair{AccessToken: "access-old", RefreshToken: "refresh-1", RefreshExpiresIn: 60})

	token, err := s.tokens.Refresh(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, "access-new", token)
	pair := store.Pair()
	assert.Equal(t, "access-new", pair.AccessToken)
	assert.Equal(t, int64(900), pair.AccessExpiresIn)
	assert.Equal(t, "refresh-1", pair.RefreshToken)
}

func TestTokenService_RefreshRejectedClearsPair(t *testing.T) {
	s := newTestServices(t)
	s.platform.refreshStatus = http.StatusUnauthorized
	store := NewMemoryTokenStore(models.TokenPair{AccessToken: "access-old", RefreshToken: "refresh-1"})

	_, err := s.tokens.Refresh(context.Background(), store)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Contains(t, err.Error(), "Invalid refresh token")

	assert.Equal(t, models.TokenPair{}, store.Pair())
}

func TestTokenService_RevokedRefreshTokenSkipsBackend(t *testing.T) {
	s := newTestServices(t)
	require.NoError(t, s.revocations.RevokeToken(context.Background(), "refresh-1", time.Hour))
	store := NewMemoryTokenStore(models.TokenPair{RefreshToken: "refresh-1"})

	_, err := s.tokens.AccessToken(context.Background(), store)
	require.ErrorIs(t, err, ErrSessionExpired)

	refresh, _ := s.platform.counts()
	assert.Equal(t, 0, refresh)
	assert.Empty(t, store.RefreshToken())
}

func TestTokenService_RevokedAccessTokenIsTreatedAsAbsent(t *testing.T) {
	s := newTestServices(t)
	require.NoError(t, s.revocations.RevokeToken(context.Background(), "access-ok", time.Hour))
	store := NewMemoryTokenStore(models.TokenPair{AccessToken: "access-ok", RefreshToken: "refresh-1"})

	token, err := s.tokens.AccessToken(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "access-new", token)
}

func TestTokenService_ExpiryHonoursLeeway(t *testing.T) {
	s := newTestServices(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.tokens.now = func() time.Time { return now }

	assert.False(t, s.tokens.isExpired(signedJWT(t, "u", now.Add(-2*time.Second))))
	assert.True(t, s.tokens.isExpired(signedJWT(t, "u", now.Add(-time.Minute))))
	assert.False(t, s.tokens.isExpired(signedJWT(t, "u", now.Add(time.Hour))))
	assert.False(t, s.tokens.isExpired("opaque-token"))
}

func TestTokenService_RevokeUsesTokenExpiry(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	expired := signedJWT(t, "u", time.Now().Add(-time.Hour))
	require.NoError(t, s.tokens.Revoke(ctx, expired, time.Hour))
	revoked, err := s.revocations.IsTokenRevoked(ctx, expired)
	require.NoError(t, err)
	assert.False(t, revoked, "an already expired token needs no revocation entry")

	require.NoError(t, s.tokens.Revoke(ctx, "opaque", time.Hour))
	revoked, err = s.revocations.IsTokenRevoked(ctx, "opaque")
	require.NoError(t, err)
	assert.True(t, revoked)
}

package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rryowa/govintel_gateway/internal/backend"
	"github.com/rryowa/govintel_gateway/internal/metrics"
	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/storage"
	"github.com/rryowa/govintel_gateway/internal/util"
)

const refreshPath = "/auth/refresh"

var (
	errRefreshRevoked = errors.New("refresh token revoked")
	errRefreshMissing = errors.New("no refresh token")
	errRefreshEmpty   = errors.New("refresh response carries no access token")
)

// TokenService hands out usable access tokens for a TokenStore and refreshes
// them against the backend. A failed refresh is terminal for the session.
type TokenService struct {
	backend     Backend
	revocations storage.RevocationStore
	audit       *AuditService
	log         *zap.SugaredLogger
	group       singleflight.Group
	now         func() time.Time
}

func NewTokenService(
	backend Backend,
	revocations storage.RevocationStore,
	audit *AuditService,
	log *zap.SugaredLogger,
) *TokenService {
	return &TokenService{
		backend:     backend,
		revocations: revocations,
		audit:       audit,
		log:         log,
		now:         time.Now,
	}
}

// AccessToken returns the stored access token or, when it is missing, expired
// or revoked, the result of one refresh.
func (ts *TokenService) AccessToken(ctx context.Context, store TokenStore) (string, error) {
	token, _, err := ts.accessToken(ctx, store)
	return token, err
}

// accessToken also reports whether the one refresh allowed per call was spent.
func (ts *TokenService) accessToken(ctx context.Context, store TokenStore) (string, bool, error) {
	if token := store.AccessToken(); token != "" && !ts.isExpired(token) && !ts.isRevoked(ctx, token) {
		return token, false, nil
	}

	if store.RefreshToken() == "" {
		return "", false, ErrNotAuthenticated
	}

	token, err := ts.Refresh(ctx, store)
	if err != nil {
		return "", true, err
	}
	return token, true, nil
}

// Refresh exchanges the stored refresh token for a new access token. Any
// failure clears the store and yields ErrSessionExpired.
func (ts *TokenService) Refresh(ctx context.Context, store TokenStore) (string, error) {
	refreshToken := store.RefreshToken()
	subject := tokenSubject(store.AccessToken())

	if refreshToken == "" {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeMissing).Inc()
		return "", ts.expire(ctx, store, subject, errRefreshMissing)
	}

	if ts.isRevoked(ctx, refreshToken) {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeRevoked).Inc()
		return "", ts.expire(ctx, store, subject, errRefreshRevoked)
	}

	// Concurrent requests of one browser carry the same refresh token; only
	// one of them talks to the backend and the others share its answer.
	// The closure runs once per flight, so it owns the audit record.
	var led bool
	v, err, _ := ts.group.Do(tokenHash(refreshToken), func() (any, error) {
		led = true
		sharedCtx := context.WithoutCancel(ctx)

		res, err := ts.exchange(sharedCtx, refreshToken)
		if err != nil {
			ts.audit.Record(sharedCtx, models.EventRefreshFailed, subject, err.Error())
			return nil, err
		}
		ts.audit.Record(sharedCtx, models.EventRefresh, subject, "")
		return res, nil
	})
	if !led {
		metrics.TokenRefreshShared.Inc()
	}
	if err != nil {
		return "", ts.expire(ctx, store, subject, err)
	}

	res, _ := v.(*models.TokenRefreshResponse)
	ttl := models.TokenPair{AccessExpiresIn: res.ExpiresIn}.AccessTTL()
	store.SetAccessToken(res.AccessToken, ttl)

	return res.AccessToken, nil
}

// Revoke puts token on the revocation list until its own expiry, or for
// fallback when the expiry cannot be read.
func (ts *TokenService) Revoke(ctx context.Context, token string, fallback time.Duration) error {
	if token == "" {
		return nil
	}

	ttl := fallback
	if exp := tokenExpiry(token); !exp.IsZero() {
		ttl = exp.Sub(ts.now())
	}

	if err := ts.revocations.RevokeToken(ctx, token, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (ts *TokenService) exchange(ctx context.Context, refreshToken string) (*models.TokenRefreshResponse, error) {
	resp, err := ts.backend.PostJSON(ctx, refreshPath, models.TokenRefreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	if !resp.IsSuccess() {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, NewBackendError(resp)
	}

	var out models.TokenRefreshResponse
	if err = backend.DecodeJSON(resp, &out); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	if out.AccessToken == "" {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, errRefreshEmpty
	}

	metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return &out, nil
}

func (ts *TokenService) expire(ctx context.Context, store TokenStore, subject string, cause error) error {
	store.Clear()

	ts.log.Infow("session expired", "subject", subject, "cause", cause)
	ts.audit.Record(ctx, models.EventSessionExpired, subject, cause.Error())

	return fmt.Errorf("%w: %v", ErrSessionExpired, cause)
}

func (ts *TokenService) isExpired(token string) bool {
	exp := tokenExpiry(token)
	if exp.IsZero() {
		return false
	}
	return ts.now().After(exp.Add(util.JWTLeeWay))
}

// isRevoked fails open: an unreachable revocation list must not log everybody out.
func (ts *TokenService) isRevoked(ctx context.Context, token string) bool {
	revoked, err := ts.revocations.IsTokenRevoked(ctx, token)
	if err != nil {
		ts.log.Warnw("revocation check failed", "error", err)
		return false
	}
	return revoked
}

// tokenExpiry reads exp from a JWT without verifying it; the backend owns
// the signing key. Opaque tokens yield the zero time.
func tokenExpiry(token string) time.Time {
	claims, ok := unverifiedClaims(token)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func tokenSubject(token string) string {
	claims, ok := unverifiedClaims(token)
	if !ok {
		return ""
	}
	return claims.Subject
}

func unverifiedClaims(token string) (*jwt.RegisteredClaims, bool) {
	if token == "" {
		return nil, false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

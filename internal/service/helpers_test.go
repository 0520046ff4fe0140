package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/backend"
	"github.com/rryowa/govintel_gateway/internal/storage/memory"
	"github.com/rryowa/govintel_gateway/internal/util"
)

// fakePlatform is a scripted backend. Resource handlers see the bearer token
// and decide the status; /auth/refresh is answered from refreshStatus.
type fakePlatform struct {
	mu sync.Mutex

	refreshStatus int
	refreshDelay  time.Duration
	nextAccess    string
	resource      func(token string) (int, string)

	refreshCalls  int
	resourceCalls int
	resourceAuth  []string
	logoutCalls   int
	logoutStatus  int
}

func newFakePlatform(t *testing.T) (*fakePlatform, *backend.Client) {
	t.Helper()

	p := &fakePlatform{
		refreshStatus: http.StatusOK,
		nextAccess:    "access-new",
		logoutStatus:  http.StatusNoContent,
		resource: func(token string) (int, string) {
			if token == "access-new" || token == "access-ok" {
				return http.StatusOK, `{"items":[{"id":"p-1"}]}`
			}
			return http.StatusUnauthorized, `{"detail":"Token expired"}`
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(srv.Close)

	return p, backend.NewClient(&util.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func (p *fakePlatform) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	switch r.URL.Path {
	case "/auth/refresh":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		p.mu.Lock()
		p.refreshCalls++
		status, delay, access := p.refreshStatus, p.refreshDelay, p.nextAccess
		p.mu.Unlock()

		time.Sleep(delay)
		w.WriteHeader(status)
		if status == http.StatusOK && body["refresh_token"] != "" {
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": access, "expires_in": 900})
			return
		}
		_, _ = w.Write([]byte(`{"detail":"Invalid refresh token"}`))

	case "/auth/logout":
		p.mu.Lock()
		p.logoutCalls++
		status := p.logoutStatus
		p.mu.Unlock()
		w.WriteHeader(status)

	default:
		p.mu.Lock()
		p.resourceCalls++
		p.resourceAuth = append(p.resourceAuth, token)
		status, body := p.resource(token)
		p.mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (p *fakePlatform) counts() (refresh, resource int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshCalls, p.resourceCalls
}

type testServices struct {
	platform    *fakePlatform
	tokens      *TokenService
	fetcher     *Fetcher
	auth        *AuthService
	revocations *memory.InMemoryTokenStorage
	auditLog    *memory.InMemoryAuditLog
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	platform, client := newFakePlatform(t)
	log := zap.NewNop().Sugar()

	revocations := memory.NewTokenStorage()
	auditLog := memory.NewAuditRepository()
	audit := NewAuditService(auditLog, nil, log)
	tokens := NewTokenService(client, revocations, audit, log)

	return &testServices{
		platform:    platform,
		tokens:      tokens,
		fetcher:     NewFetcher(client, tokens, log),
		auth:        NewAuthService(client, tokens, audit, log),
		revocations: revocations,
		auditLog:    auditLog,
	}
}

func signedJWT(t *testing.T, subject string, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("backend-owned-secret"))
	require.NoError(t, err)
	return signed
}

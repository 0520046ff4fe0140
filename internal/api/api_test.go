package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/backend"
	"github.com/rryowa/govintel_gateway/internal/controller"
	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/service"
	"github.com/rryowa/govintel_gateway/internal/storage/memory"
	"github.com/rryowa/govintel_gateway/internal/util"
)

const operatorKey = "operator-key-1"

func backendStub() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"a","refresh_token":"r","expires_in":60}`))
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Refresh token expired"}`))
	})
	mux.HandleFunc("GET /parts/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"Search index offline"}`))
	})
	return mux
}

func newTestAPI(t *testing.T, backendURL string, limiter *RateLimiter) http.Handler {
	t.Helper()

	log := zap.NewNop().Sugar()
	client := backend.NewClient(&util.BackendConfig{BaseURL: backendURL, Timeout: 2 * time.Second})
	audit := service.NewAuditService(memory.NewAuditRepository(), nil, log)
	tokens := service.NewTokenService(client, memory.NewTokenStorage(), audit, log)
	sealer, err := util.NewCookieSealer("")
	require.NoError(t, err)

	ctrl := controller.NewController(log,
		service.NewFetcher(client, tokens, log),
		service.NewAuthService(client, tokens, audit, log),
		tokens, audit,
		&util.CookieConfig{AccessTTL: time.Hour, RefreshTTL: 7 * 24 * time.Hour},
		sealer)

	apiKeys := service.NewAPIKeyService(memory.NewAPIKeyRepository(), log)
	require.NoError(t, apiKeys.SyncAPIKey(context.Background(), operatorKey))

	a := NewAPI(ctrl, log, &util.ServerConfig{}, apiKeys, limiter, nil)
	require.NoError(t, a.SetupRoutes())
	return a.Handler()
}

func do(h http.Handler, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out.Error
}

func TestAPI_ErrorEnvelopes(t *testing.T) {
	srv := httptest.NewServer(backendStub())
	defer srv.Close()
	h := newTestAPI(t, srv.URL, nil)

	t.Run("no cookies", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/parts/search?q=valve", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authenticated", errorMessage(t, rec))
	})

	t.Run("refresh rejected", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/parts/search?q=valve", "",
			&http.Cookie{Name: util.RefreshTokenCookie, Value: "r-old"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Session expired. Please log in again.", errorMessage(t, rec))
	})

	t.Run("backend error forwarded", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/parts/search?q=valve", "",
			&http.Cookie{Name: util.AccessTokenCookie, Value: "a"},
			&http.Cookie{Name: util.RefreshTokenCookie, Value: "r"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Search index offline", errorMessage(t, rec))
	})

	t.Run("request validation", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/api/auth/login", `{"email":"analyst@agency.gov"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, errorMessage(t, rec))
	})

	t.Run("invalid query parameter", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/parts/search?page=zero", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPI_NetworkErrorIsInternal(t *testing.T) {
	srv := httptest.NewServer(backendStub())
	srv.Close()
	h := newTestAPI(t, srv.URL, nil)

	rec := do(h, http.MethodPost, "/api/auth/login", `{"email":"analyst@agency.gov","password":"pw"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", errorMessage(t, rec))
}

func TestAPI_LoginThrottled(t *testing.T) {
	srv := httptest.NewServer(backendStub())
	defer srv.Close()
	limiter := NewRateLimiter(&util.RateLimiterConfig{Limit: 2, Interval: time.Minute, BlockTime: 5 * time.Minute})
	h := newTestAPI(t, srv.URL, limiter)

	body := `{"email":"analyst@agency.gov","password":"pw"}`
	for range 2 {
		rec := do(h, http.MethodPost, "/api/auth/login", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"success":true,"mustChangePassword":false}`, rec.Body.String())
	}

	rec := do(h, http.MethodPost, "/api/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "300", rec.Header().Get("Retry-After"))

	// other routes are not throttled
	rec = do(h, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_OperatorRoutes(t *testing.T) {
	srv := httptest.NewServer(backendStub())
	defer srv.Close()
	h := newTestAPI(t, srv.URL, nil)

	rec := do(h, http.MethodGet, "/internal/audit", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "API key is missing", errorMessage(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/internal/audit", nil)
	req.Header.Set(models.MwAPIKeyHeader, "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, path := range []string{"/internal/audit", "/internal/metrics"} {
		req = httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(models.MwAPIKeyHeader, operatorKey)
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec = do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

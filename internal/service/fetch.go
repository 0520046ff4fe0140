package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/metrics"
	"github.com/rryowa/govintel_gateway/internal/models"
)

// Fetcher performs authenticated backend calls: at most one refresh and one
// retry per call.
type Fetcher struct {
	backend Backend
	tokens  *TokenService
	log     *zap.SugaredLogger
}

func NewFetcher(backend Backend, tokens *TokenService, log *zap.SugaredLogger) *Fetcher {
	return &Fetcher{
		backend: backend,
		tokens:  tokens,
		log:     log,
	}
}

// Do returns the backend response whatever its status, except that a 401
// is answered by one refresh and one retry. A failed refresh surfaces as
// ErrSessionExpired, a session without tokens as ErrNotAuthenticated.
func (f *Fetcher) Do(ctx context.Context, store TokenStore, req *models.ProxyRequest) (*models.ProxyResponse, error) {
	token, refreshed, err := f.tokens.accessToken(ctx, store)
	if err != nil {
		return nil, err
	}

	resp, err := f.backend.Do(ctx, req, token)
	if err != nil {
		return nil, err
	}

	// the token was minted for this very call, a 401 now is the backend's final word
	if resp.StatusCode != http.StatusUnauthorized || refreshed {
		return resp, nil
	}

	token, err = f.tokens.Refresh(ctx, store)
	if err != nil {
		return nil, err
	}

	metrics.AuthRetryTotal.Inc()
	f.log.Debugw("retrying after refresh", "method", req.Method, "path", req.Path)

	return f.backend.Do(ctx, req, token)
}

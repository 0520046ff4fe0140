package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/backend"
	"github.com/rryowa/govintel_gateway/internal/models"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
)

type AuthService struct {
	backend Backend
	tokens  *TokenService
	audit   *AuditService
	log     *zap.SugaredLogger
}

func NewAuthService(backend Backend, tokens *TokenService, audit *AuditService, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		backend: backend,
		tokens:  tokens,
		audit:   audit,
		log:     log,
	}
}

// Login forwards the credentials and stores the issued pair. Tokens never
// leave the store; the caller only learns whether a password change is due.
func (s *AuthService) Login(ctx context.Context, store TokenStore, req models.LoginRequest) (*models.LoginResponse, error) {
	resp, err := s.backend.PostJSON(ctx, loginPath, req, "")
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		berr := NewBackendError(resp)
		s.audit.Record(ctx, models.EventLoginFailed, req.Email, berr.Message)
		return nil, berr
	}

	var out models.BackendLoginResponse
	if err = backend.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return nil, ErrMalformedLogin
	}

	store.SetTokens(models.TokenPair{
		AccessToken:      out.AccessToken,
		RefreshToken:     out.RefreshToken,
		AccessExpiresIn:  out.ExpiresIn,
		RefreshExpiresIn: out.RefreshExpiresIn,
	})

	s.audit.Record(ctx, models.EventLogin, req.Email, "")

	return &models.LoginResponse{
		Success:            true,
		MustChangePassword: out.MustChangePassword,
	}, nil
}

// Logout is best effort: backend and revocation failures are logged, the
// store is always cleared.
func (s *AuthService) Logout(ctx context.Context, store TokenStore) {
	access, refresh := store.AccessToken(), store.RefreshToken()
	subject := tokenSubject(access)

	if access != "" || refresh != "" {
		resp, err := s.backend.PostJSON(ctx, logoutPath, models.LogoutRequest{RefreshToken: refresh}, access)
		switch {
		case err != nil:
			s.log.Warnw("backend logout failed", "error", err)
		case !resp.IsSuccess():
			s.log.Warnw("backend logout rejected", "status", resp.StatusCode)
		}

		if err = s.tokens.Revoke(ctx, access, models.TokenPair{}.AccessTTL()); err != nil {
			s.log.Warnw("failed to revoke access token", "error", err)
		}
		if err = s.tokens.Revoke(ctx, refresh, models.TokenPair{}.RefreshTTL()); err != nil {
			s.log.Warnw("failed to revoke refresh token", "error", err)
		}
	}

	store.Clear()
	s.audit.Record(ctx, models.EventLogout, subject, "")
}

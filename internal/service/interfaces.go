package service

import (
	"context"
	"time"

	"github.com/rryowa/govintel_gateway/internal/models"
)

// Backend is the remote platform API as seen by the services.
type Backend interface {
	Do(ctx context.Context, req *models.ProxyRequest, token string) (*models.ProxyResponse, error)
	PostJSON(ctx context.Context, path string, body any, token string) (*models.ProxyResponse, error)
}

// TokenStore holds the token pair of one browser session. On the server it is
// backed by the cookies of the current request; writes become Set-Cookie headers.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(token string, ttl time.Duration)
	SetTokens(pair models.TokenPair)
	Clear()
}

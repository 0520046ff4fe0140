package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rryowa/govintel_gateway/internal/models"
)

var ErrAPIKeyNotFound = errors.New("api key not found")

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RevocationStore remembers tokens invalidated by logout until they would have expired anyway.
type RevocationStore interface {
	RevokeToken(ctx context.Context, token string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
}

type APIKeyRepository interface {
	// GetAPIKeyState returns ErrAPIKeyNotFound when no key was ever synced.
	GetAPIKeyState(ctx context.Context) (*models.APIKeyState, error)
	RotateAPIKey(ctx context.Context, state models.APIKeyState, oldKeyTTL time.Duration) error
}

type AuditRepository interface {
	RecordEvent(ctx context.Context, event models.AuthEvent) error
	ListRecentEvents(ctx context.Context, limit int) ([]models.AuthEvent, error)
}

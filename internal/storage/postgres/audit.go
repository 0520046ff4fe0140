package postgres

import (
	"context"
	"fmt"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/storage"
)

const defaultAuditLimit = 100

type AuditRepository struct {
	db     storage.DBTX
	driver string
}

func NewAuditRepository(db storage.DBTX, driver string) *AuditRepository {
	return &AuditRepository{db: db, driver: driver}
}

func (r *AuditRepository) RecordEvent(ctx context.Context, event models.AuthEvent) error {
	query := rebind(r.driver, `INSERT INTO auth_events (id, kind, subject, client_ip, user_agent, detail, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(
		ctx,
		query,
		event.ID,
		string(event.Kind),
		event.Subject,
		event.ClientIP,
		event.UserAgent,
		event.Detail,
		event.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert auth event: %w", err)
	}
	return nil
}

// ListRecentEvents возвращает последние события, новые первыми.
func (r *AuditRepository) ListRecentEvents(ctx context.Context, limit int) ([]models.AuthEvent, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	query := rebind(r.driver, `SELECT id, kind, subject, client_ip, user_agent, detail, created_at FROM auth_events ORDER BY created_at DESC, id DESC LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list auth events: %w", err)
	}
	defer rows.Close()

	events := make([]models.AuthEvent, 0, limit)
	for rows.Next() {
		var (
			event models.AuthEvent
			kind  string
		)
		if err := rows.Scan(
			&event.ID,
			&kind,
			&event.Subject,
			&event.ClientIP,
			&event.UserAgent,
			&event.Detail,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan auth event: %w", err)
		}
		event.Kind = models.AuthEventKind(kind)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate auth events: %w", err)
	}

	return events, nil
}

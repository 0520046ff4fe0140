package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/migrations"
	"github.com/rryowa/govintel_gateway/internal/models"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.RunMigrations(db, zap.NewNop().Sugar(), "sqlite3"))
	return db
}

func TestRebind(t *testing.T) {
	q := `SELECT * FROM t WHERE a = ? AND b = ? LIMIT ?`

	assert.Equal(t, `SELECT * FROM t WHERE a = $1 AND b = $2 LIMIT $3`, rebind("postgres", q))
	assert.Equal(t, q, rebind("sqlite", q))
}

func TestAuditRepository_RecordAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewStorage(newTestDB(t), "sqlite")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []models.AuthEvent{
		{ID: "e1", Kind: models.EventLogin, Subject: "ana@agency.gov", ClientIP: "10.0.0.1", CreatedAt: base},
		{ID: "e2", Kind: models.EventRefreshFailed, Detail: "status 400", CreatedAt: base.Add(time.Minute)},
		{ID: "e3", Kind: models.EventLogout, UserAgent: "curl/8", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		require.NoError(t, repo.RecordEvent(ctx, e))
	}

	got, err := repo.ListRecentEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "e3", got[0].ID)
	assert.Equal(t, models.EventLogout, got[0].Kind)
	assert.Equal(t, "curl/8", got[0].UserAgent)
	assert.True(t, got[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	assert.Equal(t, "e2", got[1].ID)
	assert.Equal(t, "status 400", got[1].Detail)
}

func TestAuditRepository_DuplicateIDFails(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditRepository(newTestDB(t), "sqlite")

	e := models.AuthEvent{ID: "dup", Kind: models.EventLogin, CreatedAt: time.Now()}
	require.NoError(t, repo.RecordEvent(ctx, e))
	assert.Error(t, repo.RecordEvent(ctx, e))
}

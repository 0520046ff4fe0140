package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCookieConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")

	cfg := NewCookieConfig()

	assert.False(t, cfg.Secure)
	assert.Equal(t, 8*time.Hour, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
}

func TestNewCookieConfig_ProductionIsSecure(t *testing.T) {
	t.Setenv("APP_ENV", "Production")

	assert.True(t, NewCookieConfig().Secure)
}

func TestNewBackendConfig_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.example.gov/v1/")
	t.Setenv("BACKEND_TIMEOUT", "3s")

	cfg := NewBackendConfig()

	assert.Equal(t, "https://api.example.gov/v1", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestNewRateLimiterConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_LIMIT", "many")
	t.Setenv("RATE_LIMIT_INTERVAL", "soon")

	cfg := NewRateLimiterConfig()

	assert.Equal(t, defaultRateLimit, cfg.Limit)
	assert.Equal(t, defaultRateInterval, cfg.Interval)
	assert.Equal(t, defaultRateBlockTime, cfg.BlockTime)
}

func TestDBConfig_GooseDialect(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")

	cfg := NewDBConfig()
	require.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "sqlite3", cfg.GooseDialect())

	cfg.Driver = DriverPostgres
	assert.Equal(t, "postgres", cfg.GooseDialect())
}

func TestCookieSealer_RoundTrip(t *testing.T) {
	sealer, err := NewCookieSealer("correct horse battery staple")
	require.NoError(t, err)

	sealed, err := sealer.Seal("refresh-token-value")
	require.NoError(t, err)
	assert.NotEqual(t, "refresh-token-value", sealed)

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "refresh-token-value", opened)
}

func TestCookieSealer_RejectsForeignValues(t *testing.T) {
	a, err := NewCookieSealer("secret-a")
	require.NoError(t, err)
	b, err := NewCookieSealer("secret-b")
	require.NoError(t, err)

	sealed, err := a.Seal("token")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrUnsealable)

	_, err = a.Open("not base64 !!")
	assert.ErrorIs(t, err, ErrUnsealable)
}

func TestCookieSealer_NoSecretPassesThrough(t *testing.T) {
	sealer, err := NewCookieSealer("")
	require.NoError(t, err)

	sealed, err := sealer.Seal("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", sealed)

	opened, err := sealer.Open("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", opened)
}

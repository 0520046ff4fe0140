package util

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	redisPingTimeout = 3 * time.Second
)

// DBConfig selects the audit database. Postgres in deployments, sqlite for local runs.
type DBConfig struct {
	Driver string
	DSN    string
}

func NewDBConfig() *DBConfig {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = defaultDBDriver
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = defaultDBDSN
	}

	return &DBConfig{
		Driver: driver,
		DSN:    dsn,
	}
}

// GooseDialect maps the database/sql driver name to the goose dialect.
func (c *DBConfig) GooseDialect() string {
	if c.Driver == DriverSQLite {
		return "sqlite3"
	}
	return DriverPostgres
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisConfig returns a config with an empty Addr when REDIS_ADDR is unset;
// callers fall back to in-memory stores in that case.
func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
}

func NewDBConnection(logger *zap.SugaredLogger, cfg *DBConfig) (*sql.DB, func(), error) {
	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Driver == DriverSQLite {
		// one writer, and ":memory:" databases are per connection
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	logger.Infow("Successfully connected to database!", "driver", cfg.Driver)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Errorf("Failed to close database connection: %v", err)
		} else {
			logger.Info("Database connection closed successfully.")
		}
	}

	return db, cleanup, nil
}

func NewRedisClient(logger *zap.SugaredLogger, cfg *RedisConfig) (*redis.Client, func(), error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Successfully connected to Redis!")

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Failed to close Redis connection: %v", err)
		} else {
			logger.Info("Redis connection closed successfully.")
		}
	}

	return redisClient, cleanup, nil
}

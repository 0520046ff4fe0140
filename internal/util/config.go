package util

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	EnvProduction = "production"

	defaultServerAddr      = "localhost:8080"
	defaultWriteTimeout    = 30 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultBackendURL     = "http://localhost:8000"
	defaultBackendTimeout = 30 * time.Second

	defaultAccessTTL  = 8 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour

	defaultRateLimit     = 10
	defaultRateInterval  = 1 * time.Minute
	defaultRateBlockTime = 5 * time.Minute

	defaultDBDriver = "sqlite"
	defaultDBDSN    = "audit.db"

	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	JWTLeeWay = 5 * time.Second
)

func AppEnv() string {
	return os.Getenv("APP_ENV")
}

func IsProduction() bool {
	return strings.EqualFold(AppEnv(), EnvProduction)
}

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

func NewServerConfig() *ServerConfig {
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = defaultServerAddr
	}

	return &ServerConfig{
		ServerAddr:      addr,
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
	}
}

// BackendConfig describes the remote API every proxy route forwards to.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewBackendConfig() *BackendConfig {
	base := os.Getenv("BACKEND_BASE_URL")
	if base == "" {
		log.Printf("BACKEND_BASE_URL is not set, using %s", defaultBackendURL)
		base = defaultBackendURL
	}

	return &BackendConfig{
		BaseURL: strings.TrimRight(base, "/"),
		Timeout: parseDurationOrDefault("BACKEND_TIMEOUT", defaultBackendTimeout),
	}
}

// CookieConfig controls the httpOnly token cookies.
// RefreshTTL is fixed by policy, AccessTTL is only used when the backend omits expires_in.
type CookieConfig struct {
	Secure     bool
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Secret     string
}

func NewCookieConfig() *CookieConfig {
	return &CookieConfig{
		Secure:     IsProduction(),
		Domain:     os.Getenv("COOKIE_DOMAIN"),
		AccessTTL:  parseDurationOrDefault("ACCESS_TOKEN_TTL", defaultAccessTTL),
		RefreshTTL: defaultRefreshTTL,
		Secret:     os.Getenv("COOKIE_SECRET"),
	}
}

type RateLimiterConfig struct {
	Limit     int
	Interval  time.Duration
	BlockTime time.Duration
}

func NewRateLimiterConfig() *RateLimiterConfig {
	limitStr := os.Getenv("RATE_LIMIT_LIMIT")
	limit := defaultRateLimit
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		} else {
			log.Printf("Invalid RATE_LIMIT_LIMIT: %s, using default %d", limitStr, defaultRateLimit)
		}
	}

	interval := parseDurationOrDefault("RATE_LIMIT_INTERVAL", defaultRateInterval)
	blockTime := parseDurationOrDefault("RATE_LIMIT_BLOCK_TIME", defaultRateBlockTime)

	return &RateLimiterConfig{
		Limit:     limit,
		Interval:  interval,
		BlockTime: blockTime,
	}
}

func GetWebhookURL() string {
	return os.Getenv("WEBHOOK_URL")
}

func GetOperatorAPIKey() string {
	return os.Getenv("OPERATOR_API_KEY")
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}

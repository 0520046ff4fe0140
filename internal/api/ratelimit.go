package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/rryowa/govintel_gateway/internal/util"
)

const LoginPath = "/api/auth/login"

// RateLimiter throttles login attempts per client IP. A client that runs
// out of budget is blocked for BlockTime.
type RateLimiter struct {
	limit     rate.Limit
	burst     int
	blockTime time.Duration
	window    time.Duration
	now       func() time.Time

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter      *rate.Limiter
	lastSeen     time.Time
	blockedUntil time.Time
}

// NewRateLimiter returns nil for a non-positive limit; a nil limiter lets everything through.
func NewRateLimiter(cfg *util.RateLimiterConfig) *RateLimiter {
	if cfg.Limit <= 0 || cfg.Interval <= 0 {
		return nil
	}

	window := cfg.Interval
	if cfg.BlockTime > window {
		window = cfg.BlockTime
	}

	return &RateLimiter{
		limit:     rate.Every(cfg.Interval / time.Duration(cfg.Limit)),
		burst:     cfg.Limit,
		blockTime: cfg.BlockTime,
		window:    window,
		now:       time.Now,
		clients:   make(map[string]*clientLimiter),
	}
}

// Allow reports whether key may proceed and, if not, for how long it is blocked.
func (r *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.clients[key]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[key] = entry
		r.cleanupLocked(now)
	}
	entry.lastSeen = now

	if now.Before(entry.blockedUntil) {
		return false, entry.blockedUntil.Sub(now)
	}

	if !entry.limiter.AllowN(now, 1) {
		entry.blockedUntil = now.Add(r.blockTime)
		return false, r.blockTime
	}

	return true, 0
}

// Middleware throttles POST requests to path only.
func (r *RateLimiter) Middleware(path string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if r == nil {
			return next
		}

		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodPost || req.URL.Path != path {
				return next(c)
			}

			allowed, retryAfter := r.Allow(c.RealIP())
			if !allowed {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second)/time.Second)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
			}

			return next(c)
		}
	}
}

func (r *RateLimiter) cleanupLocked(now time.Time) {
	for key, entry := range r.clients {
		if now.Sub(entry.lastSeen) > r.window && now.After(entry.blockedUntil) {
			delete(r.clients, key)
		}
	}
}

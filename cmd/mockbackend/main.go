// Command mockbackend is a local stand-in for the platform API: it issues
// short-lived JWT access tokens, serves a small parts/vendor catalogue and
// logs the gateway's security webhooks.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/util"
)

const (
	defaultAddr      = "localhost:8000"
	defaultAccessTTL = 2 * time.Minute
	demoPassword     = "changeme"
)

var signingKey = []byte("mockbackend-signing-key")

type backend struct {
	log       *zap.SugaredLogger
	accessTTL time.Duration

	mu       sync.Mutex
	refresh  map[string]string // refresh token -> email
	prefs    map[string]map[string]any
	products map[string]map[string]any
	users    map[string]map[string]any
}

type detail struct {
	Detail string `json:"detail"`
}

func main() {
	log := util.NewZapLogger()

	addr := os.Getenv("MOCK_BACKEND_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	accessTTL := defaultAccessTTL
	if v := os.Getenv("MOCK_ACCESS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			accessTTL = d
		}
	}

	b := &backend{
		log:       log,
		accessTTL: accessTTL,
		refresh:   map[string]string{},
		prefs:     map[string]map[string]any{},
		products:  map[string]map[string]any{},
		users: map[string]map[string]any{
			"u-1": {"id": "u-1", "email": "analyst@agency.gov", "role": "admin"},
		},
	}

	e := echo.New()
	e.HideBanner = true

	e.POST("/auth/login", b.login)
	e.POST("/auth/refresh", b.refreshToken)
	e.POST("/auth/logout", b.logout)
	e.POST("/webhook", b.webhook)

	auth := b.authenticate
	users := func() map[string]map[string]any { return b.users }
	products := func() map[string]map[string]any { return b.products }

	e.GET("/auth/me", b.me, auth)
	e.POST("/auth/change-password", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
	}, auth)
	e.GET("/parts/search", b.searchParts, auth)
	e.GET("/parts/:id", b.getPart, auth)
	e.GET("/vendors/search", b.searchVendors, auth)
	e.GET("/vendors/:id", b.getVendor, auth)
	e.GET("/admin/users", b.list(users), auth)
	e.POST("/admin/users", b.create(users), auth)
	e.PATCH("/admin/users/:id", b.update(users), auth)
	e.DELETE("/admin/users/:id", b.remove(users), auth)
	e.GET("/admin/products", b.list(products), auth)
	e.POST("/admin/products", b.create(products), auth)
	e.PATCH("/admin/products/:id", b.update(products), auth)
	e.DELETE("/admin/products/:id", b.remove(products), auth)
	e.GET("/preferences", b.getPreferences, auth)
	e.PUT("/preferences", b.putPreferences, auth)

	log.Infow("Mock backend listening", "addr", addr, "access_ttl", accessTTL)
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func (b *backend) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "field required"}},
		})
	}
	if req.Password != demoPassword {
		return c.JSON(http.StatusUnauthorized, detail{"Incorrect email or password"})
	}

	access, err := b.issueAccess(req.Email)
	if err != nil {
		return err
	}
	refresh := randomToken()

	b.mu.Lock()
	b.refresh[refresh] = req.Email
	b.mu.Unlock()

	return c.JSON(http.StatusOK, models.BackendLoginResponse{
		AccessToken:        access,
		RefreshToken:       refresh,
		TokenType:          "bearer",
		ExpiresIn:          int64(b.accessTTL / time.Second),
		MustChangePassword: strings.HasPrefix(req.Email, "new."),
	})
}

func (b *backend) refreshToken(c echo.Context) error {
	var req models.TokenRefreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detail{"Invalid body"})
	}

	b.mu.Lock()
	email, ok := b.refresh[req.RefreshToken]
	b.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusUnauthorized, detail{"Invalid refresh token"})
	}

	access, err := b.issueAccess(email)
	if err != nil {
		return err
	}
	b.log.Infow("Refreshed access token", "email", email)

	return c.JSON(http.StatusOK, models.TokenRefreshResponse{
		AccessToken: access,
		ExpiresIn:   int64(b.accessTTL / time.Second),
	})
}

func (b *backend) logout(c echo.Context) error {
	var req models.LogoutRequest
	_ = c.Bind(&req)

	b.mu.Lock()
	delete(b.refresh, req.RefreshToken)
	b.mu.Unlock()

	return c.NoContent(http.StatusNoContent)
}

func (b *backend) webhook(c echo.Context) error {
	var event models.AuthEvent
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, detail{"Error parsing JSON"})
	}

	b.log.Infow("Received webhook",
		"kind", event.Kind,
		"subject", event.Subject,
		"client_ip", event.ClientIP,
		"user_agent", event.UserAgent,
		"detail", event.Detail,
	)
	return c.String(http.StatusOK, "Webhook received!")
}

func (b *backend) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return signingKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			return c.JSON(http.StatusUnauthorized, detail{"Could not validate credentials"})
		}

		c.Set("email", claims.Subject)
		return next(c)
	}
}

func (b *backend) me(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"email": c.Get("email").(string), "role": "admin"})
}

var (
	parts = []map[string]any{
		{"id": "p-100", "nsn": "5330-01-123-4567", "name": "O-ring, preformed packing", "cage": "1ABC2"},
		{"id": "p-101", "nsn": "5305-00-068-0502", "name": "Screw, cap, hexagon head", "cage": "3DEF4"},
	}
	vendors = []map[string]any{
		{"id": "v-1", "name": "Acme Aero Components", "cage": "1ABC2"},
		{"id": "v-2", "name": "Delta Fastener Supply", "cage": "3DEF4"},
	}
)

func (b *backend) searchParts(c echo.Context) error {
	return c.JSON(http.StatusOK, filter(parts, c.QueryParam("q")))
}

func (b *backend) getPart(c echo.Context) error {
	return findByID(c, parts, "Part not found")
}

func (b *backend) searchVendors(c echo.Context) error {
	return c.JSON(http.StatusOK, filter(vendors, c.QueryParam("q")))
}

func (b *backend) getVendor(c echo.Context) error {
	return findByID(c, vendors, "Vendor not found")
}

func (b *backend) getPreferences(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prefs := b.prefs[c.Get("email").(string)]
	if prefs == nil {
		prefs = map[string]any{"theme": "system"}
	}
	return c.JSON(http.StatusOK, prefs)
}

func (b *backend) putPreferences(c echo.Context) error {
	var prefs map[string]any
	if err := c.Bind(&prefs); err != nil {
		return c.JSON(http.StatusBadRequest, detail{"Invalid body"})
	}

	b.mu.Lock()
	b.prefs[c.Get("email").(string)] = prefs
	b.mu.Unlock()

	return c.JSON(http.StatusOK, prefs)
}

type collection func() map[string]map[string]any

func (b *backend) list(items collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()

		out := make([]map[string]any, 0, len(items()))
		for _, item := range items() {
			out = append(out, item)
		}
		return c.JSON(http.StatusOK, map[string]any{"items": out, "total": len(out)})
	}
}

func (b *backend) create(items collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var item map[string]any
		if err := c.Bind(&item); err != nil {
			return c.JSON(http.StatusBadRequest, detail{"Invalid body"})
		}
		item["id"] = uuid.NewString()

		b.mu.Lock()
		items()[item["id"].(string)] = item
		b.mu.Unlock()

		return c.JSON(http.StatusCreated, item)
	}
}

func (b *backend) update(items collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch map[string]any
		if err := c.Bind(&patch); err != nil {
			return c.JSON(http.StatusBadRequest, detail{"Invalid body"})
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		item, ok := items()[c.Param("id")]
		if !ok {
			return c.JSON(http.StatusNotFound, detail{"Not found"})
		}
		for k, v := range patch {
			if k != "id" {
				item[k] = v
			}
		}
		return c.JSON(http.StatusOK, item)
	}
}

func (b *backend) remove(items collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()

		if _, ok := items()[c.Param("id")]; !ok {
			return c.JSON(http.StatusNotFound, detail{"Not found"})
		}
		delete(items(), c.Param("id"))
		return c.NoContent(http.StatusNoContent)
	}
}

func (b *backend) issueAccess(email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(b.accessTTL)),
	})
	return token.SignedString(signingKey)
}

func filter(items []map[string]any, q string) map[string]any {
	q = strings.ToLower(q)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if name, _ := item["name"].(string); q == "" || strings.Contains(strings.ToLower(name), q) {
			out = append(out, item)
		}
	}
	return map[string]any{"items": out, "total": len(out)}
}

func findByID(c echo.Context, items []map[string]any, notFound string) error {
	for _, item := range items {
		if item["id"] == c.Param("id") {
			return c.JSON(http.StatusOK, item)
		}
	}
	return c.JSON(http.StatusNotFound, detail{notFound})
}

func randomToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

package controller

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/util"
)

// cookieTokenStore is the TokenStore of one request: reads come from the
// request cookies, writes become Set-Cookie headers on the response.
type cookieTokenStore struct {
	ctx    echo.Context
	cfg    *util.CookieConfig
	sealer *util.CookieSealer
	log    *zap.SugaredLogger

	access  string
	refresh string
}

func (c *Controller) tokenStore(ctx echo.Context) *cookieTokenStore {
	s := &cookieTokenStore{
		ctx:    ctx,
		cfg:    c.cookieCfg,
		sealer: c.sealer,
		log:    c.zapLogger,
	}
	s.access = s.read(util.AccessTokenCookie)
	s.refresh = s.read(util.RefreshTokenCookie)
	return s
}

func (s *cookieTokenStore) AccessToken() string  { return s.access }
func (s *cookieTokenStore) RefreshToken() string { return s.refresh }

func (s *cookieTokenStore) SetAccessToken(token string, ttl time.Duration) {
	s.access = token
	s.write(util.AccessTokenCookie, token, ttl)
}

// SetTokens stores a fresh pair. The refresh cookie always lives for the
// configured refresh TTL.
func (s *cookieTokenStore) SetTokens(pair models.TokenPair) {
	accessTTL := s.cfg.AccessTTL
	if pair.AccessExpiresIn > 0 {
		accessTTL = pair.AccessTTL()
	}

	s.access, s.refresh = pair.AccessToken, pair.RefreshToken
	s.write(util.AccessTokenCookie, pair.AccessToken, accessTTL)
	s.write(util.RefreshTokenCookie, pair.RefreshToken, s.cfg.RefreshTTL)
}

func (s *cookieTokenStore) Clear() {
	s.access, s.refresh = "", ""
	s.expire(util.AccessTokenCookie)
	s.expire(util.RefreshTokenCookie)
}

func (s *cookieTokenStore) read(name string) string {
	cookie, err := s.ctx.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}

	value, err := s.sealer.Open(cookie.Value)
	if err != nil {
		s.log.Debugw("ignoring unreadable cookie", "cookie", name)
		return ""
	}
	return value
}

func (s *cookieTokenStore) write(name, value string, ttl time.Duration) {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		s.log.Errorw("failed to seal cookie", "cookie", name, "error", err)
		return
	}

	cookie := s.baseCookie(name)
	cookie.Value = sealed
	cookie.MaxAge = int(ttl / time.Second)
	cookie.Expires = time.Now().Add(ttl)
	s.ctx.SetCookie(cookie)
}

func (s *cookieTokenStore) expire(name string) {
	cookie := s.baseCookie(name)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	s.ctx.SetCookie(cookie)
}

func (s *cookieTokenStore) baseCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		Domain:   s.cfg.Domain,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

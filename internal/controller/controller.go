package controller

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/service"
	"github.com/rryowa/govintel_gateway/internal/util"
)

type Controller struct {
	zapLogger    *zap.SugaredLogger
	fetcher      *service.Fetcher
	authService  *service.AuthService
	tokenService *service.TokenService
	auditService *service.AuditService
	cookieCfg    *util.CookieConfig
	sealer       *util.CookieSealer
}

func NewController(
	logger *zap.SugaredLogger,
	fetcher *service.Fetcher,
	authService *service.AuthService,
	tokenService *service.TokenService,
	auditService *service.AuditService,
	cookieCfg *util.CookieConfig,
	sealer *util.CookieSealer,
) *Controller {
	return &Controller{
		zapLogger:    logger,
		fetcher:      fetcher,
		authService:  authService,
		tokenService: tokenService,
		auditService: auditService,
		cookieCfg:    cookieCfg,
		sealer:       sealer,
	}
}

// (GET /healthz).
func (c *Controller) CheckServer(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// requestContext carries the caller's metadata for the audit trail.
func requestContext(ctx echo.Context) context.Context {
	return service.WithUserMetadata(ctx.Request().Context(), models.UserMetadata{
		UserAgent: ctx.Request().UserAgent(),
		IPAddress: ctx.RealIP(),
	})
}

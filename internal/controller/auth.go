package controller

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/service"
	"github.com/rryowa/govintel_gateway/internal/util"
)

// (POST /api/auth/login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewResponseError(http.StatusBadRequest, "Invalid request body")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return util.NewResponseError(http.StatusBadRequest, "Email and password are required")
	}

	resp, err := c.authService.Login(requestContext(ctx), c.tokenStore(ctx), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}

// (POST /api/auth/logout).
func (c *Controller) Logout(ctx echo.Context) error {
	c.authService.Logout(requestContext(ctx), c.tokenStore(ctx))
	return ctx.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// (POST /api/auth/refresh).
func (c *Controller) Refresh(ctx echo.Context) error {
	store := c.tokenStore(ctx)
	if store.RefreshToken() == "" {
		return service.ErrNotAuthenticated
	}

	if _, err := c.tokenService.Refresh(requestContext(ctx), store); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// (GET /api/auth/session).
func (c *Controller) GetSession(ctx echo.Context) error {
	return c.proxy(ctx, "session", http.MethodGet, "/auth/me", passthrough)
}

// (POST /api/auth/change-password).
func (c *Controller) ChangePassword(ctx echo.Context) error {
	return c.proxy(ctx, "change_password", http.MethodPost, "/auth/change-password", mutation)
}

package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultAuditLimit = 100

// (GET /internal/audit).
func (c *Controller) ListAuditEvents(ctx echo.Context) error {
	limit := defaultAuditLimit
	if err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &limit); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid format for parameter limit")
	}
	if limit <= 0 || limit > 1000 {
		limit = defaultAuditLimit
	}

	events, err := c.auditService.Recent(ctx.Request().Context(), limit)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]any{"events": events})
}

// (GET /internal/metrics).
func (c *Controller) Metrics() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

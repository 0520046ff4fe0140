package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/backend"
	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/service"
	"github.com/rryowa/govintel_gateway/internal/util"
)

const (
	msgNotAuthenticated = "Not authenticated"
	msgSessionExpired   = "Session expired. Please log in again."
	msgInternal         = "Internal server error"
)

// ErrorHandler renders every error as {"error": "..."}.
func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := classifyError(err)
		if status >= http.StatusInternalServerError {
			log.Errorw("request failed", "error", err, "uri", c.Request().RequestURI, "status", status)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, models.ErrorResponse{Error: msg})
		}
		if err != nil {
			log.Errorw("failed to write json response", "error", err)
		}
	}
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized, msgNotAuthenticated
	case errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized, msgSessionExpired
	}

	var backendErr *service.BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Status, backendErr.Message
	}

	var respErr util.ResponseError
	if errors.As(err, &respErr) {
		return respErr.Status, respErr.Msg
	}

	var netErr *backend.NetworkError
	if errors.As(err, &netErr) {
		return http.StatusInternalServerError, msgInternal
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, msgInternal
		}
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, fmt.Sprint(he.Message)
	}

	return http.StatusInternalServerError, msgInternal
}

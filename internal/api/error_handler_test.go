package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/rryowa/govintel_gateway/internal/backend"
	"github.com/rryowa/govintel_gateway/internal/service"
	"github.com/rryowa/govintel_gateway/internal/util"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not authenticated", service.ErrNotAuthenticated, http.StatusUnauthorized, "Not authenticated"},
		{"session expired wrapped", fmt.Errorf("%w: refresh rejected", service.ErrSessionExpired), http.StatusUnauthorized, "Session expired. Please log in again."},
		{"backend error", &service.BackendError{Status: http.StatusConflict, Message: "Email already registered"}, http.StatusConflict, "Email already registered"},
		{"response error", util.NewResponseError(http.StatusBadRequest, "Invalid request body"), http.StatusBadRequest, "Invalid request body"},
		{"network error", &backend.NetworkError{Op: "GET /parts", Err: errors.New("connection refused")}, http.StatusInternalServerError, "Internal server error"},
		{"echo 404", echo.ErrNotFound, http.StatusNotFound, "Not Found"},
		{"echo 500 hides detail", echo.NewHTTPError(http.StatusInternalServerError, "db: connection reset"), http.StatusInternalServerError, "Internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := classifyError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rryowa/govintel_gateway/internal/models"
)

var (
	// ErrNotAuthenticated: no usable access or refresh token, nothing was sent to the backend.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired: a refresh was attempted and failed, the token pair is gone.
	ErrSessionExpired = errors.New("session expired")

	ErrMalformedLogin = errors.New("backend login response carries no tokens")
)

const genericBackendMessage = "Request failed"

// BackendError is a non-2xx answer from the backend, reduced to status and message.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

func NewBackendError(resp *models.ProxyResponse) *BackendError {
	return &BackendError{
		Status:  resp.StatusCode,
		Message: ExtractErrorMessage(resp.Body),
	}
}

// ExtractErrorMessage reads "detail" or "message" (or "error") from a backend
// error body. FastAPI-style validation lists are joined by "; ".
func ExtractErrorMessage(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return genericBackendMessage
	}

	if msg := detailMessage(payload.Detail); msg != "" {
		return msg
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != "" {
		return payload.Error
	}
	return genericBackendMessage
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return ""
}

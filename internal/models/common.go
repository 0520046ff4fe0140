package models

import "time"

//nolint:gosec //file not handles sensitive data
const (
	MwAPIKeyHeader    = "X-API-Key"
	MwRequestIDHeader = "X-Request-Id"

	MwClientIDKey = "clientID"
)

type AuthEventKind string

const (
	EventLogin          AuthEventKind = "login"
	EventLoginFailed    AuthEventKind = "login_failed"
	EventRefresh        AuthEventKind = "refresh"
	EventRefreshFailed  AuthEventKind = "refresh_failed"
	EventSessionExpired AuthEventKind = "session_expired"
	EventLogout         AuthEventKind = "logout"
)

// AuthEvent is one row of the auth audit trail.
type AuthEvent struct {
	ID        string        `json:"id"`
	Kind      AuthEventKind `json:"kind"`
	Subject   string        `json:"subject,omitempty"`
	ClientIP  string        `json:"client_ip,omitempty"`
	UserAgent string        `json:"user_agent,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type UserMetadata struct {
	UserAgent string `json:"user_agent"`
	IPAddress string `json:"ip_address"`
}

// APIKeyState is the persisted rotation state of the operator key. Only hashes are stored.
type APIKeyState struct {
	CurrentHash string
	OldHash     string
	RotatedAt   time.Time
}

package models

// LoginRequest is accepted from the browser and forwarded to POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BackendLoginResponse is what the backend answers on a successful login.
type BackendLoginResponse struct {
	AccessToken        string `json:"access_token"`
	RefreshToken       string `json:"refresh_token"`
	TokenType          string `json:"token_type,omitempty"`
	ExpiresIn          int64  `json:"expires_in"`
	RefreshExpiresIn   int64  `json:"refresh_expires_in,omitempty"`
	MustChangePassword bool   `json:"must_change_password"`
}

type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenRefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// LoginResponse never carries tokens; they travel in httpOnly cookies only.
type LoginResponse struct {
	Success            bool `json:"success"`
	MustChangePassword bool `json:"mustChangePassword"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Package session is the client side of the gateway: a cookie-carrying HTTP
// client and the Coordinator that parks requests while the user signs in again.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rryowa/govintel_gateway/internal/models"
)

const (
	loginPath  = "/api/auth/login"
	logoutPath = "/api/auth/logout"
)

// Error is a non-2xx answer of the gateway with its {error} message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.Status, e.Message)
}

// Client talks to the gateway. Its cookie jar carries the httpOnly token
// cookies, so every request includes credentials.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	// resty.New installs a public-suffix aware cookie jar
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.LoginRequest{Email: email, Password: password}).
		SetResult(&out).
		Post(loginPath)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.IsError() {
		return nil, gatewayError(resp.StatusCode(), resp.Body())
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post(logoutPath)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if resp.IsError() {
		return gatewayError(resp.StatusCode(), resp.Body())
	}
	return nil
}

// Do sends req as is and returns the gateway's answer whatever its status.
func (c *Client) Do(ctx context.Context, req *models.ProxyRequest) (*models.ProxyResponse, error) {
	r := c.http.R().SetContext(ctx)
	for k, values := range req.Header {
		for _, v := range values {
			r.Header.Add(k, v)
		}
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if len(req.Body) > 0 {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	return &models.ProxyResponse{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}

func gatewayError(status int, body []byte) *Error {
	var envelope models.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == "" {
		envelope.Error = http.StatusText(status)
	}
	return &Error{Status: status, Message: envelope.Error}
}

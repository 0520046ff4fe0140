// Package backend talks to the remote platform API. Every call carries a
// JSON body (when present) and, for authenticated calls, a bearer token.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/util"
)

const userAgent = "govintel-gateway/1"

// NetworkError wraps transport and decoding failures. The caller never
// received a usable HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("backend %s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

type Client struct {
	httpClient *resty.Client
	baseURL    string
}

func NewClient(cfg *util.BackendConfig) *Client {
	c := &Client{baseURL: cfg.BaseURL}
	c.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		// the gateway serves many users, a shared jar would leak sessions between them
		SetCookieJar(nil).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": userAgent,
		})

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req with the given bearer token (empty for anonymous calls) and
// returns whatever status the backend answered.
func (c *Client) Do(ctx context.Context, req *models.ProxyRequest, token string) (*models.ProxyResponse, error) {
	r := c.httpClient.R().SetContext(ctx)

	if token != "" {
		r.SetAuthToken(token)
	}
	for k, values := range req.Header {
		for _, v := range values {
			r.Header.Add(k, v)
		}
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if len(req.Body) > 0 {
		if r.Header.Get("Content-Type") == "" {
			r.SetHeader("Content-Type", "application/json")
		}
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, &NetworkError{Op: req.Method + " " + req.Path, Err: err}
	}

	return &models.ProxyResponse{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}

// PostJSON marshals body and posts it to path.
func (c *Client) PostJSON(ctx context.Context, path string, body any, token string) (*models.ProxyResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &NetworkError{Op: "POST " + path, Err: err}
	}

	return c.Do(ctx, &models.ProxyRequest{
		Method: http.MethodPost,
		Path:   path,
		Body:   payload,
	}, token)
}

// DecodeJSON unmarshals a backend body, reporting failures as NetworkError.
func DecodeJSON(resp *models.ProxyResponse, dst any) error {
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return &NetworkError{Op: "decode", Err: err}
	}
	return nil
}

package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rryowa/govintel_gateway/internal/metrics"
	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/service"
	"github.com/rryowa/govintel_gateway/internal/util"
)

const maxProxyBody = 1 << 20

type proxyMode int

const (
	// passthrough returns the backend JSON verbatim.
	passthrough proxyMode = iota
	// search is passthrough with the query string forwarded.
	search
	// mutation wraps the backend JSON as {"success":true,...}.
	mutation
)

// proxy forwards the current request to the backend through the
// authenticated fetch and renders the answer for route.
func (c *Controller) proxy(ctx echo.Context, route, method, path string, mode proxyMode) error {
	req := &models.ProxyRequest{
		Method: method,
		Path:   path,
		Header: forwardedHeaders(ctx),
	}
	if mode == search {
		req.Query = ctx.QueryParams()
	}

	if method != http.MethodGet && method != http.MethodDelete {
		body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxProxyBody))
		if err != nil {
			return util.NewResponseError(http.StatusBadRequest, "Invalid request body")
		}
		req.Body = body
	}

	resp, err := c.fetcher.Do(requestContext(ctx), c.tokenStore(ctx), req)
	if err != nil {
		return err
	}

	metrics.ProxyRequestsTotal.WithLabelValues(route, strconv.Itoa(resp.StatusCode)).Inc()

	if !resp.IsSuccess() {
		return service.NewBackendError(resp)
	}

	if mode == mutation {
		status := resp.StatusCode
		if status == http.StatusNoContent {
			status = http.StatusOK
		}
		return ctx.JSONBlob(status, successEnvelope(resp.Body))
	}

	if len(resp.Body) == 0 {
		return ctx.NoContent(resp.StatusCode)
	}

	contentType := resp.ContentType()
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return ctx.Blob(resp.StatusCode, contentType, resp.Body)
}

// successEnvelope merges a JSON object into {"success":true}. Any other
// payload is placed under "data".
func successEnvelope(body []byte) []byte {
	envelope := map[string]json.RawMessage{}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		var obj map[string]json.RawMessage
		switch {
		case json.Unmarshal(trimmed, &obj) == nil && obj != nil:
			envelope = obj
		case json.Valid(trimmed):
			envelope["data"] = trimmed
		default:
			raw, _ := json.Marshal(string(trimmed))
			envelope["data"] = raw
		}
	}

	envelope["success"] = json.RawMessage("true")

	out, _ := json.Marshal(envelope)
	return out
}

func forwardedHeaders(ctx echo.Context) http.Header {
	h := http.Header{}
	if id := ctx.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		h.Set(models.MwRequestIDHeader, id)
	}
	if lang := ctx.Request().Header.Get("Accept-Language"); lang != "" {
		h.Set("Accept-Language", lang)
	}
	return h
}

package models

import (
	"net/http"
	"net/url"
)

// ProxyRequest describes one call to the backend. Body is buffered so the
// same bytes can be sent again on retry or replay.
type ProxyRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Clone returns a copy that shares no mutable state with r.
func (r *ProxyRequest) Clone() *ProxyRequest {
	out := &ProxyRequest{
		Method: r.Method,
		Path:   r.Path,
	}
	if r.Query != nil {
		out.Query = make(url.Values, len(r.Query))
		for k, v := range r.Query {
			out.Query[k] = append([]string(nil), v...)
		}
	}
	if r.Header != nil {
		out.Header = r.Header.Clone()
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *ProxyResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *ProxyResponse) ContentType() string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

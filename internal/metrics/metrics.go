// Package metrics holds the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "govintel"
	subsystem = "gateway"

	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeRevoked  = "revoked"
	OutcomeMissing  = "missing"
	OutcomeError    = "error"
)

var (
	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "token_refresh_total",
		Help:      "Access token refresh attempts by outcome.",
	}, []string{"outcome"})

	TokenRefreshShared = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "token_refresh_shared_total",
		Help:      "Refresh calls answered by an in-flight refresh of the same token.",
	})

	AuthRetryTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "auth_retry_total",
		Help:      "Backend requests retried after a 401 and a successful refresh.",
	})

	ProxyRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "proxy_requests_total",
		Help:      "Proxy route responses by route and status code.",
	}, []string{"route", "status"})
)

package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	rlRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_rate_limiter_requests_total",
			Help: "Requests seen by the connection rate limiter",
		},
		[]string{"endpoint"},
	)
	rlBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_rate_limiter_blocked_total",
			Help: "Requests blocked by the connection rate limiter",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(rlRequests)
	prometheus.MustRegister(rlBlocked)
}

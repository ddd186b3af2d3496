package services

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// catalogRequestsTotal counts catalog HTTP requests by endpoint and response code.
	// Labels: endpoint (search, artist), code (HTTP status, or "error" for transport failures)
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "featguess",
		Name:      "catalog_requests_total",
		Help:      "Total catalog requests by endpoint and response code",
	}, []string{"endpoint", "code"})

	// tokenRefreshTotal counts token endpoint calls by result (success, error).
	tokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "featguess",
		Name:      "token_refresh_total",
		Help:      "Total access token refreshes by result",
	}, []string{"result"})
)

func recordCatalogRequest(endpoint string, code int) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	catalogRequestsTotal.WithLabelValues(endpoint, label).Inc()
}

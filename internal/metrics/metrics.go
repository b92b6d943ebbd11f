package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booksearch_catalog_requests_total",
		Help: "Total number of requests sent to the book catalog",
	}, []string{"endpoint", "outcome"})

	CatalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booksearch_catalog_request_duration_seconds",
		Help:    "Duration of book catalog requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	StateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booksearch_state_transitions_total",
		Help: "Number of status transitions per state container",
	}, []string{"container", "status"})

	StaleResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booksearch_stale_responses_total",
		Help: "Fetch settlements discarded because a newer fetch had started",
	}, []string{"container"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "booksearch_active_sessions",
		Help: "Number of session state stores currently held in memory",
	})

	EvictedStoresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booksearch_evicted_stores_total",
		Help: "Session state stores evicted because the registry was full",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booksearch_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booksearch_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

// Outcome labels for CatalogRequestsTotal.
const (
	OutcomeOK        = "ok"
	OutcomeHTTPError = "http_error"
	OutcomeNetwork   = "network_error"
	OutcomeDecode    = "decode_error"
)

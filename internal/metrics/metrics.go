package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plg_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plg_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plg_events_recorded_total",
			Help: "Total interaction events recorded",
		},
		[]string{"type"},
	)

	ContactMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plg_contact_messages_total",
			Help: "Total contact messages by outcome",
		},
		[]string{"outcome"}, // "forwarded", "stored_only", "rejected", "store_failed"
	)

	// CRM metrics
	CRMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plg_crm_calls_total",
			Help: "Outbound CRM calls by step and outcome",
		},
		[]string{"step", "outcome"},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plg_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plg_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)

	// Infrastructure metrics
	DatabaseLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plg_database_latency_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1},
		},
		[]string{"op"},
	)
)

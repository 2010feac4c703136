package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nyinsen"

// Chat metrics
var (
	// ChatRequestsTotal counts chat requests by outcome (answered, rate_limited, invalid, unavailable, error)
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total chat requests by outcome",
		},
		[]string{"outcome"},
	)

	// ChatCompletionDuration tracks model completion latency by provider
	ChatCompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "completion_duration_seconds",
			Help:      "Chat model completion duration in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"provider"},
	)

	// CircuitBreakerState tracks the breaker in front of the chat model (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Rate limiting metrics
var (
	// RateLimitDenialsTotal counts rejected requests by limiter (chat, api, login)
	RateLimitDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_denials_total",
			Help:      "Total requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)
)

// Notification metrics
var (
	// NotificationDeliveriesTotal counts notifications by kind (alert, reminder) and status (sent, failed)
	NotificationDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Total notification deliveries by kind and status",
		},
		[]string{"kind", "status"},
	)

	// ReminderRunsTotal counts reminder sweeps by result
	ReminderRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "runs_total",
			Help:      "Total reminder sweeps by result",
		},
		[]string{"result"},
	)
)

// HTTP metrics
var (
	// HTTPRequestDuration tracks request latency by method, route and status code
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)
)

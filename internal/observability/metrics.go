package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tm_messages_processed_total",
			Help: "Messages handled per topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tm_handler_seconds",
			Help:    "Duration of message handlers",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	SeatsAllocated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tm_seats_allocated_total",
			Help: "Seats successfully allocated",
		},
	)

	AllocationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tm_allocation_failures_total",
			Help: "Failed allocations per error code",
		},
		[]string{"code"},
	)

	ProduceRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tm_produce_retries_total",
			Help: "Total broker publish retries",
		},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tm_requests_total",
			Help: "Total number of gateway requests",
		},
		[]string{"route", "code", "method"},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tm_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)

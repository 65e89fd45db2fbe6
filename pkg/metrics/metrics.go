package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests counts calls to the payment provider by flow and outcome
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wetravel",
			Name:      "requests_total",
			Help:      "The total number of payment provider requests",
		},
		[]string{"flow", "outcome"},
	)

	// ProviderRequestDuration is the latency of payment provider calls
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wetravel",
			Name:      "request_duration_seconds",
			Help:      "Latency of payment provider requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"flow"},
	)

	// BookingsCreated counts bookings persisted after a provider success
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "created_total",
			Help:      "The total number of bookings created",
		},
	)

	// WebhookEvents counts webhook deliveries by event type and outcome
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webhooks",
			Name:      "events_total",
			Help:      "The total number of webhook events by type and outcome",
		},
		[]string{"type", "outcome"},
	)
)

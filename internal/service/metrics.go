package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons reported on sinkDroppedTotal.
const (
	dropQueueFull   = "queue_full"
	dropClosed      = "closed"
	dropBreakerOpen = "breaker_open"
	dropSinkError   = "sink_error"
)

var (
	eventsTrackedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_events_tracked_total",
			Help: "Events appended to the in-process log, by type",
		},
		[]string{"type"},
	)

	eventsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_events_rejected_total",
			Help: "Events dropped because their type is unknown",
		},
	)

	sessionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_sessions_started_total",
			Help: "Sessions opened, including self-healed ones",
		},
	)

	sessionsEndedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_sessions_ended_total",
			Help: "Sessions closed",
		},
	)

	sinkFlushedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_sink_events_flushed_total",
			Help: "Events delivered to the external sink",
		},
	)

	sinkDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_sink_events_dropped_total",
			Help: "Events that never reached the external sink, by reason",
		},
		[]string{"reason"},
	)

	sinkBatchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_sink_batch_failures_total",
			Help: "Batch writes rejected by the external sink",
		},
	)

	sinkBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analytics_sink_breaker_state",
			Help: "Sink circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

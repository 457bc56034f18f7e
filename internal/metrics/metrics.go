package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventease_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventease_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	NotificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventease_notifications_created_total",
			Help: "Notifications persisted, by type",
		},
		[]string{"type"},
	)

	// BestEffortFailures counts swallowed failures of secondary work (push, notify, lookup, email).
	BestEffortFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventease_best_effort_failures_total",
			Help: "Failures of best-effort steps that were logged and swallowed",
		},
		[]string{"stage"},
	)

	RealtimeEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventease_realtime_events_published_total",
			Help: "Events published to realtime rooms",
		},
		[]string{"event"},
	)

	RealtimeFramesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eventease_realtime_frames_dropped_total",
			Help: "Frames dropped because a connection's outbound queue was full",
		},
	)

	RealtimeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventease_realtime_connections",
			Help: "Currently open realtime connections",
		},
	)
)

func Init() {
	prometheus.MustRegister(
		RequestCount,
		RequestDuration,
		NotificationsCreated,
		BestEffortFailures,
		RealtimeEventsPublished,
		RealtimeFramesDropped,
		RealtimeConnections,
	)
}

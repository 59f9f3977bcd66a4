package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var latencyBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics holds all Prometheus metrics for the directory.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	InitDuration         prometheus.Histogram
	InitAttempts         prometheus.Counter
	InitFailures         prometheus.Counter
	RecordsLoaded        prometheus.Counter
	RecordsSkipped       *prometheus.CounterVec
	LiveUsers            prometheus.Gauge
	QueryDuration        *prometheus.HistogramVec
	UsersDeleted         prometheus.Counter
	NotificationsDropped prometheus.Counter
	NotificationsFailed  *prometheus.CounterVec
	EndpointLatency      *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "userdir_init_duration_seconds",
			Help:    "Duration of directory loads, successful or not",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		InitAttempts: f.NewCounter(prometheus.CounterOpts{
			Name: "userdir_init_attempts_total",
			Help: "Total number of directory loads started",
		}),
		InitFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "userdir_init_failures_total",
			Help: "Total number of directory loads that failed and were rolled back",
		}),
		RecordsLoaded: f.NewCounter(prometheus.CounterOpts{
			Name: "userdir_records_loaded_total",
			Help: "Total number of records indexed by successful loads",
		}),
		RecordsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "userdir_records_skipped_total",
			Help: "Total number of source records rejected during load, by reason",
		}, []string{"reason"}),
		LiveUsers: f.NewGauge(prometheus.GaugeOpts{
			Name: "userdir_live_users",
			Help: "Number of users currently reachable by id",
		}),
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "userdir_query_duration_seconds",
			Help:    "Duration of directory operations, including any wait for initialization",
			Buckets: latencyBuckets,
		}, []string{"operation"}),
		UsersDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "userdir_users_deleted_total",
			Help: "Total number of users soft-deleted",
		}),
		NotificationsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "userdir_notifications_dropped_total",
			Help: "Delete notifications dropped because the buffer was full or the sink circuit was open",
		}),
		NotificationsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "userdir_notifications_failed_total",
			Help: "Delete notifications a sink failed to deliver",
		}, []string{"sink"}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "userdir_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route and status",
			Buckets: latencyBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveInit records a finished load attempt.
func (m *Metrics) ObserveInit(start time.Time, err error) {
	if m == nil {
		return
	}
	m.InitAttempts.Inc()
	m.InitDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.InitFailures.Inc()
	}
}

// RecordLoaded records a successful load of n users.
func (m *Metrics) RecordLoaded(n int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.Add(float64(n))
	m.LiveUsers.Set(float64(n))
}

// IncrementSkipped records a rejected source record.
func (m *Metrics) IncrementSkipped(reason string) {
	if m == nil {
		return
	}
	m.RecordsSkipped.WithLabelValues(reason).Inc()
}

// ObserveQuery records the duration of a directory operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveQuery(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncrementDeleted records a soft delete.
func (m *Metrics) IncrementDeleted() {
	if m == nil {
		return
	}
	m.UsersDeleted.Inc()
	m.LiveUsers.Dec()
}

// IncrementNotificationsDropped records a notification lost to a full buffer.
func (m *Metrics) IncrementNotificationsDropped() {
	if m == nil {
		return
	}
	m.NotificationsDropped.Inc()
}

// IncrementNotificationsFailed records a sink delivery failure.
func (m *Metrics) IncrementNotificationsFailed(sink string) {
	if m == nil {
		return
	}
	m.NotificationsFailed.WithLabelValues(sink).Inc()
}

// ObserveEndpoint records the latency of one HTTP request.
func (m *Metrics) ObserveEndpoint(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(method, route, statusLabel(status)).Observe(time.Since(start).Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

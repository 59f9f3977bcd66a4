package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveInit(time.Now(), nil)
		m.RecordLoaded(3)
		m.IncrementSkipped("bad_dob")
		m.ObserveQuery("get_user", time.Now())
		m.IncrementDeleted()
		m.IncrementNotificationsDropped()
		m.IncrementNotificationsFailed("redis")
		m.ObserveEndpoint("GET", "/users/{id}", 200, time.Now())
	})
}

func TestInitCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveInit(time.Now(), errors.New("source down"))
	m.ObserveInit(time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.InitAttempts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InitFailures))
}

func TestLiveUsersGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordLoaded(10)
	m.IncrementDeleted()
	m.IncrementDeleted()

	assert.Equal(t, 8.0, testutil.ToFloat64(m.LiveUsers))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UsersDeleted))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.RecordsLoaded))
}

func TestSkippedByReason(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementSkipped("duplicate_id")
	m.IncrementSkipped("duplicate_id")
	m.IncrementSkipped("invalid_dob")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsSkipped.WithLabelValues("duplicate_id")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsSkipped.WithLabelValues("invalid_dob")))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "2xx", statusLabel(204))
	assert.Equal(t, "3xx", statusLabel(304))
	assert.Equal(t, "4xx", statusLabel(404))
	assert.Equal(t, "5xx", statusLabel(503))
}

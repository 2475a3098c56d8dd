package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "POST", 201, 2*time.Millisecond)
	m.RecordRequest("/tickets", "POST", 201, 4*time.Millisecond)
	m.RecordError("/tickets", "POST", "bad_request")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/tickets|POST|201"])
	assert.Equal(t, int64(1), snap.Errors["/tickets|POST|bad_request"])
	assert.InDelta(t, 3.0, snap.AverageLatencyMs, 0.001)

	m.RecordRequest("/tickets", "GET", 200, 0)
	assert.Equal(t, int64(2), snap.Requests["/tickets|POST|201"], "snapshot is a copy")
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "x")
	assert.Empty(t, m.Snapshot().Requests)
}

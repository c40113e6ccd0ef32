package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsObserveExecution(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveExecution("wf-1", "staging", "success", 120*time.Millisecond, 4)
	m.ObserveExecution("wf-1", "staging", "failed", 10*time.Millisecond, 1)

	success := testutil.ToFloat64(m.executions.WithLabelValues("wf-1", "staging", "success"))
	failed := testutil.ToFloat64(m.executions.WithLabelValues("wf-1", "staging", "failed"))

	assert.InDelta(t, 1, success, 0)
	assert.InDelta(t, 1, failed, 0)
}

func TestMetricsObserveNodeVisit(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveNodeVisit("wf-1", "process")
	m.ObserveNodeVisit("wf-1", "process")
	m.ObserveNodeVisit("wf-1", "end")

	visits := testutil.ToFloat64(m.nodeVisits.WithLabelValues("wf-1", "process"))
	assert.InDelta(t, 2, visits, 0)
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveExecution("wf", "sandbox", "success", time.Second, 1)
		m.ObserveNodeVisit("wf", "start")
	})
}

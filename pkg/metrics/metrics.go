// Package metrics exposes Prometheus collectors for workflow execution
// monitoring.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects execution counters and latency distributions. All methods
// are nil-safe so callers can run without metrics wired.
type Metrics struct {
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	nodeVisits *prometheus.CounterVec
	iterations prometheus.Histogram
}

// New registers the workflow metrics with the given registerer. Pass
// prometheus.DefaultRegisterer for the global registry or a private registry
// for isolation in tests.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registerer)

	return &Metrics{
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pinkflow",
			Name:      "executions_total",
			Help:      "Workflow executions by outcome",
		}, []string{"workflow_id", "environment", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pinkflow",
			Name:      "execution_duration_seconds",
			Help:      "Wall-clock duration of workflow executions",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
		}, []string{"workflow_id", "environment"}),

		nodeVisits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pinkflow",
			Name:      "node_visits_total",
			Help:      "Node visits by node type",
		}, []string{"workflow_id", "node_type"}),

		iterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pinkflow",
			Name:      "execution_iterations",
			Help:      "Node-visit count per execution",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

// ObserveExecution records one finished execution.
func (m *Metrics) ObserveExecution(workflowID, environment, status string, duration time.Duration, iterations int) {
	if m == nil {
		return
	}

	m.executions.WithLabelValues(workflowID, environment, status).Inc()
	m.duration.WithLabelValues(workflowID, environment).Observe(duration.Seconds())
	m.iterations.Observe(float64(iterations))
}

// ObserveNodeVisit records one node visit.
func (m *Metrics) ObserveNodeVisit(workflowID, nodeType string) {
	if m == nil {
		return
	}

	m.nodeVisits.WithLabelValues(workflowID, nodeType).Inc()
}

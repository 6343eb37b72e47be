// Package metrics exposes Prometheus-compatible counters and gauges for
// workflow runs: superstep throughput, executor invocation counts, queue
// depth, checkpoint activity, and outstanding RequestInfo suspensions.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects every workflow-level Prometheus series, all namespaced
// "workflow_".
type Metrics struct {
	supersteps        *prometheus.CounterVec
	executorsInvoked  *prometheus.CounterVec
	executorFailures  *prometheus.CounterVec
	queueDepth        prometheus.Gauge
	checkpointSaves   *prometheus.CounterVec
	requestInfoPending prometheus.Gauge

	mu      sync.RWMutex
	enabled bool
}

// New creates and registers every metric with registry. If registry is
// nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	m := &Metrics{enabled: true}

	m.supersteps = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workflow",
		Name:      "supersteps_total",
		Help:      "Completed supersteps, labeled by run id",
	}, []string{"run_id"})

	m.executorsInvoked = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workflow",
		Name:      "executors_invoked_total",
		Help:      "Executor handler invocations, labeled by run id and executor id",
	}, []string{"run_id", "executor_id"})

	m.executorFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workflow",
		Name:      "executor_failures_total",
		Help:      "Executor handler failures, labeled by run id and executor id",
	}, []string{"run_id", "executor_id"})

	m.queueDepth = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "workflow",
		Name:      "outbox_depth",
		Help:      "Messages currently queued in the outbox awaiting the next superstep",
	})

	m.checkpointSaves = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workflow",
		Name:      "checkpoint_saves_total",
		Help:      "Checkpoints persisted, labeled by workflow id",
	}, []string{"workflow_id"})

	m.requestInfoPending = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "workflow",
		Name:      "request_info_pending",
		Help:      "RequestInfo messages currently awaiting a Resume call",
	})

	return m
}

func (m *Metrics) RecordSuperstep(runID string) {
	if !m.isEnabled() {
		return
	}
	m.supersteps.WithLabelValues(runID).Inc()
}

func (m *Metrics) RecordExecutorInvoked(runID, executorID string) {
	if !m.isEnabled() {
		return
	}
	m.executorsInvoked.WithLabelValues(runID, executorID).Inc()
}

func (m *Metrics) RecordExecutorFailure(runID, executorID string) {
	if !m.isEnabled() {
		return
	}
	m.executorFailures.WithLabelValues(runID, executorID).Inc()
}

func (m *Metrics) SetQueueDepth(depth int) {
	if !m.isEnabled() {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) RecordCheckpointSave(workflowID string) {
	if !m.isEnabled() {
		return
	}
	m.checkpointSaves.WithLabelValues(workflowID).Inc()
}

func (m *Metrics) SetRequestInfoPending(count int) {
	if !m.isEnabled() {
		return
	}
	m.requestInfoPending.Set(float64(count))
}

// Disable stops recording without unregistering any series.
func (m *Metrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Enable resumes recording after Disable.
func (m *Metrics) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}

func (m *Metrics) isEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

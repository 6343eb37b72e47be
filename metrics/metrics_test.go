package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordSuperstepIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordSuperstep("run-1")
	m.RecordSuperstep("run-1")
	m.RecordSuperstep("run-2")

	require.Equal(t, float64(2), testutil.ToFloat64(m.supersteps.WithLabelValues("run-1")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.supersteps.WithLabelValues("run-2")))
}

func TestMetricsGaugesReflectLatestSet(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetQueueDepth(5)
	m.SetQueueDepth(3)
	require.Equal(t, float64(3), testutil.ToFloat64(m.queueDepth))

	m.SetRequestInfoPending(2)
	require.Equal(t, float64(2), testutil.ToFloat64(m.requestInfoPending))
}

func TestMetricsDisableStopsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Disable()
	m.RecordExecutorInvoked("run-1", "a")
	require.Equal(t, float64(0), testutil.ToFloat64(m.executorsInvoked.WithLabelValues("run-1", "a")))

	m.Enable()
	m.RecordExecutorInvoked("run-1", "a")
	require.Equal(t, float64(1), testutil.ToFloat64(m.executorsInvoked.WithLabelValues("run-1", "a")))
}

func TestMetricsRecordCheckpointSave(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordCheckpointSave("wf-1")
	require.Equal(t, float64(1), testutil.ToFloat64(m.checkpointSaves.WithLabelValues("wf-1")))
}

package checkpoint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arborian/workflow"
)

func newTestSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStoreSaveLoadRoundTrips(t *testing.T) {
	s := newTestSQLiteStore(t)

	cp := workflow.Checkpoint{
		CheckpointID: "cp-1",
		WorkflowID:   "wf-1",
		Timestamp:    time.Unix(1000, 0),
		Label:        "pre-approval",
		SharedState:  map[string]any{"confidence": 0.9},
	}
	require.NoError(t, s.Save(cp))

	loaded, err := s.Load("cp-1")
	require.NoError(t, err)
	require.Equal(t, cp.WorkflowID, loaded.WorkflowID)
	require.Equal(t, cp.Label, loaded.Label)
	require.Equal(t, 0.9, loaded.SharedState["confidence"])
}

func TestSQLStoreSaveIsAnUpsert(t *testing.T) {
	s := newTestSQLiteStore(t)

	cp := workflow.Checkpoint{CheckpointID: "cp-1", WorkflowID: "wf-1", Timestamp: time.Unix(1, 0), Label: "first"}
	require.NoError(t, s.Save(cp))

	cp.Label = "second"
	cp.Timestamp = time.Unix(2, 0)
	require.NoError(t, s.Save(cp))

	loaded, err := s.Load("cp-1")
	require.NoError(t, err)
	require.Equal(t, "second", loaded.Label)

	ids, err := s.List("wf-1")
	require.NoError(t, err)
	require.Len(t, ids, 1)
}

func TestSQLStoreLoadMissingReturnsNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, err := s.Load("missing")
	require.ErrorIs(t, err, workflow.ErrCheckpointNotFound)
}

func TestSQLStoreDelete(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Save(workflow.Checkpoint{CheckpointID: "cp-1", WorkflowID: "wf-1", Timestamp: time.Unix(1, 0)}))
	require.NoError(t, s.Delete("cp-1"))
	_, err := s.Load("cp-1")
	require.ErrorIs(t, err, workflow.ErrCheckpointNotFound)
}

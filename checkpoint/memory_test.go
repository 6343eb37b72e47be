package checkpoint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arborian/workflow"
)

func TestMemoryStoreSaveLoadDelete(t *testing.T) {
	s := NewMemoryStore()
	cp := workflow.Checkpoint{
		CheckpointID: "cp-1",
		WorkflowID:   "wf-1",
		Timestamp:    time.Unix(1000, 0),
		Label:        "before-publish",
	}
	require.NoError(t, s.Save(cp))

	loaded, err := s.Load("cp-1")
	require.NoError(t, err)
	require.Equal(t, cp.WorkflowID, loaded.WorkflowID)
	require.Equal(t, cp.Label, loaded.Label)

	require.NoError(t, s.Delete("cp-1"))
	_, err = s.Load("cp-1")
	require.ErrorIs(t, err, workflow.ErrCheckpointNotFound)
}

func TestMemoryStoreListFullOrdersByTimestampAndFiltersByWorkflow(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Save(workflow.Checkpoint{CheckpointID: "a", WorkflowID: "wf-1", Timestamp: time.Unix(200, 0)}))
	require.NoError(t, s.Save(workflow.Checkpoint{CheckpointID: "b", WorkflowID: "wf-1", Timestamp: time.Unix(100, 0)}))
	require.NoError(t, s.Save(workflow.Checkpoint{CheckpointID: "c", WorkflowID: "wf-2", Timestamp: time.Unix(150, 0)}))

	full, err := s.ListFull("wf-1")
	require.NoError(t, err)
	require.Len(t, full, 2)
	require.Equal(t, "b", full[0].CheckpointID)
	require.Equal(t, "a", full[1].CheckpointID)

	ids, err := s.List("")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c"}, ids)
}

// Package checkpoint provides persistence backends for workflow.Checkpoint
// values: an in-memory store for tests, a JSON-file store for single-node
// deployments, and a database/sql-backed store with MySQL and SQLite
// dialects for anything that needs a shared backend.
package checkpoint

import (
	"sort"
	"sync"

	"github.com/arborian/workflow"
)

// MemoryStore is an in-process workflow.CheckpointStore backed by a map. It
// satisfies workflow.CheckpointStore structurally; the workflow package
// never imports this one.
type MemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]workflow.Checkpoint
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{checkpoints: make(map[string]workflow.Checkpoint)}
}

func (s *MemoryStore) Save(cp workflow.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[cp.CheckpointID] = cp
	return nil
}

func (s *MemoryStore) Load(checkpointID string) (workflow.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return workflow.Checkpoint{}, workflow.ErrCheckpointNotFound
	}
	return cp, nil
}

func (s *MemoryStore) List(workflowID string) ([]string, error) {
	full, err := s.ListFull(workflowID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(full))
	for i, cp := range full {
		ids[i] = cp.CheckpointID
	}
	return ids, nil
}

func (s *MemoryStore) ListFull(workflowID string) ([]workflow.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []workflow.Checkpoint
	for _, cp := range s.checkpoints {
		if workflowID == "" || cp.WorkflowID == workflowID {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStore) Delete(checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkpoints, checkpointID)
	return nil
}

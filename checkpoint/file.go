package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arborian/workflow"
)

// FileStore persists each checkpoint as its own JSON file named
// "<checkpoint_id>.json" under root. On listing, unreadable or corrupt
// files are skipped silently rather than failing the whole listing; no
// warning is emitted or returned for a skipped file. Unknown JSON fields on
// load are
// tolerated, missing required fields are an error.
type FileStore struct {
	root string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir, creating it if it does
// not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("checkpoint: create root %q: %w", dir, err)
	}
	return &FileStore{root: dir}, nil
}

func (s *FileStore) pathFor(checkpointID string) string {
	return filepath.Join(s.root, checkpointID+".json")
}

func (s *FileStore) Save(cp workflow.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cp.CheckpointID == "" {
		return fmt.Errorf("checkpoint: CheckpointID is required")
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return &workflow.SerializationError{Cause: err}
	}
	tmp := s.pathFor(cp.CheckpointID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write %q: %w", tmp, err)
	}
	return os.Rename(tmp, s.pathFor(cp.CheckpointID))
}

func (s *FileStore) Load(checkpointID string) (workflow.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.pathFor(checkpointID))
	if os.IsNotExist(err) {
		return workflow.Checkpoint{}, workflow.ErrCheckpointNotFound
	}
	if err != nil {
		return workflow.Checkpoint{}, fmt.Errorf("checkpoint: read %q: %w", checkpointID, err)
	}
	var cp workflow.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return workflow.Checkpoint{}, &workflow.SerializationError{Cause: err}
	}
	if cp.CheckpointID == "" {
		return workflow.Checkpoint{}, fmt.Errorf("checkpoint: %q missing required field CheckpointID", checkpointID)
	}
	return cp, nil
}

func (s *FileStore) List(workflowID string) ([]string, error) {
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

func (s *FileStore) ListFull(workflowID string) ([]workflow.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read dir %q: %w", s.root, err)
	}

	var out []workflow.Checkpoint
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, entry.Name()))
		if err != nil {
			continue // skip unreadable file
		}
		var cp workflow.Checkpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			continue // skip corrupt file
		}
		if cp.CheckpointID == "" {
			continue
		}
		if workflowID == "" || cp.WorkflowID == workflowID {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *FileStore) Delete(checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.pathFor(checkpointID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

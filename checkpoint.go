package workflow

import "time"

// Checkpoint is a point-in-time snapshot of a run, sufficient to resume
// execution from scratch: the outbox, the event queue, shared state, each
// executor's opaque private state, and iteration bookkeeping.
//
// Checkpoint is a plain value object; persistence is delegated to a
// CheckpointStore implementation (see the checkpoint subpackage for
// in-memory, file-backed, and database-backed stores). The workflow
// package defines the interface here and the checkpoint subpackage
// satisfies it structurally, so neither package imports the other's
// internals cyclically.
type Checkpoint struct {
	CheckpointID string
	WorkflowID   string
	Timestamp    time.Time

	Outbox       map[string][]Message
	Events       []WorkflowEvent
	SharedState  map[string]any
	ExecutorState map[string][]byte // opaque, per-executor, JSON-encoded

	IterationCount int
	MaxIterations  int

	Label    string
	Metadata map[string]any
	Version  int
}

// CheckpointStore is the persistence contract a checkpoint backend must
// satisfy. Implementations live in the checkpoint subpackage.
type CheckpointStore interface {
	Save(cp Checkpoint) error
	Load(checkpointID string) (Checkpoint, error)
	List(workflowID string) ([]string, error)
	ListFull(workflowID string) ([]Checkpoint, error)
	Delete(checkpointID string) error
}

// ExecutorStateSaver is the save/restore hook for executor private state.
// Workflow.Checkpoint and ResumeFromCheckpoint test each registered
// *Executor value against this interface; *Executor has no SaveState or
// RestoreState method, so no executor state is saved or restored and
// Checkpoint.ExecutorState is always empty.
type ExecutorStateSaver interface {
	SaveState() ([]byte, error)
	RestoreState([]byte) error
}

package workflow

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arborian/workflow/metrics"
)

// Workflow is a built, immutable graph ready to run. Construct one with
// Builder.Build; a Workflow may be run multiple times but only one run may
// be in progress at a time.
type Workflow struct {
	startExecutorID      string
	executors            map[string]*Executor
	groupsBySource       map[string][]edgeRunner
	allGroups            []EdgeGroup
	interceptors         map[string]InterceptorRegistration // keyed by key()
	maxIterations        int
	store                CheckpointStore  // optional, may be nil
	metrics              *metrics.Metrics // optional, may be nil
	runnerContextFactory RunnerContextFactory

	mu      sync.Mutex
	running bool
	current *runState
}

// runState is the mutable state of one in-progress (or suspended) run.
type runState struct {
	runID      string
	workflowID string
	rc         RunnerContext
	shared     *SharedState
	iteration  int

	pendingMu sync.Mutex
	pending   map[string]pendingRequest

	status   RunState
	events   chan WorkflowEvent
	result   any
	finalErr error
}

func newRunID() string {
	return uuid.NewString()
}

// Run starts a new run with startInput delivered to the start executor. It
// returns a channel of events; the channel is closed when the run
// completes, fails, is cancelled, or suspends waiting for input. Only one
// run may be active at a time; Run returns ErrAlreadyRunning if called
// again before the prior run finishes or suspends and is resumed to
// completion.
func (w *Workflow) Run(startInput any) (<-chan WorkflowEvent, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	w.running = true
	rs := &runState{
		runID:      newRunID(),
		workflowID: newRunID(),
		rc:         w.runnerContextFactory(),
		shared:     NewSharedState(),
		pending:    make(map[string]pendingRequest),
		status:     RunStarted,
		events:     make(chan WorkflowEvent, 64),
	}
	w.current = rs
	w.mu.Unlock()

	rs.events <- workflowStarted(rs.runID, w.startExecutorID)
	rs.events <- workflowStatus(rs.runID, RunStarted)
	rs.rc.SendMessage(NewTargetedMessage(externalSourceID, w.startExecutorID, startInput))

	go w.driveToQuiescenceOrSuspend(rs)

	return rs.events, nil
}

// RunToCompletion runs the workflow and blocks until it either completes,
// fails, or suspends waiting for input. It reports only the COMPLETED result
// or the FAILED error; if the run suspends, it returns a nil result and a
// nil error, and the RequestInfo events it consumed are not returned to the
// caller.
func (w *Workflow) RunToCompletion(startInput any) (any, error) {
	events, err := w.Run(startInput)
	if err != nil {
		return nil, err
	}
	var result any
	var runErr error
	for ev := range events {
		switch ev.Kind {
		case EventWorkflowCompleted:
			result = ev.Result
		case EventWorkflowFailed:
			runErr = fmt.Errorf("%s", ev.Error.Message)
		}
	}
	return result, runErr
}

// Resume injects responses (keyed by RequestID) into a run that is
// currently RunWaitingForInput and continues execution. It returns a fresh
// event channel for the continuation.
func (w *Workflow) Resume(responses map[string]any) (<-chan WorkflowEvent, error) {
	w.mu.Lock()
	rs := w.current
	if rs == nil || rs.status != RunWaitingForInput {
		w.mu.Unlock()
		return nil, &ProtocolError{Cause: ErrNotWaiting}
	}
	rs.pendingMu.Lock()
	for reqID := range responses {
		if _, ok := rs.pending[reqID]; !ok {
			rs.pendingMu.Unlock()
			w.mu.Unlock()
			return nil, &ProtocolError{Cause: ErrUnknownRequestID}
		}
	}
	for reqID, resp := range responses {
		p := rs.pending[reqID]
		delete(rs.pending, reqID)
		rs.rc.SendMessage(NewTargetedMessage(requestInfoExecutorID, p.sourceExecutorID, resp))
	}
	rs.pendingMu.Unlock()
	rs.status = RunInProgress
	rs.events = make(chan WorkflowEvent, 64)
	rs.events <- workflowStatus(rs.runID, RunInProgress)
	w.mu.Unlock()

	go w.driveToQuiescenceOrSuspend(rs)

	return rs.events, nil
}

// Checkpoint snapshots the current (or suspended) run. It returns an error
// if no run has been started on this Workflow; it does not itself persist
// anything unless the Workflow was built with a CheckpointStore, in which
// case it also saves.
func (w *Workflow) Checkpoint(label string) (Checkpoint, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rs := w.current
	if rs == nil {
		return Checkpoint{}, fmt.Errorf("workflow: no active run to checkpoint")
	}

	executorState := make(map[string][]byte)
	for id, ex := range w.executors {
		if saver, ok := any(ex).(ExecutorStateSaver); ok {
			b, err := saver.SaveState()
			if err != nil {
				return Checkpoint{}, &SerializationError{Cause: err}
			}
			executorState[id] = b
		}
	}

	var outbox map[string][]Message
	var events []WorkflowEvent
	if crc, ok := rs.rc.(checkpointableRunnerContext); ok {
		outbox = crc.snapshotMessages()
		events = crc.snapshotEvents()
	}

	cp := Checkpoint{
		CheckpointID:   newRunID(),
		WorkflowID:     rs.workflowID,
		Timestamp:      time.Now(),
		Outbox:         outbox,
		Events:         events,
		SharedState:    rs.shared.Snapshot(),
		ExecutorState:  executorState,
		IterationCount: rs.iteration,
		MaxIterations:  w.maxIterations,
		Label:          label,
		Version:        1,
	}
	if w.store != nil {
		if err := w.store.Save(cp); err != nil {
			return Checkpoint{}, err
		}
		if w.metrics != nil {
			w.metrics.RecordCheckpointSave(cp.WorkflowID)
		}
	}
	return cp, nil
}

// ResumeFromCheckpoint rebuilds run state from cp and returns a fresh event
// channel, continuing as if the run had suspended at cp.IterationCount.
func (w *Workflow) ResumeFromCheckpoint(cp Checkpoint) (<-chan WorkflowEvent, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	w.running = true

	rs := &runState{
		runID:      newRunID(),
		workflowID: cp.WorkflowID,
		rc:         w.runnerContextFactory(),
		shared:     NewSharedState(),
		pending:    make(map[string]pendingRequest),
		status:     RunInProgress,
		events:     make(chan WorkflowEvent, 64),
		iteration:  cp.IterationCount,
	}
	if crc, ok := rs.rc.(checkpointableRunnerContext); ok {
		crc.restore(cp.Outbox, cp.Events)
	}
	rs.shared.Restore(cp.SharedState)
	for id, b := range cp.ExecutorState {
		if ex, ok := w.executors[id]; ok {
			if saver, ok := any(ex).(ExecutorStateSaver); ok {
				if err := saver.RestoreState(b); err != nil {
					w.running = false
					w.mu.Unlock()
					return nil, &SerializationError{Cause: err}
				}
			}
		}
	}
	w.current = rs
	w.mu.Unlock()

	rs.events <- workflowStatus(rs.runID, RunInProgress)
	go w.driveToQuiescenceOrSuspend(rs)

	return rs.events, nil
}

// Executors returns the ids of every executor in the graph, for
// introspection.
func (w *Workflow) Executors() []string {
	out := make([]string, 0, len(w.executors))
	for id := range w.executors {
		out = append(out, id)
	}
	return out
}

// StartExecutorID returns the graph's configured entry point.
func (w *Workflow) StartExecutorID() string { return w.startExecutorID }

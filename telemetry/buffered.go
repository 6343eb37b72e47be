package telemetry

import (
	"context"
	"sync"

	"github.com/arborian/workflow"
)

// BufferedEmitter stores every event in memory, grouped by run id. Intended
// for tests and interactive debugging, not long-running production runs.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]workflow.WorkflowEvent
}

// NewBufferedEmitter returns an empty BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]workflow.WorkflowEvent)}
}

func (b *BufferedEmitter) Emit(ev workflow.WorkflowEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[ev.RunID] = append(b.events[ev.RunID], ev)
}

func (b *BufferedEmitter) EmitBatch(_ context.Context, events []workflow.WorkflowEvent) error {
	for _, ev := range events {
		b.Emit(ev)
	}
	return nil
}

func (b *BufferedEmitter) Flush(context.Context) error { return nil }

// HistoryFilter narrows GetHistoryWithFilter's results. Zero-value fields
// are unfiltered.
type HistoryFilter struct {
	ExecutorID string
	Kind       workflow.EventKind
}

// GetHistory returns a copy of every event recorded for runID, in emission
// order.
func (b *BufferedEmitter) GetHistory(runID string) []workflow.WorkflowEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	events := b.events[runID]
	out := make([]workflow.WorkflowEvent, len(events))
	copy(out, events)
	return out
}

// GetHistoryWithFilter is GetHistory narrowed by filter; all set fields
// must match (AND semantics).
func (b *BufferedEmitter) GetHistoryWithFilter(runID string, filter HistoryFilter) []workflow.WorkflowEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []workflow.WorkflowEvent
	for _, ev := range b.events[runID] {
		if filter.ExecutorID != "" && ev.ExecutorID != filter.ExecutorID {
			continue
		}
		if filter.Kind != "" && ev.Kind != filter.Kind {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Clear removes events for runID, or every run if runID is empty.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if runID == "" {
		b.events = make(map[string][]workflow.WorkflowEvent)
		return
	}
	delete(b.events, runID)
}

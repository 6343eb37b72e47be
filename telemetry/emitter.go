// Package telemetry provides pluggable observability backends for workflow
// runs: logging, in-memory history for tests, and OpenTelemetry tracing.
package telemetry

import (
	"context"

	"github.com/arborian/workflow"
)

// Emitter receives WorkflowEvents produced by a run. Implementations should
// be non-blocking and thread-safe: events may arrive concurrently from
// multiple executors within a single superstep.
type Emitter interface {
	// Emit sends a single event to the backend. Must not panic; errors
	// should be handled internally (logged, dropped, or buffered).
	Emit(ev workflow.WorkflowEvent)

	// EmitBatch sends multiple events in one operation, preserving order.
	EmitBatch(ctx context.Context, events []workflow.WorkflowEvent) error

	// Flush blocks until any buffered events have been delivered. Safe to
	// call more than once.
	Flush(ctx context.Context) error
}

// Drain reads every event off ch and forwards it to e, then calls
// e.Flush. It is the usual way to wire an Emitter to a Workflow's Run
// event channel.
func Drain(ctx context.Context, ch <-chan workflow.WorkflowEvent, e Emitter) error {
	for ev := range ch {
		e.Emit(ev)
	}
	return e.Flush(ctx)
}

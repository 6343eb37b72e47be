package telemetry

import (
	"context"

	"github.com/arborian/workflow"
)

// NullEmitter discards every event. Useful when observability overhead is
// unwanted, or as the default when no Emitter is configured.
type NullEmitter struct{}

// NewNullEmitter returns a NullEmitter.
func NewNullEmitter() *NullEmitter { return &NullEmitter{} }

func (n *NullEmitter) Emit(workflow.WorkflowEvent) {}

func (n *NullEmitter) EmitBatch(context.Context, []workflow.WorkflowEvent) error { return nil }

func (n *NullEmitter) Flush(context.Context) error { return nil }

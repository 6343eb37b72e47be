package telemetry

import (
	"context"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arborian/workflow"
)

// otelDiagnosticsEnvVar gates OTelEmitter span creation. The runtime checks
// it once at construction time: unset or any value that doesn't parse as
// true leaves the emitter a zero-cost no-op.
const otelDiagnosticsEnvVar = "WORKFLOW_ENABLE_OTEL_DIAGNOSTICS"

// OTelDiagnosticsEnabled reports the current value of
// WORKFLOW_ENABLE_OTEL_DIAGNOSTICS. Defaults to false if unset or
// unparsable.
func OTelDiagnosticsEnabled() bool {
	v, ok := os.LookupEnv(otelDiagnosticsEnvVar)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// OTelEmitter turns each WorkflowEvent into an immediately-ended span named
// after the event's Kind. When WORKFLOW_ENABLE_OTEL_DIAGNOSTICS is not set,
// every method is a no-op: constructing an OTelEmitter costs nothing in the
// common case.
type OTelEmitter struct {
	tracer  trace.Tracer
	enabled bool
}

// NewOTelEmitter returns an OTelEmitter using tracer. Enablement is
// snapshotted from WORKFLOW_ENABLE_OTEL_DIAGNOSTICS at construction time.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer, enabled: OTelDiagnosticsEnabled()}
}

func (o *OTelEmitter) Emit(ev workflow.WorkflowEvent) {
	if !o.enabled {
		return
	}
	_, span := o.tracer.Start(context.Background(), string(ev.Kind))
	o.annotate(span, ev)
	span.End()
}

func (o *OTelEmitter) EmitBatch(ctx context.Context, events []workflow.WorkflowEvent) error {
	if !o.enabled {
		return nil
	}
	for _, ev := range events {
		_, span := o.tracer.Start(ctx, string(ev.Kind))
		o.annotate(span, ev)
		span.End()
	}
	return nil
}

func (o *OTelEmitter) annotate(span trace.Span, ev workflow.WorkflowEvent) {
	span.SetAttributes(
		attribute.String("workflow.run_id", ev.RunID),
		attribute.String("workflow.executor_id", ev.ExecutorID),
	)
	if ev.State != "" {
		span.SetAttributes(attribute.String("workflow.state", string(ev.State)))
	}
	if ev.Error != nil {
		span.SetStatus(codes.Error, ev.Error.Message)
		span.SetAttributes(attribute.String("workflow.error_kind", ev.Error.Kind))
	}
	if ev.RequestType != "" {
		span.SetAttributes(
			attribute.String("workflow.request_id", ev.RequestID),
			attribute.String("workflow.request_type", ev.RequestType),
		)
	}
}

// Flush force-flushes the global tracer provider, if it supports it.
func (o *OTelEmitter) Flush(ctx context.Context) error {
	if !o.enabled {
		return nil
	}
	type flusher interface {
		ForceFlush(context.Context) error
	}
	if f, ok := otel.GetTracerProvider().(flusher); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arborian/workflow"
)

// LogEmitter writes events to an io.Writer, either as human-readable text
// (one line per event) or as JSONL.
type LogEmitter struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter returns a LogEmitter writing to writer. If writer is nil,
// os.Stdout is used.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{writer: writer, jsonMode: jsonMode}
}

func (l *LogEmitter) Emit(ev workflow.WorkflowEvent) {
	if l.jsonMode {
		l.emitJSON(ev)
		return
	}
	l.emitText(ev)
}

func (l *LogEmitter) emitJSON(ev workflow.WorkflowEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		_, _ = fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal event: %v\"}\n", err)
		return
	}
	_, _ = fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogEmitter) emitText(ev workflow.WorkflowEvent) {
	_, _ = fmt.Fprintf(l.writer, "[%s] run=%s", ev.Kind, ev.RunID)
	if ev.ExecutorID != "" {
		_, _ = fmt.Fprintf(l.writer, " executor=%s", ev.ExecutorID)
	}
	if ev.State != "" {
		_, _ = fmt.Fprintf(l.writer, " state=%s", ev.State)
	}
	if ev.Warning != "" {
		_, _ = fmt.Fprintf(l.writer, " warning=%q", ev.Warning)
	}
	if ev.Error != nil {
		_, _ = fmt.Fprintf(l.writer, " error=%q", ev.Error.Message)
	}
	_, _ = fmt.Fprint(l.writer, "\n")
}

func (l *LogEmitter) EmitBatch(_ context.Context, events []workflow.WorkflowEvent) error {
	for _, ev := range events {
		l.Emit(ev)
	}
	return nil
}

// Flush is a no-op: LogEmitter writes synchronously with no internal
// buffer. Wrap writer in a bufio.Writer and flush that directly if needed.
func (l *LogEmitter) Flush(context.Context) error { return nil }

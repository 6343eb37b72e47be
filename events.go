package workflow

// EventKind discriminates the event stream surface. Every event the core
// emits carries one of these as its Kind.
type EventKind string

const (
	EventWorkflowStarted    EventKind = "WorkflowStarted"
	EventWorkflowStatus     EventKind = "WorkflowStatus"
	EventWorkflowCompleted  EventKind = "WorkflowCompleted"
	EventWorkflowFailed     EventKind = "WorkflowFailed"
	EventWorkflowWarning    EventKind = "WorkflowWarning"
	EventExecutorInvoked    EventKind = "ExecutorInvoked"
	EventExecutorCompleted  EventKind = "ExecutorCompleted"
	EventExecutorFailed     EventKind = "ExecutorFailed"
	EventRequestInfo        EventKind = "RequestInfoEvent"
)

// RunState is the workflow run's coarse-grained state, carried by
// WorkflowStatus events.
type RunState string

const (
	RunStarted         RunState = "STARTED"
	RunInProgress      RunState = "IN_PROGRESS"
	RunWaitingForInput RunState = "WAITING_FOR_INPUT"
	RunCompleted       RunState = "COMPLETED"
	RunFailed          RunState = "FAILED"
	RunCancelled       RunState = "CANCELLED"
)

// ErrorDetails is structured failure information attached to
// ExecutorFailed and WorkflowFailed events. Carried forward from the
// original Python implementation's WorkflowErrorDetails, which the
// distilled spec flattened to a string — the structured form survives
// here because it costs nothing and the event consumer can still just
// print Message.
type ErrorDetails struct {
	Kind       string         // error class / taxonomy name, e.g. "HandlerError"
	Message    string         // stringified error
	Stack      string         // optional stack trace, empty if unavailable
	ExecutorID string         // executor id that produced the failure, if any
	Extra      map[string]any // free-form structured extras
}

// WorkflowEvent is the audit-trail unit yielded by a run's event stream.
// Exactly one of the Kind-specific fields is meaningful for any given
// event; which one is determined by Kind.
type WorkflowEvent struct {
	Kind EventKind

	// WorkflowStarted / general run identity.
	RunID         string
	StartExecutor string

	// WorkflowStatus.
	State RunState

	// WorkflowCompleted.
	Result  any
	IsError bool

	// WorkflowFailed / ExecutorFailed.
	Error *ErrorDetails

	// WorkflowWarning.
	Warning string

	// ExecutorInvoked / ExecutorCompleted / ExecutorFailed.
	ExecutorID string
	Input      any
	Output     any

	// RequestInfoEvent.
	RequestID         string
	SourceExecutorID  string
	RequestType       string
	RequestPayload    any
}

func workflowStarted(runID, startExecutor string) WorkflowEvent {
	return WorkflowEvent{Kind: EventWorkflowStarted, RunID: runID, StartExecutor: startExecutor}
}

func workflowStatus(runID string, state RunState) WorkflowEvent {
	return WorkflowEvent{Kind: EventWorkflowStatus, RunID: runID, State: state}
}

func workflowCompleted(runID string, result any, isError bool) WorkflowEvent {
	return WorkflowEvent{Kind: EventWorkflowCompleted, RunID: runID, Result: result, IsError: isError}
}

func workflowFailed(runID string, details *ErrorDetails) WorkflowEvent {
	return WorkflowEvent{Kind: EventWorkflowFailed, RunID: runID, Error: details}
}

func workflowWarning(runID, msg string) WorkflowEvent {
	return WorkflowEvent{Kind: EventWorkflowWarning, RunID: runID, Warning: msg}
}

func executorInvoked(runID, executorID string, input any) WorkflowEvent {
	return WorkflowEvent{Kind: EventExecutorInvoked, RunID: runID, ExecutorID: executorID, Input: input}
}

func executorCompleted(runID, executorID string, output any) WorkflowEvent {
	return WorkflowEvent{Kind: EventExecutorCompleted, RunID: runID, ExecutorID: executorID, Output: output}
}

func executorFailed(runID, executorID string, details *ErrorDetails) WorkflowEvent {
	return WorkflowEvent{Kind: EventExecutorFailed, RunID: runID, ExecutorID: executorID, Error: details}
}

func requestInfoEvent(runID, requestID, sourceExecutorID, requestType string, payload any) WorkflowEvent {
	return WorkflowEvent{
		Kind:             EventRequestInfo,
		RunID:            runID,
		RequestID:        requestID,
		SourceExecutorID: sourceExecutorID,
		RequestType:      requestType,
		RequestPayload:   payload,
	}
}

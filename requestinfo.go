package workflow

import "github.com/google/uuid"

// requestInfoExecutorID is the fixed, reserved id used as the source of the
// response messages that Resume injects. A RequestInfo message that no
// interceptor claims is not delivered to any executor; it is recorded as a
// pending request. The id cannot be used as a user-defined executor id;
// validateGraph rejects a build that tries.
const requestInfoExecutorID = "__request_info__"

// externalSourceID marks the synthetic source of a run's initial input
// message, which by construction carries an explicit target and therefore
// needs no edge group to be routed.
const externalSourceID = "__external__"

// RequestInfo is the payload an executor sends when it needs external input
// before it can continue. Delivering a RequestInfo message suspends the run
// (transitions it to RunWaitingForInput) unless some interceptor has
// claimed RequestType for the current sub-workflow scope, in which case it
// is routed to that interceptor instead of suspending.
type RequestInfo struct {
	RequestID        string
	SourceExecutorID string
	RequestType      string
	Payload          any
}

// NewRequestInfo builds a RequestInfo with a generated RequestID. Handlers
// call this, then ctx.SendMessage(the result) to suspend the run (or route
// to an interceptor) awaiting external input.
func NewRequestInfo(sourceExecutorID, requestType string, payload any) RequestInfo {
	return RequestInfo{
		RequestID:        uuid.NewString(),
		SourceExecutorID: sourceExecutorID,
		RequestType:      requestType,
		Payload:          payload,
	}
}

// InterceptorRegistration lets an executor claim a (RequestType,
// SubWorkflowScope) pair so that matching RequestInfo messages are routed
// to it instead of suspending the run. SubWorkflowScope is empty for the
// top-level workflow; validateGraph rejects two registrations claiming the same
// pair.
type InterceptorRegistration struct {
	ExecutorID       string
	RequestType      string
	SubWorkflowScope string
}

func (r InterceptorRegistration) key() string {
	return r.RequestType + "\x00" + r.SubWorkflowScope
}

// pendingRequest tracks one outstanding RequestInfo awaiting Resume.
type pendingRequest struct {
	requestID        string
	sourceExecutorID string
	requestType      string
	payload          any
}

package workflow

import (
	"fmt"
	"sync"
)

// defaultMaxIterations mirrors the original runner's convergence cap; it is
// the default a Builder starts with if SetMaxIterations is never called.
const defaultMaxIterations = 100

// driveToQuiescenceOrSuspend runs supersteps until the outbox is empty (the
// run converged), a RequestInfo suspends it waiting for input, a handler
// error fails it, or the iteration cap is exceeded. It always closes
// rs.events before returning, and clears w.running unless the run
// suspended (in which case w.current stays set for a later Resume).
func (w *Workflow) driveToQuiescenceOrSuspend(rs *runState) {
	defer close(rs.events)

	for rs.iteration < w.maxIterations {
		sources := rs.rc.DrainMessages()
		if w.metrics != nil {
			depth := 0
			for _, msgs := range sources {
				depth += len(msgs)
			}
			w.metrics.SetQueueDepth(depth)
		}
		if len(sources) == 0 {
			w.finishRun(rs, RunCompleted, rs.lastResult(), nil)
			return
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		var failure *HandlerError

		for sourceID, msgs := range sources {
			sourceID, msgs := sourceID, msgs
			wg.Add(1)
			go func() {
				defer wg.Done()
				recordFailure := func(herr *HandlerError) {
					if herr == nil {
						return
					}
					mu.Lock()
					if failure == nil {
						failure = herr
					}
					mu.Unlock()
				}

				// RequestInfo messages bypass edge-group routing entirely:
				// they are intercepted by the runtime (suspend, or an
				// interceptor claim) rather than delivered to a graph
				// neighbor.
				var rest []Message
				for _, m := range msgs {
					if ri, ok := m.Data.(RequestInfo); ok {
						recordFailure(w.deliverRequestInfo(rs, ri))
						continue
					}
					rest = append(rest, m)
				}
				msgs = rest

				groups := w.groupsBySource[sourceID]
				if len(groups) == 0 {
					// No edge group claims this source. Messages with an
					// explicit target (the initial input, and responses
					// injected by Resume) are delivered directly; anything
					// else has no route and is dropped with a warning.
					for _, m := range msgs {
						if m.TargetID == "" {
							rs.rc.AddEvent(workflowWarning(rs.runID, fmt.Sprintf("message from %q has no route and no explicit target", sourceID)))
							continue
						}
						recordFailure(w.deliverOne(rs, sourceID, m.TargetID, m.Data))
					}
					return
				}

				for _, g := range groups {
					g.deliver(sourceID, msgs, func(targetID string, data any) {
						recordFailure(w.deliverOne(rs, sourceID, targetID, data))
					})
				}
			}()
		}
		wg.Wait()

		for _, ev := range rs.rc.DrainEvents() {
			rs.events <- ev
		}

		if failure != nil {
			details := errorDetailsFromHandlerError(failure.ExecutorID, failure.Cause)
			rs.events <- executorFailed(rs.runID, failure.ExecutorID, details)
			w.finishRun(rs, RunFailed, nil, failure)
			rs.events <- workflowStatus(rs.runID, RunFailed)
			rs.events <- workflowFailed(rs.runID, details)
			return
		}

		rs.iteration++
		rs.pendingMu.Lock()
		pendingCount := len(rs.pending)
		rs.pendingMu.Unlock()
		if w.metrics != nil {
			w.metrics.RecordSuperstep(rs.runID)
			w.metrics.SetRequestInfoPending(pendingCount)
		}

		if pendingCount > 0 && !rs.rc.HasMessages() {
			w.mu.Lock()
			rs.status = RunWaitingForInput
			w.mu.Unlock()
			rs.events <- workflowStatus(rs.runID, RunWaitingForInput)
			return
		}
	}

	cerr := &ConvergenceError{Iterations: rs.iteration}
	w.finishRun(rs, RunFailed, nil, cerr)
	rs.events <- workflowStatus(rs.runID, RunFailed)
	rs.events <- workflowFailed(rs.runID, &ErrorDetails{Kind: "ConvergenceError", Message: cerr.Error()})
}

// deliverOne routes one piece of data to targetID. Dispatch failures
// degrade to a warning rather than failing the run, per the propagation
// policy for DispatchError; RequestInfo payloads never reach this function,
// they are intercepted earlier in the superstep loop.
func (w *Workflow) deliverOne(rs *runState, sourceID, targetID string, data any) *HandlerError {
	ex, ok := w.executors[targetID]
	if !ok {
		rs.rc.AddEvent(workflowWarning(rs.runID, fmt.Sprintf("message routed to unknown executor %q", targetID)))
		return nil
	}

	hctx := newHandlerContext(targetID, rs.runID, rs.rc, rs.shared)
	rs.rc.AddEvent(executorInvoked(rs.runID, targetID, data))
	if w.metrics != nil {
		w.metrics.RecordExecutorInvoked(rs.runID, targetID)
	}

	err := ex.dispatch(hctx, data)
	if err == nil {
		rs.rc.AddEvent(executorCompleted(rs.runID, targetID, nil))
		return nil
	}

	var herr *HandlerError
	if asHandlerError(err, &herr) {
		if w.metrics != nil {
			w.metrics.RecordExecutorFailure(rs.runID, targetID)
		}
		return herr
	}
	if derr, ok := err.(*DispatchError); ok {
		rs.rc.AddEvent(workflowWarning(rs.runID, derr.Error()))
		return nil
	}
	return &HandlerError{ExecutorID: targetID, Cause: err}
}

func asHandlerError(err error, out **HandlerError) bool {
	if herr, ok := err.(*HandlerError); ok {
		*out = herr
		return true
	}
	return false
}

// deliverRequestInfo routes a RequestInfo message: if an interceptor has
// claimed its RequestType, it is delivered to the interceptor like any
// other message; otherwise the request becomes pending and the run
// eventually suspends once no other messages remain.
func (w *Workflow) deliverRequestInfo(rs *runState, ri RequestInfo) *HandlerError {
	reg, claimed := w.interceptors[InterceptorRegistration{RequestType: ri.RequestType}.key()]
	if claimed {
		return w.deliverOne(rs, ri.SourceExecutorID, reg.ExecutorID, ri.Payload)
	}

	rs.pendingMu.Lock()
	rs.pending[ri.RequestID] = pendingRequest{
		requestID:        ri.RequestID,
		sourceExecutorID: ri.SourceExecutorID,
		requestType:      ri.RequestType,
		payload:          ri.Payload,
	}
	rs.pendingMu.Unlock()
	rs.rc.AddEvent(requestInfoEvent(rs.runID, ri.RequestID, ri.SourceExecutorID, ri.RequestType, ri.Payload))
	return nil
}

// lastResult is a placeholder for surfacing a terminal value; the CORE
// treats the final shared-state snapshot as the run's result since there is
// no single designated "return" executor in the graph model.
func (rs *runState) lastResult() any {
	return rs.shared.Snapshot()
}

// finishRun records the terminal status and clears w.running so a new Run
// may start. For RunCompleted it also emits the WorkflowStatus(COMPLETED)
// and WorkflowCompleted events; for any other status it emits nothing and
// callers emit the terminal events themselves.
func (w *Workflow) finishRun(rs *runState, status RunState, result any, err error) {
	w.mu.Lock()
	rs.status = status
	rs.result = result
	rs.finalErr = err
	w.running = false
	w.mu.Unlock()
	if status == RunCompleted {
		rs.events <- workflowStatus(rs.runID, RunCompleted)
		rs.events <- workflowCompleted(rs.runID, result, false)
	}
}

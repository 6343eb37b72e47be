package workflow

import "sync"

// deliverFunc hands one piece of data to one target executor. The
// scheduler supplies the concrete implementation; edgeRunners never know
// about executors directly.
type deliverFunc func(targetID string, data any)

// edgeRunner is the built, stateful counterpart of an EdgeGroup. Unlike
// EdgeGroup (a plain description), an edgeRunner may carry buffering state
// across supersteps, which is why a FanIn group needs one rather than a
// pure function over its EdgeGroup value.
type edgeRunner interface {
	// deliver routes msgs, all produced by sourceID in the current
	// superstep, through this group. It calls deliver for each message
	// that should be forwarded this superstep (zero calls if the group is
	// still buffering, as FanIn does until every source has contributed).
	deliver(sourceID string, msgs []Message, deliverFn deliverFunc)
}

func newEdgeRunner(g EdgeGroup) edgeRunner {
	switch g.Kind {
	case GroupSingle:
		return &singleEdgeRunner{group: g}
	case GroupFanOut:
		return &fanOutEdgeRunner{group: g}
	case GroupFanIn:
		return &fanInEdgeRunner{group: g, buffer: make(map[string][]Message)}
	case GroupSwitchCase:
		return &switchCaseEdgeRunner{group: g}
	default:
		return &singleEdgeRunner{group: g}
	}
}

// singleEdgeRunner forwards every message to the group's one target.
type singleEdgeRunner struct {
	group EdgeGroup
}

func (r *singleEdgeRunner) deliver(sourceID string, msgs []Message, deliverFn deliverFunc) {
	if len(r.group.Edges) == 0 {
		return
	}
	target := r.group.Edges[0].To
	for _, m := range msgs {
		if m.TargetID != "" && m.TargetID != target {
			continue
		}
		deliverFn(target, m.Data)
	}
}

// fanOutEdgeRunner delivers each message to a subset of targets chosen by
// Select, or to every target if Select is nil (broadcast).
type fanOutEdgeRunner struct {
	group EdgeGroup
}

func (r *fanOutEdgeRunner) deliver(sourceID string, msgs []Message, deliverFn deliverFunc) {
	targets := r.group.targetIDs()
	for _, m := range msgs {
		if m.TargetID != "" {
			if containsID(targets, m.TargetID) {
				deliverFn(m.TargetID, m.Data)
			}
			continue
		}
		selected := targets
		if r.group.Select != nil {
			selected = r.group.Select(m.Data, targets)
		}
		for _, t := range selected {
			deliverFn(t, m.Data)
		}
	}
}

// switchCaseEdgeRunner routes each message to exactly the first branch
// (edge) whose predicate accepts the message's data.
type switchCaseEdgeRunner struct {
	group EdgeGroup
}

func (r *switchCaseEdgeRunner) deliver(sourceID string, msgs []Message, deliverFn deliverFunc) {
	targets := r.group.targetIDs()
	for _, m := range msgs {
		if m.TargetID != "" {
			if containsID(targets, m.TargetID) {
				deliverFn(m.TargetID, m.Data)
			}
			continue
		}
		for _, e := range r.group.Edges {
			if e.When == nil || e.When(m.Data) {
				deliverFn(e.To, m.Data)
				break
			}
		}
	}
}

// fanInEdgeRunner buffers messages per source until every declared source
// has contributed at least one message, then delivers the aggregated
// payload (a single []any, in declared-source order) to the group's target
// and clears its buffer.
type fanInEdgeRunner struct {
	group EdgeGroup
	mu    sync.Mutex
	buffer map[string][]Message
}

func (r *fanInEdgeRunner) deliver(sourceID string, msgs []Message, deliverFn deliverFunc) {
	var target string
	if len(r.group.Edges) > 0 {
		target = r.group.Edges[0].To
	}
	var accepted []Message
	for _, m := range msgs {
		if m.TargetID == "" || m.TargetID == target {
			accepted = append(accepted, m)
		}
	}
	if len(accepted) == 0 {
		return
	}
	r.mu.Lock()
	r.buffer[sourceID] = append(r.buffer[sourceID], accepted...)
	ready := r.isReady()
	var aggregated []any
	if ready {
		aggregated = r.drainAggregate()
	}
	r.mu.Unlock()

	if ready && target != "" {
		deliverFn(target, aggregated)
	}
}

// isReady reports whether every declared source has buffered at least one
// message. Caller must hold r.mu.
func (r *fanInEdgeRunner) isReady() bool {
	for _, s := range r.group.sourceIDs() {
		if len(r.buffer[s]) == 0 {
			return false
		}
	}
	return true
}

// drainAggregate flattens the buffer in declared-source order and resets
// it. Caller must hold r.mu.
func (r *fanInEdgeRunner) drainAggregate() []any {
	var out []any
	for _, s := range r.group.sourceIDs() {
		for _, m := range r.buffer[s] {
			out = append(out, m.Data)
		}
	}
	r.buffer = make(map[string][]Message)
	return out
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

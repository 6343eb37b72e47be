package workflow

import (
	"fmt"
	"reflect"
)

// validateGraph runs every build-time check against b's accumulated state.
// It is the workflow's single validator (see design notes): there is no
// second, dynamic structural validator at run time, only Executor.CanHandle
// at dispatch.
func validateGraph(b *Builder) *ValidationErrors {
	verrs := &ValidationErrors{}

	checkStartExecutor(b, verrs)
	checkEdgeDuplication(b, verrs)
	checkReachability(b, verrs)
	checkIsolation(b, verrs)
	checkHandlerOutputShape(b, verrs)
	checkTypeCompatibility(b, verrs)
	checkSelfLoops(b, verrs)
	checkHandlerAmbiguity(b, verrs)
	checkDeadEnds(b, verrs)
	checkCycles(b, verrs)
	checkInterceptorConflicts(b, verrs)
	checkReservedIDs(b, verrs)
	checkSwitchCaseDefault(b, verrs)

	return verrs
}

func addErr(verrs *ValidationErrors, code ValidationCode, executorID, msg string, args ...any) {
	verrs.Errors = append(verrs.Errors, &ValidationError{
		Code:       code,
		ExecutorID: executorID,
		Message:    fmt.Sprintf(msg, args...),
	})
}

func addWarn(verrs *ValidationErrors, msg string, args ...any) {
	verrs.Warnings = append(verrs.Warnings, fmt.Sprintf(msg, args...))
}

// checkStartExecutor requires that a start executor was set and that it
// names a registered executor.
func checkStartExecutor(b *Builder, verrs *ValidationErrors) {
	if b.startExecutorID == "" {
		addErr(verrs, CodeStartExecutorMissing, "", "no start executor set")
		return
	}
	if _, ok := b.executors[b.startExecutorID]; !ok {
		addErr(verrs, CodeStartExecutorMissing, b.startExecutorID, "start executor %q is not a registered executor", b.startExecutorID)
	}
}

// checkEdgeDuplication rejects two edges with the same (From, To) pair
// appearing across any groups, which would make fan-out/fan-in delivery
// order ambiguous.
func checkEdgeDuplication(b *Builder, verrs *ValidationErrors) {
	seen := make(map[string]bool)
	for _, g := range b.groups {
		for _, e := range g.Edges {
			key := e.From + "\x00" + e.To
			if seen[key] {
				addErr(verrs, CodeEdgeDuplication, e.From, "duplicate edge %s -> %s", e.From, e.To)
				continue
			}
			seen[key] = true
		}
	}
}

// checkReachability flags executors that cannot be reached by any
// path from the start executor. This is reported as an error: an
// unreachable executor can never execute, which is almost certainly a
// graph-authoring mistake.
func checkReachability(b *Builder, verrs *ValidationErrors) {
	if b.startExecutorID == "" {
		return
	}
	adj := buildAdjacency(b)
	visited := map[string]bool{b.startExecutorID: true}
	queue := []string{b.startExecutorID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	for id := range b.executors {
		if !visited[id] {
			addErr(verrs, CodeUnreachableExecutor, id, "executor %q is not reachable from start executor %q", id, b.startExecutorID)
		}
	}
}

// checkIsolation flags executors with neither incoming nor outgoing edges
// (excluding the start executor, which legitimately may have no incoming
// edges).
func checkIsolation(b *Builder, verrs *ValidationErrors) {
	hasEdge := make(map[string]bool)
	for _, g := range b.groups {
		for _, e := range g.Edges {
			hasEdge[e.From] = true
			hasEdge[e.To] = true
		}
	}
	for id := range b.executors {
		if id == b.startExecutorID {
			continue
		}
		if !hasEdge[id] {
			addErr(verrs, CodeIsolatedExecutor, id, "executor %q has no edges", id)
		}
	}
}

// checkHandlerOutputShape requires every registered executor to have at
// least one handler, and every handler's declared output-type envelope to be
// one of the shapes §3 allows: none, a single concrete type, a union, or
// any. A KindGeneric (or otherwise malformed) output envelope is meaningless
// as an output declaration — generic container matching only makes sense on
// the input side, where a fan-in target accepts an aggregated slice.
func checkHandlerOutputShape(b *Builder, verrs *ValidationErrors) {
	for id, ex := range b.executors {
		outputs := ex.handlerOutputTypes()
		if len(outputs) == 0 {
			addErr(verrs, CodeHandlerOutputShape, id, "executor %q has no registered handlers", id)
			continue
		}
		for i, out := range outputs {
			switch out.Kind {
			case KindNone, KindExact, KindUnion, KindAny:
				// valid T_out envelope
			default:
				addErr(verrs, CodeHandlerOutputShape, id,
					"executor %q handler %d declares an invalid output-type envelope (must be none, a single type, a union, or any)", id, i)
			}
		}
	}
}

// checkTypeCompatibility verifies that for every edge s -> t, some output
// type of s is a subtype of some input type of t. For fan-in edges the
// source's output is wrapped in a slice before the check, since the fan-in
// runner always delivers an aggregated list to the target (§4.6).
func checkTypeCompatibility(b *Builder, verrs *ValidationErrors) {
	for _, g := range b.groups {
		for _, e := range g.Edges {
			from, ok := b.executors[e.From]
			if !ok {
				continue
			}
			to, ok := b.executors[e.To]
			if !ok {
				continue
			}

			ins := to.handlerInputTypes()
			compatible := false
			for _, out := range from.handlerOutputTypes() {
				if g.Kind == GroupFanIn {
					out = SliceOf(out)
				}
				for _, in := range ins {
					if out.isSubtypeOf(in) {
						compatible = true
						break
					}
				}
				if compatible {
					break
				}
			}
			if !compatible {
				addErr(verrs, CodeTypeCompatibility, e.From,
					"no output type of %q is a subtype of any input type of %q (edge %s -> %s)",
					e.From, e.To, e.From, e.To)
			}
		}
	}
}

// checkSelfLoops warns (does not error) about edges where From == To.
func checkSelfLoops(b *Builder, verrs *ValidationErrors) {
	for _, g := range b.groups {
		for _, e := range g.Edges {
			if e.From == e.To {
				addWarn(verrs, "self-loop on executor %q", e.From)
			}
		}
	}
}

// checkHandlerAmbiguity warns when a single executor registers two
// handlers whose input types overlap, since dispatch order then depends on
// registration order rather than an unambiguous type match.
func checkHandlerAmbiguity(b *Builder, verrs *ValidationErrors) {
	for id, ex := range b.executors {
		types := ex.handlerInputTypes()
		for i := 0; i < len(types); i++ {
			for j := i + 1; j < len(types); j++ {
				if types[i].overlaps(types[j]) {
					addWarn(verrs, "executor %q has overlapping handler input types (positions %d and %d)", id, i, j)
				}
			}
		}
	}
}

// checkDeadEnds reports (informationally, as a warning) executors with no
// outgoing edges, which is valid (a terminal executor) but worth
// surfacing.
func checkDeadEnds(b *Builder, verrs *ValidationErrors) {
	hasOutgoing := make(map[string]bool)
	for _, g := range b.groups {
		for _, e := range g.Edges {
			hasOutgoing[e.From] = true
		}
	}
	for id := range b.executors {
		if !hasOutgoing[id] {
			addWarn(verrs, "executor %q has no outgoing edges (terminal)", id)
		}
	}
}

// checkCycles warns (via DFS back-edge detection) when the graph contains a
// cycle. Cycles are legal (the superstep model supports iterative
// workflows) but worth flagging since they interact with MaxIterations.
func checkCycles(b *Builder, verrs *ValidationErrors) {
	adj := buildAdjacency(b)
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, next := range adj[id] {
			switch color[next] {
			case gray:
				addWarn(verrs, "cycle detected through executor %q", id)
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}
	for id := range b.executors {
		if color[id] == white {
			visit(id)
		}
	}
}

// checkSwitchCaseDefault enforces that a SwitchCase group contains exactly
// one DefaultBranch predicate and that it is the last branch: evaluation
// proceeds in declared order, so a non-terminal default would shadow every
// case after it. Predicate values aren't comparable with ==, so identity is
// checked via the underlying function pointer, the same trick used to
// compare function values in table-driven tests elsewhere.
func checkSwitchCaseDefault(b *Builder, verrs *ValidationErrors) {
	defaultPtr := reflect.ValueOf(DefaultBranch).Pointer()
	for _, g := range b.groups {
		if g.Kind != GroupSwitchCase || len(g.Edges) == 0 {
			continue
		}
		from := g.Edges[0].From
		defaultCount, lastDefaultIdx := 0, -1
		for i, e := range g.Edges {
			if e.When != nil && reflect.ValueOf(e.When).Pointer() == defaultPtr {
				defaultCount++
				lastDefaultIdx = i
			}
		}
		switch {
		case defaultCount == 0:
			addErr(verrs, CodeSwitchCaseDefault, from, "switch-case group from %q has no DefaultBranch", from)
		case defaultCount > 1:
			addErr(verrs, CodeSwitchCaseDefault, from, "switch-case group from %q declares more than one DefaultBranch", from)
		case lastDefaultIdx != len(g.Edges)-1:
			addErr(verrs, CodeSwitchCaseDefault, from, "switch-case group from %q: DefaultBranch must be the last branch", from)
		}
	}
}

// checkInterceptorConflicts errors if two interceptors claim the same
// (RequestType, SubWorkflowScope) pair.
func checkInterceptorConflicts(b *Builder, verrs *ValidationErrors) {
	seen := make(map[string]string)
	for _, reg := range b.interceptors {
		if owner, ok := seen[reg.key()]; ok {
			addErr(verrs, CodeInterceptorConflict, reg.ExecutorID,
				"interceptors %q and %q both claim request type %q in scope %q",
				owner, reg.ExecutorID, reg.RequestType, reg.SubWorkflowScope)
			continue
		}
		seen[reg.key()] = reg.ExecutorID
	}
}

// checkReservedIDs rejects user executors that collide with the reserved
// RequestInfo routing id.
func checkReservedIDs(b *Builder, verrs *ValidationErrors) {
	if _, ok := b.executors[requestInfoExecutorID]; ok {
		addErr(verrs, CodeHandlerOutputShape, requestInfoExecutorID, "executor id %q is reserved", requestInfoExecutorID)
	}
}

func buildAdjacency(b *Builder) map[string][]string {
	adj := make(map[string][]string)
	for _, g := range b.groups {
		for _, e := range g.Edges {
			adj[e.From] = append(adj[e.From], e.To)
		}
	}
	return adj
}

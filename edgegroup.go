package workflow

// SelectionFunc narrows a FanOut group's targets for a given message. It
// receives the message data and the full list of candidate target ids and
// returns the subset to deliver to. A nil SelectionFunc means broadcast to
// every target.
type SelectionFunc func(data any, targetIDs []string) []string

// EdgeGroupKind discriminates the four routing variants a group of edges
// sharing one or more source executors can implement.
type EdgeGroupKind int

const (
	GroupSingle EdgeGroupKind = iota
	GroupFanOut
	GroupFanIn
	GroupSwitchCase
)

// EdgeGroup is a set of edges that share a routing strategy. Exactly one
// EdgeRunner is built per group at Builder.Build time; the runner is what
// the scheduler actually invokes.
type EdgeGroup struct {
	Kind EdgeGroupKind
	Edges []Edge

	// Select is consulted only for GroupFanOut.
	Select SelectionFunc
}

// Single returns a group with exactly one edge, delivered unconditionally.
func Single(from, to string) EdgeGroup {
	return EdgeGroup{Kind: GroupSingle, Edges: []Edge{NewEdge(from, to)}}
}

// FanOut returns a group that delivers a single source's messages to one or
// more targets. If selectFn is nil, every target receives the message
// (broadcast); otherwise selectFn narrows the target list per message.
func FanOut(from string, targetIDs []string, selectFn SelectionFunc) EdgeGroup {
	edges := make([]Edge, len(targetIDs))
	for i, t := range targetIDs {
		edges[i] = NewEdge(from, t)
	}
	return EdgeGroup{Kind: GroupFanOut, Edges: edges, Select: selectFn}
}

// FanIn returns a group that buffers messages from multiple sources until
// every source has contributed at least one message, in the same or in
// different supersteps, then delivers the aggregated payload (a slice, in
// declared-source order) to a single target.
func FanIn(sourceIDs []string, to string) EdgeGroup {
	edges := make([]Edge, len(sourceIDs))
	for i, s := range sourceIDs {
		edges[i] = NewEdge(s, to)
	}
	return EdgeGroup{Kind: GroupFanIn, Edges: edges}
}

// SwitchCaseBranch is one ordered predicate/target pair in a SwitchCase
// group. The group must contain exactly one branch whose predicate is
// DefaultBranch, and it must be last; validateGraph enforces both.
type SwitchCaseBranch struct {
	To   string
	When Predicate
}

// DefaultBranch marks a SwitchCase branch as the catch-all default.
func DefaultBranch(any) bool { return true }

// SwitchCase returns a group that routes each message to exactly the first
// branch whose predicate matches, evaluated in the given order.
func SwitchCase(from string, branches []SwitchCaseBranch) EdgeGroup {
	edges := make([]Edge, len(branches))
	for i, b := range branches {
		edges[i] = NewConditionalEdge(from, b.To, b.When)
	}
	return EdgeGroup{Kind: GroupSwitchCase, Edges: edges}
}

// sourceIDs returns the distinct source executor ids participating in this
// group, in first-appearance order.
func (g EdgeGroup) sourceIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range g.Edges {
		if !seen[e.From] {
			seen[e.From] = true
			out = append(out, e.From)
		}
	}
	return out
}

// targetIDs returns the distinct target executor ids participating in this
// group, in first-appearance order.
func (g EdgeGroup) targetIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range g.Edges {
		if !seen[e.To] {
			seen[e.To] = true
			out = append(out, e.To)
		}
	}
	return out
}

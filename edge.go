package workflow

// Predicate gates whether an edge routes a message's data.
type Predicate func(data any) bool

// AlwaysRoute is the default predicate used by edges that don't need
// conditional routing.
func AlwaysRoute(any) bool { return true }

// Edge connects one source executor to one target executor. When is
// consulted only by SwitchCase edge groups; Single and FanOut groups ignore
// it and always route (FanOut additionally narrows via its selection
// function).
type Edge struct {
	From string
	To   string
	When Predicate
}

// NewEdge returns an Edge with the default always-route predicate.
func NewEdge(from, to string) Edge {
	return Edge{From: from, To: to, When: AlwaysRoute}
}

// NewConditionalEdge returns an Edge gated by when.
func NewConditionalEdge(from, to string, when Predicate) Edge {
	return Edge{From: from, To: to, When: when}
}

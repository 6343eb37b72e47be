package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func noop(*HandlerContext, any) error { return nil }

func TestBuildRejectsMissingStartExecutor(t *testing.T) {
	a := NewExecutor("a").Handle(Any(), Any(), noop)
	_, err := NewBuilder().AddExecutor(a).Build()
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.HasErrors())
}

func TestBuildRejectsDuplicateEdges(t *testing.T) {
	a := NewExecutor("a").Handle(Any(), Any(), noop)
	b := NewExecutor("b").Handle(Any(), Any(), noop)
	_, err := NewBuilder().
		AddExecutor(a).AddExecutor(b).
		SetStartExecutor("a").
		AddEdge("a", "b").
		AddEdge("a", "b").
		Build()
	require.Error(t, err)
}

func TestBuildRejectsUnreachableExecutor(t *testing.T) {
	a := NewExecutor("a").Handle(Any(), Any(), noop)
	orphan := NewExecutor("orphan").Handle(Any(), Any(), noop)
	_, err := NewBuilder().
		AddExecutor(a).AddExecutor(orphan).
		SetStartExecutor("a").
		Build()
	require.Error(t, err)
}

func TestBuildRejectsExecutorWithNoHandlers(t *testing.T) {
	a := NewExecutor("a")
	_, err := NewBuilder().AddExecutor(a).SetStartExecutor("a").Build()
	require.Error(t, err)
}

func TestBuildRejectsFanInTargetMissingSlicePayloadHandler(t *testing.T) {
	start := NewExecutor("start").Handle(Any(), Any(), noop)
	left := NewExecutor("left").Handle(Any(), Any(), noop)
	right := NewExecutor("right").Handle(Any(), Any(), noop)
	join := NewExecutor("join").Handle(Exact(""), None(), noop) // wrong: doesn't accept a slice

	_, err := NewBuilder().
		AddExecutor(start).AddExecutor(left).AddExecutor(right).AddExecutor(join).
		SetStartExecutor("start").
		AddFanOut("start", []string{"left", "right"}, nil).
		AddFanIn([]string{"left", "right"}, "join").
		Build()
	require.Error(t, err)
}

func TestBuildRejectsConflictingInterceptors(t *testing.T) {
	a := NewExecutor("a").Handle(Any(), Any(), noop)
	other := NewExecutor("other").Handle(Any(), Any(), noop)
	_, err := NewBuilder().
		AddExecutor(a).AddExecutor(other).
		SetStartExecutor("a").
		AddEdge("a", "other").
		AddInterceptor("a", "confirm", "").
		AddInterceptor("other", "confirm", "").
		Build()
	require.Error(t, err)
}

func TestBuildRejectsReservedExecutorID(t *testing.T) {
	reserved := NewExecutor(requestInfoExecutorID).Handle(Any(), Any(), noop)
	_, err := NewBuilder().
		AddExecutor(reserved).
		SetStartExecutor(requestInfoExecutorID).
		Build()
	require.Error(t, err)
}

func TestBuildAcceptsIsolatedStartExecutor(t *testing.T) {
	a := NewExecutor("a").Handle(Any(), Any(), noop)
	wf, err := NewBuilder().AddExecutor(a).SetStartExecutor("a").Build()
	require.NoError(t, err)
	require.Equal(t, "a", wf.StartExecutorID())
}

func TestBuildWarnsButSucceedsOnCyclesAndSelfLoops(t *testing.T) {
	a := NewExecutor("a").Handle(Exact(0), Exact(0), noop)
	wf, err := NewBuilder().
		AddExecutor(a).
		SetStartExecutor("a").
		AddEdge("a", "a").
		SetMaxIterations(3).
		Build()
	require.NoError(t, err)
	require.NotNil(t, wf)
}

func TestBuildRejectsInvalidOutputEnvelope(t *testing.T) {
	a := NewExecutor("a").Handle(Any(), SliceOf(Any()), noop)
	b := NewExecutor("b").Handle(Any(), Any(), noop)
	_, err := NewBuilder().
		AddExecutor(a).AddExecutor(b).
		SetStartExecutor("a").
		AddEdge("a", "b").
		Build()
	require.Error(t, err)
}

func TestBuildRejectsIncompatibleEdgeTypes(t *testing.T) {
	a := NewExecutor("a").Handle(Any(), Exact(0), noop)
	b := NewExecutor("b").Handle(Exact(""), None(), noop) // only accepts strings, a sends ints
	_, err := NewBuilder().
		AddExecutor(a).AddExecutor(b).
		SetStartExecutor("a").
		AddEdge("a", "b").
		Build()
	require.Error(t, err)
}

func TestBuildAcceptsCompatibleEdgeTypes(t *testing.T) {
	a := NewExecutor("a").Handle(Any(), Exact(0), noop)
	b := NewExecutor("b").Handle(Exact(0), None(), noop)
	wf, err := NewBuilder().
		AddExecutor(a).AddExecutor(b).
		SetStartExecutor("a").
		AddEdge("a", "b").
		Build()
	require.NoError(t, err)
	require.NotNil(t, wf)
}

func TestBuildRejectsSwitchCaseWithoutDefault(t *testing.T) {
	start := NewExecutor("start").Handle(Exact(0), Exact(0), noop)
	small := NewExecutor("small").Handle(Exact(0), None(), noop)
	_, err := NewBuilder().
		AddExecutor(start).AddExecutor(small).
		SetStartExecutor("start").
		AddSwitchCase("start", []SwitchCaseBranch{
			{To: "small", When: func(data any) bool { return data.(int) < 10 }},
		}).
		Build()
	require.Error(t, err)
}

func TestBuildRejectsSwitchCaseWithDefaultNotLast(t *testing.T) {
	start := NewExecutor("start").Handle(Exact(0), Exact(0), noop)
	small := NewExecutor("small").Handle(Exact(0), None(), noop)
	big := NewExecutor("big").Handle(Exact(0), None(), noop)
	_, err := NewBuilder().
		AddExecutor(start).AddExecutor(small).AddExecutor(big).
		SetStartExecutor("start").
		AddSwitchCase("start", []SwitchCaseBranch{
			{To: "big", When: DefaultBranch},
			{To: "small", When: func(data any) bool { return data.(int) < 10 }},
		}).
		Build()
	require.Error(t, err)
}

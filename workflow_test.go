package workflow

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChainDeliversInOrder(t *testing.T) {
	var order []string

	a := NewExecutor("a").Handle(Exact(""), Exact(""), func(ctx *HandlerContext, data any) error {
		order = append(order, "a")
		ctx.SendMessage(data)
		return nil
	})
	b := NewExecutor("b").Handle(Exact(""), Exact(""), func(ctx *HandlerContext, data any) error {
		order = append(order, "b")
		ctx.SendMessage(data)
		return nil
	})
	c := NewExecutor("c").Handle(Exact(""), None(), func(ctx *HandlerContext, data any) error {
		order = append(order, "c")
		ctx.SharedState().Set("done", data)
		return nil
	})

	wf, err := NewBuilder().
		AddExecutor(a).AddExecutor(b).AddExecutor(c).
		SetStartExecutor("a").
		AddChain("a", "b", "c").
		Build()
	require.NoError(t, err)

	result, err := wf.RunToCompletion("hello")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, order)
	require.Equal(t, "hello", result.(map[string]any)["done"])
}

func TestFanOutBroadcastsToEveryTarget(t *testing.T) {
	var mu countingSet

	start := NewExecutor("start").Handle(Exact(""), Exact(""), func(ctx *HandlerContext, data any) error {
		ctx.SendMessage(data)
		return nil
	})
	left := NewExecutor("left").Handle(Exact(""), None(), func(ctx *HandlerContext, data any) error {
		mu.add("left")
		return nil
	})
	right := NewExecutor("right").Handle(Exact(""), None(), func(ctx *HandlerContext, data any) error {
		mu.add("right")
		return nil
	})

	wf, err := NewBuilder().
		AddExecutor(start).AddExecutor(left).AddExecutor(right).
		SetStartExecutor("start").
		AddFanOut("start", []string{"left", "right"}, nil).
		Build()
	require.NoError(t, err)

	_, err = wf.RunToCompletion("x")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"left", "right"}, mu.items())
}

func TestFanInWaitsForEverySource(t *testing.T) {
	start := NewExecutor("start").Handle(Exact(""), Exact(""), func(ctx *HandlerContext, data any) error {
		ctx.SendMessageTo("left", data)
		ctx.SendMessageTo("right", data)
		return nil
	})
	left := NewExecutor("left").Handle(Exact(""), Exact(""), func(ctx *HandlerContext, data any) error {
		ctx.SendMessage("from-left")
		return nil
	})
	right := NewExecutor("right").Handle(Exact(""), Exact(""), func(ctx *HandlerContext, data any) error {
		ctx.SendMessage("from-right")
		return nil
	})
	var aggregated []any
	join := NewExecutor("join").Handle(SliceOf(Any()), None(), func(ctx *HandlerContext, data any) error {
		aggregated = data.([]any)
		ctx.SharedState().Set("joined", true)
		return nil
	})

	wf, err := NewBuilder().
		AddExecutor(start).AddExecutor(left).AddExecutor(right).AddExecutor(join).
		SetStartExecutor("start").
		AddFanOut("start", []string{"left", "right"}, func(data any, targets []string) []string { return targets }).
		AddFanIn([]string{"left", "right"}, "join").
		Build()
	require.NoError(t, err)

	_, err = wf.RunToCompletion("go")
	require.NoError(t, err)
	require.ElementsMatch(t, []any{"from-left", "from-right"}, aggregated)
}

func TestSwitchCaseRoutesFirstMatch(t *testing.T) {
	var routed string

	start := NewExecutor("start").Handle(Exact(0), Exact(0), func(ctx *HandlerContext, data any) error {
		ctx.SendMessage(data)
		return nil
	})
	small := NewExecutor("small").Handle(Exact(0), None(), func(ctx *HandlerContext, data any) error {
		routed = "small"
		return nil
	})
	big := NewExecutor("big").Handle(Exact(0), None(), func(ctx *HandlerContext, data any) error {
		routed = "big"
		return nil
	})

	wf, err := NewBuilder().
		AddExecutor(start).AddExecutor(small).AddExecutor(big).
		SetStartExecutor("start").
		AddSwitchCase("start", []SwitchCaseBranch{
			{To: "small", When: func(data any) bool { return data.(int) < 10 }},
			{To: "big", When: DefaultBranch},
		}).
		Build()
	require.NoError(t, err)

	_, err = wf.RunToCompletion(3)
	require.NoError(t, err)
	require.Equal(t, "small", routed)

	routed = ""
	_, err = wf.RunToCompletion(30)
	require.NoError(t, err)
	require.Equal(t, "big", routed)
}

func TestRequestInfoSuspendsAndResumes(t *testing.T) {
	asker := NewExecutor("asker").Handle(Exact(""), Exact(RequestInfo{}), func(ctx *HandlerContext, data any) error {
		ctx.SendMessage(NewRequestInfo("asker", "confirm", data))
		return nil
	}).Handle(Exact(0), None(), func(ctx *HandlerContext, data any) error {
		ctx.SharedState().Set("answer", data)
		return nil
	})

	wf, err := NewBuilder().
		AddExecutor(asker).
		SetStartExecutor("asker").
		Build()
	require.NoError(t, err)

	events, err := wf.Run("proceed?")
	require.NoError(t, err)

	var requestID string
	for ev := range events {
		if ev.Kind == EventRequestInfo {
			requestID = ev.RequestID
		}
	}
	require.NotEmpty(t, requestID)

	events2, err := wf.Resume(map[string]any{requestID: 42})
	require.NoError(t, err)

	var completed bool
	for ev := range events2 {
		if ev.Kind == EventWorkflowCompleted {
			completed = true
			require.Equal(t, 42, ev.Result.(map[string]any)["answer"])
		}
	}
	require.True(t, completed)
}

func TestConvergenceErrorOnUnboundedCycle(t *testing.T) {
	a := NewExecutor("a").Handle(Exact(0), Exact(0), func(ctx *HandlerContext, data any) error {
		ctx.SendMessage(data.(int) + 1)
		return nil
	})

	wf, err := NewBuilder().
		AddExecutor(a).
		SetStartExecutor("a").
		AddEdge("a", "a").
		SetMaxIterations(5).
		Build()
	require.NoError(t, err)

	_, err = wf.RunToCompletion(0)
	require.Error(t, err)
}

func TestAlreadyRunningGuard(t *testing.T) {
	block := make(chan struct{})
	a := NewExecutor("a").Handle(Exact(""), None(), func(ctx *HandlerContext, data any) error {
		<-block
		return nil
	})
	wf, err := NewBuilder().AddExecutor(a).SetStartExecutor("a").Build()
	require.NoError(t, err)

	_, err = wf.Run("x")
	require.NoError(t, err)

	_, err = wf.Run("y")
	require.ErrorIs(t, err, ErrAlreadyRunning)
	close(block)
}

// countingSet is a tiny thread-safe string list used to assert fan-out
// delivered to every target without relying on ordering.
type countingSet struct {
	mu    sync.Mutex
	items_ []string
}

func (s *countingSet) add(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items_ = append(s.items_, v)
}

func (s *countingSet) items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.items_...)
}

package workflow

import "github.com/arborian/workflow/metrics"

// Builder assembles executors and edge groups into a Workflow. Build runs
// the full validation suite and returns the first accumulated
// ValidationErrors if any blocking error was found.
type Builder struct {
	startExecutorID      string
	executors            map[string]*Executor
	groups               []EdgeGroup
	interceptors         []InterceptorRegistration
	maxIterations        int
	store                CheckpointStore
	metrics              *metrics.Metrics
	runnerContextFactory RunnerContextFactory
}

// NewBuilder returns an empty Builder with the default iteration cap and the
// default in-process RunnerContext factory.
func NewBuilder() *Builder {
	return &Builder{
		executors:            make(map[string]*Executor),
		maxIterations:        defaultMaxIterations,
		runnerContextFactory: defaultRunnerContextFactory,
	}
}

// AddExecutor registers ex in the graph. Executor ids must be unique;
// duplicates overwrite silently here and are caught by Build's validation
// only if they result in a structural problem, so callers should not rely
// on overwrite semantics.
func (b *Builder) AddExecutor(ex *Executor) *Builder {
	b.executors[ex.ID()] = ex
	return b
}

// SetStartExecutor designates the executor that receives a run's initial
// input.
func (b *Builder) SetStartExecutor(id string) *Builder {
	b.startExecutorID = id
	return b
}

// AddEdge adds a single unconditional edge from one executor to another.
func (b *Builder) AddEdge(from, to string) *Builder {
	b.groups = append(b.groups, Single(from, to))
	return b
}

// AddFanOut adds a fan-out group from one source to multiple targets. A nil
// selectFn broadcasts to every target.
func (b *Builder) AddFanOut(from string, targetIDs []string, selectFn SelectionFunc) *Builder {
	b.groups = append(b.groups, FanOut(from, targetIDs, selectFn))
	return b
}

// AddFanIn adds a fan-in group aggregating multiple sources into one
// target.
func (b *Builder) AddFanIn(sourceIDs []string, to string) *Builder {
	b.groups = append(b.groups, FanIn(sourceIDs, to))
	return b
}

// AddSwitchCase adds a switch-case group: branches are evaluated in order,
// the first whose predicate matches wins. Exactly one branch must use
// DefaultBranch as its predicate, and it must be last; Build's validation
// enforces this.
func (b *Builder) AddSwitchCase(from string, branches []SwitchCaseBranch) *Builder {
	b.groups = append(b.groups, SwitchCase(from, branches))
	return b
}

// AddChain is sugar for a sequence of single edges connecting ids[0]->ids[1]
// ->...->ids[n-1].
func (b *Builder) AddChain(ids ...string) *Builder {
	for i := 0; i+1 < len(ids); i++ {
		b.AddEdge(ids[i], ids[i+1])
	}
	return b
}

// AddInterceptor registers ex as the handler for RequestInfo messages of
// the given requestType within subWorkflowScope (empty for the top-level
// workflow), instead of suspending the run.
func (b *Builder) AddInterceptor(executorID, requestType, subWorkflowScope string) *Builder {
	b.interceptors = append(b.interceptors, InterceptorRegistration{
		ExecutorID:       executorID,
		RequestType:      requestType,
		SubWorkflowScope: subWorkflowScope,
	})
	return b
}

// SetMaxIterations overrides the default convergence cap of 100 supersteps.
func (b *Builder) SetMaxIterations(n int) *Builder {
	b.maxIterations = n
	return b
}

// SetCheckpointStore attaches a store so Workflow.Checkpoint persists
// automatically. Optional; a Workflow with no store can still produce
// in-memory Checkpoint values for the caller to persist itself.
func (b *Builder) SetCheckpointStore(store CheckpointStore) *Builder {
	b.store = store
	return b
}

// SetMetrics attaches a Prometheus metrics collector. Optional; a Workflow
// with no metrics configured simply skips recording.
func (b *Builder) SetMetrics(m *metrics.Metrics) *Builder {
	b.metrics = m
	return b
}

// SetRunnerContext overrides the RunnerContext implementation each run uses
// in place of the default InProcRunnerContext. factory is called once per
// Run or ResumeFromCheckpoint to produce a fresh instance scoped to that run;
// Resume reuses the RunnerContext the suspended run was already using.
func (b *Builder) SetRunnerContext(factory RunnerContextFactory) *Builder {
	b.runnerContextFactory = factory
	return b
}

// Build validates the accumulated graph and, if valid, returns a ready
// Workflow. It is the only place validation runs; there is no separate
// dynamic structural check beyond Executor.CanHandle at dispatch time.
func (b *Builder) Build() (*Workflow, error) {
	verrs := validateGraph(b)
	if verrs.HasErrors() {
		return nil, verrs
	}

	groupsBySource := make(map[string][]edgeRunner)
	for _, g := range b.groups {
		runner := newEdgeRunner(g)
		for _, src := range g.sourceIDs() {
			groupsBySource[src] = append(groupsBySource[src], runner)
		}
	}

	interceptors := make(map[string]InterceptorRegistration, len(b.interceptors))
	for _, reg := range b.interceptors {
		interceptors[reg.key()] = reg
	}

	return &Workflow{
		startExecutorID:      b.startExecutorID,
		executors:            b.executors,
		groupsBySource:       groupsBySource,
		allGroups:            b.groups,
		interceptors:         interceptors,
		maxIterations:        b.maxIterations,
		store:                b.store,
		metrics:              b.metrics,
		runnerContextFactory: b.runnerContextFactory,
	}, nil
}

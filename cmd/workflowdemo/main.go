// Command workflowdemo demonstrates conditional routing, a refinement cycle,
// and request/response suspension on a small workflow built with the
// github.com/arborian/workflow package.
package main

import (
	"fmt"
	"log"

	"github.com/arborian/workflow"
)

func main() {
	fmt.Println("workflow demo: confidence-gated review with a human checkpoint")
	fmt.Println("===============================================================")

	draft := workflow.NewExecutor("draft").Handle(workflow.Exact(""), workflow.Exact(0.0), func(ctx *workflow.HandlerContext, data any) error {
		query := data.(string)
		fmt.Printf("draft: analyzing %q\n", query)
		ctx.SharedState().Set("query", query)
		ctx.SendMessage(0.55)
		return nil
	})

	refine := workflow.NewExecutor("refine").Handle(workflow.Exact(0.0), workflow.Exact(0.0), func(ctx *workflow.HandlerContext, data any) error {
		confidence := data.(float64) + 0.3
		fmt.Printf("refine: confidence now %.2f\n", confidence)
		ctx.SendMessage(confidence)
		return nil
	})

	gate := workflow.NewExecutor("gate").
		Handle(workflow.Exact(0.0), workflow.Union(workflow.Exact(0.0), workflow.Exact(workflow.RequestInfo{})), func(ctx *workflow.HandlerContext, data any) error {
			confidence := data.(float64)
			if confidence < 0.8 {
				ctx.SendMessageTo("refine", confidence)
				return nil
			}
			ri := workflow.NewRequestInfo("gate", "approve-publish", confidence)
			fmt.Printf("gate: confidence %.2f reached threshold, requesting approval (request %s)\n", confidence, ri.RequestID)
			ctx.SendMessage(ri)
			return nil
		}).
		Handle(workflow.Exact(false), workflow.None(), func(ctx *workflow.HandlerContext, approved any) error {
			ctx.SharedState().Set("published", approved.(bool))
			return nil
		})

	wf, err := workflow.NewBuilder().
		AddExecutor(draft).AddExecutor(refine).AddExecutor(gate).
		SetStartExecutor("draft").
		AddEdge("draft", "gate").
		AddEdge("refine", "gate").
		AddEdge("gate", "refine").
		Build()
	if err != nil {
		log.Fatalf("failed to build workflow: %v", err)
	}

	events, err := wf.Run("what changed in the release notes?")
	if err != nil {
		log.Fatalf("failed to start run: %v", err)
	}

	var requestID string
	for ev := range events {
		switch ev.Kind {
		case workflow.EventRequestInfo:
			requestID = ev.RequestID
			fmt.Printf("suspended: awaiting response to request %s (%s)\n", ev.RequestID, ev.RequestType)
		case workflow.EventWorkflowStatus:
			fmt.Printf("status: %s\n", ev.State)
		}
	}

	if requestID == "" {
		log.Fatal("expected the run to suspend on a request-info event")
	}

	resumeEvents, err := wf.Resume(map[string]any{requestID: true})
	if err != nil {
		log.Fatalf("failed to resume: %v", err)
	}

	for ev := range resumeEvents {
		if ev.Kind == workflow.EventWorkflowCompleted {
			fmt.Printf("completed: %+v\n", ev.Result)
		}
	}
}

package router

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"revloop/internal/llm"
	"revloop/internal/workflow"
)

// LLMPolicy implements [Policy] by asking a supervisor model to pick the
// next action from the workflow's enumerated action set.
//
// The model's free-text answer is parsed with [ParseDecision]; anything
// unparseable is reported as a zero Decision so the router applies its
// deterministic default. Only a worker failure is an error.
type LLMPolicy struct {
	worker llm.Worker

	// system is the supervisor role prompt, including the workflow's
	// routing principles (e.g., "playtests must be evaluated before visual
	// design starts").
	system string
}

// NewLLMPolicy creates a policy backed by the given worker. The system
// prompt carries the per-workflow routing principles.
func NewLLMPolicy(worker llm.Worker, system string) *LLMPolicy {
	return &LLMPolicy{worker: worker, system: system}
}

// Decide asks the supervisor model for the next action.
func (p *LLMPolicy) Decide(ctx context.Context, req Request) (Decision, error) {
	resp, err := p.worker.Invoke(ctx, llm.Request{
		System: p.system,
		Prompt: buildDecisionPrompt(req),
	})
	if err != nil {
		return Decision{}, err
	}

	decision, ok := ParseDecision(resp.Content, req.Actions)
	if !ok {
		return Decision{}, nil
	}
	return decision, nil
}

// buildDecisionPrompt renders the decision request as the supervisor prompt:
// current stage, revision budgets, latest artifact excerpts, the enumerated
// action set, and the required response format.
func buildDecisionPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are coordinating the %s workflow and must choose the next step.\n\n", req.Workflow)
	fmt.Fprintf(&b, "CURRENT STAGE: %s\n\n", req.Stage)

	if len(req.Maxima) > 0 {
		b.WriteString("REVISION BUDGETS:\n")
		stages := make([]workflow.Stage, 0, len(req.Maxima))
		for stage := range req.Maxima {
			stages = append(stages, stage)
		}
		sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })
		for _, stage := range stages {
			fmt.Fprintf(&b, "- %s: %d/%d\n", stage, req.Counts[stage], req.Maxima[stage])
		}
		b.WriteString("\n")
	}

	if len(req.Artifacts) > 0 {
		b.WriteString("COMPLETED WORK:\n")
		for _, art := range req.Artifacts {
			fmt.Fprintf(&b, "--- %s (version %d) ---\n%s\n\n", art.Stage, art.Iteration+1, art.Excerpt)
		}
	}

	b.WriteString("AVAILABLE ACTIONS:\n")
	for _, action := range req.Actions {
		fmt.Fprintf(&b, "- %s\n", action)
	}

	b.WriteString(`
RESPONSE FORMAT:
Respond with a JSON object containing:
1. "decision": exactly one of the available actions
2. "reason": a brief explanation of your decision (1-2 sentences max)

Example:
{
  "decision": "` + firstAction(req.Actions) + `",
  "reason": "The current draft is ready for the next step."
}
`)

	return b.String()
}

func firstAction(actions []string) string {
	if len(actions) == 0 {
		return "PROCEED"
	}
	return actions[0]
}

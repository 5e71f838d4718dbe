package router

import (
	"context"

	"revloop/internal/workflow"
)

// Decision is a policy's proposed action and its justification.
//
// An empty Action means the policy produced nothing usable; the router then
// applies the documented default (advance in canonical order).
type Decision struct {
	Action string
	Reason string
}

// ArtifactSummary is a truncated view of a stage's latest artifact, included
// in decision requests so the policy can judge progress.
type ArtifactSummary struct {
	Stage     workflow.Stage
	Iteration int
	Excerpt   string
}

// Request summarizes the state of a run for a policy decision.
type Request struct {
	// Workflow is the definition name.
	Workflow string

	// Stage is the stage the run just executed.
	Stage workflow.Stage

	// Artifacts are the latest artifacts per visited stage, truncated.
	Artifacts []ArtifactSummary

	// Counts and Maxima describe revision budgets: current count and
	// configured maximum per revisable stage.
	Counts map[workflow.Stage]int
	Maxima map[workflow.Stage]int

	// Actions is the enumerated action set the policy must choose from.
	Actions []string
}

// Policy proposes the next action for a run.
//
// Implementations must be deterministic with respect to their own inputs:
// the router guarantees mechanics are reproducible given identical policy
// output. Return an error only for hard failures (the backing worker died);
// an unparseable or unknown proposal is expressed as a zero [Decision].
type Policy interface {
	Decide(ctx context.Context, req Request) (Decision, error)
}

// ScriptedPolicy implements [Policy] by replaying fixed decisions, for
// testing the router and loop without a model. Decisions are consumed in
// order; once exhausted, the last one repeats.
type ScriptedPolicy struct {
	// Decisions are replayed in order.
	Decisions []Decision

	// Err, when set, is returned by every call.
	Err error

	// RecordedRequests captures every request for assertions.
	RecordedRequests []Request

	calls int
}

// Decide replays the next scripted decision.
func (p *ScriptedPolicy) Decide(ctx context.Context, req Request) (Decision, error) {
	p.calls++
	p.RecordedRequests = append(p.RecordedRequests, req)

	if p.Err != nil {
		return Decision{}, p.Err
	}
	if len(p.Decisions) == 0 {
		return Decision{}, nil
	}

	idx := p.calls - 1
	if idx >= len(p.Decisions) {
		idx = len(p.Decisions) - 1
	}
	return p.Decisions[idx], nil
}

// Package router decides the next stage of a workflow run.
//
// The router separates decision policy from state-machine mechanics. A
// [Policy] proposes an action (in production, by asking a supervisor model;
// in tests, from a script); the [Router] deterministically maps the action
// onto the workflow definition, applies the documented default when the
// policy yields nothing usable, bumps revision counters, and enforces the
// exhausted-budget override. Given the same policy output, the same store,
// and the same counters, Next always produces the same transition.
//
// Key types:
//   - [Router] - deterministic transition mechanics
//   - [Policy] - pluggable decision source
//   - [LLMPolicy] - production policy backed by an [llm.Worker]
//   - [ScriptedPolicy] - test policy replaying fixed decisions
package router

import (
	"context"
	"errors"
	"fmt"

	"revloop/internal/workflow"
)

// Sentinel errors for routing failures. Both are fatal for the run.
var (
	// ErrPolicy indicates the decision policy itself failed (worker error,
	// timeout, empty response). The policy's error is wrapped alongside.
	ErrPolicy = errors.New("supervisor policy failed")

	// ErrNoDecision indicates the router could not determine a valid next
	// stage even after applying the documented default action.
	ErrNoDecision = errors.New("no valid next stage")
)

// defaultExcerptLen bounds artifact excerpts in decision requests.
const defaultExcerptLen = 500

// Transition is the outcome of one routing decision.
type Transition struct {
	// To is the chosen next stage.
	To workflow.Stage

	// Reason is the human-readable justification. For overridden
	// transitions this is the override explanation, not the policy's text.
	Reason string

	// Overridden is true when an exhausted revision budget forced the
	// transition to the workflow's fallback stage.
	Overridden bool
}

// Router chooses the next stage for a run using a [Policy] and the workflow
// definition. The router mutates the run's revision counter; everything else
// it touches is read-only.
type Router struct {
	def        *workflow.Definition
	policy     Policy
	excerptLen int
}

// New creates a router for a workflow definition.
func New(def *workflow.Definition, policy Policy) *Router {
	return &Router{
		def:        def,
		policy:     policy,
		excerptLen: defaultExcerptLen,
	}
}

// SetExcerptLen overrides the artifact excerpt length used when summarizing
// run progress for the policy.
func (r *Router) SetExcerptLen(n int) {
	if n > 0 {
		r.excerptLen = n
	}
}

// Next decides the stage following current.
//
// The initial stage is a hard-coded shortcut: the run always advances along
// the canonical order without consulting the policy. Otherwise the policy is
// asked for a decision; an unusable decision falls back to the canonical
// forward successor. A decision that would re-enter an already visited stage
// increments that stage's revision counter, and once the counter passes the
// stage's maximum the transition is overridden to the workflow's fallback
// stage. Transitions into the terminal stage are only honored from the final
// stage and are never overridden.
func (r *Router) Next(ctx context.Context, current workflow.Stage, store *workflow.Store, counter *workflow.Counter) (Transition, error) {
	if current == r.def.Initial {
		next, ok := r.def.NextInOrder(current)
		if !ok {
			return Transition{}, fmt.Errorf("%w: initial stage %s has no successor", ErrNoDecision, current)
		}
		return Transition{
			To:     next,
			Reason: fmt.Sprintf("initial stage always proceeds to %s", next),
		}, nil
	}

	decision, err := r.policy.Decide(ctx, r.buildRequest(current, store, counter))
	if err != nil {
		return Transition{}, fmt.Errorf("%w: %v", ErrPolicy, err)
	}

	next, reason, ok := r.resolve(current, decision)
	if !ok {
		return Transition{}, fmt.Errorf("%w: stage %s has no canonical successor", ErrNoDecision, current)
	}

	if next != r.def.Terminal {
		if next != current && store.Visited(next) {
			counter.Increment(next)
		}
		if counter.Exceeded(next) {
			max, _ := counter.Maximum(next)
			return Transition{
				To: r.def.Fallback,
				Reason: fmt.Sprintf("maximum revisions (%d) reached for %s; proceeding to %s despite potential issues",
					max, next, r.def.Fallback),
				Overridden: true,
			}, nil
		}
	}

	return Transition{To: next, Reason: reason}, nil
}

// resolve maps a policy decision onto a concrete stage, applying the
// documented default (advance in canonical order) when the decision is empty,
// unknown, or requests the terminal stage from anywhere but the final stage.
func (r *Router) resolve(current workflow.Stage, decision Decision) (workflow.Stage, string, bool) {
	if decision.Action != "" {
		if next, ok := r.def.ActionStage(decision.Action); ok {
			if next != r.def.Terminal || current == r.def.Final {
				reason := decision.Reason
				if reason == "" {
					reason = fmt.Sprintf("supervisor selected %s", decision.Action)
				}
				return next, reason, true
			}
		}
	}

	next, ok := r.def.NextInOrder(current)
	if !ok {
		return "", "", false
	}
	return next, fmt.Sprintf("no usable supervisor decision; advancing to %s in canonical order", next), true
}

// buildRequest summarizes the run for the policy: current stage, truncated
// latest artifacts, and revision counts against their maxima.
func (r *Router) buildRequest(current workflow.Stage, store *workflow.Store, counter *workflow.Counter) Request {
	req := Request{
		Workflow: r.def.Name,
		Stage:    current,
		Actions:  r.def.Actions(),
		Counts:   counter.Snapshot(),
		Maxima:   r.def.Maxima(),
	}

	for _, stage := range store.Stages() {
		art, err := store.Latest(stage)
		if err != nil {
			continue
		}
		excerpt := art.Content
		if len(excerpt) > r.excerptLen {
			excerpt = excerpt[:r.excerptLen] + "... [truncated]"
		}
		req.Artifacts = append(req.Artifacts, ArtifactSummary{
			Stage:     stage,
			Iteration: art.Iteration,
			Excerpt:   excerpt,
		})
	}

	return req
}

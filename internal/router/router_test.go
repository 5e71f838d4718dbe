package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revloop/internal/workflow"
)

// threeStageDef builds a -> b -> c -> done with a revision budget of 1 on b.
func threeStageDef(t *testing.T) *workflow.Definition {
	t.Helper()
	def, err := workflow.NewDefinition("test",
		workflow.Anchors{
			Terminal:       "done",
			Final:          "c",
			Fallback:       "c",
			CompleteAction: "FINISH",
		},
		[]workflow.StageSpec{
			{Stage: "a", Action: "DO_A", Next: "b"},
			{Stage: "b", Action: "DO_B", Next: "c", MaxRevisions: 1},
			{Stage: "c", Action: "DO_C", Next: "done"},
		})
	require.NoError(t, err)
	return def
}

func TestNext_InitialStageSkipsPolicy(t *testing.T) {
	def := threeStageDef(t)
	policy := &ScriptedPolicy{Decisions: []Decision{{Action: "DO_C"}}}
	r := New(def, policy)

	store := workflow.NewStore()
	store.Put("a", "draft", nil)

	tr, err := r.Next(context.Background(), "a", store, workflow.NewCounter(def.Maxima()))
	require.NoError(t, err)
	assert.Equal(t, workflow.Stage("b"), tr.To)
	assert.False(t, tr.Overridden)
	assert.Empty(t, policy.RecordedRequests, "policy must not be consulted for the initial stage")
}

func TestNext_FollowsPolicyAction(t *testing.T) {
	def := threeStageDef(t)
	policy := &ScriptedPolicy{Decisions: []Decision{{Action: "DO_C", Reason: "skip ahead"}}}
	r := New(def, policy)

	store := workflow.NewStore()
	store.Put("a", "draft", nil)
	store.Put("b", "draft", nil)

	tr, err := r.Next(context.Background(), "b", store, workflow.NewCounter(def.Maxima()))
	require.NoError(t, err)
	assert.Equal(t, workflow.Stage("c"), tr.To)
	assert.Equal(t, "skip ahead", tr.Reason)
}

func TestNext_NoDecisionAdvancesCanonically(t *testing.T) {
	def := threeStageDef(t)
	r := New(def, &ScriptedPolicy{}) // zero decisions: policy yields nothing

	store := workflow.NewStore()
	store.Put("b", "draft", nil)

	tr, err := r.Next(context.Background(), "b", store, workflow.NewCounter(def.Maxima()))
	require.NoError(t, err)
	assert.Equal(t, workflow.Stage("c"), tr.To)
	assert.Contains(t, tr.Reason, "canonical order")
}

func TestNext_TerminalOnlyFromFinalStage(t *testing.T) {
	def := threeStageDef(t)
	policy := &ScriptedPolicy{Decisions: []Decision{{Action: "FINISH", Reason: "done early"}}}
	r := New(def, policy)

	store := workflow.NewStore()
	store.Put("b", "draft", nil)

	// FINISH from b is ignored; the canonical successor wins.
	tr, err := r.Next(context.Background(), "b", store, workflow.NewCounter(def.Maxima()))
	require.NoError(t, err)
	assert.Equal(t, workflow.Stage("c"), tr.To)

	// From the final stage the same decision is honored.
	store.Put("c", "draft", nil)
	tr, err = r.Next(context.Background(), "c", store, workflow.NewCounter(def.Maxima()))
	require.NoError(t, err)
	assert.Equal(t, workflow.Stage("done"), tr.To)
	assert.Equal(t, "done early", tr.Reason)
}

func TestNext_RevisitCountingAndOverride(t *testing.T) {
	def := threeStageDef(t)
	policy := &ScriptedPolicy{Decisions: []Decision{{Action: "DO_B", Reason: "revise again"}}}
	r := New(def, policy)

	store := workflow.NewStore()
	store.Put("a", "draft", nil)
	store.Put("b", "draft", nil)
	store.Put("c", "draft", nil)
	counter := workflow.NewCounter(def.Maxima())

	// First re-entry into b: within budget (max 1).
	tr, err := r.Next(context.Background(), "c", store, counter)
	require.NoError(t, err)
	assert.Equal(t, workflow.Stage("b"), tr.To)
	assert.False(t, tr.Overridden)
	assert.Equal(t, 1, counter.Count("b"))

	// Second re-entry: budget exhausted, forced to the fallback stage.
	tr, err = r.Next(context.Background(), "c", store, counter)
	require.NoError(t, err)
	assert.Equal(t, workflow.Stage("c"), tr.To)
	assert.True(t, tr.Overridden)
	assert.Equal(t, "maximum revisions (1) reached for b; proceeding to c despite potential issues", tr.Reason)

	// The counter stops at max+1.
	assert.Equal(t, 2, counter.Count("b"))
}

func TestNext_FirstVisitIsNotARevision(t *testing.T) {
	def := threeStageDef(t)
	policy := &ScriptedPolicy{Decisions: []Decision{{Action: "DO_C"}}}
	r := New(def, policy)

	store := workflow.NewStore()
	store.Put("b", "draft", nil)
	counter := workflow.NewCounter(def.Maxima())

	_, err := r.Next(context.Background(), "b", store, counter)
	require.NoError(t, err)
	assert.Equal(t, 0, counter.Count("c"), "moving into an unvisited stage is not a revision")
}

func TestNext_PolicyErrorIsFatal(t *testing.T) {
	def := threeStageDef(t)
	r := New(def, &ScriptedPolicy{Err: errors.New("model unavailable")})

	store := workflow.NewStore()
	store.Put("b", "draft", nil)

	_, err := r.Next(context.Background(), "b", store, workflow.NewCounter(def.Maxima()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPolicy)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestNext_Deterministic(t *testing.T) {
	def := threeStageDef(t)

	run := func() Transition {
		policy := &ScriptedPolicy{Decisions: []Decision{{Action: "DO_C", Reason: "forward"}}}
		r := New(def, policy)
		store := workflow.NewStore()
		store.Put("a", "draft", nil)
		store.Put("b", "draft", nil)
		tr, err := r.Next(context.Background(), "b", store, workflow.NewCounter(def.Maxima()))
		require.NoError(t, err)
		return tr
	}

	assert.Equal(t, run(), run())
}

func TestBuildRequest_Excerpts(t *testing.T) {
	def := threeStageDef(t)
	policy := &ScriptedPolicy{Decisions: []Decision{{Action: "DO_C"}}}
	r := New(def, policy)
	r.SetExcerptLen(10)

	store := workflow.NewStore()
	store.Put("a", "this content is longer than ten characters", nil)
	store.Put("b", "short", nil)
	counter := workflow.NewCounter(def.Maxima())
	counter.Increment("b")

	_, err := r.Next(context.Background(), "b", store, counter)
	require.NoError(t, err)

	require.Len(t, policy.RecordedRequests, 1)
	req := policy.RecordedRequests[0]
	assert.Equal(t, "test", req.Workflow)
	assert.Equal(t, workflow.Stage("b"), req.Stage)
	assert.Equal(t, []string{"DO_A", "DO_B", "DO_C", "FINISH"}, req.Actions)
	assert.Equal(t, map[workflow.Stage]int{"b": 1}, req.Counts)
	assert.Equal(t, map[workflow.Stage]int{"b": 1}, req.Maxima)

	require.Len(t, req.Artifacts, 2)
	assert.Equal(t, "this conte... [truncated]", req.Artifacts[0].Excerpt)
	assert.Equal(t, "short", req.Artifacts[1].Excerpt)
}

func TestLLMPolicy_Prompt(t *testing.T) {
	// The prompt layout matters less than its load-bearing parts: the
	// current stage, the budgets, and the action list.
	req := Request{
		Workflow: "translate",
		Stage:    "assess",
		Actions:  []string{"TRANSLATE", "ASSESS", "REVISE", "FINISH"},
		Counts:   map[workflow.Stage]int{"revise": 1},
		Maxima:   map[workflow.Stage]int{"revise": 3},
		Artifacts: []ArtifactSummary{
			{Stage: "translate", Iteration: 0, Excerpt: "Bonjour"},
		},
	}

	prompt := buildDecisionPrompt(req)
	assert.Contains(t, prompt, "assess")
	assert.Contains(t, prompt, "- revise: 1/3")
	assert.Contains(t, prompt, "- FINISH")
	assert.Contains(t, prompt, "translate (version 1)")
	assert.Contains(t, prompt, "Bonjour")
	assert.Contains(t, prompt, fmt.Sprintf("%q", "decision"))
}

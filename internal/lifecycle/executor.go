// Package lifecycle drives a workflow run from its initial stage to the
// terminal stage.
//
// The [Loop] alternates between executing the current stage (producing an
// artifact) and asking the router for the next stage, updating revision
// counters and the transition journal on every pass. Loops use dependency
// injection for testability: a [StageExecutor] produces artifacts and a
// [router.Router] chooses transitions, so runs can be exercised end to end
// with mock workers and scripted policies.
//
// Key concepts:
//   - Stage failures abort the run immediately; there is no retry layer
//   - The partial artifact store is always returned so completed stages
//     can be salvaged
//   - A hard pass ceiling guarantees termination even under routing bugs
package lifecycle

import (
	"context"
	"fmt"

	"revloop/internal/workflow"
)

// StageError wraps a stage worker failure. The loop does not retry it; the
// error propagates to the caller of Run with the partial store attached to
// the result.
type StageError struct {
	// Stage is the stage whose worker failed.
	Stage workflow.Stage

	// Err is the underlying worker or validation error.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// StageFunc produces the content and derived fields for one stage visit.
// Implementations read prior artifacts from the store but must not write to
// it; the executor records the result.
type StageFunc func(ctx context.Context, store *workflow.Store, input workflow.Input) (content string, fields map[string]string, err error)

// StageExecutor executes the worker for a stage and records the produced
// artifact in the store.
type StageExecutor interface {
	Execute(ctx context.Context, stage workflow.Stage, store *workflow.Store, input workflow.Input) (workflow.Artifact, error)
}

// FuncExecutor implements [StageExecutor] with a dispatch table of stage
// functions, one per non-terminal stage.
type FuncExecutor struct {
	funcs map[workflow.Stage]StageFunc
}

// NewFuncExecutor creates an executor from a dispatch table.
func NewFuncExecutor(funcs map[workflow.Stage]StageFunc) *FuncExecutor {
	return &FuncExecutor{funcs: funcs}
}

// Execute runs the stage function and records its output as a new artifact
// at the stage's next iteration index. Worker failures are wrapped in a
// [*StageError] and nothing is recorded.
func (e *FuncExecutor) Execute(ctx context.Context, stage workflow.Stage, store *workflow.Store, input workflow.Input) (workflow.Artifact, error) {
	fn, ok := e.funcs[stage]
	if !ok {
		return workflow.Artifact{}, &StageError{Stage: stage, Err: fmt.Errorf("no worker registered")}
	}

	content, fields, err := fn(ctx, store, input)
	if err != nil {
		return workflow.Artifact{}, &StageError{Stage: stage, Err: err}
	}

	return store.Put(stage, content, fields), nil
}

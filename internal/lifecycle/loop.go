package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revloop/internal/router"
	"revloop/internal/workflow"
)

// ErrWorkflowDiverged is a sentinel error indicating the run exceeded the
// hard pass ceiling. It points at a routing bug (or an adversarial policy);
// per-stage revision maxima should fire long before the ceiling does.
var ErrWorkflowDiverged = errors.New("workflow exceeded the pass ceiling")

// DefaultPassCeiling is the hard safety ceiling on loop passes, independent
// of per-stage revision maxima.
const DefaultPassCeiling = 50

// ProgressCallback is invoked before each stage executes, with the 1-based
// pass number and the stage about to run. Optional; used for terminal
// progress display.
type ProgressCallback func(pass int, stage workflow.Stage)

// Result is the outcome of a run: the full artifact store and transition
// journal, plus the final artifact when the run completed.
//
// Result is returned even when Run fails, with whatever the run produced up
// to the failure, so callers can salvage completed stages.
type Result struct {
	// Store holds every artifact the run produced.
	Store *workflow.Store

	// Journal holds every recorded transition.
	Journal *workflow.Journal

	// Counts is the final revision counter snapshot.
	Counts map[workflow.Stage]int

	// Final is the latest artifact of the workflow's final stage, when the
	// run reached the terminal stage.
	Final workflow.Artifact

	// Passes is the number of completed loop passes.
	Passes int
}

// Loop drives one workflow run. Create with [NewLoop]; a Loop may be reused
// for independent runs, each of which gets its own store, counter, and
// journal.
type Loop struct {
	def      *workflow.Definition
	executor StageExecutor
	router   *router.Router
	ceiling  int
	progress ProgressCallback
}

// NewLoop creates a loop over a workflow definition. The executor produces
// stage artifacts and the router chooses transitions; both are injected so
// runs are testable without live workers.
func NewLoop(def *workflow.Definition, executor StageExecutor, r *router.Router) *Loop {
	return &Loop{
		def:      def,
		executor: executor,
		router:   r,
		ceiling:  DefaultPassCeiling,
	}
}

// SetPassCeiling overrides the hard pass ceiling.
func (l *Loop) SetPassCeiling(n int) {
	if n > 0 {
		l.ceiling = n
	}
}

// SetProgressCallback configures an optional per-pass progress callback.
func (l *Loop) SetProgressCallback(cb ProgressCallback) {
	l.progress = cb
}

// Run executes the workflow until the terminal stage is reached.
//
// Each pass executes the current stage, then asks the router for the next
// stage and journals the transition. Run is fail-fast: a stage failure or a
// routing failure aborts the run immediately with the error, and
// cancellation is observed between passes (every suspension point is an
// external worker call, so nothing needs rolling back). The returned Result
// always carries the partial store and journal.
func (l *Loop) Run(ctx context.Context, input workflow.Input) (*Result, error) {
	store := workflow.NewStore()
	counter := workflow.NewCounter(l.def.Maxima())
	journal := workflow.NewJournal()

	result := &Result{
		Store:   store,
		Journal: journal,
	}
	defer func() {
		result.Counts = counter.Snapshot()
	}()

	current := l.def.Initial
	for pass := 1; ; pass++ {
		if current == l.def.Terminal {
			break
		}
		if pass > l.ceiling {
			return result, fmt.Errorf("run aborted after %d passes: %w", l.ceiling, ErrWorkflowDiverged)
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if l.progress != nil {
			l.progress(pass, current)
		}

		if _, err := l.executor.Execute(ctx, current, store, input); err != nil {
			return result, err
		}

		transition, err := l.router.Next(ctx, current, store, counter)
		if err != nil {
			return result, err
		}

		journal.Append(workflow.TransitionRecord{
			From:       current,
			To:         transition.To,
			Reason:     transition.Reason,
			Overridden: transition.Overridden,
			Counts:     counter.Snapshot(),
			At:         time.Now(),
		})

		current = transition.To
		result.Passes = pass
	}

	if final, err := store.Latest(l.def.Final); err == nil {
		result.Final = final
	}
	return result, nil
}

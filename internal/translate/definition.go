// Package translate implements the document translation workflow.
//
// A run translates a source document into a target language, assesses the
// translation's readability on a 1-10 scale, and revises it until the
// supervisor is satisfied or the revision budget runs out.
//
// Key types:
//   - [Runner]: wires the workflow together and persists results
//   - [Job]: one translation request
//   - [Outcome]: the run result plus output locations
package translate

import (
	"revloop/internal/workflow"
)

// Workflow stage names.
const (
	StageTranslate workflow.Stage = "translate"
	StageAssess    workflow.Stage = "assess"
	StageRevise    workflow.Stage = "revise"
	StageComplete  workflow.Stage = "complete"
)

// Supervisor action keywords.
const (
	ActionTranslate = "TRANSLATE"
	ActionAssess    = "ASSESS"
	ActionRevise    = "REVISE"
	ActionFinish    = "FINISH"
)

// DefaultMaxRevisions bounds how often a run may return to the revise
// stage before it is forced to complete.
const DefaultMaxRevisions = 3

// Definition builds the translation workflow definition. Overrides maps
// stage names to revision maxima and replaces the built-in bounds; an
// absent entry keeps the default.
func Definition(overrides map[string]int) (*workflow.Definition, error) {
	specs := []workflow.StageSpec{
		{Stage: StageTranslate, Action: ActionTranslate, Next: StageAssess},
		{Stage: StageAssess, Action: ActionAssess, Next: StageRevise},
		{Stage: StageRevise, Action: ActionRevise, Next: StageAssess, MaxRevisions: DefaultMaxRevisions},
	}
	for i, spec := range specs {
		if max, ok := overrides[string(spec.Stage)]; ok {
			specs[i].MaxRevisions = max
		}
	}

	return workflow.NewDefinition("translate", Anchors(), specs)
}

// Anchors returns the distinguished stages of the translation workflow.
// Exhausting the revise budget forces the run straight to completion.
func Anchors() workflow.Anchors {
	return workflow.Anchors{
		Terminal:       StageComplete,
		Final:          StageAssess,
		Fallback:       StageComplete,
		CompleteAction: ActionFinish,
	}
}

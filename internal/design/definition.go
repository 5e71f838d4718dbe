// Package design implements the board game design workflow.
//
// A run plans a game from a brief, researches its theme, designs the
// mechanics, playtests and fact-checks them, adds art direction, and
// assembles a final design document. The supervisor may send the run back
// to earlier stages for revision, within per-stage budgets.
package design

import (
	"revloop/internal/workflow"
)

// Workflow stage names.
const (
	StageProjectPlan    workflow.Stage = "project_plan"
	StageThemeResearch  workflow.Stage = "theme_research"
	StageMechanicDesign workflow.Stage = "mechanic_design"
	StagePlaytest       workflow.Stage = "playtest"
	StageFactCheck      workflow.Stage = "fact_check"
	StageVisualDesign   workflow.Stage = "visual_design"
	StageFinalReview    workflow.Stage = "final_review"
	StageComplete       workflow.Stage = "complete"
)

// Supervisor action keywords.
const (
	ActionPlan           = "PLAN"
	ActionThemeResearch  = "THEME_RESEARCH"
	ActionMechanicDesign = "MECHANIC_DESIGN"
	ActionPlaytest       = "PLAYTEST"
	ActionFactCheck      = "FACT_CHECK"
	ActionVisualDesign   = "VISUAL_DESIGN"
	ActionFinalReview    = "FINAL_REVIEW"
	ActionComplete       = "COMPLETE"
)

// Default revision maxima. Mechanics and playtesting may each be redone
// three times, fact checking twice; the remaining stages run once unless
// the supervisor is unbounded by configuration.
var defaultMaxima = map[workflow.Stage]int{
	StageMechanicDesign: 3,
	StagePlaytest:       3,
	StageFactCheck:      2,
}

// Definition builds the design workflow definition. Overrides maps stage
// names to revision maxima and replaces the built-in bounds.
func Definition(overrides map[string]int) (*workflow.Definition, error) {
	specs := []workflow.StageSpec{
		{Stage: StageProjectPlan, Action: ActionPlan, Next: StageThemeResearch},
		{Stage: StageThemeResearch, Action: ActionThemeResearch, Next: StageMechanicDesign},
		{Stage: StageMechanicDesign, Action: ActionMechanicDesign, Next: StagePlaytest},
		{Stage: StagePlaytest, Action: ActionPlaytest, Next: StageFactCheck},
		{Stage: StageFactCheck, Action: ActionFactCheck, Next: StageVisualDesign},
		{Stage: StageVisualDesign, Action: ActionVisualDesign, Next: StageFinalReview},
		{Stage: StageFinalReview, Action: ActionFinalReview, Next: StageComplete},
	}
	for i, spec := range specs {
		if max, ok := defaultMaxima[spec.Stage]; ok {
			specs[i].MaxRevisions = max
		}
		if max, ok := overrides[string(spec.Stage)]; ok {
			specs[i].MaxRevisions = max
		}
	}

	return workflow.NewDefinition("design", Anchors(), specs)
}

// Anchors returns the distinguished stages of the design workflow. When a
// revision budget runs out the run is forced forward to visual design so
// the remaining document still gets assembled.
func Anchors() workflow.Anchors {
	return workflow.Anchors{
		Terminal:       StageComplete,
		Final:          StageFinalReview,
		Fallback:       StageVisualDesign,
		CompleteAction: ActionComplete,
	}
}

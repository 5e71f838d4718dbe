package design

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"revloop/internal/lifecycle"
	"revloop/internal/llm"
	"revloop/internal/score"
	"revloop/internal/workflow"
)

// Input keys consumed by the stage functions.
const (
	InputTheme      = "theme"
	InputPlayers    = "players"
	InputComplexity = "complexity"
	InputNotes      = "notes"
)

// FieldScore carries the extracted accuracy score on fact check artifacts.
const FieldScore = "score"

const plannerSystem = `You are a board game project planner. From the design brief, produce a concise project plan: the game's working title, its core concept, the target audience, and the open design questions the later stages must answer.`

const researcherSystem = `You are a researcher supporting a board game design. Research the game's theme: the historical or factual background, the terminology, and the real-world details the design should draw on. Cite your sources in a "Works Cited" list.`

const mechanicsSystem = `You are a board game mechanics designer. Design the complete rule set: setup, turn structure, core mechanics, win conditions, and a components list. When playtest or fact check feedback is provided, revise the mechanics to address every point raised.`

const playtesterSystem = `You are simulating a playtest group. Play through the rules as written and report what happened: pacing problems, ambiguous rules, degenerate strategies, and what the group enjoyed. Be concrete and critical.`

const factCheckerSystem = `You are a fact checker for a themed board game. Verify the design's thematic and factual claims against the research. List every inaccuracy you find. End your report with a line of the form "Score: X/10" rating the design's factual accuracy.`

const artDirectorSystem = `You are an art director for board games. From the design so far, specify the visual direction: art style, color palette, board and card layout, and iconography.`

const reviewerSystem = `You are the lead designer assembling the final game design document. Merge all prior work into one markdown document with exactly these top-level sections, in this order: "# Game Summary", "# Rules", "# Components List", "# Works Cited", "# Tester Feedback", "# Assessment". The Assessment section states your overall judgment of the design.`

// StageFuncs builds the stage function table for the design workflow. Every
// stage calls the same worker with a role-specific system prompt; the fact
// check stage additionally extracts an accuracy score with ex.
func StageFuncs(worker llm.Worker, ex score.Extractor) map[workflow.Stage]lifecycle.StageFunc {
	return map[workflow.Stage]lifecycle.StageFunc{
		StageProjectPlan: func(ctx context.Context, store *workflow.Store, input workflow.Input) (string, map[string]string, error) {
			prompt := fmt.Sprintf("Design brief:\n- Theme: %s\n- Players: %s\n- Complexity: %s\n- Notes: %s\n\nProduce the project plan.",
				input.Get(InputTheme), input.Get(InputPlayers), input.Get(InputComplexity), input.Get(InputNotes))
			return invoke(ctx, worker, plannerSystem, prompt)
		},

		StageThemeResearch: func(ctx context.Context, store *workflow.Store, input workflow.Input) (string, map[string]string, error) {
			plan, err := store.Latest(StageProjectPlan)
			if err != nil {
				return "", nil, err
			}
			prompt := fmt.Sprintf("Theme: %s\n\nProject plan:\n\n%s\n\nResearch the theme.", input.Get(InputTheme), plan.Content)
			return invoke(ctx, worker, researcherSystem, prompt)
		},

		StageMechanicDesign: func(ctx context.Context, store *workflow.Store, input workflow.Input) (string, map[string]string, error) {
			var b strings.Builder
			appendLatest(&b, store, StageProjectPlan, "Project plan")
			appendLatest(&b, store, StageThemeResearch, "Theme research")
			if store.Visited(StageMechanicDesign) {
				appendLatest(&b, store, StageMechanicDesign, "Previous mechanics draft")
				appendLatest(&b, store, StagePlaytest, "Playtest feedback")
				appendLatest(&b, store, StageFactCheck, "Fact check feedback")
				b.WriteString("Revise the mechanics to address the feedback above.\n")
			} else {
				b.WriteString("Design the game mechanics.\n")
			}
			return invoke(ctx, worker, mechanicsSystem, b.String())
		},

		StagePlaytest: func(ctx context.Context, store *workflow.Store, input workflow.Input) (string, map[string]string, error) {
			mech, err := store.Latest(StageMechanicDesign)
			if err != nil {
				return "", nil, err
			}
			prompt := fmt.Sprintf("Rules under test (draft %d):\n\n%s\n\nReport on the playtest.", mech.Iteration+1, mech.Content)
			return invoke(ctx, worker, playtesterSystem, prompt)
		},

		StageFactCheck: func(ctx context.Context, store *workflow.Store, input workflow.Input) (string, map[string]string, error) {
			var b strings.Builder
			appendLatest(&b, store, StageThemeResearch, "Theme research")
			appendLatest(&b, store, StageMechanicDesign, "Current design")
			b.WriteString("Fact check the design.\n")
			resp, err := worker.Invoke(ctx, llm.Request{System: factCheckerSystem, Prompt: b.String()})
			if err != nil {
				return "", nil, err
			}
			v, err := ex.Extract(resp.Content)
			if err != nil {
				return "", nil, fmt.Errorf("fact checking design: %w", err)
			}
			fields := map[string]string{FieldScore: strconv.FormatFloat(v, 'f', -1, 64)}
			return resp.Content, fields, nil
		},

		StageVisualDesign: func(ctx context.Context, store *workflow.Store, input workflow.Input) (string, map[string]string, error) {
			var b strings.Builder
			appendLatest(&b, store, StageProjectPlan, "Project plan")
			appendLatest(&b, store, StageThemeResearch, "Theme research")
			appendLatest(&b, store, StageMechanicDesign, "Mechanics")
			b.WriteString("Specify the visual direction.\n")
			return invoke(ctx, worker, artDirectorSystem, b.String())
		},

		StageFinalReview: func(ctx context.Context, store *workflow.Store, input workflow.Input) (string, map[string]string, error) {
			var b strings.Builder
			appendLatest(&b, store, StageProjectPlan, "Project plan")
			appendLatest(&b, store, StageThemeResearch, "Theme research")
			appendLatest(&b, store, StageMechanicDesign, "Mechanics")
			appendLatest(&b, store, StagePlaytest, "Playtest feedback")
			appendLatest(&b, store, StageFactCheck, "Fact check")
			appendLatest(&b, store, StageVisualDesign, "Visual direction")
			b.WriteString("Assemble the final design document.\n")
			return invoke(ctx, worker, reviewerSystem, b.String())
		},
	}
}

func invoke(ctx context.Context, worker llm.Worker, system, prompt string) (string, map[string]string, error) {
	resp, err := worker.Invoke(ctx, llm.Request{System: system, Prompt: prompt})
	if err != nil {
		return "", nil, err
	}
	return resp.Content, nil, nil
}

// appendLatest writes the latest artifact of a stage under a labeled
// heading, skipping stages that have not run.
func appendLatest(b *strings.Builder, store *workflow.Store, stage workflow.Stage, label string) {
	a, err := store.Latest(stage)
	if err != nil {
		return
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", label, a.Content)
}

// SupervisorSystem builds the routing policy prompt for the design
// workflow. Threshold is the fact check score below which the supervisor
// must send the design back for revision.
func SupervisorSystem(threshold float64) string {
	return fmt.Sprintf(`You are the supervisor of a board game design workflow. You decide which stage runs next.

Rules:
- Work through the stages in order: PLAN, THEME_RESEARCH, MECHANIC_DESIGN, PLAYTEST, FACT_CHECK, VISUAL_DESIGN, FINAL_REVIEW.
- After a playtest that reports serious rule problems, choose MECHANIC_DESIGN to revise.
- After a fact check with an accuracy score below %.1f, choose MECHANIC_DESIGN to revise.
- Choose COMPLETE only after the final review.

Respond with a JSON object of the form {"decision": "<ACTION>", "reason": "<one sentence>"}.`, threshold)
}

package translate

import (
	"context"
	"fmt"
	"strconv"

	"revloop/internal/lifecycle"
	"revloop/internal/llm"
	"revloop/internal/score"
	"revloop/internal/workflow"
)

// Input keys consumed by the stage functions.
const (
	InputText     = "text"
	InputLanguage = "language"
	InputSource   = "source"
)

// FieldScore carries the extracted readability score on assess artifacts.
const FieldScore = "score"

const translatorSystem = `You are a professional translator. Translate the document you are given into the requested target language. Preserve the document's meaning, tone, structure, and formatting. Output only the translated document, with no commentary.`

const assessorSystem = `You are a readability assessor for translated documents. Evaluate how natural and readable the translation is for a native speaker of the target language. Point out awkward phrasing, untranslated fragments, and formatting problems. End your assessment with a line of the form "Readability: X/10".`

const reviserSystem = `You are a professional translator revising an earlier translation. Apply the assessor's feedback to produce an improved translation. Output only the revised document, with no commentary.`

// StageFuncs builds the stage function table for the translation workflow.
// All three stages call the same worker with different system prompts; the
// assess stage additionally extracts a readability score with ex.
func StageFuncs(worker llm.Worker, ex score.Extractor) map[workflow.Stage]lifecycle.StageFunc {
	return map[workflow.Stage]lifecycle.StageFunc{
		StageTranslate: func(ctx context.Context, store *workflow.Store, input workflow.Input) (string, map[string]string, error) {
			prompt := fmt.Sprintf("Translate the following document into %s.\n\n---\n%s",
				input.Get(InputLanguage), input.Get(InputText))
			resp, err := worker.Invoke(ctx, llm.Request{System: translatorSystem, Prompt: prompt})
			if err != nil {
				return "", nil, err
			}
			return resp.Content, nil, nil
		},

		StageAssess: func(ctx context.Context, store *workflow.Store, input workflow.Input) (string, map[string]string, error) {
			current, err := CurrentTranslation(store)
			if err != nil {
				return "", nil, err
			}
			prompt := fmt.Sprintf("Target language: %s\n\nAssess the readability of this translation:\n\n---\n%s",
				input.Get(InputLanguage), current.Content)
			resp, err := worker.Invoke(ctx, llm.Request{System: assessorSystem, Prompt: prompt})
			if err != nil {
				return "", nil, err
			}
			v, err := ex.Extract(resp.Content)
			if err != nil {
				return "", nil, fmt.Errorf("assessing translation: %w", err)
			}
			fields := map[string]string{FieldScore: strconv.FormatFloat(v, 'f', -1, 64)}
			return resp.Content, fields, nil
		},

		StageRevise: func(ctx context.Context, store *workflow.Store, input workflow.Input) (string, map[string]string, error) {
			current, err := CurrentTranslation(store)
			if err != nil {
				return "", nil, err
			}
			assessment, err := store.Latest(StageAssess)
			if err != nil {
				return "", nil, fmt.Errorf("revise requires an assessment: %w", err)
			}
			prompt := fmt.Sprintf("Target language: %s\n\nCurrent translation:\n\n---\n%s\n---\n\nAssessor feedback:\n\n%s\n\nProduce the revised translation.",
				input.Get(InputLanguage), current.Content, assessment.Content)
			resp, err := worker.Invoke(ctx, llm.Request{System: reviserSystem, Prompt: prompt})
			if err != nil {
				return "", nil, err
			}
			return resp.Content, nil, nil
		},
	}
}

// CurrentTranslation returns the most recent translation text: the latest
// revision when one exists, the initial translation otherwise.
func CurrentTranslation(store *workflow.Store) (workflow.Artifact, error) {
	if store.Visited(StageRevise) {
		return store.Latest(StageRevise)
	}
	return store.Latest(StageTranslate)
}

// SupervisorSystem builds the routing policy prompt for the translation
// workflow. Threshold is the readability score below which the supervisor
// must request a revision.
func SupervisorSystem(threshold float64) string {
	return fmt.Sprintf(`You are the supervisor of a document translation workflow. You decide which stage runs next.

Rules:
- After TRANSLATE or REVISE, the translation must be assessed: choose ASSESS.
- After an assessment with a readability score below %.1f, choose REVISE.
- After an assessment with a readability score of %.1f or higher, choose FINISH.

Respond with a JSON object of the form {"decision": "<ACTION>", "reason": "<one sentence>"}.`, threshold, threshold)
}

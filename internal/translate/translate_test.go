package translate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revloop/internal/config"
	"revloop/internal/lifecycle"
	"revloop/internal/llm"
	"revloop/internal/router"
	"revloop/internal/score"
	"revloop/internal/workflow"
)

func TestDefinition(t *testing.T) {
	def, err := Definition(nil)
	require.NoError(t, err)

	assert.Equal(t, StageTranslate, def.Initial)
	assert.Equal(t, []workflow.Stage{StageTranslate, StageAssess, StageRevise}, def.Stages())
	assert.Equal(t, map[workflow.Stage]int{StageRevise: 3}, def.Maxima())
	assert.Equal(t, StageComplete, def.Terminal)
	assert.Equal(t, StageAssess, def.Final)

	stage, ok := def.ActionStage(ActionFinish)
	require.True(t, ok)
	assert.Equal(t, StageComplete, stage)
}

func TestDefinition_Overrides(t *testing.T) {
	def, err := Definition(map[string]int{"revise": 1})
	require.NoError(t, err)
	assert.Equal(t, map[workflow.Stage]int{StageRevise: 1}, def.Maxima())
}

func TestStageFuncs_Assess(t *testing.T) {
	worker := &llm.MockWorker{Responses: []string{"Reads naturally. Readability: 8/10"}}
	funcs := StageFuncs(worker, score.Extractor{})

	store := workflow.NewStore()
	store.Put(StageTranslate, "Bonjour le monde", nil)

	input := workflow.Input{InputLanguage: "French"}
	content, fields, err := funcs[StageAssess](context.Background(), store, input)
	require.NoError(t, err)
	assert.Contains(t, content, "Readability: 8/10")
	assert.Equal(t, "8", fields[FieldScore])

	// The assessor sees the translation, not the source.
	require.Len(t, worker.RecordedRequests, 1)
	assert.Contains(t, worker.RecordedRequests[0].Prompt, "Bonjour le monde")
}

func TestStageFuncs_AssessMissFails(t *testing.T) {
	worker := &llm.MockWorker{Responses: []string{"it is fine I suppose"}}
	funcs := StageFuncs(worker, score.Extractor{})

	store := workflow.NewStore()
	store.Put(StageTranslate, "Bonjour", nil)

	_, _, err := funcs[StageAssess](context.Background(), store, workflow.Input{})
	assert.ErrorIs(t, err, score.ErrScoreNotFound)
}

func TestCurrentTranslation(t *testing.T) {
	store := workflow.NewStore()
	store.Put(StageTranslate, "first", nil)

	a, err := CurrentTranslation(store)
	require.NoError(t, err)
	assert.Equal(t, "first", a.Content)

	store.Put(StageRevise, "revised", nil)
	a, err = CurrentTranslation(store)
	require.NoError(t, err)
	assert.Equal(t, "revised", a.Content)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	wf := cfg.Workflows["translate"]
	wf.OutputDir = filepath.Join(t.TempDir(), "translations")
	cfg.Workflows["translate"] = wf
	return cfg
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunner_AcceptedFirstDraft(t *testing.T) {
	cfg := testConfig(t)
	worker := &llm.MockWorker{Responses: []string{
		"Bonjour le monde",
		"Flows well. Readability: 8/10",
	}}
	runner := NewRunner(cfg, worker)
	runner.SetPolicy(&router.ScriptedPolicy{Decisions: []router.Decision{
		{Action: ActionFinish, Reason: "readable"},
	}})

	out, err := runner.Run(context.Background(), Job{
		SourcePath: writeSource(t, "Hello world"),
		Language:   "French",
	})
	require.NoError(t, err)

	assert.Equal(t, 8.0, out.Score)
	assert.Equal(t, "doc_french.txt", filepath.Base(out.OutputPath))

	data, err := os.ReadFile(out.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde", string(data))

	for _, name := range []string{"translate_v1.md", "assess_v1.md", "doc_french.yaml", "workflow_log.md", "transitions.csv"} {
		_, err := os.Stat(filepath.Join(out.ReportDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunner_RevisionLoop(t *testing.T) {
	cfg := testConfig(t)
	worker := &llm.MockWorker{Responses: []string{
		"Premier jet",
		"Too literal. Readability: 5/10",
		"Deuxieme version",
		"Much better. Readability: 9/10",
	}}
	runner := NewRunner(cfg, worker)
	runner.SetPolicy(&router.ScriptedPolicy{Decisions: []router.Decision{
		{Action: ActionRevise, Reason: "below threshold"},
		{Action: ActionAssess, Reason: "check the revision"},
		{Action: ActionFinish, Reason: "above threshold"},
	}})

	out, err := runner.Run(context.Background(), Job{Text: "original", Language: "French"})
	require.NoError(t, err)

	assert.Equal(t, 9.0, out.Score)
	data, err := os.ReadFile(out.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "Deuxieme version", string(data))
	assert.Len(t, out.Result.Store.History(StageAssess), 2)
}

func TestRunner_ForcedCompletion(t *testing.T) {
	cfg := testConfig(t)
	wf := cfg.Workflows["translate"]
	wf.MaxRevisions = map[string]int{"revise": 1}
	cfg.Workflows["translate"] = wf

	worker := &llm.MockWorker{Responses: []string{
		"T1",
		"Readability: 5/10",
		"R1",
		"Readability: 5/10",
		"R2",
		"Readability: 5/10",
	}}
	runner := NewRunner(cfg, worker)
	// The policy never accepts; the revision budget must force completion.
	runner.SetPolicy(&router.ScriptedPolicy{Decisions: []router.Decision{
		{Action: ActionRevise},
		{Action: ActionAssess},
		{Action: ActionRevise},
		{Action: ActionAssess},
		{Action: ActionRevise},
	}})

	out, err := runner.Run(context.Background(), Job{Text: "src", Language: "German"})
	require.NoError(t, err)

	records := out.Result.Journal.Records()
	last := records[len(records)-1]
	assert.True(t, last.Overridden)
	assert.Equal(t, StageComplete, last.To)
	assert.Equal(t, 2, out.Result.Counts[StageRevise])

	data, err := os.ReadFile(out.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "R2", string(data))
}

func TestRunner_LLMPolicyEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	// The same worker serves the stages and the supervisor: calls 1-2 are
	// translate and assess, call 3 is the routing decision.
	worker := &llm.MockWorker{Responses: []string{
		"Hola mundo",
		"Readability: 8/10",
		`{"decision": "FINISH", "reason": "reads well"}`,
	}}
	runner := NewRunner(cfg, worker)

	out, err := runner.Run(context.Background(), Job{Text: "Hello world", Language: "Spanish"})
	require.NoError(t, err)
	assert.Equal(t, 8.0, out.Score)
	assert.Equal(t, 3, worker.Calls())
}

func TestRunner_StageFailure(t *testing.T) {
	cfg := testConfig(t)
	worker := &llm.MockWorker{Err: errors.New("quota exceeded")}
	runner := NewRunner(cfg, worker)
	runner.SetPolicy(&router.ScriptedPolicy{})

	out, err := runner.Run(context.Background(), Job{Text: "src", Language: "French"})
	require.Error(t, err)
	assert.Nil(t, out)

	var stageErr *lifecycle.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageTranslate, stageErr.Stage)

	// The first stage failed, so no artifact files exist.
	matches, err := filepath.Glob(filepath.Join(cfg.Workflows["translate"].OutputDir, "*_v*.md"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRunner_InputValidation(t *testing.T) {
	cfg := testConfig(t)
	runner := NewRunner(cfg, &llm.MockWorker{Responses: []string{"x"}})

	_, err := runner.Run(context.Background(), Job{Language: "French"})
	assert.ErrorContains(t, err, "no source document")

	_, err = runner.Run(context.Background(), Job{Text: "x"})
	assert.ErrorContains(t, err, "no target language")
}

func TestRunBatch_StopsOnFailure(t *testing.T) {
	cfg := testConfig(t)
	worker := &llm.MockWorker{
		Responses: []string{"ok", "Readability: 8/10"},
		Err:       errors.New("provider down"),
		ErrAfter:  4,
	}
	runner := NewRunner(cfg, worker)
	runner.SetPolicy(&router.ScriptedPolicy{Decisions: []router.Decision{{Action: ActionFinish}}})

	good := writeSource(t, "first doc")
	bad := writeSource(t, "second doc")

	outcomes, err := runner.RunBatch(context.Background(), []string{good, bad}, "French", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
	assert.Len(t, outcomes, 1)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "translation_french.txt", outputName(Job{Language: "French"}))
	assert.Equal(t, "notes_brazilian_portuguese.txt",
		outputName(Job{SourcePath: "/tmp/notes.md", Language: "Brazilian Portuguese"}))
}

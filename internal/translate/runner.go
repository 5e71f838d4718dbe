package translate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"revloop/internal/config"
	"revloop/internal/lifecycle"
	"revloop/internal/llm"
	"revloop/internal/manifest"
	"revloop/internal/output"
	"revloop/internal/report"
	"revloop/internal/router"
	"revloop/internal/score"
	"revloop/internal/workflow"
)

// Job is one translation request.
type Job struct {
	// SourcePath is the document to translate. Ignored when Text is set.
	SourcePath string

	// Text is the document content, for callers that already hold it.
	Text string

	// Language is the target language.
	Language string

	// OutputDir overrides the configured output directory when non-empty.
	OutputDir string
}

// Outcome is the result of a completed translation run.
type Outcome struct {
	// Result is the full engine result: store, journal, counts.
	Result *lifecycle.Result

	// Score is the readability score of the final assessment.
	Score float64

	// OutputPath is the written translation file.
	OutputPath string

	// ReportDir is the directory holding artifacts, metadata, and the log.
	ReportDir string
}

type runMetadata struct {
	Source      string    `yaml:"source,omitempty"`
	Language    string    `yaml:"language"`
	Provider    string    `yaml:"provider"`
	Model       string    `yaml:"model"`
	Score       float64   `yaml:"score"`
	Revisions   int       `yaml:"revisions"`
	Passes      int       `yaml:"passes"`
	Output      string    `yaml:"output"`
	CompletedAt time.Time `yaml:"completed_at"`
}

// Runner executes translation jobs. Create with [NewRunner]; the worker and
// routing policy are injected so tests can run without live providers.
type Runner struct {
	cfg     *config.Config
	worker  llm.Worker
	policy  router.Policy
	printer *output.Printer
}

// NewRunner creates a runner using worker both for the stage functions and,
// by default, for the supervisor policy.
func NewRunner(cfg *config.Config, worker llm.Worker) *Runner {
	return &Runner{
		cfg:    cfg,
		worker: worker,
		policy: router.NewLLMPolicy(worker, SupervisorSystem(cfg.Score.RevisionThreshold)),
	}
}

// SetPolicy replaces the supervisor policy.
func (r *Runner) SetPolicy(p router.Policy) {
	r.policy = p
}

// SetPrinter configures optional progress output.
func (r *Runner) SetPrinter(p *output.Printer) {
	r.printer = p
}

// Run executes one translation job end to end: the workflow run, then
// persistence of the translation, the versioned artifacts, the transition
// journal, and a YAML metadata file.
func (r *Runner) Run(ctx context.Context, job Job) (*Outcome, error) {
	text := job.Text
	if text == "" {
		if job.SourcePath == "" {
			return nil, fmt.Errorf("translate: no source document given")
		}
		data, err := os.ReadFile(job.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("reading source document: %w", err)
		}
		text = string(data)
	}
	if job.Language == "" {
		return nil, fmt.Errorf("translate: no target language given")
	}

	def, err := r.definition()
	if err != nil {
		return nil, err
	}

	ex := score.Extractor{
		OnMiss:  score.MissPolicy(r.cfg.Score.OnMiss),
		Default: r.cfg.Score.Default,
	}
	rt := router.New(def, r.policy)
	rt.SetExcerptLen(r.cfg.Engine.ExcerptLength)

	loop := lifecycle.NewLoop(def, lifecycle.NewFuncExecutor(StageFuncs(r.worker, ex)), rt)
	loop.SetPassCeiling(r.cfg.Engine.PassCeiling)
	if r.printer != nil {
		loop.SetProgressCallback(func(pass int, stage workflow.Stage) {
			r.printer.Stage(pass, string(stage))
		})
	}

	input := workflow.Input{
		InputText:     text,
		InputLanguage: job.Language,
		InputSource:   job.SourcePath,
	}
	result, runErr := loop.Run(ctx, input)

	dir := job.OutputDir
	if dir == "" {
		dir = r.cfg.Workflow("translate").OutputDir
	}
	writer, err := report.NewWriter(dir)
	if err != nil {
		return nil, err
	}

	// Persist whatever the run produced, even on failure, so partial
	// work can be inspected.
	if result != nil {
		if err := writer.SaveStore(result.Store); err != nil {
			return nil, err
		}
		if err := writer.ExportJournal("transitions.csv", result.Journal); err != nil {
			return nil, err
		}
		for _, rec := range result.Journal.Records() {
			if err := writer.LogTransition(rec); err != nil {
				return nil, err
			}
			if r.printer != nil {
				r.printer.Transition(string(rec.From), string(rec.To), rec.Reason, rec.Overridden)
			}
		}
	}
	if runErr != nil {
		return nil, runErr
	}

	final, err := CurrentTranslation(result.Store)
	if err != nil {
		return nil, fmt.Errorf("run completed without a translation: %w", err)
	}
	assessed, err := result.Store.Latest(StageAssess)
	if err != nil {
		return nil, fmt.Errorf("run completed without an assessment: %w", err)
	}
	finalScore, err := strconv.ParseFloat(assessed.Field(FieldScore), 64)
	if err != nil {
		return nil, fmt.Errorf("reading final score: %w", err)
	}

	name := outputName(job)
	path, err := writer.SaveNamed(name, final.Content)
	if err != nil {
		return nil, err
	}

	meta := runMetadata{
		Source:      job.SourcePath,
		Language:    job.Language,
		Provider:    r.cfg.Provider.Name,
		Model:       r.cfg.Provider.Model,
		Score:       finalScore,
		Revisions:   result.Counts[StageRevise],
		Passes:      result.Passes,
		Output:      path,
		CompletedAt: time.Now().UTC(),
	}
	metaName := strings.TrimSuffix(name, filepath.Ext(name)) + ".yaml"
	if err := writer.SaveMetadata(metaName, meta); err != nil {
		return nil, err
	}
	if err := writer.AppendLog(fmt.Sprintf("translated %s to %s (score %.1f, %d revisions)",
		sourceLabel(job), job.Language, finalScore, meta.Revisions)); err != nil {
		return nil, err
	}

	return &Outcome{
		Result:     result,
		Score:      finalScore,
		OutputPath: path,
		ReportDir:  writer.Dir(),
	}, nil
}

// RunBatch translates several documents into the same language, stopping at
// the first failure.
func (r *Runner) RunBatch(ctx context.Context, paths []string, language, outputDir string) ([]*Outcome, error) {
	outcomes := make([]*Outcome, 0, len(paths))
	for _, path := range paths {
		out, err := r.Run(ctx, Job{SourcePath: path, Language: language, OutputDir: outputDir})
		if err != nil {
			return outcomes, fmt.Errorf("translating %s: %w", path, err)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// definition builds the workflow definition, from the configured stage
// manifest when one is set, from the built-in stages otherwise.
func (r *Runner) definition() (*workflow.Definition, error) {
	wf := r.cfg.Workflow("translate")
	if wf.Manifest != "" {
		m, err := manifest.ReadFromFile(wf.Manifest)
		if err != nil {
			return nil, err
		}
		return workflow.DefinitionFromManifest("translate", Anchors(), m)
	}
	return Definition(wf.MaxRevisions)
}

func outputName(job Job) string {
	base := "translation"
	if job.SourcePath != "" {
		b := filepath.Base(job.SourcePath)
		base = strings.TrimSuffix(b, filepath.Ext(b))
	}
	lang := strings.ToLower(strings.ReplaceAll(job.Language, " ", "_"))
	return fmt.Sprintf("%s_%s.txt", base, lang)
}

func sourceLabel(job Job) string {
	if job.SourcePath != "" {
		return job.SourcePath
	}
	return "inline text"
}

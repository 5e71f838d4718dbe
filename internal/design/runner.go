package design

import (
	"context"
	"fmt"
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
	"revloop/internal/section"
	"revloop/internal/workflow"
)

// documentSections are the final document's required top-level sections,
// each saved as its own file after a successful run.
var documentSections = []string{
	"Game Summary",
	"Rules",
	"Components List",
	"Works Cited",
	"Tester Feedback",
	"Assessment",
}

// Job is one game design request.
type Job struct {
	// Theme is the game's theme, e.g. "Hanseatic trade routes".
	Theme string

	// Players describes the player count, e.g. "2-4".
	Players string

	// Complexity describes the target complexity, e.g. "medium".
	Complexity string

	// Notes carries free-form constraints from the caller.
	Notes string

	// OutputDir overrides the configured output directory when non-empty.
	OutputDir string
}

// Outcome is the result of a completed design run.
type Outcome struct {
	// Result is the full engine result: store, journal, counts.
	Result *lifecycle.Result

	// DocumentPath is the assembled design document.
	DocumentPath string

	// SectionPaths maps section names to the files they were sliced into.
	// Sections the document is missing are absent.
	SectionPaths map[string]string

	// ReportDir is the directory holding artifacts, metadata, and the log.
	ReportDir string
}

type runMetadata struct {
	Theme       string                 `yaml:"theme"`
	Players     string                 `yaml:"players,omitempty"`
	Complexity  string                 `yaml:"complexity,omitempty"`
	Provider    string                 `yaml:"provider"`
	Model       string                 `yaml:"model"`
	Revisions   map[workflow.Stage]int `yaml:"revisions"`
	Passes      int                    `yaml:"passes"`
	Document    string                 `yaml:"document"`
	CompletedAt time.Time              `yaml:"completed_at"`
}

// Runner executes design jobs. Create with [NewRunner]; the worker and
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

// Run executes one design job end to end: the workflow run, then
// persistence of the design document, its sliced sections, the versioned
// artifacts, the transition journal, and a YAML metadata file.
func (r *Runner) Run(ctx context.Context, job Job) (*Outcome, error) {
	if job.Theme == "" {
		return nil, fmt.Errorf("design: no theme given")
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
		InputTheme:      job.Theme,
		InputPlayers:    job.Players,
		InputComplexity: job.Complexity,
		InputNotes:      job.Notes,
	}
	result, runErr := loop.Run(ctx, input)

	dir := job.OutputDir
	if dir == "" {
		dir = r.cfg.Workflow("design").OutputDir
	}
	writer, err := report.NewWriter(dir)
	if err != nil {
		return nil, err
	}

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

	docPath, err := writer.SaveNamed("game_design.md", result.Final.Content)
	if err != nil {
		return nil, err
	}

	sections := make(map[string]string)
	for _, name := range documentSections {
		body := section.Extract(result.Final.Content, name)
		if body == "" {
			continue
		}
		path, err := writer.SaveNamed(sectionFileName(name), body)
		if err != nil {
			return nil, err
		}
		sections[name] = path
	}

	meta := runMetadata{
		Theme:       job.Theme,
		Players:     job.Players,
		Complexity:  job.Complexity,
		Provider:    r.cfg.Provider.Name,
		Model:       r.cfg.Provider.Model,
		Revisions:   result.Counts,
		Passes:      result.Passes,
		Document:    docPath,
		CompletedAt: time.Now().UTC(),
	}
	if err := writer.SaveMetadata("metadata.yaml", meta); err != nil {
		return nil, err
	}
	if err := writer.AppendLog(fmt.Sprintf("designed %q in %d passes", job.Theme, result.Passes)); err != nil {
		return nil, err
	}

	return &Outcome{
		Result:       result,
		DocumentPath: docPath,
		SectionPaths: sections,
		ReportDir:    writer.Dir(),
	}, nil
}

// definition builds the workflow definition, from the configured stage
// manifest when one is set, from the built-in stages otherwise.
func (r *Runner) definition() (*workflow.Definition, error) {
	wf := r.cfg.Workflow("design")
	if wf.Manifest != "" {
		m, err := manifest.ReadFromFile(wf.Manifest)
		if err != nil {
			return nil, err
		}
		return workflow.DefinitionFromManifest("design", Anchors(), m)
	}
	return Definition(wf.MaxRevisions)
}

func sectionFileName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_") + ".md"
}

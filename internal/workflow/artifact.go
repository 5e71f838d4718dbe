package workflow

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrArtifactNotFound is a sentinel error returned by [Store.Latest] and
// [Store.Version] when no artifact has been recorded for the requested stage
// (or stage and iteration). Callers that can proceed without the artifact
// should check for it with errors.Is.
var ErrArtifactNotFound = errors.New("no artifact recorded for stage")

// Artifact is the output of one stage execution. Artifacts are immutable;
// re-running a stage supersedes the previous artifact with a new iteration
// rather than replacing it.
type Artifact struct {
	// ID uniquely identifies the artifact within and across runs.
	ID string

	// Stage is the stage that produced the artifact.
	Stage Stage

	// Iteration is the zero-based execution count of the owning stage at the
	// time of production. The first visit produces iteration 0.
	Iteration int

	// Content is the opaque text payload produced by the stage worker.
	Content string

	// Fields holds structured values derived from Content, such as an
	// extracted readability score or a sliced document section.
	Fields map[string]string

	// CreatedAt is the production timestamp.
	CreatedAt time.Time
}

// Field returns a derived field value, or empty string when absent.
func (a Artifact) Field(key string) string {
	return a.Fields[key]
}

// Store holds every artifact produced during one workflow run, keyed by
// stage and iteration. Writes are append-only; nothing is ever deleted, so
// superseded versions remain available for audit.
//
// A Store belongs to exactly one run and is not safe for concurrent use.
type Store struct {
	byStage map[Stage][]Artifact
	stages  []Stage
}

// NewStore creates an empty artifact store.
func NewStore() *Store {
	return &Store{byStage: make(map[Stage][]Artifact)}
}

// Put records a new artifact for a stage and returns it. The iteration index
// is assigned from the number of artifacts the stage has already produced.
func (s *Store) Put(stage Stage, content string, fields map[string]string) Artifact {
	history := s.byStage[stage]
	if len(history) == 0 {
		s.stages = append(s.stages, stage)
	}

	art := Artifact{
		ID:        uuid.NewString(),
		Stage:     stage,
		Iteration: len(history),
		Content:   content,
		Fields:    fields,
		CreatedAt: time.Now(),
	}
	s.byStage[stage] = append(history, art)
	return art
}

// Latest returns the most recent artifact for a stage, or
// [ErrArtifactNotFound] when the stage has never produced one.
func (s *Store) Latest(stage Stage) (Artifact, error) {
	history := s.byStage[stage]
	if len(history) == 0 {
		return Artifact{}, ErrArtifactNotFound
	}
	return history[len(history)-1], nil
}

// Version returns the artifact a stage produced at a specific iteration.
func (s *Store) Version(stage Stage, iteration int) (Artifact, error) {
	history := s.byStage[stage]
	if iteration < 0 || iteration >= len(history) {
		return Artifact{}, ErrArtifactNotFound
	}
	return history[iteration], nil
}

// History returns every artifact a stage has produced, oldest first. The
// returned slice is a copy.
func (s *Store) History(stage Stage) []Artifact {
	history := s.byStage[stage]
	out := make([]Artifact, len(history))
	copy(out, history)
	return out
}

// Visited reports whether a stage has produced at least one artifact.
func (s *Store) Visited(stage Stage) bool {
	return len(s.byStage[stage]) > 0
}

// Stages returns the stages that have produced artifacts, in first-write
// order.
func (s *Store) Stages() []Stage {
	out := make([]Stage, len(s.stages))
	copy(out, s.stages)
	return out
}

// Len returns the total number of artifacts across all stages.
func (s *Store) Len() int {
	n := 0
	for _, history := range s.byStage {
		n += len(history)
	}
	return n
}

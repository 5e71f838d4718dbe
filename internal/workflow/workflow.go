// Package workflow defines the data model for supervisor-routed workflow runs.
//
// A workflow is a closed set of named stages with one initial stage and one
// terminal stage. Each pass through the run loop executes the current stage,
// records the produced artifact, and asks the router for the next stage.
// Revisable stages carry a revision budget; a counter tracks how often the
// router has sent the run back to a stage it already visited.
//
// Key types:
//   - [Definition] - the stage set, canonical order, and revision maxima
//   - [Artifact] / [Store] - append-only, versioned stage outputs
//   - [Counter] - per-stage revision counts against configured maxima
//   - [Journal] / [TransitionRecord] - append-only transition log
//
// One run owns one Store, one Counter, and one Journal; none of them is
// shared across runs and none is safe for concurrent use.
package workflow

// Stage is a named step of a workflow. Stage values are defined per workflow
// (see the translate and design packages for the shipped sets).
type Stage string

// Input carries the caller-supplied parameters for one workflow run, such as
// the document to translate or the game preferences. Stage functions read
// from it; nothing in the engine writes to it.
type Input map[string]string

// Get returns the value for key, or empty string when absent.
func (in Input) Get(key string) string {
	return in[key]
}

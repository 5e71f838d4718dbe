package workflow

import (
	"fmt"
)

// StageSpec describes one stage of a workflow definition.
type StageSpec struct {
	// Stage is the stage name.
	Stage Stage

	// Action is the enumerated action keyword the supervisor uses to select
	// this stage (e.g., "MECHANIC_DESIGN", "REVISE"). Empty for stages the
	// supervisor cannot select directly.
	Action string

	// Next is the canonical forward successor. The router advances here when
	// the supervisor produces no parseable decision.
	Next Stage

	// MaxRevisions bounds how often the run may return to this stage after
	// its first visit. Zero means unbounded.
	MaxRevisions int
}

// Anchors names the distinguished stages of a workflow.
type Anchors struct {
	// Terminal is the unique end stage. It has no outgoing transitions and
	// no stage function.
	Terminal Stage

	// Final is the only stage from which the supervisor may select Terminal.
	Final Stage

	// Fallback is the forward stage a run is forced into when a revision
	// budget is exhausted. May equal Terminal.
	Fallback Stage

	// CompleteAction is the action keyword that selects Terminal (e.g.,
	// "FINISH" or "COMPLETE").
	CompleteAction string
}

// Definition is the static description of a workflow: its stage set, the
// canonical forward order, the revision maxima, and the routing anchors.
//
// Build one in code (see the translate and design packages) or from a stage
// manifest via [DefinitionFromManifest].
type Definition struct {
	// Name identifies the workflow in logs and reports.
	Name string

	// Initial is the stage every run starts in. The router moves out of it
	// without consulting the supervisor.
	Initial Stage

	Anchors

	specs   map[Stage]StageSpec
	actions map[string]Stage
	order   []Stage
}

// NewDefinition assembles a [Definition] from ordered stage specs. The first
// spec is the initial stage; spec order fixes the canonical forward order.
// The terminal stage appears only as a Next target, never as a spec.
func NewDefinition(name string, anchors Anchors, specs []StageSpec) (*Definition, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("workflow %s: no stages defined", name)
	}

	d := &Definition{
		Name:    name,
		Initial: specs[0].Stage,
		Anchors: anchors,
		specs:   make(map[Stage]StageSpec, len(specs)),
		actions: make(map[string]Stage, len(specs)+1),
		order:   make([]Stage, 0, len(specs)),
	}

	for _, spec := range specs {
		if spec.Stage == anchors.Terminal {
			return nil, fmt.Errorf("workflow %s: terminal stage %s must not carry a spec", name, anchors.Terminal)
		}
		if _, dup := d.specs[spec.Stage]; dup {
			return nil, fmt.Errorf("workflow %s: duplicate stage %s", name, spec.Stage)
		}
		d.specs[spec.Stage] = spec
		d.order = append(d.order, spec.Stage)
		if spec.Action != "" {
			d.actions[spec.Action] = spec.Stage
		}
	}
	if anchors.CompleteAction != "" {
		d.actions[anchors.CompleteAction] = anchors.Terminal
	}

	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Definition) validate() error {
	if _, ok := d.specs[d.Final]; !ok {
		return fmt.Errorf("workflow %s: final stage %s is not defined", d.Name, d.Final)
	}
	if d.Fallback != d.Terminal {
		if _, ok := d.specs[d.Fallback]; !ok {
			return fmt.Errorf("workflow %s: fallback stage %s is not defined", d.Name, d.Fallback)
		}
	}
	for _, spec := range d.specs {
		if spec.Next == "" {
			return fmt.Errorf("workflow %s: stage %s has no successor", d.Name, spec.Stage)
		}
		if spec.Next != d.Terminal {
			if _, ok := d.specs[spec.Next]; !ok {
				return fmt.Errorf("workflow %s: stage %s points at undefined successor %s", d.Name, spec.Stage, spec.Next)
			}
		}
	}
	return nil
}

// Stages returns the defined stages in canonical order, terminal excluded.
func (d *Definition) Stages() []Stage {
	out := make([]Stage, len(d.order))
	copy(out, d.order)
	return out
}

// Spec returns the spec for a stage.
func (d *Definition) Spec(s Stage) (StageSpec, bool) {
	spec, ok := d.specs[s]
	return spec, ok
}

// NextInOrder returns the canonical forward successor of a stage. The second
// return is false for the terminal stage and for unknown stages.
func (d *Definition) NextInOrder(s Stage) (Stage, bool) {
	spec, ok := d.specs[s]
	if !ok {
		return "", false
	}
	return spec.Next, true
}

// ActionStage maps a supervisor action keyword to its stage.
func (d *Definition) ActionStage(action string) (Stage, bool) {
	s, ok := d.actions[action]
	return s, ok
}

// Actions returns the action keywords in canonical stage order, with the
// complete action last. This is the enumerated action set offered to the
// supervisor.
func (d *Definition) Actions() []string {
	out := make([]string, 0, len(d.actions))
	for _, stage := range d.order {
		if spec := d.specs[stage]; spec.Action != "" {
			out = append(out, spec.Action)
		}
	}
	if d.CompleteAction != "" {
		out = append(out, d.CompleteAction)
	}
	return out
}

// Maxima returns the per-stage revision maxima for stages that have one.
func (d *Definition) Maxima() map[Stage]int {
	out := make(map[Stage]int)
	for stage, spec := range d.specs {
		if spec.MaxRevisions > 0 {
			out[stage] = spec.MaxRevisions
		}
	}
	return out
}

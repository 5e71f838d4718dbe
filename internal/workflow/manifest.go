package workflow

import (
	"revloop/internal/manifest"
)

// DefinitionFromManifest builds a [Definition] from a parsed stage manifest.
//
// The manifest entries define the stage set, the canonical order (from row
// order), the action keywords, and the revision maxima. The anchors are
// supplied by the caller because they name stages the manifest only
// references (the terminal stage has no row).
func DefinitionFromManifest(name string, anchors Anchors, m *manifest.Manifest) (*Definition, error) {
	specs := make([]StageSpec, 0, len(m.Entries))
	for _, entry := range m.Entries {
		specs = append(specs, StageSpec{
			Stage:        Stage(entry.Stage),
			Action:       entry.Action,
			Next:         Stage(entry.NextStage),
			MaxRevisions: entry.MaxRevisions,
		})
	}
	return NewDefinition(name, anchors, specs)
}

// Package manifest reads workflow stage manifest files.
//
// A stage manifest catalogs the stages of a workflow with their supervisor
// action keywords, canonical successors, and revision budgets. This enables
// defining a workflow from a file instead of hardcoding the stage set.
//
// CSV format:
//
//	stage,action,next_stage,max_revisions
//	translate,TRANSLATE,assess,0
//	assess,ASSESS,complete,0
//	revise,REVISE,assess,3
//
// Rows are ordered by canonical execution sequence: the first row is the
// initial stage. A stage that only appears in the next_stage column is the
// workflow's terminal stage.
package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Entry represents a single row in a stage manifest CSV.
type Entry struct {
	// Stage is the stage name, unique within the manifest.
	Stage string

	// Action is the supervisor action keyword that selects this stage.
	// Empty for stages the supervisor cannot select directly.
	Action string

	// NextStage is the canonical forward successor.
	NextStage string

	// MaxRevisions bounds revision loops back into this stage. Zero means
	// unbounded.
	MaxRevisions int
}

// Manifest holds all stage entries parsed from a manifest CSV file, in
// canonical execution order.
type Manifest struct {
	Entries []Entry
}

// ReadFromFile reads and parses a stage manifest CSV file.
func ReadFromFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stage manifest: %w", err)
	}
	defer f.Close()

	return readFromReader(f)
}

// ReadFromString parses a stage manifest from a CSV string.
// This is useful for testing and for embedding manifest data.
func ReadFromString(data string) (*Manifest, error) {
	return readFromReader(strings.NewReader(data))
}

func readFromReader(r io.Reader) (*Manifest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse stage manifest: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("stage manifest is empty")
	}

	m := &Manifest{}
	for i, record := range records {
		// Skip the header row.
		if i == 0 && strings.EqualFold(record[0], "stage") {
			continue
		}
		if len(record) < 4 {
			return nil, fmt.Errorf("stage manifest row %d: expected 4 columns, got %d", i+1, len(record))
		}

		stage := strings.TrimSpace(record[0])
		if stage == "" {
			return nil, fmt.Errorf("stage manifest row %d: empty stage name", i+1)
		}

		maxRevisions := 0
		if raw := strings.TrimSpace(record[3]); raw != "" {
			maxRevisions, err = strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("stage manifest row %d: invalid max_revisions %q: %w", i+1, raw, err)
			}
			if maxRevisions < 0 {
				return nil, fmt.Errorf("stage manifest row %d: negative max_revisions %d", i+1, maxRevisions)
			}
		}

		m.Entries = append(m.Entries, Entry{
			Stage:        stage,
			Action:       strings.TrimSpace(record[1]),
			NextStage:    strings.TrimSpace(record[2]),
			MaxRevisions: maxRevisions,
		})
	}

	if len(m.Entries) == 0 {
		return nil, fmt.Errorf("stage manifest has no stage rows")
	}
	return m, nil
}

// Package report persists workflow results to disk.
//
// A [Writer] owns one output directory per run. It saves versioned
// artifact files, arbitrary named documents, a YAML metadata file
// written atomically, an append-only human-readable run log, and a CSV
// export of the transition journal.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"revloop/internal/workflow"
)

const logFileName = "workflow_log.md"

// Writer persists run output under a single directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed and returns a writer
// rooted there.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// SaveArtifact writes one artifact as <stage>_v<version>.md, where
// version is the 1-based iteration. Returns the written path.
func (w *Writer) SaveArtifact(a workflow.Artifact) (string, error) {
	name := fmt.Sprintf("%s_v%d.md", sanitize(string(a.Stage)), a.Iteration+1)
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(a.Content), 0o644); err != nil {
		return "", fmt.Errorf("saving artifact %s: %w", name, err)
	}
	return path, nil
}

// SaveStore writes every version of every artifact in the store.
func (w *Writer) SaveStore(store *workflow.Store) error {
	for _, stage := range store.Stages() {
		for _, a := range store.History(stage) {
			if _, err := w.SaveArtifact(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// SaveNamed writes content to a file with the given name.
func (w *Writer) SaveNamed(name, content string) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("saving %s: %w", name, err)
	}
	return path, nil
}

// SaveMetadata marshals meta to YAML and writes it atomically: the file
// is written to a temp name in the same directory and renamed into
// place, so readers never observe a partial file.
func (w *Writer) SaveMetadata(name string, meta any) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	path := filepath.Join(w.dir, name)
	tmp, err := os.CreateTemp(w.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp metadata file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing metadata file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing metadata file: %w", err)
	}
	return nil
}

// AppendLog appends a timestamped entry to workflow_log.md. The log is
// append-only; earlier runs in the same directory are preserved.
func (w *Writer) AppendLog(entry string) error {
	f, err := os.OpenFile(filepath.Join(w.dir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	ts := time.Now().Format("2006-01-02 15:04:05")
	if _, err := fmt.Fprintf(f, "- %s %s\n", ts, entry); err != nil {
		return fmt.Errorf("appending to run log: %w", err)
	}
	return nil
}

// LogTransition records one routing decision in the run log.
func (w *Writer) LogTransition(rec workflow.TransitionRecord) error {
	line := fmt.Sprintf("%s -> %s: %s", rec.From, rec.To, rec.Reason)
	if rec.Overridden {
		line += " (forced)"
	}
	return w.AppendLog(line)
}

// ExportJournal writes the full transition journal as CSV.
func (w *Writer) ExportJournal(name string, j *workflow.Journal) error {
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("creating journal export: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"from", "to", "reason", "overridden", "at"}); err != nil {
		return fmt.Errorf("writing journal header: %w", err)
	}
	for _, rec := range j.Records() {
		row := []string{
			string(rec.From),
			string(rec.To),
			rec.Reason,
			strconv.FormatBool(rec.Overridden),
			rec.At.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing journal row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing journal export: %w", err)
	}
	return nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

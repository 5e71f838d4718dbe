package workflow

import "time"

// TransitionRecord documents one routing decision: where the run was, where
// it went, why, and the revision counts at that moment. Records are written
// for observability only; nothing reads them back to make control decisions.
type TransitionRecord struct {
	From   Stage
	To     Stage
	Reason string

	// Overridden is true when the recorded transition came from the
	// exhausted-budget override rather than the supervisor's choice.
	Overridden bool

	// Counts is the revision counter snapshot taken after the decision.
	Counts map[Stage]int

	At time.Time
}

// Journal is the append-only transition log for one workflow run.
type Journal struct {
	records []TransitionRecord
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Append adds a record. Records are never mutated or removed afterwards.
func (j *Journal) Append(rec TransitionRecord) {
	j.records = append(j.records, rec)
}

// Records returns a copy of all records in append order.
func (j *Journal) Records() []TransitionRecord {
	out := make([]TransitionRecord, len(j.records))
	copy(out, j.records)
	return out
}

// Len returns the number of recorded transitions.
func (j *Journal) Len() int {
	return len(j.records)
}

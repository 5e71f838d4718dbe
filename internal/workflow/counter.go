package workflow

// Counter tracks how often the router has sent a run back to each revisable
// stage, against the per-stage maxima from the workflow definition.
//
// The count for a stage is incremented only when the router proposes
// returning to a stage the run has already visited, so a value of zero means
// "at most the first visit". Stages without a configured maximum are never
// exceeded. The count never grows past max+1: reaching max+1 is what fires
// the forced-forward override, after which the router stops proposing the
// stage.
type Counter struct {
	counts map[Stage]int
	maxima map[Stage]int
}

// NewCounter creates a counter with the given per-stage maxima. A nil map is
// allowed and leaves every stage unbounded.
func NewCounter(maxima map[Stage]int) *Counter {
	m := make(map[Stage]int, len(maxima))
	for stage, max := range maxima {
		m[stage] = max
	}
	return &Counter{
		counts: make(map[Stage]int),
		maxima: m,
	}
}

// Increment bumps the revision count for a stage and returns the new value.
func (c *Counter) Increment(stage Stage) int {
	c.counts[stage]++
	return c.counts[stage]
}

// Count returns the revision count for a stage, zero if never incremented.
func (c *Counter) Count(stage Stage) int {
	return c.counts[stage]
}

// Maximum returns the configured maximum for a stage, and whether one is set.
func (c *Counter) Maximum(stage Stage) (int, bool) {
	max, ok := c.maxima[stage]
	return max, ok
}

// Exceeded reports whether the revision count for a stage has passed its
// configured maximum. Stages without a maximum are never exceeded.
func (c *Counter) Exceeded(stage Stage) bool {
	max, ok := c.maxima[stage]
	if !ok {
		return false
	}
	return c.counts[stage] > max
}

// Snapshot returns a copy of the current counts, for transition records.
func (c *Counter) Snapshot() map[Stage]int {
	out := make(map[Stage]int, len(c.counts))
	for stage, n := range c.counts {
		out[stage] = n
	}
	return out
}

// Package score extracts numeric quality scores from free-text worker
// responses.
//
// Assessment workers are asked to rate content on a 1-10 scale but answer in
// prose. The extractor applies two patterns in order: an "X/10" fraction,
// then a labeled value ("score: X", "rating: X", "grade: X"). What happens
// when neither matches is an explicit policy: [MissFail] (the default)
// returns [ErrScoreNotFound]; [MissAssume] substitutes a configured neutral
// default. The policy is configuration, never guessed.
package score

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrScoreNotFound is a sentinel error indicating that no numeric score
// could be extracted from a response. Returned under [MissFail]; callers
// treat it as a stage validation failure.
var ErrScoreNotFound = errors.New("no numeric score found in response")

// MissPolicy selects the behavior when no score pattern matches.
type MissPolicy string

const (
	// MissFail fails extraction with [ErrScoreNotFound]. This is the
	// default: no silent score is substituted where correctness matters.
	MissFail MissPolicy = "fail"

	// MissAssume substitutes [Extractor.Default] instead of failing.
	MissAssume MissPolicy = "assume"
)

var (
	fractionPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*10`)
	labeledPattern  = regexp.MustCompile(`(?i)(?:score|rating|grade)\s*:\s*(\d+(?:\.\d+)?)`)
)

// Extractor extracts scores under a configured miss policy.
type Extractor struct {
	// OnMiss is the behavior when no pattern matches. Empty means MissFail.
	OnMiss MissPolicy

	// Default is the score substituted under MissAssume.
	Default float64
}

// Extract returns the first score found in text.
//
// Patterns are tried in order: "X/10" first, then "score|rating|grade: X".
// On a miss the configured policy applies.
func (e Extractor) Extract(text string) (float64, error) {
	if m := fractionPattern.FindStringSubmatch(text); m != nil {
		return parseScore(m[1])
	}
	if m := labeledPattern.FindStringSubmatch(text); m != nil {
		return parseScore(m[1])
	}

	if e.OnMiss == MissAssume {
		return e.Default, nil
	}
	return 0, ErrScoreNotFound
}

func parseScore(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q: %w", raw, err)
	}
	return v, nil
}

package router

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// Supervisor responses are requested as a JSON object with "decision" and
// "reason" keys, but models wrap it in prose or code fences often enough
// that strict unmarshaling alone is not reliable.
var (
	fencedJSON    = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	inlineJSON    = regexp.MustCompile(`(?s)\{.*?\}`)
	decisionField = regexp.MustCompile(`"decision"\s*:\s*"([^"]+)"`)
	reasonField   = regexp.MustCompile(`"reason"\s*:\s*"([^"]+)"`)
)

// ParseDecision extracts a supervisor decision from free text.
//
// Extraction order: a JSON object in a code fence, then any inline JSON
// object, decoded strictly first and by field regexp second; finally a
// whole-word scan for a known action keyword anywhere in the text. The
// returned action is always one of known (uppercased); ok is false when
// nothing recognizable was found.
func ParseDecision(text string, known []string) (Decision, bool) {
	blob := ""
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		blob = m[1]
	} else if m := inlineJSON.FindString(text); m != "" {
		blob = m
	}

	if blob != "" {
		var parsed struct {
			Decision string `json:"decision"`
			Reason   string `json:"reason"`
		}
		if err := json.Unmarshal([]byte(blob), &parsed); err == nil {
			if action, ok := matchAction(parsed.Decision, known); ok {
				return Decision{Action: action, Reason: parsed.Reason}, true
			}
		}

		// Models emit almost-JSON (unquoted keys, trailing text) often
		// enough that a field-level fallback is worth having.
		if m := decisionField.FindStringSubmatch(blob); m != nil {
			if action, ok := matchAction(m[1], known); ok {
				d := Decision{Action: action}
				if rm := reasonField.FindStringSubmatch(blob); rm != nil {
					d.Reason = rm[1]
				}
				return d, true
			}
		}
	}

	if action, ok := scanKeywords(text, known); ok {
		return Decision{Action: action, Reason: "action keyword found in response"}, true
	}

	return Decision{}, false
}

// matchAction normalizes a proposed action and checks it against the known
// set.
func matchAction(proposed string, known []string) (string, bool) {
	candidate := strings.ToUpper(strings.TrimSpace(proposed))
	for _, action := range known {
		if candidate == strings.ToUpper(action) {
			return action, true
		}
	}
	return "", false
}

// scanKeywords looks for a known action keyword as a whole word in the text,
// longest keyword first so e.g. REVISE_MECHANICS wins over shorter actions
// contained in the same response.
func scanKeywords(text string, known []string) (string, bool) {
	upper := strings.ToUpper(text)

	ordered := make([]string, len(known))
	copy(ordered, known)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})

	for _, action := range ordered {
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToUpper(action)) + `\b`)
		if pattern.MatchString(upper) {
			return action, true
		}
	}
	return "", false
}

// Package section slices named sections out of Markdown-formatted text.
//
// This is a textual convenience for splitting a compiled design document
// into its report files; it lives outside the engine on purpose.
package section

import "strings"

// Extract returns the section of text that starts at a "# Name" or
// "## Name" header and runs until the next header at any level. The match is
// case-insensitive and includes the header line. Returns empty string when
// the section is absent.
func Extract(text, name string) string {
	headers := []string{
		"# " + strings.ToLower(name),
		"## " + strings.ToLower(name),
	}

	var out []string
	inSection := false
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		starts := false
		for _, h := range headers {
			if strings.HasPrefix(lower, h) {
				starts = true
				break
			}
		}

		switch {
		case starts:
			inSection = true
			out = append(out, line)
		case inSection && strings.HasPrefix(line, "#"):
			return strings.Join(out, "\n")
		case inSection:
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}

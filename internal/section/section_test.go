package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const doc = `# Game Summary

A trading game.

# Rules

Roll dice.
Move pieces.

## Works Cited

- Some book.
`

func TestExtract(t *testing.T) {
	got := Extract(doc, "Rules")
	assert.Equal(t, "# Rules\n\nRoll dice.\nMove pieces.\n", got)
}

func TestExtract_CaseInsensitive(t *testing.T) {
	got := Extract(doc, "game summary")
	assert.Equal(t, "# Game Summary\n\nA trading game.\n", got)
}

func TestExtract_SubHeader(t *testing.T) {
	got := Extract(doc, "Works Cited")
	assert.Equal(t, "## Works Cited\n\n- Some book.\n", got)
}

func TestExtract_LastSectionRunsToEnd(t *testing.T) {
	got := Extract("# Only\n\nbody", "Only")
	assert.Equal(t, "# Only\n\nbody", got)
}

func TestExtract_Absent(t *testing.T) {
	assert.Equal(t, "", Extract(doc, "Assessment"))
}

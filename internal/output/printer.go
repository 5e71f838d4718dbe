// Package output formats terminal output for workflow runs.
//
// The printer renders stage banners, transition lines, and truncated
// artifact previews with lipgloss styling. All output goes through an
// injectable writer so tests can capture it.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	stageStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	reasonStyle = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// Printer writes styled run progress to a terminal.
type Printer struct {
	w io.Writer

	// TruncateLines and TruncateLength bound artifact previews.
	TruncateLines  int
	TruncateLength int
}

// NewPrinter creates a printer writing to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a printer writing to w. Used by tests to
// capture output.
func NewPrinterWithWriter(w io.Writer) *Printer {
	return &Printer{
		w:              w,
		TruncateLines:  20,
		TruncateLength: 100,
	}
}

// Banner prints a run-level heading.
func (p *Printer) Banner(title string) {
	fmt.Fprintln(p.w, bannerStyle.Render("== "+title+" =="))
}

// Stage announces a stage execution with its 1-based pass number.
func (p *Printer) Stage(pass int, stage string) {
	fmt.Fprintf(p.w, "%s %s\n", stageStyle.Render(fmt.Sprintf("[pass %d]", pass)), stage)
}

// Transition prints a routing decision. Overridden transitions are
// highlighted because they mean a revision budget ran out.
func (p *Printer) Transition(from, to, reason string, overridden bool) {
	arrow := fmt.Sprintf("%s -> %s", from, to)
	if overridden {
		fmt.Fprintf(p.w, "%s %s\n", warnStyle.Render("! "+arrow), reasonStyle.Render(reason))
		return
	}
	fmt.Fprintf(p.w, "  %s %s\n", arrow, reasonStyle.Render(reason))
}

// Preview prints a truncated view of artifact content.
func (p *Printer) Preview(content string) {
	lines := strings.Split(content, "\n")
	shown := lines
	omitted := 0
	if p.TruncateLines > 0 && len(lines) > p.TruncateLines {
		shown = lines[:p.TruncateLines]
		omitted = len(lines) - p.TruncateLines
	}

	for _, line := range shown {
		if p.TruncateLength > 0 && len(line) > p.TruncateLength {
			line = line[:p.TruncateLength-3] + "..."
		}
		fmt.Fprintf(p.w, "    %s\n", line)
	}
	if omitted > 0 {
		fmt.Fprintf(p.w, "    %s\n", reasonStyle.Render(fmt.Sprintf("... (%d more lines)", omitted)))
	}
}

// Success prints a completion line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, okStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Failure prints a failure line.
func (p *Printer) Failure(format string, args ...any) {
	fmt.Fprintln(p.w, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Info prints an unstyled informational line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

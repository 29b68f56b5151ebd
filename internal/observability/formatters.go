// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/pagegate/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

var (
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
	dim     = lipgloss.Color("#6B7280")
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer

	passStyle  lipgloss.Style
	failStyle  lipgloss.Style
	warnStyle  lipgloss.Style
	dimStyle   lipgloss.Style
	titleStyle lipgloss.Style
	boxStyle   lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer.
// Colors are only emitted when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:        out,
		passStyle:  r.NewStyle().Foreground(success).Bold(true),
		failStyle:  r.NewStyle().Foreground(danger).Bold(true),
		warnStyle:  r.NewStyle().Foreground(warning),
		dimStyle:   r.NewStyle().Foreground(dim),
		titleStyle: r.NewStyle().Bold(true),
		boxStyle: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dim).
			Padding(0, 2),
	}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		// Truncate long lines
		if r := []rune(line); len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintVerdict outputs a styled summary of a verdict: status header, errors and warnings.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintVerdict(v *types.Verdict) {
	if v == nil {
		fmt.Fprintln(p.out, p.dimStyle.Render("No verdict available."))
		return
	}

	status := p.passStyle.Render("PASSED")
	if !v.Valid {
		status = p.failStyle.Render("FAILED")
	}
	stats := p.dimStyle.Render(fmt.Sprintf("%s mode · %d error(s) · %d warning(s) · %dms",
		v.Mode, len(v.Errors), len(v.Warnings), v.ProcessingTimeMs))
	fmt.Fprintln(p.out, p.boxStyle.Render(p.titleStyle.Render("Validation")+" "+status+"\n"+stats))

	for _, e := range v.Errors {
		fmt.Fprintf(p.out, "  %s %s\n", p.failStyle.Render("✗"), e)
	}
	for _, w := range v.Warnings {
		fmt.Fprintf(p.out, "  %s %s\n", p.warnStyle.Render("!"), w)
	}
}

// PrintStages outputs a per-stage breakdown of a verdict's step results.
func (p *Printer) PrintStages(v *types.Verdict) {
	if v == nil || len(v.ValidationSteps) == 0 {
		return
	}

	names := make([]string, 0, len(v.ValidationSteps))
	for name := range v.ValidationSteps {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		step := v.ValidationSteps[name]
		mark := "ok"
		if !step.Valid {
			mark = "FAIL"
		}
		sb.WriteString(fmt.Sprintf("%-12s %-5s %d error(s), %d warning(s)\n", name, mark, len(step.Errors), len(step.Warnings)))
		writeCapped(&sb, step.Errors, "    ✗ ")
		writeCapped(&sb, step.Warnings, "    ! ")
	}
	p.printBox("VALIDATION STAGES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResponsive outputs the per-viewport results of the dynamic stage.
func (p *Printer) PrintResponsive(result *types.ResponsiveResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("Engine error: %s\n", result.Error))
	}
	sb.WriteString(fmt.Sprintf("Issues: %d total (%d critical, %d warning)\n",
		result.Summary.Total, result.Summary.Critical, result.Summary.Warning))
	for _, vr := range result.Viewports {
		mark := "PASS"
		if !vr.Passed {
			mark = "FAIL"
		}
		sb.WriteString(fmt.Sprintf("\n[%s] %s\n", mark, vr.Viewport))
		msgs := make([]string, 0, len(vr.Issues))
		for _, issue := range vr.Issues {
			msgs = append(msgs, fmt.Sprintf("%s: %s", issue.Severity, issue.Message))
		}
		writeCapped(&sb, msgs, "  • ")
	}
	p.printBox("RESPONSIVE TEST", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAdvice outputs a deployment recommendation on one line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAdvice(advice types.DeployAdvice) {
	style := p.passStyle
	switch advice.Severity {
	case types.AdviceError:
		style = p.failStyle
	case types.AdviceWarning:
		style = p.warnStyle
	}
	label := "deploy: yes"
	if !advice.CanDeploy {
		label = "deploy: no"
	}
	fmt.Fprintf(p.out, "%s  %s\n", style.Render(label), advice.Recommendation)
}

// PrintProgress outputs a single progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(stage, status, message string) {
	fmt.Fprintf(p.out, "%s %s\n", p.dimStyle.Render(fmt.Sprintf("[%s/%s]", stage, status)), message)
}

func writeCapped(sb *strings.Builder, items []string, prefix string) {
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(prefix + items[i] + "\n")
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("%s... and %d more\n", strings.Repeat(" ", len(prefix)-2), len(items)-maxItemsToShow))
	}
}

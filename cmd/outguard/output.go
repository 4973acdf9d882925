package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/outguard/internal/finding"
	"github.com/fyrsmithlabs/outguard/internal/secrets"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("51"))

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	previewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	criticalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	highStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true)

	mediumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("46"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)
)

func severityStyle(s finding.Severity) lipgloss.Style {
	switch s {
	case finding.SeverityCritical:
		return criticalStyle
	case finding.SeverityHigh:
		return highStyle
	case finding.SeverityMedium:
		return mediumStyle
	default:
		return okStyle
	}
}

// renderFindings writes a scan result for a terminal.
func renderFindings(w io.Writer, findings []finding.Finding, suppressed bool, alert string) {
	if len(findings) == 0 {
		fmt.Fprintln(w, okStyle.Render("✓ no secrets detected"))
		return
	}

	top := finding.MaxSeverity(findings)
	fmt.Fprintf(w, "%s %s\n",
		headerStyle.Render(fmt.Sprintf("%d finding(s)", len(findings))),
		severityStyle(top).Render(top.Label()))

	width := 0
	for _, f := range findings {
		if len(f.Rule) > width {
			width = len(f.Rule)
		}
	}
	for _, f := range findings {
		fmt.Fprintf(w, "  %s  %s  %s\n",
			severityStyle(f.Severity).Render(fmt.Sprintf("%-8s", f.Severity.Label())),
			ruleStyle.Render(fmt.Sprintf("%-*s", width, f.Rule)),
			previewStyle.Render(f.Preview))
	}

	switch {
	case suppressed:
		fmt.Fprintln(w, dimStyle.Render("suppressed: medium-only findings in a short message"))
	case alert != "":
		fmt.Fprintln(w, alertStyle.Render(alert))
	default:
		fmt.Fprintln(w, dimStyle.Render("would be logged without an alert"))
	}
}

// renderSources writes one line per secret source. Values are never shown.
func renderSources(w io.Writer, results []secrets.SourceResult, known int) {
	fmt.Fprintln(w, headerStyle.Render("secret sources"))
	for _, r := range results {
		status := okStyle.Render(r.Status.String())
		if !r.Loaded() {
			status = mediumStyle.Render(r.Status.String())
		}
		line := fmt.Sprintf("  %-11s %s  %s", status, r.Source, dimStyle.Render(fmt.Sprintf("(%d values)", len(r.Values))))
		if r.Err != nil && !r.Loaded() {
			line += "\n    " + dimStyle.Render(strings.TrimSpace(r.Err.Error()))
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%s %d\n", headerStyle.Render("known secrets:"), known)
}

// Package ui renders run results for the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/browsertest/pkg/runner"
)

var (
	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")) // green

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // red

	timeoutStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")) // orange

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // gray
)

// verdictStyle picks the style for a verdict.
func verdictStyle(v runner.Verdict) lipgloss.Style {
	switch v {
	case runner.VerdictPassed:
		return passStyle
	case runner.VerdictFailed:
		return failStyle
	default:
		return timeoutStyle
	}
}

// verdictLabel is the banner word for a verdict.
func verdictLabel(v runner.Verdict) string {
	switch v {
	case runner.VerdictPassed:
		return "PASS"
	case runner.VerdictFailed:
		return "FAIL"
	default:
		return "TIMEOUT"
	}
}

// RenderResult formats the final run report: a styled verdict banner
// followed by a few summary details.
func RenderResult(res *runner.Result) string {
	var b strings.Builder

	style := verdictStyle(res.Verdict)
	b.WriteString(style.Render(verdictLabel(res.Verdict)))
	if res.Message != "" {
		b.WriteString(" ")
		b.WriteString(res.Message)
	}
	b.WriteString("\n")

	b.WriteString(detailStyle.Render(fmt.Sprintf(
		"browser: %s  console lines: %d  duration: %s",
		res.Summary.BrowserVariant,
		res.Summary.ConsoleLines,
		res.Summary.Duration.Round(time.Millisecond),
	)))
	b.WriteString("\n")

	return b.String()
}

// RenderError formats a setup or internal failure.
func RenderError(err error) string {
	return failStyle.Render("ERROR") + " " + err.Error() + "\n"
}

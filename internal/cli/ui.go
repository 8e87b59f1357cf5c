package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowlane/pkg/guardrail"
)

// out is where command output goes. Tests swap it for a buffer.
var out io.Writer = os.Stdout

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorError  = lipgloss.Color("167")
	colorCmd    = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

// Styles shared with the lane editor view.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)
	StyleError     = lipgloss.NewStyle().Foreground(colorError)
)

var (
	styleValue   = lipgloss.NewStyle().Foreground(colorText)
	styleKey     = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorCmd)
	styleHeader  = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
)

// status is a one-line message prefix: an icon, its color and whether the
// message text takes the color too.
type status struct {
	icon  string
	style lipgloss.Style
	tint  bool
}

var (
	statusOK    = status{"✓", lipgloss.NewStyle().Foreground(colorOK), false}
	statusError = status{"✗", StyleError, true}
	statusWarn  = status{"!", StyleWarning, true}
	statusInfo  = status{"›", lipgloss.NewStyle().Foreground(colorMuted), false}
)

func (s status) print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s.tint {
		msg = s.style.Render(msg)
	}
	fmt.Fprintln(out, s.style.Render(s.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { statusOK.print(format, args...) }
func printError(format string, args ...any) { statusError.print(format, args...) }
func printWarning(format string, args ...any) { statusWarn.print(format, args...) }
func printInfo(format string, args ...any) { statusInfo.print(format, args...) }

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written file.
func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render("→")+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(out, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats prints document counts on a single dimmed line.
func printStats(nodes, edges, lanes int) {
	parts := []string{
		plural(nodes, "node"),
		plural(edges, "edge"),
		plural(lanes, "lane"),
	}
	fmt.Fprintln(out, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(out) }

// printTable renders rows under headers with a rounded border.
func printTable(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return styleHeader.Padding(0, 1)
			}
			return styleCell
		})
	fmt.Fprintln(out, t.Render())
}

// printIssues lists guardrail issues in evaluation order.
func printIssues(issues []guardrail.Issue) {
	for _, is := range issues {
		switch is.Severity {
		case guardrail.SeverityError:
			printError("%s  %s", is.EdgeID, is.Message)
		default:
			printWarning("%s  %s", is.EdgeID, is.Message)
		}
	}
}

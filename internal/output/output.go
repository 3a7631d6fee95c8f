package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
)

// Out receives every message. Commands point it at cmd.OutOrStdout().
var Out io.Writer = os.Stdout

var (
	colorYellow = lipgloss.Color("#FFD400")
	colorAmber  = lipgloss.Color("#FFB800")
	colorError  = lipgloss.Color("#EF4444")
	colorInfo   = lipgloss.Color("#3B82F6")
	colorMuted  = lipgloss.Color("#6B7280")
	colorText   = lipgloss.Color("#F3F4F6")

	successStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorAmber).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorYellow).
			Padding(0, 2).
			Width(26)
	cardLabelStyle = lipgloss.NewStyle().Foreground(colorMuted)
	cardValueStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Fprint(Out, successStyle.Render("✓ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Fprint(Out, warningStyle.Render("⚠ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Fprint(Out, errorStyle.Render("✗ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Fprint(Out, infoStyle.Render("ℹ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Muted prints a muted message
func Muted(format string, args ...interface{}) {
	fmt.Fprintln(Out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(title string) {
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, primaryStyle.Render(title))
	fmt.Fprintln(Out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// Card renders one KPI box.
func Card(label, value string) string {
	return cardStyle.Render(cardLabelStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

// KPICards renders the four dashboard KPIs side by side.
func KPICards(s analysis.Summary) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		Card("People", fmt.Sprint(s.Count)),
		Card("Mean BMI", s.MeanBMI.Format(2, "")),
		Card("% Overweight/Obesity", s.ElevatedPct.Format(0, "%")),
		Card("Mean weight (kg)", s.MeanWeight.Format(1, "")),
	)
}

// KPIs prints the KPI cards.
func KPIs(s analysis.Summary) {
	fmt.Fprintln(Out, KPICards(s))
}

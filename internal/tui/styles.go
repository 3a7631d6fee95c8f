package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	colorPrimary = lipgloss.Color("#FFD400")
	colorAccent  = lipgloss.Color("#FFB800")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorText    = lipgloss.Color("#F3F4F6")
	colorBorder  = lipgloss.Color("#4B5563")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(10)

	activeLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Width(10)

	choiceStyle = lipgloss.NewStyle().
			Foreground(colorText)

	resultStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)
)

// FormatKey formats a help key
func FormatKey(key, description string) string {
	return helpKeyStyle.Render(key) + " " + lipgloss.NewStyle().Foreground(colorMuted).Render(description)
}

package tui

import "github.com/charmbracelet/lipgloss"

// OpenCode theme colors (dark mode)
var (
	bgPanelColor      = lipgloss.Color("#141414")
	borderSubtleColor = lipgloss.Color("#3c3c3c")

	primaryColor   = lipgloss.Color("#fab283") // warm peach/orange
	secondaryColor = lipgloss.Color("#5c9cf5") // blue

	errorColor   = lipgloss.Color("#e06c75")
	warningColor = lipgloss.Color("#f5a742")
	successColor = lipgloss.Color("#7fd88f")

	textColor      = lipgloss.Color("#eeeeee")
	textMutedColor = lipgloss.Color("#808080")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(textMutedColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Background(bgPanelColor).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(borderSubtleColor)

	selectedStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(secondaryColor).
			Bold(true)
)

package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// Styles for terminal output
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D4FF"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EEEEEE"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E22E"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FD971F"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F92672"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// Colors for table listings
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	greenColor   = color.New(color.FgGreen)
	orangeColor  = color.New(color.FgYellow)
	redColor     = color.New(color.FgRed)
	excludeColor = color.New(color.FgHiBlack)
)

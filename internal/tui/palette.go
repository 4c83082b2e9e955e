package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorInk       = lipgloss.Color("#E5E9F0")
	ColorDim       = lipgloss.Color("#7A8291")
	ColorAccent    = lipgloss.Color("#88C0D0")
	ColorAccentAlt = lipgloss.Color("#81A1C1")
	ColorSuccess   = lipgloss.Color("#A3BE8C")
	ColorWarn      = lipgloss.Color("#EBCB8B")
	ColorError     = lipgloss.Color("#BF616A")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle    = lipgloss.NewStyle().Foreground(ColorInk)
	valueStyle    = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(ColorDim)
	croppedStyle  = lipgloss.NewStyle().Foreground(ColorWarn).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(ColorAccentAlt).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(ColorSuccess)
	errStyle      = lipgloss.NewStyle().Foreground(ColorError)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorDim).Padding(0, 1)
)

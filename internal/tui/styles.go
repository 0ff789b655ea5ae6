package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorAccent  = lipgloss.Color("#10B981")
	colorMuted   = lipgloss.Color("#6B7280")
	colorMatch   = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorWhite   = lipgloss.Color("#FFFFFF")
	colorBlack   = lipgloss.Color("#000000")

	appStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1).
			Width(28)

	paneActiveStyle = paneStyle.
			BorderForeground(colorAccent)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Background(colorPrimary).
			Foreground(colorWhite).
			Bold(true)

	checkedStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	matchStyle = lipgloss.NewStyle().
			Background(colorMatch).
			Foreground(colorBlack)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	inputFocusedStyle = inputStyle.
				BorderForeground(colorAccent)

	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(colorWhite).
			Padding(0, 1)
)

package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// ANSI 256 palette.
const (
	colorBlue   = lipgloss.Color("39")
	colorYellow = lipgloss.Color("220")
	colorGrey   = lipgloss.Color("252")
	colorOrange = lipgloss.Color("214")
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorPurple = lipgloss.Color("62")
	colorCyan   = lipgloss.Color("80")
)

type styles struct {
	title      lipgloss.Style
	subject    lipgloss.Style
	body       lipgloss.Style
	warning    lipgloss.Style
	success    lipgloss.Style
	errorStyle lipgloss.Style
	info       lipgloss.Style
	file       lipgloss.Style
	border     lipgloss.Style
}

// newStyles returns the message box styles. Without color every style renders text
// unchanged except the border, which is dropped too.
func newStyles(colorEnabled bool) *styles {
	fg := func(c lipgloss.Color, bold bool) lipgloss.Style {
		if !colorEnabled {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(c).Bold(bold)
	}

	border := lipgloss.NewStyle()
	if colorEnabled {
		border = border.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPurple).
			Padding(0, 1)
	}

	return &styles{
		title:      fg(colorBlue, true),
		subject:    fg(colorYellow, true),
		body:       fg(colorGrey, false),
		warning:    fg(colorOrange, false),
		success:    fg(colorGreen, true),
		errorStyle: fg(colorRed, true),
		info:       fg(colorBlue, false),
		file:       fg(colorCyan, false),
		border:     border,
	}
}

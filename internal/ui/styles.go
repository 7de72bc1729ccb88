package ui

import "github.com/charmbracelet/lipgloss"

// Tree palette, in basic ANSI colors so it degrades cleanly.
var (
	colorCurrent = lipgloss.Color("2") // green, checked-out branch
	colorPending = lipgloss.Color("3") // yellow, interrupted rebase
	colorMuted   = lipgloss.Color("8") // gray, archived
)

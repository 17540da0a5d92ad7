package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by every screen. The kiosk draws light text on the
// terminal's own (black) background.
var (
	ColorWhite  = lipgloss.Color("#FFFFFF")
	ColorGray   = lipgloss.Color("245")
	ColorBlue   = lipgloss.Color("39")
	ColorGreen  = lipgloss.Color("#44FF44")
	ColorYellow = lipgloss.Color("#FFAA00")
	ColorRed    = lipgloss.Color("#FF4444")
)

var (
	clockStyle = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)
	dateStyle  = lipgloss.NewStyle().Foreground(ColorWhite)
	hudStyle   = lipgloss.NewStyle().Foreground(ColorWhite)
	docStyle   = lipgloss.NewStyle().Foreground(ColorWhite)
	titleStyle = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)
	labelStyle = lipgloss.NewStyle().Foreground(ColorGray)
	okStyle    = lipgloss.NewStyle().Foreground(ColorGreen)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorYellow)
	errStyle   = lipgloss.NewStyle().Foreground(ColorRed)
)

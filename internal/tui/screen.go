package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Screen is one full-screen view. Exactly one screen is active at a time;
// the Controller calls Update and Render on it once per frame.
type Screen interface {
	ID() string
	Title() string
	// Update pulls current data into the screen's display state. It may
	// return commands that refresh data in the background.
	Update(now time.Time) tea.Cmd
	// Render paints the display state. It never fetches or blocks.
	Render(s *Surface)
	// HandleInput receives input the router did not consume.
	HandleInput(msg tea.Msg) tea.Cmd
}

// BaseScreen gives screens a no-op HandleInput.
type BaseScreen struct{}

func (BaseScreen) HandleInput(tea.Msg) tea.Cmd { return nil }

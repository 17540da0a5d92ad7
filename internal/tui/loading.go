package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// loadingText renders a one-line loading indicator. The frame is selected
// from now so it animates as frames are rendered.
func loadingText(now time.Time) string {
	frame := spinnerFrames[now.UnixMilli()/120%int64(len(spinnerFrames))]
	return helpStyle.Render(frame + " Loading...")
}

// renderLoadingPlaceholder centers the loading indicator in a width x height
// block.
func renderLoadingPlaceholder(now time.Time, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, loadingText(now))
}

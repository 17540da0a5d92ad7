package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines the kiosk's global key bindings.
type KeyMap struct {
	Quit key.Binding
	// Select holds one binding per screen position: Select[i] activates
	// screen i.
	Select []key.Binding
}

// selectKeys lists the digit keys in position order: 1 selects the first
// screen and 0 the tenth.
var selectKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+e", "ctrl+c"),
			key.WithHelp("ctrl+e", "quit"),
		),
		Select: make([]key.Binding, len(selectKeys)),
	}
	for i, k := range selectKeys {
		km.Select[i] = key.NewBinding(
			key.WithKeys(k),
			key.WithHelp(k, "select screen"),
		)
	}
	return km
}

// Outcome is what the router decided to do with an input message.
type Outcome int

const (
	// OutcomeForward hands the message to the active screen.
	OutcomeForward Outcome = iota
	OutcomeQuit
	OutcomeSelect
)

// Routed is the result of routing one message. Index is set for
// OutcomeSelect only.
type Routed struct {
	Outcome Outcome
	Index   int
}

// Route maps an input message to exactly one outcome. Quit is checked
// first, then screen selection; everything else is forwarded. Whether a
// selected index exists is the caller's concern.
func (k KeyMap) Route(msg tea.Msg) Routed {
	switch msg := msg.(type) {
	case CloseMsg:
		return Routed{Outcome: OutcomeQuit}
	case SelectMsg:
		return Routed{Outcome: OutcomeSelect, Index: msg.Index}
	case tea.KeyMsg:
		if key.Matches(msg, k.Quit) {
			return Routed{Outcome: OutcomeQuit}
		}
		for i, b := range k.Select {
			if key.Matches(msg, b) {
				return Routed{Outcome: OutcomeSelect, Index: i}
			}
		}
	}
	return Routed{Outcome: OutcomeForward}
}

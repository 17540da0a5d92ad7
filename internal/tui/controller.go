package tui

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/tinytelemetry/homeroom/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// State is the Controller's lifecycle state.
type State int32

const (
	Running State = iota
	// Terminating is terminal: once entered, every message is ignored.
	Terminating
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Terminating:
		return "terminating"
	default:
		return "unknown"
	}
}

// FrameMsg drives one frame: update the active screen, then render.
type FrameMsg time.Time

// CloseMsg asks the kiosk to shut down, as a window close would.
type CloseMsg struct{}

// SelectMsg requests the screen at Index from outside the keyboard.
type SelectMsg struct {
	Index int
}

// RefreshedMsg reports a finished background refresh.
type RefreshedMsg struct {
	Query model.Query
	Err   error
}

// Snapshot is the Controller state published for other goroutines.
type Snapshot struct {
	Screens []ScreenInfo
	Active  int
	State   State
}

// ScreenInfo names one screen in a Snapshot.
type ScreenInfo struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Controller is the top-level Bubble Tea model. It owns the screen list,
// the active index and the lifecycle state; all three are written only from
// Update.
type Controller struct {
	screens  []Screen
	active   int
	state    State
	keys     KeyMap
	interval time.Duration
	now      func() time.Time
	logger   *log.Logger

	width  int
	height int

	snap atomic.Pointer[Snapshot]
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithFPS sets the frame rate. Values below 1 are ignored.
func WithFPS(fps int) ControllerOption {
	return func(c *Controller) {
		if fps > 0 {
			c.interval = time.Second / time.Duration(fps)
		}
	}
}

// WithControllerClock overrides the clock passed to Screen.Update from Init.
func WithControllerClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithControllerLogger sets the logger for lifecycle and selection events.
func WithControllerLogger(l *log.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(km KeyMap) ControllerOption {
	return func(c *Controller) { c.keys = km }
}

// NewController creates a Controller with the first screen active.
func NewController(screens []Screen, opts ...ControllerOption) (*Controller, error) {
	if len(screens) == 0 {
		return nil, errors.New("controller needs at least one screen")
	}
	c := &Controller{
		screens:  append([]Screen(nil), screens...),
		keys:     DefaultKeyMap(),
		interval: time.Second / model.DefaultFPS,
		now:      time.Now,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.publish()
	return c, nil
}

// Interval returns the time between frames.
func (c *Controller) Interval() time.Duration { return c.interval }

// Snapshot returns the most recently published state. Safe for concurrent
// use.
func (c *Controller) Snapshot() Snapshot {
	return *c.snap.Load()
}

func (c *Controller) Init() tea.Cmd {
	return tea.Batch(c.screens[c.active].Update(c.now()), c.nextFrame())
}

func (c *Controller) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if c.state == Terminating {
		return c, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		return c, nil

	case FrameMsg:
		cmd := c.screens[c.active].Update(time.Time(msg))
		return c, tea.Batch(cmd, c.nextFrame())

	case RefreshedMsg:
		if msg.Err != nil {
			c.logger.Debug("background refresh finished with error", "query", msg.Query, "err", msg.Err)
		}
		return c, nil
	}

	routed := c.keys.Route(msg)
	switch routed.Outcome {
	case OutcomeQuit:
		c.state = Terminating
		c.publish()
		c.logger.Info("shutting down")
		return c, tea.Quit
	case OutcomeSelect:
		if routed.Index < 0 || routed.Index >= len(c.screens) || routed.Index == c.active {
			return c, nil
		}
		c.active = routed.Index
		c.publish()
		c.logger.Info("screen selected", "index", routed.Index, "screen", c.screens[routed.Index].ID())
		// The next View renders this screen, so bring it up to date first.
		return c, c.screens[c.active].Update(c.now())
	default:
		return c, c.screens[c.active].HandleInput(msg)
	}
}

func (c *Controller) View() string {
	if c.state == Terminating {
		return ""
	}
	s := NewSurface(c.width, c.height)
	c.screens[c.active].Render(s)
	return s.String()
}

func (c *Controller) nextFrame() tea.Cmd {
	return tea.Tick(c.interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func (c *Controller) publish() {
	infos := make([]ScreenInfo, len(c.screens))
	for i, s := range c.screens {
		infos[i] = ScreenInfo{Index: i, ID: s.ID(), Title: s.Title()}
	}
	c.snap.Store(&Snapshot{Screens: infos, Active: c.active, State: c.state})
}

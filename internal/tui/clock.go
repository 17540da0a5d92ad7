package tui

import (
	"strings"
	"time"

	"github.com/tinytelemetry/homeroom/internal/glyph"
	"github.com/tinytelemetry/homeroom/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// ClockLayout is the clock's text format: month/day, weekday and 24-hour
// time to the second.
const ClockLayout = "01/02(Mon) 15:04:05"

const (
	bannerTimeLayout = "15:04:05"
	bannerDateLayout = "01/02(Mon)"
)

// ClockScreen shows the time in the middle of the screen, homework due
// tomorrow in the top-left corner and items to bring in the top-right.
type ClockScreen struct {
	BaseScreen
	feed *Feed
	font *glyph.Font
	loc  *time.Location

	now      time.Time
	homework []string
	supplies []string
	hwReady  bool
	supReady bool
}

// NewClockScreen creates the clock screen. font may be nil, in which case
// the time is drawn as plain text.
func NewClockScreen(feed *Feed, font *glyph.Font, loc *time.Location) *ClockScreen {
	if loc == nil {
		loc = time.Local
	}
	return &ClockScreen{feed: feed, font: font, loc: loc}
}

func (c *ClockScreen) ID() string    { return "clock" }
func (c *ClockScreen) Title() string { return "Clock" }

func (c *ClockScreen) Update(now time.Time) tea.Cmd {
	c.now = now.In(c.loc)
	var hwCmd, supCmd tea.Cmd
	c.homework, c.hwReady, hwCmd = c.feed.Poll(model.QueryHomework)
	c.supplies, c.supReady, supCmd = c.feed.Poll(model.QuerySupplies)
	return tea.Batch(hwCmd, supCmd)
}

// Text returns the clock line for the last update.
func (c *ClockScreen) Text() string {
	return c.now.Format(ClockLayout)
}

func (c *ClockScreen) Render(s *Surface) {
	if banner, ok := c.banner(s.Width, s.Height); ok {
		s.DrawCenter(banner...)
	} else {
		s.DrawCenter(clockStyle.Render(c.Text()))
	}

	s.DrawHUD(c.listText(c.homework, c.hwReady), TopLeft)
	s.DrawHUD(c.listText(c.supplies, c.supReady), TopRight)
}

// banner renders the time in the glyph font with the date beneath it, or
// reports false when there is no font or the result would not fit.
func (c *ClockScreen) banner(width, height int) ([]string, bool) {
	if c.font == nil {
		return nil, false
	}
	t := c.now.Format(bannerTimeLayout)
	if !c.font.Covers(t) || c.font.Width(t) > width || c.font.Height()+2 > height {
		return nil, false
	}
	rows := c.font.Render(t)
	out := make([]string, 0, len(rows)+2)
	for _, r := range rows {
		out = append(out, clockStyle.Render(r))
	}
	return append(out, "", dateStyle.Render(c.now.Format(bannerDateLayout))), true
}

func (c *ClockScreen) listText(items []string, ready bool) string {
	if !ready {
		return loadingText(c.now)
	}
	return strings.Join(items, "\n")
}

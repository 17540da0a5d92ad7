package tui

import (
	"time"

	"github.com/tinytelemetry/homeroom/internal/model"
	"github.com/tinytelemetry/homeroom/internal/timetable"

	tea "github.com/charmbracelet/bubbletea"
)

// ItemListScreen is a checklist for tomorrow: the timetable's recurring
// items for tomorrow's weekday followed by the fetched supplies.
type ItemListScreen struct {
	BaseScreen
	feed  *Feed
	table timetable.Table
	loc   *time.Location

	now      time.Time
	supplies []string
	cursor   *Cursor
}

// NewItemListScreen creates the checklist screen.
func NewItemListScreen(feed *Feed, table timetable.Table, loc *time.Location) *ItemListScreen {
	if loc == nil {
		loc = time.Local
	}
	return &ItemListScreen{feed: feed, table: table, loc: loc}
}

func (l *ItemListScreen) ID() string    { return "items" }
func (l *ItemListScreen) Title() string { return "Items" }

// SetCursor shows an insertion marker at c, or hides it when c is nil.
func (l *ItemListScreen) SetCursor(c *Cursor) {
	if c == nil {
		l.cursor = nil
		return
	}
	cp := *c
	l.cursor = &cp
}

func (l *ItemListScreen) Update(now time.Time) tea.Cmd {
	l.now = now.In(l.loc)
	supplies, _, cmd := l.feed.Poll(model.QuerySupplies)
	l.supplies = supplies
	return cmd
}

// Lines returns the document as of the last update.
func (l *ItemListScreen) Lines() []string {
	return append(l.table.Tomorrow(l.now), l.supplies...)
}

func (l *ItemListScreen) Render(s *Surface) {
	s.DrawDocument(l.Lines(), l.cursor, 1)
}

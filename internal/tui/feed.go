package tui

import (
	"context"

	"github.com/tinytelemetry/homeroom/internal/cache"
	"github.com/tinytelemetry/homeroom/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// ItemCache memoizes the item lists of the fixed provider queries.
type ItemCache = cache.Cache[model.Query, []string]

// Feed is how screens read item lists. In background mode a due query is
// claimed and refreshed by a command off the event loop, and the screen
// keeps showing the previous value until RefreshedMsg arrives. In blocking
// mode the read itself fetches, stalling the frame.
type Feed struct {
	ctx      context.Context
	cache    *ItemCache
	blocking bool
}

// NewFeed wraps c. ctx bounds every refresh the feed starts.
func NewFeed(ctx context.Context, c *ItemCache, blocking bool) *Feed {
	return &Feed{ctx: ctx, cache: c, blocking: blocking}
}

// Poll returns the current items for q and whether q is ready, meaning a
// value is cached or at least one fetch has finished. The command, when
// non-nil, performs a background refresh.
func (f *Feed) Poll(q model.Query) ([]string, bool, tea.Cmd) {
	if f.blocking {
		items := f.cache.Get(f.ctx, q)
		return items, f.ready(q), nil
	}

	items, _ := f.cache.Peek(q)
	ready := f.ready(q)
	if !f.cache.Claim(q) {
		return items, ready, nil
	}
	ctx, c := f.ctx, f.cache
	return items, ready, func() tea.Msg {
		return RefreshedMsg{Query: q, Err: c.Refresh(ctx, q)}
	}
}

func (f *Feed) ready(q model.Query) bool {
	if _, ok := f.cache.Peek(q); ok {
		return true
	}
	st, ok := f.cache.KeyStats(q)
	return ok && st.Fetches > 0
}

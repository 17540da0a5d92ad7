package notion

import (
	"context"
	"fmt"
	"time"
)

// Schema names the data source properties the kiosk filters and reads.
type Schema struct {
	Title    string // title property holding the display name
	Due      string // date property
	Done     string // checkbox, true once completed
	Category string // select property
	Archived string // checkbox, true once the row is retired
}

// DefaultSchema returns the property names of the reference data source.
func DefaultSchema() Schema {
	return Schema{
		Title:    "課題",
		Due:      "期限",
		Done:     "完了",
		Category: "種類",
		Archived: "終了",
	}
}

// DueOn matches rows due on date (YYYY-MM-DD), not done, not archived and
// in category.
func (s Schema) DueOn(date, category string) Filter {
	return Filter{
		"and": []Filter{
			{"property": s.Due, "date": Filter{"equals": date}},
			{"property": s.Done, "checkbox": Filter{"equals": false}},
			{"property": s.Category, "select": Filter{"equals": category}},
			{"property": s.Archived, "checkbox": Filter{"equals": false}},
		},
	}
}

// Source implements model.ItemSource against a data source.
type Source struct {
	q      Querier
	schema Schema
	loc    *time.Location
	now    func() time.Time
}

// NewSource creates a Source. Tomorrow's date is computed in loc at every
// query.
func NewSource(q Querier, schema Schema, loc *time.Location) *Source {
	if loc == nil {
		loc = time.Local
	}
	return &Source{q: q, schema: schema, loc: loc, now: time.Now}
}

// SetClock replaces time.Now. Intended for tests.
func (s *Source) SetClock(now func() time.Time) { s.now = now }

// DueTomorrow returns the display names of rows in category due tomorrow.
// Rows without a title and rows in the trash are skipped.
func (s *Source) DueTomorrow(ctx context.Context, category string) ([]string, error) {
	date := s.now().In(s.loc).AddDate(0, 0, 1).Format(time.DateOnly)

	pages, err := QueryAll(ctx, s.q, s.schema.DueOn(date, category))
	if err != nil {
		return nil, fmt.Errorf("querying %s due %s: %w", category, date, err)
	}

	names := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.Archived || p.InTrash {
			continue
		}
		if name, ok := p.Title(s.schema.Title); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

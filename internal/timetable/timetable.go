// Package timetable holds the static weekday → recurring items table.
package timetable

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Table maps each weekday to the ordered items needed on that day.
// It is read-only after construction.
type Table struct {
	days [7][]string
}

// New builds a table from a weekday-keyed map. Missing weekdays have no items.
func New(items map[time.Weekday][]string) Table {
	var t Table
	for day, list := range items {
		if day < time.Sunday || day > time.Saturday {
			continue
		}
		t.days[day] = append([]string(nil), list...)
	}
	return t
}

// Default returns the built-in weekly table.
func Default() Table {
	math := []string{"サクシード数Ⅲ", "オリジスタン数Ⅲ", "数学Ⅱ授業用ノート", "数学Ⅱ宿題用ノート"}
	return New(map[time.Weekday][]string{
		time.Monday:    {"体操服", "入試必携英作文"},
		time.Tuesday:   math,
		time.Wednesday: math,
		time.Thursday:  append(append([]string(nil), math...), "体操服", "入試必携英作文"),
		time.Friday:    math,
	})
}

// On returns a copy of the items for day.
func (t Table) On(day time.Weekday) []string {
	if day < time.Sunday || day > time.Saturday {
		return nil
	}
	return append([]string(nil), t.days[day]...)
}

// Tomorrow returns the items for the weekday after now in now's location.
func (t Table) Tomorrow(now time.Time) []string {
	return t.On(now.AddDate(0, 0, 1).Weekday())
}

// Load reads a YAML table keyed by weekday name, for example:
//
//	Mon: [体操服, 入試必携英作文]
//	thursday:
//	  - 体操服
//
// Keys are matched case-insensitively against full or three-letter names.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("reading timetable: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML table. See Load for the format.
func Parse(data []byte) (Table, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Table{}, fmt.Errorf("parsing timetable: %w", err)
	}

	items := make(map[time.Weekday][]string, len(raw))
	for name, list := range raw {
		day, err := ParseWeekday(name)
		if err != nil {
			return Table{}, err
		}
		if _, dup := items[day]; dup {
			return Table{}, fmt.Errorf("parsing timetable: weekday %s listed twice", day)
		}
		items[day] = list
	}
	return New(items), nil
}

// ParseWeekday accepts full ("Monday") or abbreviated ("Mon") weekday names.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || n == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

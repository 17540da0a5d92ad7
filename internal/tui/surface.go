package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position anchors a HUD block to one corner of the surface.
type Position int

const (
	TopLeft Position = iota
	TopRight
	BottomLeft
	BottomRight
)

// hudMargin is the gap, in cells, between HUD or document text and the
// surface edge.
const hudMargin = 1

// Cursor marks an insertion point in a document: Line is the line index,
// Col the rune offset within that line.
type Cursor struct {
	Line int
	Col  int
}

// Surface is a Width x Height cell grid rebuilt for every frame. Draw calls
// composite immediately, so a later draw overwrites the cells of an earlier
// one.
type Surface struct {
	Width  int
	Height int
	rows   []string
}

// NewSurface returns a cleared surface.
func NewSurface(width, height int) *Surface {
	width = max(width, 0)
	height = max(height, 0)
	rows := make([]string, height)
	blank := strings.Repeat(" ", width)
	for i := range rows {
		rows[i] = blank
	}
	return &Surface{Width: width, Height: height, rows: rows}
}

// DrawAt places lines with their top-left cell at (x, y). Anything outside
// the grid is clipped.
func (s *Surface) DrawAt(x, y int, lines []string) {
	for k, line := range lines {
		row := y + k
		if row < 0 || row >= s.Height {
			continue
		}
		s.rows[row] = overlay(s.rows[row], line, x, s.Width)
	}
}

// DrawCenter centers the block of lines vertically and each line
// horizontally.
func (s *Surface) DrawCenter(lines ...string) {
	top := (s.Height - len(lines)) / 2
	for k, line := range lines {
		x := (s.Width - lipgloss.Width(line)) / 2
		s.DrawAt(x, top+k, []string{line})
	}
}

// DrawHUD draws newline-separated text anchored to a corner. Right-anchored
// lines are right-aligned individually; bottom-anchored blocks end on the
// last row above the margin.
func (s *Surface) DrawHUD(text string, pos Position) {
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	top := 0
	if pos == BottomLeft || pos == BottomRight {
		top = s.Height - len(lines)
	}
	for k, line := range lines {
		line = hudStyle.Render(line)
		x := hudMargin
		if pos == TopRight || pos == BottomRight {
			x = s.Width - hudMargin - lipgloss.Width(line)
		}
		s.DrawAt(x, top+k, []string{line})
	}
}

// DrawDocument draws lines top to bottom starting yOffset rows down. When
// cursor points inside the document a "|" is inserted at its rune offset;
// an out-of-range cursor is ignored.
func (s *Surface) DrawDocument(lines []string, cursor *Cursor, yOffset int) {
	display := withCursor(lines, cursor)
	for k, line := range display {
		s.DrawAt(hudMargin, yOffset+k, []string{docStyle.Render(line)})
	}
}

// Present returns the composed frame: exactly Height lines, each exactly
// Width cells wide.
func (s *Surface) Present() []string {
	out := make([]string, len(s.rows))
	for i, row := range s.rows {
		out[i] = fit(row, s.Width)
	}
	return out
}

// String joins the presented frame for a Bubble Tea View.
func (s *Surface) String() string {
	return strings.Join(s.Present(), "\n")
}

func withCursor(lines []string, cursor *Cursor) []string {
	out := append([]string(nil), lines...)
	if cursor == nil || cursor.Line < 0 || cursor.Line >= len(out) {
		return out
	}
	runes := []rune(out[cursor.Line])
	if cursor.Col < 0 || cursor.Col > len(runes) {
		return out
	}
	out[cursor.Line] = string(runes[:cursor.Col]) + "|" + string(runes[cursor.Col:])
	return out
}

// overlay writes s over base starting at cell x, keeping base's cells on
// either side. base is assumed to be width cells wide.
func overlay(base, s string, x, width int) string {
	if x < 0 {
		s = ansi.TruncateLeft(s, -x, "")
		x = 0
	}
	if x >= width {
		return base
	}
	s = ansi.Truncate(s, width-x, "")
	w := ansi.StringWidth(s)
	if w == 0 {
		return base
	}

	left := ansi.Truncate(base, x, "")
	if pad := x - ansi.StringWidth(left); pad > 0 {
		left += strings.Repeat(" ", pad)
	}
	right := ansi.TruncateLeft(base, x+w, "")
	return left + s + right
}

func fit(row string, width int) string {
	row = ansi.Truncate(row, width, "")
	if pad := width - ansi.StringWidth(row); pad > 0 {
		row += strings.Repeat(" ", pad)
	}
	return row
}

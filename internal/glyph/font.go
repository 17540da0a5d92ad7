// Package glyph renders text as multi-line banner glyphs for the large clock.
//
// Fonts come either from the built-in block font or from a FIGlet (.flf)
// file rendered with go-figure. Scaling is applied to the rendered rows, so
// both kinds of font scale the same way.
package glyph

import (
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// Font is a fixed-height banner font.
type Font struct {
	name   string
	height int
	scale  int

	// Exactly one of glyphs (built-in) and figlet (font file) is set.
	glyphs map[rune][]string
	gap    int
	figlet *figletFont

	mu   sync.Mutex
	last string
	rows []string
}

// Name returns the font's source, "default" for the built-in font.
func (f *Font) Name() string { return f.name }

// Height returns the number of rows every rendered line has.
func (f *Font) Height() int { return f.height * f.scale }

// Has reports whether the font defines r.
func (f *Font) Has(r rune) bool {
	if f.figlet != nil {
		return f.figlet.has(r)
	}
	_, ok := f.glyphs[r]
	return ok
}

// Covers reports whether every rune of text has a glyph.
func (f *Font) Covers(text string) bool {
	for _, r := range text {
		if !f.Has(r) {
			return false
		}
	}
	return true
}

// Render lays text out as Height() rows of equal display width. Runes
// without a glyph render as a space.
func (f *Font) Render(text string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows != nil && f.last == text {
		return append([]string(nil), f.rows...)
	}

	var rows []string
	if f.figlet != nil {
		rows = f.figlet.render(text, f.height)
	} else {
		rows = f.renderGlyphs(text)
	}
	rows = scaleRows(pad(rows), f.scale)

	f.last, f.rows = text, rows
	return append([]string(nil), rows...)
}

// Width returns the rendered display width of text in terminal cells.
func (f *Font) Width(text string) int {
	rows := f.Render(text)
	if len(rows) == 0 {
		return 0
	}
	return ansi.StringWidth(rows[0])
}

func (f *Font) renderGlyphs(text string) []string {
	rows := make([]strings.Builder, f.height)
	first := true
	for _, r := range text {
		g, ok := f.glyphs[r]
		if !ok {
			g = f.glyphs[' ']
		}
		for i := range rows {
			if !first && f.gap > 0 {
				rows[i].WriteString(strings.Repeat(" ", f.gap))
			}
			if i < len(g) {
				rows[i].WriteString(g[i])
			}
		}
		first = false
	}
	out := make([]string, f.height)
	for i := range rows {
		out[i] = rows[i].String()
	}
	return out
}

// Scale returns a copy of f whose output repeats every cell n times in both
// directions. n <= 1 returns f unchanged.
func (f *Font) Scale(n int) *Font {
	if n <= 1 {
		return f
	}
	return &Font{
		name:   f.name,
		height: f.height,
		scale:  f.scale * n,
		glyphs: f.glyphs,
		gap:    f.gap,
		figlet: f.figlet,
	}
}

// pad right-fills every row with spaces to the widest row's display width.
func pad(rows []string) []string {
	width := 0
	for _, r := range rows {
		width = max(width, ansi.StringWidth(r))
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r + strings.Repeat(" ", width-ansi.StringWidth(r))
	}
	return out
}

func scaleRows(rows []string, n int) []string {
	if n <= 1 {
		return rows
	}
	out := make([]string, 0, len(rows)*n)
	for _, row := range rows {
		var b strings.Builder
		for _, c := range row {
			b.WriteString(strings.Repeat(string(c), n))
		}
		wide := b.String()
		for i := 0; i < n; i++ {
			out = append(out, wide)
		}
	}
	return out
}

var defaultGlyphs = map[rune][]string{
	'0': {"█████", "█   █", "█   █", "█   █", "█████"},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", " ███ "},
	'2': {"█████", "    █", "█████", "█    ", "█████"},
	'3': {"█████", "    █", " ████", "    █", "█████"},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "█████", "    █", "█████"},
	'6': {"█████", "█    ", "█████", "█   █", "█████"},
	'7': {"█████", "    █", "   █ ", "  █  ", "  █  "},
	'8': {"█████", "█   █", "█████", "█   █", "█████"},
	'9': {"█████", "█   █", "█████", "    █", "█████"},
	':': {" ", "█", " ", "█", " "},
	'/': {"    █", "   █ ", "  █  ", " █   ", "█    "},
	'(': {" █", "█ ", "█ ", "█ ", " █"},
	')': {"█ ", " █", " █", " █", "█ "},
	'-': {"     ", "     ", "█████", "     ", "     "},
	'.': {" ", " ", " ", " ", "█"},
	' ': {"  ", "  ", "  ", "  ", "  "},
}

// Default returns the built-in block font. It covers digits and the
// separators a clock needs.
func Default() *Font {
	return &Font{name: "default", height: 5, scale: 1, gap: 1, glyphs: defaultGlyphs}
}

package glyph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testFont generates a 2-row FIGlet font where every printable ASCII
// character renders as itself on both rows.
func testFont() string {
	var b strings.Builder
	b.WriteString("flf2a$ 2 2 4 -1 0\n")
	b.WriteString("$@\n$@@\n")
	for c := '!'; c <= '~'; c++ {
		if c == '@' {
			b.WriteString("@#\n@##\n")
			continue
		}
		b.WriteString(string(c) + "@\n" + string(c) + "@@\n")
	}
	return b.String()
}

func TestParse_RendersThroughFIGlet(t *testing.T) {
	t.Parallel()

	f, err := Parse(strings.NewReader(testFont()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Height() != 2 {
		t.Fatalf("height = %d, want 2", f.Height())
	}
	if !f.Covers("Fri 10/16") || f.Has('あ') {
		t.Fatal("unexpected glyph coverage")
	}
	rows := f.Render("Mo@")
	if len(rows) != 2 || rows[0] != "Mo@" || rows[1] != "Mo@" {
		t.Fatalf("rows = %q", rows)
	}
	if got := f.Width("Mo@"); got != 3 {
		t.Fatalf("width = %d, want 3", got)
	}
}

func TestParse_ScalesRenderedRows(t *testing.T) {
	t.Parallel()

	f, err := Parse(strings.NewReader(testFont()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := f.Scale(2)
	rows := s.Render("M!")
	if s.Height() != 4 || len(rows) != 4 {
		t.Fatalf("scaled rows = %q", rows)
	}
	for i, r := range rows {
		if r != "MM!!" {
			t.Fatalf("row %d = %q, want %q", i, r, "MM!!")
		}
	}
}

func TestParse_RejectsBadFonts(t *testing.T) {
	t.Parallel()

	for _, src := range []string{
		"",
		"hello\n",
		"flf2a$ x 1 4 -1 0\n",
		"flf2a$ 2 1\n",
		"flf2a$ 2 2 4 -1 0\n",
	} {
		if _, err := Parse(strings.NewReader(src)); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", src)
		}
	}
}

func TestRender_PadsByDisplayWidth(t *testing.T) {
	t.Parallel()

	f := &Font{name: "wide", height: 2, scale: 1, glyphs: map[rune][]string{
		'w': {"日", "x"},
		' ': {" ", " "},
	}}
	rows := f.Render("w")
	if rows[0] != "日" || rows[1] != "x " {
		t.Fatalf("rows = %q, want [日 \"x \"]", rows)
	}
	if got := f.Width("w"); got != 2 {
		t.Fatalf("width = %d, want 2", got)
	}
}

func TestDefault_RendersClock(t *testing.T) {
	t.Parallel()

	f := Default()
	if !f.Covers("12:34:56") {
		t.Fatal("default font does not cover a clock string")
	}
	rows := f.Render("10:00")
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	// 4 digits of 5 cells, 1 colon cell, 4 gaps.
	if got, want := f.Width("10:00"), 4*5+1+4; got != want {
		t.Fatalf("width = %d, want %d", got, want)
	}
	for i, r := range rows {
		if strings.ContainsRune(r, '$') {
			t.Fatalf("row %d leaked hardblank: %q", i, r)
		}
	}
}

func TestScale(t *testing.T) {
	t.Parallel()

	f := Default()
	s := f.Scale(2)
	if s.Height() != 10 {
		t.Fatalf("scaled height = %d, want 10", s.Height())
	}
	if got, want := s.Width("8"), 2*f.Width("8"); got != want {
		t.Fatalf("scaled width = %d, want %d", got, want)
	}
	if f.Scale(1) != f {
		t.Fatal("Scale(1) should return the same font")
	}
}

func TestCache_LazyAndKeyedByPathAndSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.flf")
	if err := os.WriteFile(path, []byte(testFont()), 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}

	c := NewCache()
	loads := 0
	c.load = func(p string) (*Font, error) {
		loads++
		return Load(p)
	}

	a, err := c.Get(path, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, _ := c.Get(path, 1)
	if a != b || loads != 1 {
		t.Fatalf("second Get reloaded: loads=%d same=%v", loads, a == b)
	}
	if _, err := c.Get(path, 3); err != nil {
		t.Fatalf("Get size 3: %v", err)
	}
	if _, err := c.Get("", 2); err != nil {
		t.Fatalf("Get default: %v", err)
	}
	if c.Len() != 3 || loads != 2 {
		t.Fatalf("len=%d loads=%d, want 3 and 2", c.Len(), loads)
	}
}

func TestCache_MissingFontFails(t *testing.T) {
	t.Parallel()

	c := NewCache()
	if _, err := c.Get(filepath.Join(t.TempDir(), "missing.flf"), 1); err == nil {
		t.Fatal("expected error for missing font file")
	}
	if c.Len() != 0 {
		t.Fatal("failed load was cached")
	}
}

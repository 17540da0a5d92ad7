package glyph

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	figure "github.com/common-nighthawk/go-figure"
)

// sample holds every character a FIGlet font must define.
var sample = func() string {
	var b strings.Builder
	for c := '!'; c <= '~'; c++ {
		b.WriteRune(c)
	}
	return b.String()
}()

// figletFont renders through go-figure, which reads the font on every call.
type figletFont struct {
	src []byte
}

// has reports whether go-figure can render r. It maps only printable ASCII.
func (ff *figletFont) has(r rune) bool { return r >= ' ' && r <= '~' }

func (ff *figletFont) render(text string, height int) []string {
	clean := strings.Map(func(r rune) rune {
		if ff.has(r) {
			return r
		}
		return ' '
	}, text)
	rows := figure.NewFigureWithFont(clean, bytes.NewReader(ff.src), false).Slicify()
	// Blank rows below the baseline are dropped by go-figure.
	for len(rows) < height {
		rows = append(rows, "")
	}
	return rows[:height]
}

// Load reads a FIGlet font file.
func Load(path string) (*Font, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening font: %w", err)
	}
	defer f.Close()

	font, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading font %s: %w", path, err)
	}
	font.name = path
	return font, nil
}

// Parse reads a FIGlet (flf2a) font and checks that it renders every
// printable ASCII character.
func Parse(r io.Reader) (*Font, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}
	height, err := figletHeight(src)
	if err != nil {
		return nil, err
	}

	ff := &figletFont{src: src}
	if err := tryRender(ff, height); err != nil {
		return nil, err
	}
	return &Font{name: "figlet", height: height, scale: 1, figlet: ff}, nil
}

// figletHeight validates the header line and returns the glyph height.
func figletHeight(src []byte) (int, error) {
	line, _, _ := bufio.NewReader(bytes.NewReader(src)).ReadLine()
	header := string(line)
	if len(header) == 0 {
		return 0, errors.New("empty font file")
	}
	fields := strings.Fields(header)
	if !strings.HasPrefix(fields[0], "flf2a") {
		return 0, fmt.Errorf("not a FIGlet font: bad signature %q", truncate(fields[0], 16))
	}
	if len(fields) < 6 {
		return 0, fmt.Errorf("FIGlet header has %d fields, want at least 6", len(fields))
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil || height <= 0 {
		return 0, fmt.Errorf("invalid FIGlet height %q", truncate(fields[1], 16))
	}
	return height, nil
}

// tryRender renders the required characters once; go-figure panics on a
// font that ends early.
func tryRender(ff *figletFont, height int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("FIGlet font is incomplete: %v", r)
		}
	}()
	rows := ff.render(sample, height)
	if strings.TrimSpace(strings.Join(rows, "")) == "" {
		return errors.New("FIGlet font defines no glyphs")
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

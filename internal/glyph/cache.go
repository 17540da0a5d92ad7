package glyph

import "sync"

// Key identifies a loaded font: its file path ("" for the built-in font)
// and scale.
type Key struct {
	Path string
	Size int
}

// Cache loads fonts lazily and keeps them for the life of the process.
// The key space is the handful of (path, size) pairs the screens use, so
// nothing is ever evicted.
type Cache struct {
	mu    sync.Mutex
	fonts map[Key]*Font
	load  func(path string) (*Font, error)
}

// NewCache creates an empty font cache.
func NewCache() *Cache {
	return &Cache{fonts: make(map[Key]*Font), load: Load}
}

// Get returns the font for (path, size), loading it on first use.
func (c *Cache) Get(path string, size int) (*Font, error) {
	if size < 1 {
		size = 1
	}
	key := Key{Path: path, Size: size}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.fonts[key]; ok {
		return f, nil
	}

	var base *Font
	if path == "" {
		base = Default()
	} else {
		var err error
		base, err = c.load(path)
		if err != nil {
			return nil, err
		}
	}
	f := base.Scale(size)
	c.fonts[key] = f
	return f, nil
}

// Len returns the number of cached fonts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fonts)
}

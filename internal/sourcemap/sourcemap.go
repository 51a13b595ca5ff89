// Package sourcemap gives line-based access to the post-change content of
// files named by a diff, for snippets in reports.
//
// Line numbers are 1-based, matching diagnostic positions.
package sourcemap

import (
	"bytes"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SourceMap holds the lines of one file.
type SourceMap struct {
	source []byte

	// lines are the individual lines without line endings.
	lines []string
}

// New creates a SourceMap from source content.
// Lines are split on \n; a trailing \r is dropped (CRLF files).
func New(source []byte) *SourceMap {
	raw := bytes.Split(source, []byte{'\n'})
	// A final newline does not start another line.
	if n := len(raw); n > 1 && len(raw[n-1]) == 0 {
		raw = raw[:n-1]
	}
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimSuffix(string(line), "\r")
	}
	return &SourceMap{source: source, lines: lines}
}

// LineCount returns the number of lines.
func (sm *SourceMap) LineCount() int {
	return len(sm.lines)
}

// Line returns the text of a 1-based line, or "" when out of range.
func (sm *SourceMap) Line(line int) string {
	if line < 1 || line > len(sm.lines) {
		return ""
	}
	return sm.lines[line-1]
}

// Snippet joins lines start..end (1-based, inclusive) with newlines.
// The range is clamped to the file; an empty range yields "".
func (sm *SourceMap) Snippet(start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(sm.lines) {
		end = len(sm.lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(sm.lines[start-1:end], "\n")
}

// Source returns the raw content. The slice must not be modified.
func (sm *SourceMap) Source() []byte {
	return sm.source
}

// Cache loads SourceMaps on demand. Preloaded content wins over disk;
// relative paths are read below Root.
type Cache struct {
	// Root is the directory relative paths are resolved against.
	Root string

	// MaxSize skips files bigger than this many bytes (0 = unlimited).
	MaxSize int64

	mu        sync.Mutex
	items     map[string]*SourceMap
	preloaded map[string]*SourceMap
}

// NewCache creates a cache seeded with already loaded content.
func NewCache(root string, preloaded map[string][]byte) *Cache {
	c := &Cache{Root: root, preloaded: make(map[string]*SourceMap, len(preloaded))}
	for path, content := range preloaded {
		c.preloaded[path] = New(content)
	}
	c.items = maps.Clone(c.preloaded)
	return c
}

// Reset forgets everything read from disk, including files remembered as
// missing. Preloaded content is kept.
func (c *Cache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = maps.Clone(c.preloaded)
}

// Get returns the SourceMap for path, reading it from disk the first time.
// Unreadable files are remembered as missing and yield nil.
func (c *Cache) Get(path string) *SourceMap {
	if c == nil || path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.items == nil {
		c.items = make(map[string]*SourceMap)
	}
	if sm, ok := c.items[path]; ok {
		return sm
	}

	sm := c.read(path)
	c.items[path] = sm
	return sm
}

func (c *Cache) read(path string) *SourceMap {
	full := filepath.FromSlash(path)
	if !filepath.IsAbs(full) && c.Root != "" {
		full = filepath.Join(c.Root, full)
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return nil
	}
	if c.MaxSize > 0 && info.Size() > c.MaxSize {
		return nil
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil
	}
	return New(content)
}

// Package changeset turns a parsed diff into per-file changed-line ranges and
// answers whether a line falls inside them.
//
// All line numbers are post-change (destination side) and 1-based, because
// linters run against the post-change file content.
package changeset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidStart is returned by NewRange for start lines below 1.
var ErrInvalidStart = errors.New("changed range start must be >= 1")

// ChangedRange is a span of changed lines in one file.
// A nil Length means the range extends to the end of the file.
type ChangedRange struct {
	Start  int  `json:"start"`
	Length *int `json:"length,omitempty"`
}

// NewRange creates a bounded range. Lengths below 1 are normalized to 1.
func NewRange(start, length int) (ChangedRange, error) {
	if start < 1 {
		return ChangedRange{}, fmt.Errorf("%w: got %d", ErrInvalidStart, start)
	}
	if length < 1 {
		length = 1
	}
	return ChangedRange{Start: start, Length: &length}, nil
}

// OpenRange creates a range from start to the end of the file.
func OpenRange(start int) ChangedRange {
	if start < 1 {
		start = 1
	}
	return ChangedRange{Start: start}
}

// End returns the last line covered by the range.
// bounded is false when the range runs to the end of the file.
func (r ChangedRange) End() (end int, bounded bool) {
	if r.Length == nil {
		return 0, false
	}
	return r.Start + (*r.Length - 1), true
}

// Contains reports whether line falls inside r.
func (r ChangedRange) Contains(line int) bool {
	if line < r.Start {
		return false
	}
	end, bounded := r.End()
	return !bounded || line <= end
}

// String renders the range as "start-end" or "start-" when unbounded.
func (r ChangedRange) String() string {
	end, bounded := r.End()
	if !bounded {
		return strconv.Itoa(r.Start) + "-"
	}
	if end == r.Start {
		return strconv.Itoa(r.Start)
	}
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(end)
}

// Contains reports whether line falls inside any of ranges.
// Ranges need not be ordered; the first match wins.
func Contains(line int, ranges []ChangedRange) bool {
	for _, r := range ranges {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// Status describes how a file changed in the diff.
type Status string

const (
	StatusModified Status = "modified"
	StatusAdded    Status = "added"
	StatusRenamed  Status = "renamed"
	StatusCopied   Status = "copied"
)

// FileChangeSet holds the changed ranges of one file in the diff.
type FileChangeSet struct {
	// Path is the post-change path, slash separated and relative to the diff root.
	Path string `json:"path"`
	// Ranges are the changed ranges in diff order. Empty for files without
	// content changes (pure renames, mode changes).
	Ranges []ChangedRange `json:"ranges"`
	// Status is informational only.
	Status Status `json:"status"`
}

// Contains reports whether line falls inside the file's changed ranges.
func (s FileChangeSet) Contains(line int) bool {
	return Contains(line, s.Ranges)
}

// String renders the change set as "path: 1-3, 10".
func (s FileChangeSet) String() string {
	parts := make([]string, len(s.Ranges))
	for i, r := range s.Ranges {
		parts[i] = r.String()
	}
	return s.Path + ": " + strings.Join(parts, ", ")
}

package changeset

import (
	"fmt"
	"io"
	"path"
	"strings"

	"fortio.org/safecast"
	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// ParseDiff parses unified or git-style diff text into file entries.
func ParseDiff(r io.Reader) ([]*gitdiff.File, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}
	return files, nil
}

// span is a bounded run of changed lines on the destination side.
type span struct {
	start  int
	length int
}

// Extract walks the diff file entries and returns one FileChangeSet per
// changed file, in diff order.
//
// Each hunk contributes one range per run of changed lines, covering the
// lines the run adds on the destination side, so the result does not depend
// on how much context the diff was generated with. Runs that only delete
// lines touch no post-change line and contribute nothing. Every range is then
// widened by contextLines on both ends.
//
// Deleted and binary files are skipped. Newly added files are covered from
// line 1 to the end of the file. Files without hunks yield an empty range list.
func Extract(files []*gitdiff.File, contextLines int) []FileChangeSet {
	if contextLines < 0 {
		contextLines = 0
	}

	sets := make([]FileChangeSet, 0, len(files))
	index := make(map[string]int, len(files))

	for _, f := range files {
		if f == nil || f.IsDelete || f.IsBinary {
			continue
		}
		name := cleanPath(f.NewName)
		if name == "" {
			continue
		}

		var ranges []ChangedRange
		if f.IsNew {
			ranges = []ChangedRange{OpenRange(1)}
		} else {
			for _, frag := range f.TextFragments {
				for _, s := range fragmentSpans(frag) {
					ranges = append(ranges, expand(s, contextLines))
				}
			}
		}
		if ranges == nil {
			ranges = []ChangedRange{}
		}

		if i, ok := index[name]; ok {
			sets[i].Ranges = append(sets[i].Ranges, ranges...)
			continue
		}
		index[name] = len(sets)
		sets = append(sets, FileChangeSet{
			Path:   name,
			Ranges: ranges,
			Status: fileStatus(f),
		})
	}
	return sets
}

// fragmentSpans returns the added-line runs of one hunk.
func fragmentSpans(frag *gitdiff.TextFragment) []span {
	if frag == nil {
		return nil
	}
	newPos := toInt(frag.NewPosition)

	if len(frag.Lines) == 0 {
		// No line bodies: fall back to the header span without its context.
		start := newPos + toInt(frag.LeadingContext)
		length := toInt(frag.NewLines) - toInt(frag.LeadingContext) - toInt(frag.TrailingContext)
		if start < 1 || length < 1 {
			return nil
		}
		return []span{{start: start, length: length}}
	}

	var (
		spans []span
		cur   *span
		line  = newPos
	)
	for _, l := range frag.Lines {
		switch l.Op {
		case gitdiff.OpContext:
			cur = nil
			line++
		case gitdiff.OpAdd:
			if cur == nil {
				spans = append(spans, span{start: line})
				cur = &spans[len(spans)-1]
			}
			cur.length++
			line++
		case gitdiff.OpDelete:
			// Deleted lines don't exist on the destination side.
		}
	}
	return spans
}

// expand widens s by c lines on both ends. The start is clamped to 1 while
// the length always grows by 2c.
func expand(s span, c int) ChangedRange {
	start := s.start - c
	if start < 1 {
		start = 1
	}
	r, err := NewRange(start, s.length+2*c)
	if err != nil {
		// start is clamped above; unreachable.
		return OpenRange(start)
	}
	return r
}

func fileStatus(f *gitdiff.File) Status {
	switch {
	case f.IsNew:
		return StatusAdded
	case f.IsRename:
		return StatusRenamed
	case f.IsCopy:
		return StatusCopied
	default:
		return StatusModified
	}
}

func cleanPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "/dev/null" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(name, "\\", "/"))
}

func toInt(v int64) int {
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0
	}
	return n
}

package diffsource

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/wharflab/diffscope/internal/changeset"
	"github.com/wharflab/diffscope/internal/logging"
)

// ReaderSource reads a precomputed unified diff from a file, or from stdin
// when the path is "-". The diff's own context is fixed, so SetContext only
// records the value.
type ReaderSource struct {
	path  string
	stdin io.Reader

	mu      sync.Mutex
	context int
}

// NewReaderSource creates a source for path. stdin is read when path is "-".
func NewReaderSource(path string, stdin io.Reader) *ReaderSource {
	return &ReaderSource{path: path, stdin: stdin}
}

// SetContext implements Source.
func (s *ReaderSource) SetContext(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.context
	s.context = n
	return prev
}

// Files implements Source.
func (s *ReaderSource) Files(ctx context.Context) ([]*gitdiff.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path != "-" {
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("open diff: %w", err)
		}
		defer f.Close()
		return changeset.ParseDiff(f)
	}

	if s.stdin == nil {
		return nil, &PreconditionError{Reason: "no standard input"}
	}
	if f, ok := s.stdin.(*os.File); ok && logging.IsTerminal(f) {
		return nil, &PreconditionError{Reason: "standard input is a terminal, pipe a diff into diffscope"}
	}
	return changeset.ParseDiff(s.stdin)
}

// Package diffsource provides the diff model: the changed files of the
// working tree (or of a precomputed diff) as parsed by go-gitdiff.
package diffsource

import (
	"context"
	"fmt"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Source supplies the changed files of one run, in diff order.
type Source interface {
	// Files returns the parsed diff.
	Files(ctx context.Context) ([]*gitdiff.File, error)

	// SetContext sets how many unchanged lines surround each hunk in
	// later Files calls and returns the previous value.
	SetContext(n int) (previous int)
}

// PreconditionError is returned when no diff is available: diffscope was
// run outside a git work tree, or stdin is a terminal.
type PreconditionError struct {
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no diff available: %s: %v", e.Reason, e.Err)
	}
	return "no diff available: " + e.Reason
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

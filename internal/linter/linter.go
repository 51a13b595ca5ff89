// Package linter runs the external linter collaborator and turns its output
// into diagnostics.
//
// An Engine accepts one check request per file and returns a Pending
// completion signal immediately. Engines own their concurrency: callers
// issue every request up front and then wait on the signals.
package linter

import (
	"context"
	"path/filepath"
	"time"

	"github.com/wharflab/diffscope/internal/async"
	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/processor"
)

// Request asks an engine to check one file.
type Request struct {
	// Path is the file path as it appears in the diff (slash separated,
	// relative to the repository root).
	Path string

	// Timeout bounds this check. Zero means no limit.
	Timeout time.Duration
}

// Result carries the diagnostics reported for one file, in the linter's
// reported order.
type Result struct {
	Path        string
	Diagnostics []diagnostic.Diagnostic

	// Truncated is set when the max-diagnostics threshold cut the list.
	Truncated bool
}

// Pending is the completion signal of one check request.
type Pending = async.Future[Result]

// Engine is the linter collaborator.
type Engine interface {
	// Name identifies the linter in diagnostics and logs.
	Name() string

	// Check starts checking req.Path and returns its completion signal.
	Check(ctx context.Context, req Request) *Pending

	// SetMaxDiagnostics sets the per-check threshold (0 = unlimited) and
	// returns the previous value so callers can restore it.
	SetMaxDiagnostics(n int) (previous int)
}

// truncate applies a max-diagnostics threshold.
func truncate(diags []diagnostic.Diagnostic, limit int) ([]diagnostic.Diagnostic, bool) {
	if limit <= 0 || len(diags) <= limit {
		return diags, false
	}
	return diags[:limit], true
}

// samePath reports whether a path reported by the linter names the diff path.
// Absolute reports are made relative to root first.
func samePath(reported, diffPath, root string) bool {
	if reported == "" {
		return false
	}
	if filepath.IsAbs(reported) && root != "" {
		if rel, err := filepath.Rel(root, reported); err == nil {
			reported = rel
		}
	}
	return processor.NormalizePath(reported) == processor.NormalizePath(diffPath)
}

// isStdinName reports whether a linter labeled its input as standard input.
func isStdinName(name string) bool {
	switch name {
	case "-", "<stdin>", "stdin", "/dev/stdin":
		return true
	}
	return false
}

// attribute keeps the diagnostics that belong to path. Diagnostics with no
// file (or a stdin label) are kept with the file left empty; the caller
// fills it in. Diagnostics for other files are dropped.
func attribute(diags []diagnostic.Diagnostic, path, root, linterName string) []diagnostic.Diagnostic {
	kept := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, d := range diags {
		switch {
		case d.Location.File == "" || isStdinName(d.Location.File):
			d.Location.File = ""
		case samePath(d.Location.File, path, root):
			d.Location.File = path
		default:
			continue
		}
		if d.Linter == "" {
			d.Linter = linterName
		}
		kept = append(kept, d)
	}
	return kept
}

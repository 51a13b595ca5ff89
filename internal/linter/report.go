package linter

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/wharflab/diffscope/internal/async"
	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/processor"
)

// ReportEngine serves precomputed linter results, for linters that run
// elsewhere (CI jobs, editor integrations) or over the whole tree at once.
// Every check completes immediately.
type ReportEngine struct {
	name string

	// byPath holds diagnostics keyed by normalized path, in report order.
	byPath map[string][]diagnostic.Diagnostic

	// unattributed counts diagnostics that named no file.
	unattributed int

	mu             sync.Mutex
	maxDiagnostics int
}

// NewReportEngine parses a complete report. root makes absolute paths in the
// report relative to the repository.
func NewReportEngine(name string, r io.Reader, parser Parser, root string) (*ReportEngine, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read linter report: %w", err)
	}
	diags, err := parser.Parse(out)
	if err != nil {
		return nil, err
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}

	e := &ReportEngine{name: name, byPath: make(map[string][]diagnostic.Diagnostic)}
	for _, d := range diags {
		file := d.Location.File
		if file == "" || isStdinName(file) {
			e.unattributed++
			continue
		}
		if filepath.IsAbs(file) && root != "" {
			if rel, err := filepath.Rel(root, file); err == nil {
				file = rel
			}
		}
		key := processor.NormalizePath(file)
		if d.Linter == "" {
			d.Linter = name
		}
		d.Location.File = key
		e.byPath[key] = append(e.byPath[key], d)
	}
	return e, nil
}

// Name implements Engine.
func (e *ReportEngine) Name() string {
	return e.name
}

// Unattributed returns how many report entries named no file and are
// therefore never served.
func (e *ReportEngine) Unattributed() int {
	return e.unattributed
}

// Files returns the number of distinct files in the report.
func (e *ReportEngine) Files() int {
	return len(e.byPath)
}

// SetMaxDiagnostics implements Engine.
func (e *ReportEngine) SetMaxDiagnostics(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.maxDiagnostics
	e.maxDiagnostics = max(n, 0)
	return prev
}

// Check implements Engine. The returned signal is already complete.
func (e *ReportEngine) Check(ctx context.Context, req Request) *Pending {
	if err := ctx.Err(); err != nil {
		return async.Resolved(Result{}, err)
	}
	e.mu.Lock()
	limit := e.maxDiagnostics
	e.mu.Unlock()

	stored := e.byPath[processor.NormalizePath(req.Path)]
	diags := make([]diagnostic.Diagnostic, len(stored))
	for i, d := range stored {
		diags[i] = d.WithFile(req.Path)
	}
	diags, truncated := truncate(diags, limit)
	return async.Resolved(Result{Path: req.Path, Diagnostics: diags, Truncated: truncated}, nil)
}

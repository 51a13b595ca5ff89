package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/wharflab/diffscope/internal/async"
	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/linter"
)

// fakeCheck is the canned outcome of checking one file.
type fakeCheck struct {
	lines []int
	err   error
	delay time.Duration
	// block waits for the check's context to end.
	block bool
}

type fakeEngine struct {
	checks map[string]fakeCheck

	mu             sync.Mutex
	maxDiagnostics int
	requests       []linter.Request
	maxAtCheck     []int
}

func newFakeEngine(checks map[string]fakeCheck) *fakeEngine {
	return &fakeEngine{checks: checks, maxDiagnostics: 50}
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) SetMaxDiagnostics(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.maxDiagnostics
	e.maxDiagnostics = n
	return prev
}

func (e *fakeEngine) Check(ctx context.Context, req linter.Request) *linter.Pending {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.maxAtCheck = append(e.maxAtCheck, e.maxDiagnostics)
	e.mu.Unlock()

	f := async.NewFuture[linter.Result]()
	c := e.checks[req.Path]
	go func() {
		ctx := ctx
		if req.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, req.Timeout)
			defer cancel()
		}
		if c.block {
			<-ctx.Done()
			f.Resolve(linter.Result{}, ctx.Err())
			return
		}
		if c.delay > 0 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				f.Resolve(linter.Result{}, ctx.Err())
				return
			}
		}
		if c.err != nil {
			f.Resolve(linter.Result{}, c.err)
			return
		}
		diags := make([]diagnostic.Diagnostic, len(c.lines))
		for i, l := range c.lines {
			// Linters checking one file often leave the file out.
			diags[i] = diagnostic.New(diagnostic.NewLineLocation("", l), "R", "issue", diagnostic.SeverityWarning)
			diags[i].Linter = "fake"
		}
		f.Resolve(linter.Result{Path: req.Path, Diagnostics: diags}, nil)
	}()
	return f
}

func (e *fakeEngine) paths() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.requests))
	for i, r := range e.requests {
		out[i] = r.Path
	}
	return out
}

// fakeSource serves a fixed diff. hook runs inside Files, while the run's
// overrides are active.
type fakeSource struct {
	files []*gitdiff.File
	err   error
	hook  func()

	mu      sync.Mutex
	context int
	seen    []int
}

func (s *fakeSource) Files(ctx context.Context) ([]*gitdiff.File, error) {
	s.mu.Lock()
	s.seen = append(s.seen, s.context)
	s.mu.Unlock()
	if s.hook != nil {
		s.hook()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.files, s.err
}

func (s *fakeSource) SetContext(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.context
	s.context = n
	return prev
}

func (s *fakeSource) current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context
}

// hunkFile is a diff entry with header-only hunks at (start, length) pairs.
func hunkFile(name string, hunks ...[2]int64) *gitdiff.File {
	f := &gitdiff.File{NewName: name}
	for _, h := range hunks {
		f.TextFragments = append(f.TextFragments, &gitdiff.TextFragment{NewPosition: h[0], NewLines: h[1]})
	}
	return f
}

type countingView struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (v *countingView) Refresh() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return v.err
}

func (v *countingView) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func linesByFile(diags []diagnostic.Diagnostic) map[string][]int {
	out := map[string][]int{}
	for _, d := range diags {
		out[d.File()] = append(out[d.File()], d.Line())
	}
	return out
}

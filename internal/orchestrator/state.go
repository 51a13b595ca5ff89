package orchestrator

import (
	"slices"
	"sync"

	"github.com/wharflab/diffscope/internal/changeset"
	"github.com/wharflab/diffscope/internal/diagnostic"
)

// RunState holds the outcome of the latest run. It is owned by the
// invocation and handed to the orchestrator and the presenter; the zero
// value is an empty state. A nil *RunState reads as empty.
type RunState struct {
	mu          sync.Mutex
	scope       changeset.Scope
	diagnostics []diagnostic.Diagnostic
	skipped     []*FileCheckError
	files       []changeset.FileChangeSet
	generation  uint64
}

// NewRunState returns an empty state.
func NewRunState() *RunState {
	return &RunState{}
}

// Reset replaces the state for a new run. Nothing of the previous run
// survives.
func (s *RunState) Reset(scope changeset.Scope, files []changeset.FileChangeSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = scope
	s.diagnostics = nil
	s.skipped = nil
	s.files = slices.Clone(files)
	s.generation++
}

// Append adds diagnostics for one file. It is the only writer of the
// aggregated collection.
func (s *RunState) Append(diags ...diagnostic.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics = append(s.diagnostics, diags...)
	s.generation++
}

// Skip records a file whose check failed.
func (s *RunState) Skip(err *FileCheckError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped = append(s.skipped, err)
	s.generation++
}

// Scope returns the scope of the latest run.
func (s *RunState) Scope() changeset.Scope {
	if s == nil {
		return changeset.ScopeUnset
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// Diagnostics returns a copy of the aggregated diagnostics, in diff order
// then linter order.
func (s *RunState) Diagnostics() []diagnostic.Diagnostic {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.diagnostics)
}

// Skipped returns the files whose check failed.
func (s *RunState) Skipped() []*FileCheckError {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.skipped)
}

// Files returns the change sets the latest run checked.
func (s *RunState) Files() []changeset.FileChangeSet {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.files)
}

// Generation changes whenever the state is written. Readers use it to tell
// whether derived data is stale.
func (s *RunState) Generation() uint64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Snapshot returns the diagnostics together with the generation they
// belong to, read under one lock.
func (s *RunState) Snapshot() ([]diagnostic.Diagnostic, uint64) {
	if s == nil {
		return nil, 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.diagnostics), s.generation
}

// Package orchestrator runs one diff-scoped check: it asks the linter to
// check every changed file, waits for all of them, and keeps the
// diagnostics that fall inside the diff.
package orchestrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wharflab/diffscope/internal/async"
	"github.com/wharflab/diffscope/internal/changeset"
	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/linter"
	"github.com/wharflab/diffscope/internal/logging"
	"github.com/wharflab/diffscope/internal/processor"
)

// Orchestrator issues per-file checks and aggregates the results.
type Orchestrator struct {
	engine  linter.Engine
	timeout time.Duration
	log     logrus.FieldLogger
}

// New creates an orchestrator. timeout bounds each file's check (0 = none).
func New(engine linter.Engine, timeout time.Duration, log logrus.FieldLogger) *Orchestrator {
	if log == nil {
		log = logging.Discard()
	}
	return &Orchestrator{engine: engine, timeout: timeout, log: log}
}

// Run checks sets and fully replaces state with the outcome.
//
// The scope is validated before any check is issued. All checks are
// started up front; results are then collected in diff order once every
// file has completed. A failed check is recorded in state as a
// *FileCheckError and the run continues. Run returns ctx.Err() if the
// context ends before every file completed.
func (o *Orchestrator) Run(ctx context.Context, state *RunState, sets []changeset.FileChangeSet, scope changeset.Scope) error {
	if !scope.Valid() {
		return &ConfigurationError{Scope: scope}
	}
	state.Reset(scope, sets)

	pending := make([]*linter.Pending, len(sets))
	for i, set := range sets {
		pending[i] = o.engine.Check(ctx, linter.Request{Path: set.Path, Timeout: o.timeout})
	}

	// Barrier: nothing is aggregated until every file has a result.
	results := make([]linter.Result, len(sets))
	errs := make([]error, len(sets))
	for i, p := range pending {
		results[i], errs[i] = p.Wait(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	for i, set := range sets {
		if err := errs[i]; err != nil {
			fce := &FileCheckError{Path: set.Path, Reason: async.Classify(err), Err: err}
			o.log.WithField("file", set.Path).WithError(err).Warnf("skipping file (%s)", fce.Reason)
			state.Skip(fce)
			continue
		}

		res := results[i]
		if res.Truncated {
			o.log.WithField("file", set.Path).Debug("linter output was truncated")
		}
		kept, err := processor.FilterScope(fill(res.Diagnostics, set.Path), set, scope)
		if err != nil {
			return err
		}
		state.Append(kept...)
	}
	return nil
}

// fill sets the file of diagnostics the linter did not attribute.
func fill(diags []diagnostic.Diagnostic, path string) []diagnostic.Diagnostic {
	out := make([]diagnostic.Diagnostic, len(diags))
	for i, d := range diags {
		if d.Location.File == "" {
			d.Location.File = path
		}
		out[i] = d
	}
	return out
}

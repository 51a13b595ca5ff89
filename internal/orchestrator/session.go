package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/wharflab/diffscope/internal/changeset"
	"github.com/wharflab/diffscope/internal/diffsource"
	"github.com/wharflab/diffscope/internal/linter"
	"github.com/wharflab/diffscope/internal/logging"
	"github.com/wharflab/diffscope/internal/processor"
)

// Phase is the lifecycle position of a Session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSetup
	PhaseRunning
	PhaseTeardown
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSetup:
		return "setup"
	case PhaseRunning:
		return "running"
	case PhaseTeardown:
		return "teardown"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ErrBusy is returned when Run is called while a run is in progress.
var ErrBusy = errors.New("a run is already in progress")

// Refresher is a results view that redraws from the run state on request.
type Refresher interface {
	Refresh() error
}

// Options configures a Session.
type Options struct {
	// Scope is the filtering policy.
	Scope changeset.Scope

	// ContextLines widens every changed range. Ignored for ScopeFiles.
	ContextLines int

	// InhibitMessages suppresses info logging while the run is in progress.
	InhibitMessages bool

	// Exclude lists doublestar patterns of diff paths that are not checked.
	Exclude []string

	// CheckTimeout bounds each file's check (0 = none).
	CheckTimeout time.Duration
}

// Session is one invocation: Setup applies the run's overrides, Running
// computes the diagnostics, Teardown restores every override whatever
// happened before it.
type Session struct {
	source    diffsource.Source
	engine    linter.Engine
	opts      Options
	log       logrus.FieldLogger
	inhibitor *logging.Inhibitor

	mu         sync.Mutex
	phase      Phase
	refreshers []Refresher
	teardown   []func() error
}

// NewSession creates a session. inhibitor may be nil when messages are
// never suppressed.
func NewSession(source diffsource.Source, engine linter.Engine, opts Options, log logrus.FieldLogger, inhibitor *logging.Inhibitor) *Session {
	if log == nil {
		log = logging.Discard()
	}
	return &Session{source: source, engine: engine, opts: opts, log: log, inhibitor: inhibitor}
}

// AddRefresher registers a view that is refreshed after every completed run.
func (s *Session) AddRefresher(r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshers = append(s.refreshers, r)
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// contextLines is the effective context: none when whole files are in scope.
func (s *Session) contextLines() int {
	if s.opts.Scope == changeset.ScopeFiles {
		return 0
	}
	return max(s.opts.ContextLines, 0)
}

// Run performs one invocation and fully replaces state. Registered views
// are refreshed after a completed run.
func (s *Session) Run(ctx context.Context, state *RunState) error {
	if s.source == nil {
		return &PreconditionError{Reason: "no diff source"}
	}
	if s.engine == nil {
		return &PreconditionError{Reason: "no linter configured"}
	}
	if !s.opts.Scope.Valid() {
		return &ConfigurationError{Scope: s.opts.Scope}
	}

	s.mu.Lock()
	if s.phase != PhaseIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.phase = PhaseSetup
	s.mu.Unlock()

	if err := s.run(ctx, state); err != nil {
		return err
	}
	return s.refresh()
}

func (s *Session) run(ctx context.Context, state *RunState) error {
	defer s.finish()

	s.setup()

	s.setPhase(PhaseRunning)
	// A run that fails before checking anything still replaces the state.
	state.Reset(s.opts.Scope, nil)
	files, err := s.source.Files(ctx)
	if err != nil {
		return err
	}
	sets := s.included(changeset.Extract(files, s.contextLines()))
	s.log.Debugf("checking %d changed file(s)", len(sets))

	return New(s.engine, s.opts.CheckTimeout, s.log).Run(ctx, state, sets, s.opts.Scope)
}

// setup applies the run's overrides and queues their restores.
func (s *Session) setup() {
	prevContext := s.source.SetContext(s.contextLines())
	s.onTeardown(func() error {
		s.source.SetContext(prevContext)
		return nil
	})

	// Every diagnostic is needed to filter by line.
	prevMax := s.engine.SetMaxDiagnostics(0)
	s.onTeardown(func() error {
		s.engine.SetMaxDiagnostics(prevMax)
		return nil
	})

	if s.opts.InhibitMessages {
		restore := s.inhibitor.Suppress()
		s.onTeardown(func() error {
			restore()
			return nil
		})
	}
}

// OnTeardown queues fn to run when the current run ends. Restores run in
// reverse order.
func (s *Session) OnTeardown(fn func() error) {
	s.onTeardown(fn)
}

func (s *Session) onTeardown(fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown = append(s.teardown, fn)
}

// finish runs every queued restore. Failures are logged, not returned.
func (s *Session) finish() {
	s.mu.Lock()
	s.phase = PhaseTeardown
	steps := s.teardown
	s.teardown = nil
	s.mu.Unlock()

	var result *multierror.Error
	for i := len(steps) - 1; i >= 0; i-- {
		if err := runStep(steps[i]); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		s.log.WithError(&TeardownError{Err: err}).Error("failed to restore state after the run")
	}

	s.setPhase(PhaseIdle)
}

func runStep(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// included drops change sets matching an exclude pattern.
func (s *Session) included(sets []changeset.FileChangeSet) []changeset.FileChangeSet {
	if len(s.opts.Exclude) == 0 {
		return sets
	}
	kept := make([]changeset.FileChangeSet, 0, len(sets))
	for _, set := range sets {
		if processor.MatchAny(s.opts.Exclude, set.Path) {
			s.log.WithField("file", set.Path).Debug("excluded")
			continue
		}
		kept = append(kept, set)
	}
	return kept
}

func (s *Session) refresh() error {
	s.mu.Lock()
	views := append([]Refresher(nil), s.refreshers...)
	s.mu.Unlock()

	var errs []error
	for _, v := range views {
		if err := v.Refresh(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package linter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/armon/circbuf"
	"github.com/google/shlex"
	"github.com/sirupsen/logrus"

	"github.com/wharflab/diffscope/internal/async"
	"github.com/wharflab/diffscope/internal/fileval"
	"github.com/wharflab/diffscope/internal/logging"
)

// FilePlaceholder is replaced by the file path in linter command arguments.
const FilePlaceholder = "{file}"

// waitDelay bounds how long a killed linter may keep its output pipes open.
const waitDelay = 2 * time.Second

// stderrTail bounds the linter stderr kept for crash reports.
const stderrTail = 8 << 10

// ExecError is returned when the linter process could not be run at all.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("run linter %q: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// CrashError is returned when the linter exited non-zero without reporting
// any diagnostic, which linters only do when they failed.
type CrashError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CrashError) Error() string {
	msg := fmt.Sprintf("linter %q exited with code %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// CommandOptions configures a CommandEngine.
type CommandOptions struct {
	// Name labels diagnostics. Defaults to the command's executable name.
	Name string

	// Command is a shell-like command line, split with shell quoting rules.
	Command string

	// Parser reads the command's standard output.
	Parser Parser

	// Stdin feeds the file content to the command on standard input.
	Stdin bool

	// Dir is the repository root the command runs in.
	Dir string

	// Jobs bounds concurrent checks (0 = async.DefaultConcurrency).
	Jobs int

	// MaxDiagnostics truncates each check's result (0 = unlimited).
	MaxDiagnostics int

	// MaxFileSize skips larger files with an error (0 = unlimited).
	MaxFileSize int64

	// Log receives debug output. Nil discards it.
	Log logrus.FieldLogger
}

// CommandEngine runs an external linter command once per file.
type CommandEngine struct {
	name        string
	argv        []string
	parser      Parser
	stdin       bool
	dir         string
	maxFileSize int64
	runtime     *async.Runtime
	log         logrus.FieldLogger

	mu             sync.Mutex
	maxDiagnostics int
}

// NewCommandEngine validates opts and creates the engine.
func NewCommandEngine(opts CommandOptions) (*CommandEngine, error) {
	argv, err := shlex.Split(opts.Command)
	if err != nil {
		return nil, fmt.Errorf("parse linter command: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("linter command is empty")
	}
	if opts.Parser == nil {
		return nil, errors.New("linter parser is required")
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(argv[0])
	}
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	dir := opts.Dir
	if dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}

	return &CommandEngine{
		name:           name,
		argv:           argv,
		parser:         opts.Parser,
		stdin:          opts.Stdin,
		dir:            dir,
		maxFileSize:    opts.MaxFileSize,
		runtime:        async.NewRuntime(opts.Jobs),
		log:            log.WithField("linter", name),
		maxDiagnostics: opts.MaxDiagnostics,
	}, nil
}

// Name implements Engine.
func (e *CommandEngine) Name() string {
	return e.name
}

// SetMaxDiagnostics implements Engine.
func (e *CommandEngine) SetMaxDiagnostics(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.maxDiagnostics
	e.maxDiagnostics = max(n, 0)
	return prev
}

func (e *CommandEngine) limit() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxDiagnostics
}

// Check implements Engine. The check runs on the engine's runtime once a
// job slot is free.
func (e *CommandEngine) Check(ctx context.Context, req Request) *Pending {
	limit := e.limit()
	return async.Go(ctx, e.runtime, req.Timeout, func(ctx context.Context) (Result, error) {
		return e.run(ctx, req, limit)
	})
}

// Wait blocks until every started check has finished.
func (e *CommandEngine) Wait() {
	e.runtime.Wait()
}

func (e *CommandEngine) run(ctx context.Context, req Request, limit int) (Result, error) {
	full := e.resolve(req.Path)
	if err := fileval.ValidateFile(full, e.maxFileSize); err != nil {
		return Result{}, err
	}

	args := e.args(filepath.FromSlash(req.Path))
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = e.dir
	cmd.WaitDelay = waitDelay
	stderr, err := circbuf.NewBuffer(stderrTail)
	if err != nil {
		return Result{}, err
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if e.stdin {
		f, err := os.Open(full)
		if err != nil {
			return Result{}, &fileval.NotAccessibleError{Path: full, Err: err}
		}
		defer f.Close()
		cmd.Stdin = f
	}

	e.log.WithField("file", req.Path).Debugf("running %s", strings.Join(args, " "))
	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return Result{}, &ExecError{Command: e.argv[0], Err: runErr}
	}

	diags, err := e.parser.Parse(stdout.Bytes())
	if err != nil {
		return Result{}, err
	}
	if exitErr != nil && len(diags) == 0 && strings.TrimSpace(stderr.String()) != "" {
		return Result{}, &CrashError{
			Command:  e.argv[0],
			ExitCode: exitErr.ExitCode(),
			Stderr:   lastLine(stderr.String()),
		}
	}

	diags = attribute(diags, req.Path, e.dir, e.name)
	diags, truncated := truncate(diags, limit)
	return Result{Path: req.Path, Diagnostics: diags, Truncated: truncated}, nil
}

// resolve returns the on-disk path of a diff path.
func (e *CommandEngine) resolve(path string) string {
	p := filepath.FromSlash(path)
	if filepath.IsAbs(p) || e.dir == "" {
		return p
	}
	return filepath.Join(e.dir, p)
}

// args substitutes the placeholder with path (relative to the engine's
// directory), or appends the path when the command has none and the
// content isn't fed on stdin.
func (e *CommandEngine) args(path string) []string {
	args := make([]string, len(e.argv))
	found := false
	for i, a := range e.argv {
		if strings.Contains(a, FilePlaceholder) {
			a = strings.ReplaceAll(a, FilePlaceholder, path)
			found = true
		}
		args[i] = a
	}
	if !found && !e.stdin {
		args = append(args, path)
	}
	return args
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

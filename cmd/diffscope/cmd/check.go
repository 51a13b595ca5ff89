package cmd

import (
	stdcontext "context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/diffscope/internal/async"
	"github.com/wharflab/diffscope/internal/changeset"
	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/linter"
	"github.com/wharflab/diffscope/internal/orchestrator"
	"github.com/wharflab/diffscope/internal/presenter"
	"github.com/wharflab/diffscope/internal/processor"
	"github.com/wharflab/diffscope/internal/reporter"
	"github.com/wharflab/diffscope/internal/sourcemap"
	"github.com/wharflab/diffscope/internal/version"
)

// Exit codes
const (
	ExitSuccess     = 0 // No diagnostics (or below fail-level threshold)
	ExitDiagnostics = 1 // Diagnostics found at or above fail-level
	ExitError       = 2 // No diff, config error, or unexpected failure
)

func checkCommand() *cli.Command {
	flags := append(diffFlags(),
		&cli.StringFlag{
			Name:  "linter-command",
			Usage: "Linter command line; {file} is replaced by the changed file's path",
		},
		&cli.StringFlag{
			Name:  "linter-name",
			Usage: "Name shown next to each diagnostic",
		},
		&cli.StringFlag{
			Name:  "linter-format",
			Usage: "Linter output format: gcc, regex, sarif, json",
		},
		&cli.StringFlag{
			Name:  "linter-pattern",
			Usage: "Regular expression with named groups for --linter-format=regex",
		},
		&cli.BoolFlag{
			Name:  "linter-stdin",
			Usage: "Feed file content to the linter on stdin",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Read precomputed linter output from a file (\"-\" for stdin) instead of running the linter",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Number of files checked concurrently",
		},
		&cli.IntFlag{
			Name:  "max-diagnostics",
			Usage: "Per-file diagnostic limit outside of diff-scoped runs (0 = unlimited)",
		},
		&cli.Int64Flag{
			Name:  "max-file-size",
			Usage: "Skip changed files larger than this many bytes (0 = unlimited)",
		},
		&cli.StringFlag{
			Name:  "check-timeout",
			Usage: "Timeout for each file's check (e.g., 30s)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, sarif, github-actions, markdown",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output path: stdout, stderr, or file path",
		},
		&cli.BoolFlag{
			Name:    "no-color",
			Usage:   "Disable colored output",
			Sources: cli.EnvVars("NO_COLOR"),
		},
		&cli.BoolFlag{
			Name:  "show-source",
			Usage: "Show source code snippets (default: true)",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "hide-source",
			Usage: "Hide source code snippets",
		},
		&cli.StringFlag{
			Name:  "fail-level",
			Usage: "Minimum severity to cause non-zero exit: error, warning, info, style, none",
		},
		&cli.BoolFlag{
			Name:  "no-inhibit-messages",
			Usage: "Keep informational messages while the linter runs",
		},
		&cli.BoolFlag{
			Name:    "watch",
			Aliases: []string{"w"},
			Usage:   "Re-run whenever a changed file is written",
		},
	)

	return &cli.Command{
		Name:      "check",
		Usage:     "Lint the changed files and report diagnostics on changed lines",
		ArgsUsage: "[PATH...]",
		Flags:     flags,
		Action:    runCheck,
	}
}

func runCheck(ctx stdcontext.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := setupEnvironment(ctx, cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitError)
	}

	c, closeOutput, err := newChecker(cmd, env)
	if err != nil {
		env.log.WithError(err).Error("cannot start")
		return cli.Exit("", ExitError)
	}
	defer func() {
		if err := closeOutput(); err != nil {
			env.log.WithError(err).Warn("failed to close output")
		}
	}()

	if cmd.Bool("watch") {
		return c.watch(ctx)
	}

	if err := c.run(ctx); err != nil {
		return c.exitFor(err)
	}
	exitCode := determineExitCode(c.view.Rows(), env.cfg.Output.FailLevel)
	if exitCode != ExitSuccess {
		return cli.Exit("", exitCode)
	}
	return nil
}

// checker wires one session to its presenter and view.
type checker struct {
	env     *environment
	engine  linter.Engine
	session *orchestrator.Session
	state   *orchestrator.RunState
	sources *sourcemap.Cache
	view    *reporter.View
}

func newChecker(cmd *cli.Command, env *environment) (*checker, func() error, error) {
	cfg := env.cfg

	scope, err := changeset.ParseScope(cfg.DefaultScope)
	if err != nil {
		return nil, nil, err
	}

	engine, err := linter.NewEngine(cfg.Linter, env.root, env.log)
	if err != nil {
		return nil, nil, err
	}

	format, err := reporter.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, nil, err
	}
	writer, closeWriter, err := reporter.GetWriter(cfg.Output.Path)
	if err != nil {
		return nil, nil, err
	}

	opts := reporter.Options{
		Format:      format,
		Writer:      writer,
		ShowSource:  cfg.Output.ShowSource,
		ToolName:    "diffscope",
		ToolVersion: version.Version(),
		ToolURI:     "https://github.com/wharflab/diffscope",
	}
	if cmd.IsSet("no-color") && cmd.Bool("no-color") {
		noColor := false
		opts.Color = &noColor
	}
	rep, err := reporter.New(opts)
	if err != nil {
		_ = closeWriter()
		return nil, nil, err
	}

	sources := sourcemap.NewCache(env.root, nil)
	sources.MaxSize = cfg.Linter.MaxFileSize

	state := orchestrator.NewRunState()
	pres := presenter.New(state, &processor.Context{Config: cfg, Sources: sources})

	session := orchestrator.NewSession(env.source, engine, orchestrator.Options{
		Scope:           scope,
		ContextLines:    cfg.ContextLines,
		InhibitMessages: cfg.InhibitMessages,
		Exclude:         cfg.Exclude,
		CheckTimeout:    cfg.Linter.Timeout(),
	}, env.log, env.inhibitor)

	c := &checker{env: env, engine: engine, session: session, state: state, sources: sources}
	c.view = reporter.NewView(rep, pres, sources, c.metadata)
	session.AddRefresher(c.view)

	return c, closeWriter, nil
}

func (c *checker) metadata() reporter.ReportMetadata {
	return reporter.ReportMetadata{
		FilesChecked: len(c.state.Files()),
		FilesSkipped: len(c.state.Skipped()),
		Scope:        c.state.Scope().String(),
		Linter:       c.engine.Name(),
	}
}

// run performs one session run and reports what was skipped. Snippets are
// read from the files as they are now, not as an earlier run saw them.
func (c *checker) run(ctx stdcontext.Context) error {
	c.sources.Reset()
	err := c.session.Run(ctx, c.state)
	if err != nil {
		return err
	}
	reportSkipped(c.env.log, c.state.Skipped())
	if re, ok := c.engine.(*linter.ReportEngine); ok {
		if n := re.Unattributed(); n > 0 {
			c.env.log.Warnf("%d diagnostic(s) in the report name no file and were ignored", n)
		}
	}
	return nil
}

// exitFor logs a failed run and picks its exit code.
func (c *checker) exitFor(err error) error {
	var (
		precondition *orchestrator.PreconditionError
		configErr    *orchestrator.ConfigurationError
	)
	switch {
	case errors.Is(err, stdcontext.Canceled):
		c.env.log.Warn("interrupted")
	case errors.As(err, &precondition):
		c.env.log.Error(precondition.Error())
	case errors.As(err, &configErr):
		c.env.log.Error(configErr.Error())
	default:
		c.env.log.WithError(err).Error("check failed")
	}
	return cli.Exit("", ExitError)
}

// reportSkipped prints a summary of the files whose check failed.
func reportSkipped(log logrus.FieldLogger, skipped []*orchestrator.FileCheckError) {
	if len(skipped) == 0 {
		return
	}
	counts := make(map[async.SkipReason]int)
	for _, s := range skipped {
		counts[s.Reason]++
	}
	if n := counts[async.SkipTimeout]; n > 0 {
		log.Warnf("%d file check(s) timed out (increase --check-timeout)", n)
	}
	if n := counts[async.SkipError]; n > 0 {
		log.Warnf("%d file check(s) failed; their diagnostics are missing", n)
	}
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		if reason != async.SkipTimeout && reason != async.SkipError && reason != async.SkipCanceled {
			reasons = append(reasons, fmt.Sprintf("%s: %d", reason, counts[reason]))
		}
	}
	if len(reasons) > 0 {
		slices.Sort(reasons)
		log.Warnf("file check(s) skipped (%s)", strings.Join(reasons, ", "))
	}
}

// determineExitCode returns the appropriate exit code based on rows and fail-level.
func determineExitCode(rows []presenter.Row, failLevel string) int {
	// "none" means never fail due to diagnostics
	if strings.EqualFold(failLevel, "none") {
		return ExitSuccess
	}

	threshold, err := parseFailLevel(failLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid --fail-level %q\n", failLevel)
		return ExitError
	}

	for _, row := range rows {
		if row.Severity.IsAtLeast(threshold) {
			return ExitDiagnostics
		}
	}
	return ExitSuccess
}

// parseFailLevel parses a fail-level string to a Severity.
func parseFailLevel(level string) (diagnostic.Severity, error) {
	switch level {
	case "", "style":
		// Default to "style" (any diagnostic fails)
		return diagnostic.SeverityStyle, nil
	default:
		return diagnostic.ParseSeverity(level)
	}
}

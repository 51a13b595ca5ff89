package cmd

import (
	stdcontext "context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/diffscope/internal/config"
	"github.com/wharflab/diffscope/internal/diffsource"
	"github.com/wharflab/diffscope/internal/logging"
)

// diffFlags are shared by every command that reads a diff.
func diffFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file (default: auto-discover)",
		},
		&cli.StringFlag{
			Name:  "scope",
			Usage: "Filtering policy: lines (changed lines only) or files (whole changed files)",
		},
		&cli.IntFlag{
			Name:    "context-lines",
			Aliases: []string{"C"},
			Usage:   "Also keep diagnostics this many lines around each change",
		},
		&cli.StringFlag{
			Name:  "base",
			Usage: "Revision to diff against (default: the index)",
		},
		&cli.BoolFlag{
			Name:  "staged",
			Usage: "Diff the index instead of the working tree",
		},
		&cli.StringFlag{
			Name:  "diff-file",
			Usage: "Read a unified diff from a file (\"-\" for stdin) instead of running git",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob pattern of changed files to skip (can be repeated)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// flagKeys maps CLI flags to dotted config keys.
var flagKeys = map[string]string{
	"scope":           "default-scope",
	"context-lines":   "context-lines",
	"exclude":         "exclude",
	"log-level":       "log-level",
	"base":            "diff.base",
	"staged":          "diff.staged",
	"diff-file":       "diff.file",
	"linter-name":     "linter.name",
	"linter-command":  "linter.command",
	"linter-format":   "linter.format",
	"linter-pattern":  "linter.pattern",
	"linter-stdin":    "linter.stdin",
	"jobs":            "linter.jobs",
	"max-diagnostics": "linter.max-diagnostics",
	"check-timeout":   "linter.check-timeout",
	"report":          "linter.report",
	"max-file-size":   "linter.max-file-size",
	"format":          "output.format",
	"output":          "output.path",
	"show-source":     "output.show-source",
	"fail-level":      "output.fail-level",
}

// configOverrides collects the flags that were set explicitly.
func configOverrides(cmd *cli.Command) map[string]any {
	overrides := make(map[string]any)
	for _, flag := range cmd.Flags {
		for _, name := range flag.Names() {
			key, ok := flagKeys[name]
			if !ok || !cmd.IsSet(name) {
				continue
			}
			overrides[key] = cmd.Value(name)
		}
	}

	if cmd.IsSet("hide-source") && cmd.Bool("hide-source") {
		overrides["output.show-source"] = false
	}
	if cmd.IsSet("no-inhibit-messages") && cmd.Bool("no-inhibit-messages") {
		overrides["inhibit-messages"] = false
	}
	return overrides
}

// loadConfig loads the configuration for dir and applies the CLI flags.
func loadConfig(cmd *cli.Command, dir string) (*config.Config, error) {
	return config.LoadWithOverrides(dir, cmd.String("config"), configOverrides(cmd))
}

// environment is what a command needs before it can read a diff.
type environment struct {
	cfg       *config.Config
	log       *logrus.Logger
	inhibitor *logging.Inhibitor

	// root is the directory diff paths are relative to.
	root   string
	cwd    string
	source diffsource.Source
}

// setupEnvironment loads configuration and logging and picks the diff source.
func setupEnvironment(ctx stdcontext.Context, cmd *cli.Command) (*environment, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd, cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}
	if cfg.ConfigFile != "" {
		log.WithField("path", cfg.ConfigFile).Debug("loaded config")
	}

	env := &environment{
		cfg:       cfg,
		log:       log,
		inhibitor: logging.NewInhibitor(log),
		root:      cwd,
		cwd:       cwd,
	}

	if cfg.Diff.File != "" {
		env.source = diffsource.NewReaderSource(cfg.Diff.File, os.Stdin)
		return env, nil
	}

	if top, err := diffsource.TopLevel(ctx, cwd); err == nil {
		env.root = top
	}
	env.source = diffsource.NewGitSource(cwd, diffsource.GitOptions{
		Base:   cfg.Diff.Base,
		Staged: cfg.Diff.Staged,
		Paths:  cmd.Args().Slice(),
	})
	return env, nil
}

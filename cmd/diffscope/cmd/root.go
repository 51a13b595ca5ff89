package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/diffscope/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "diffscope",
		Usage:   "Run a linter and keep only what it says about your changes",
		Version: version.Version(),
		Description: `diffscope runs an external linter on the files changed in a git diff and
reports only the diagnostics that fall on changed lines (or, with
--scope=files, anywhere in a changed file).

Examples:
  diffscope check --linter-command "shellcheck -f gcc {file}"
  diffscope check --base origin/main --format github-actions
  git diff -U0 | diffscope check --diff-file - --report lint.json --linter-format json
  diffscope ranges --context-lines 2`,
		Commands: []*cli.Command{
			checkCommand(),
			rangesCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}

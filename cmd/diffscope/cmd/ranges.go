package cmd

import (
	stdcontext "context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/diffscope/internal/changeset"
	"github.com/wharflab/diffscope/internal/processor"
)

func rangesCommand() *cli.Command {
	return &cli.Command{
		Name:      "ranges",
		Usage:     "Print the changed line ranges of every file in the diff",
		ArgsUsage: "[PATH...]",
		Flags: append(diffFlags(), &cli.BoolFlag{
			Name:  "json",
			Usage: "Output change sets as JSON",
		}),
		Action: runRanges,
	}
}

func runRanges(ctx stdcontext.Context, cmd *cli.Command) error {
	env, err := setupEnvironment(ctx, cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitError)
	}

	scope, err := changeset.ParseScope(env.cfg.DefaultScope)
	if err != nil {
		env.log.Error(err.Error())
		return cli.Exit("", ExitError)
	}
	contextLines := env.cfg.ContextLines
	if scope == changeset.ScopeFiles {
		contextLines = 0
	}

	files, err := env.source.Files(ctx)
	if err != nil {
		env.log.Error(err.Error())
		return cli.Exit("", ExitError)
	}

	var sets []changeset.FileChangeSet
	for _, set := range changeset.Extract(files, contextLines) {
		if !processor.MatchAny(env.cfg.Exclude, set.Path) {
			sets = append(sets, set)
		}
	}

	if cmd.Bool("json") {
		return writeRangesJSON(os.Stdout, sets)
	}
	return writeRanges(os.Stdout, sets)
}

// writeRanges prints one "path (status): ranges" line per change set.
func writeRanges(w io.Writer, sets []changeset.FileChangeSet) error {
	for _, set := range sets {
		line := set.String()
		if set.Status != changeset.StatusModified && set.Status != "" {
			line = fmt.Sprintf("%s [%s]", line, set.Status)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeRangesJSON(w io.Writer, sets []changeset.FileChangeSet) error {
	if sets == nil {
		sets = []changeset.FileChangeSet{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sets)
}

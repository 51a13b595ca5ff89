// Package reporter provides output formatters for diff-scoped diagnostics.
//
// The package supports multiple output formats:
//   - text: Human-readable terminal output with colors and syntax highlighting
//   - json: Machine-readable JSON output
//   - sarif: Static Analysis Results Interchange Format for CI/CD integration
//   - github-actions: Native GitHub Actions workflow annotations
//   - markdown: Concise markdown tables for AI agents and PR comments
package reporter

import (
	"fmt"
	"io"
	"os"

	"github.com/wharflab/diffscope/internal/presenter"
	"github.com/wharflab/diffscope/internal/sourcemap"
)

// ReportMetadata contains contextual information about the run.
type ReportMetadata struct {
	// FilesChecked is the number of changed files handed to the linter.
	FilesChecked int
	// FilesSkipped is the number of files whose check failed.
	FilesSkipped int
	// Scope is the filtering policy of the run ("lines" or "files").
	Scope string
	// Linter is the name of the linter that ran.
	Linter string
}

// Reporter formats and outputs rows.
type Reporter interface {
	// Report writes rows, already in display order, to the configured output.
	// sources resolves file content for snippets and may be nil.
	Report(rows []presenter.Row, sources *sourcemap.Cache, metadata ReportMetadata) error
}

// Format represents an output format type.
type Format string

const (
	// FormatText is human-readable terminal output.
	FormatText Format = "text"
	// FormatJSON is machine-readable JSON output.
	FormatJSON Format = "json"
	// FormatSARIF is Static Analysis Results Interchange Format.
	FormatSARIF Format = "sarif"
	// FormatGitHubActions is GitHub Actions workflow command output.
	FormatGitHubActions Format = "github-actions"
	// FormatMarkdown is concise markdown tables.
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses a format string into a Format type.
// Returns an error if the format is unknown.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	case "github-actions", "github":
		return FormatGitHubActions, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format: %q (valid: text, json, sarif, github-actions, markdown)", s)
	}
}

// Options configures reporter creation.
type Options struct {
	// Format specifies the output format.
	Format Format

	// Writer is the output destination.
	Writer io.Writer

	// Color enables/disables colored output (text format only).
	// nil means auto-detect.
	Color *bool

	// ShowSource enables source code snippets (text format only).
	ShowSource bool

	// ToolVersion is included in SARIF output.
	ToolVersion string

	// ToolName is the tool name for SARIF output.
	ToolName string

	// ToolURI is the tool information URI for SARIF output.
	ToolURI string
}

// DefaultOptions returns sensible defaults for reporter options.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		Writer:      os.Stdout,
		Color:       nil, // auto-detect
		ShowSource:  true,
		ToolName:    defaultToolName,
		ToolURI:     defaultToolURI,
		ToolVersion: "dev",
	}
}

// New creates a reporter based on the format specified in options.
// When the writer is a Rewinder, every report replaces the previous one.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	r, err := newReporter(opts)
	if err != nil {
		return nil, err
	}
	if out, ok := opts.Writer.(Rewinder); ok {
		return &rewindingReporter{Reporter: r, out: out}, nil
	}
	return r, nil
}

func newReporter(opts Options) (Reporter, error) {
	switch opts.Format {
	case FormatText, "":
		textOpts := TextOptions{
			Color: opts.Color,
			// Enable syntax highlighting when color is auto-detected (nil) or explicitly enabled
			SyntaxHighlight: opts.Color == nil || *opts.Color,
			ShowSource:      opts.ShowSource,
		}
		return &textReporterAdapter{
			reporter: NewTextReporter(textOpts),
			writer:   opts.Writer,
		}, nil

	case FormatJSON:
		return NewJSONReporter(opts.Writer), nil

	case FormatSARIF:
		return NewSARIFReporter(opts.Writer, opts.ToolName, opts.ToolVersion, opts.ToolURI), nil

	case FormatGitHubActions:
		return NewGitHubActionsReporter(opts.Writer), nil

	case FormatMarkdown:
		return NewMarkdownReporter(opts.Writer), nil

	default:
		return nil, fmt.Errorf("unknown format: %q", opts.Format)
	}
}

// textReporterAdapter adapts TextReporter to the Reporter interface.
type textReporterAdapter struct {
	reporter *TextReporter
	writer   io.Writer
}

// Report implements Reporter.
func (a *textReporterAdapter) Report(rows []presenter.Row, sources *sourcemap.Cache, _ ReportMetadata) error {
	return a.reporter.Print(a.writer, rows, sources)
}

// Rewinder is an output that can be emptied before the next report is
// written to it.
type Rewinder interface {
	Rewind() error
}

// rewindingReporter empties its output before each report, so repeated
// refreshes leave a single document behind.
type rewindingReporter struct {
	Reporter
	out Rewinder
}

// Report implements Reporter.
func (r *rewindingReporter) Report(rows []presenter.Row, sources *sourcemap.Cache, metadata ReportMetadata) error {
	if err := r.out.Rewind(); err != nil {
		return fmt.Errorf("failed to rewind output: %w", err)
	}
	return r.Reporter.Report(rows, sources, metadata)
}

// fileOutput is an output file that is rewritten from the start.
type fileOutput struct {
	*os.File
}

// Rewind truncates the file and moves back to its start.
func (f fileOutput) Rewind() error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return f.Truncate(0)
}

// GetWriter returns an io.Writer for the given output path.
// Supports "stdout", "stderr", or file paths. Files are Rewinders.
func GetWriter(path string) (io.Writer, func() error, error) {
	switch path {
	case "stdout", "":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		return fileOutput{f}, f.Close, nil
	}
}

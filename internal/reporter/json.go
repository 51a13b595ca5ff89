package reporter

import (
	"encoding/json"
	"io"

	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/presenter"
	"github.com/wharflab/diffscope/internal/sourcemap"
)

// JSONOutput is the top-level structure for JSON output.
type JSONOutput struct {
	// Files contains results grouped by file.
	Files []FileResult `json:"files"`
	// Summary contains aggregate statistics.
	Summary Summary `json:"summary"`
	// Scope is the filtering policy of the run.
	Scope string `json:"scope,omitempty"`
	// Linter is the linter that produced the diagnostics.
	Linter string `json:"linter,omitempty"`
	// FilesChecked is the number of changed files handed to the linter.
	FilesChecked int `json:"files_checked"`
	// FilesSkipped is the number of files whose check failed.
	FilesSkipped int `json:"files_skipped"`
}

// FileResult contains the diagnostics for a single file.
type FileResult struct {
	File        string                  `json:"file"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics"`
}

// Summary contains aggregate statistics about diagnostics.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Style    int `json:"style"`
	Files    int `json:"files"`
}

// JSONReporter formats rows as JSON output. The "files" form is also
// accepted by the json linter format, so a saved report can be fed back
// with --report.
type JSONReporter struct {
	writer io.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Report implements Reporter.
func (r *JSONReporter) Report(rows []presenter.Row, _ *sourcemap.Cache, metadata ReportMetadata) error {
	// Group by file, keeping the row order
	byFile := make(map[string][]diagnostic.Diagnostic)
	filesOrder := make([]string, 0)

	for _, row := range rows {
		file := row.File()
		if _, exists := byFile[file]; !exists {
			filesOrder = append(filesOrder, file)
		}
		byFile[file] = append(byFile[file], row.Diagnostic)
	}

	output := JSONOutput{
		Files:        make([]FileResult, 0, len(filesOrder)),
		Summary:      calculateSummary(rows, len(filesOrder)),
		Scope:        metadata.Scope,
		Linter:       metadata.Linter,
		FilesChecked: metadata.FilesChecked,
		FilesSkipped: metadata.FilesSkipped,
	}

	for _, file := range filesOrder {
		output.Files = append(output.Files, FileResult{
			File:        file,
			Diagnostics: byFile[file],
		})
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// calculateSummary computes aggregate statistics from rows.
func calculateSummary(rows []presenter.Row, fileCount int) Summary {
	summary := Summary{
		Total: len(rows),
		Files: fileCount,
	}

	for _, row := range rows {
		switch row.Severity {
		case diagnostic.SeverityError:
			summary.Errors++
		case diagnostic.SeverityWarning:
			summary.Warnings++
		case diagnostic.SeverityInfo:
			summary.Info++
		case diagnostic.SeverityStyle:
			summary.Style++
		}
	}

	return summary
}

package reporter

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/presenter"
	"github.com/wharflab/diffscope/internal/sourcemap"
)

// MarkdownReporter formats rows as concise markdown tables, most severe
// first. Suited to pull request comments and AI agents.
type MarkdownReporter struct {
	writer io.Writer
}

// NewMarkdownReporter creates a new Markdown reporter.
func NewMarkdownReporter(w io.Writer) *MarkdownReporter {
	return &MarkdownReporter{writer: w}
}

// Report implements Reporter.
func (r *MarkdownReporter) Report(rows []presenter.Row, _ *sourcemap.Cache, _ ReportMetadata) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(r.writer, "**No issues found in the changed lines**")
		return err
	}

	sorted := SortBySeverity(rows)

	fileSet := make(map[string]struct{})
	for _, row := range sorted {
		fileSet[row.File()] = struct{}{}
	}

	if len(fileSet) == 1 {
		return r.writeSingleFileTable(sorted, sorted[0].File())
	}
	return r.writeMultiFileTable(sorted, len(fileSet))
}

// writeSingleFileTable writes a markdown table for rows of a single file.
func (r *MarkdownReporter) writeSingleFileTable(sorted []presenter.Row, filename string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d %s** in `%s`\n\n", len(sorted), pluralize(len(sorted), "issue", "issues"), filename)
	b.WriteString("| Line | Rule | Issue |\n")
	b.WriteString("|------|------|-------|\n")
	for _, row := range sorted {
		fmt.Fprintf(&b, "| %s | %s | %s %s |\n",
			formatLineNumber(row), escapeMarkdown(row.RuleCode), severityEmoji(row.Severity), escapeMarkdown(row.Message))
	}
	_, err := io.WriteString(r.writer, b.String())
	return err
}

// writeMultiFileTable writes a markdown table for rows across multiple files.
func (r *MarkdownReporter) writeMultiFileTable(sorted []presenter.Row, fileCount int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d %s** across %d files\n\n", len(sorted), pluralize(len(sorted), "issue", "issues"), fileCount)
	b.WriteString("| File | Line | Rule | Issue |\n")
	b.WriteString("|------|------|------|-------|\n")
	for _, row := range sorted {
		fmt.Fprintf(&b, "| %s | %s | %s | %s %s |\n",
			escapeMarkdown(row.File()), formatLineNumber(row), escapeMarkdown(row.RuleCode),
			severityEmoji(row.Severity), escapeMarkdown(row.Message))
	}
	_, err := io.WriteString(r.writer, b.String())
	return err
}

// formatLineNumber returns the display string for a row's line number.
func formatLineNumber(row presenter.Row) string {
	if row.Location.IsFileLevel() {
		return "-"
	}
	return strconv.Itoa(row.Line())
}

// SortBySeverity orders rows by severity (errors first). The sort is
// stable, so rows of equal severity keep their display order.
func SortBySeverity(rows []presenter.Row) []presenter.Row {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b presenter.Row) int {
		return int(a.Severity) - int(b.Severity)
	})
	return sorted
}

// severityEmoji returns an emoji indicator for the severity level.
func severityEmoji(s diagnostic.Severity) string {
	switch s {
	case diagnostic.SeverityError:
		return "❌"
	case diagnostic.SeverityWarning:
		return "⚠️"
	case diagnostic.SeverityInfo:
		return "ℹ️"
	case diagnostic.SeverityStyle:
		return "💅"
	default:
		return "⚠️"
	}
}

// escapeMarkdown escapes special markdown characters in table cells.
func escapeMarkdown(s string) string {
	// Escape pipe characters which break table formatting
	s = strings.ReplaceAll(s, "|", "\\|")
	// Replace newlines with spaces
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

// pluralize returns singular or plural form based on count.
func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

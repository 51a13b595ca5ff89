package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/presenter"
	"github.com/wharflab/diffscope/internal/sourcemap"
)

// GitHubActionsReporter formats rows as GitHub Actions workflow commands.
// These commands appear as annotations in the GitHub Actions UI, on the
// pull request lines the diagnostics were scoped to.
//
// Format: ::{level} file={file},line={line},col={col}::{message}
//
// See: https://docs.github.com/actions/using-workflows/workflow-commands-for-github-actions#setting-an-error-message
type GitHubActionsReporter struct {
	writer io.Writer
}

// NewGitHubActionsReporter creates a new GitHub Actions reporter.
func NewGitHubActionsReporter(w io.Writer) *GitHubActionsReporter {
	return &GitHubActionsReporter{writer: w}
}

// Report implements Reporter.
func (r *GitHubActionsReporter) Report(rows []presenter.Row, _ *sourcemap.Cache, _ ReportMetadata) error {
	for _, row := range rows {
		loc := row.Location

		parts := []string{"file=" + escapeGitHubProperty(row.File())}
		if !loc.IsFileLevel() {
			parts = append(parts, fmt.Sprintf("line=%d", loc.Start.Line))
			parts = append(parts, fmt.Sprintf("col=%d", loc.Start.Column+1)) // 1-based
			if !loc.IsPointLocation() && loc.End.Line > loc.Start.Line {
				parts = append(parts, fmt.Sprintf("endLine=%d", loc.End.Line))
			}
		}

		if title := annotationTitle(row); title != "" {
			parts = append(parts, "title="+escapeGitHubProperty(title))
		}

		if _, err := fmt.Fprintf(r.writer, "::%s %s::%s\n",
			severityToGitHubLevel(row.Severity),
			strings.Join(parts, ","),
			escapeGitHubMessage(row.Message),
		); err != nil {
			return err
		}
	}

	return nil
}

// annotationTitle is "linter: rule", or whichever of the two is known.
func annotationTitle(row presenter.Row) string {
	switch {
	case row.Linter != "" && row.RuleCode != "":
		return row.Linter + ": " + row.RuleCode
	case row.RuleCode != "":
		return row.RuleCode
	default:
		return row.Linter
	}
}

// GitHub Actions annotation levels.
const (
	ghLevelError   = "error"
	ghLevelWarning = "warning"
	ghLevelNotice  = "notice"
)

// severityToGitHubLevel maps our Severity to GitHub Actions levels.
// GitHub supports: "error", "warning", "notice", "debug"
func severityToGitHubLevel(s diagnostic.Severity) string {
	switch s {
	case diagnostic.SeverityError:
		return ghLevelError
	case diagnostic.SeverityWarning:
		return ghLevelWarning
	case diagnostic.SeverityInfo, diagnostic.SeverityStyle:
		return ghLevelNotice
	default:
		return ghLevelWarning
	}
}

// escapeGitHubMessage escapes special characters in GitHub Actions workflow command messages.
// Messages use escapeData() rules which escape "%", "\r", "\n" but NOT ":" or ",".
// See: https://github.com/actions/toolkit/blob/main/packages/core/src/command.ts
func escapeGitHubMessage(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

// escapeGitHubProperty escapes special characters in GitHub Actions workflow command properties.
// Properties (file, title, etc.) use escapeProperty() rules which escape "%", "\r", "\n", ":", and ",".
func escapeGitHubProperty(s string) string {
	s = escapeGitHubMessage(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}

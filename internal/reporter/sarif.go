package reporter

import (
	"io"
	"slices"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/presenter"
	"github.com/wharflab/diffscope/internal/sourcemap"
)

// Default SARIF tool information.
const (
	defaultToolName = "diffscope"
	defaultToolURI  = "https://github.com/wharflab/diffscope"
)

// SARIFReporter formats rows as SARIF (Static Analysis Results Interchange Format).
// SARIF is a standard format for static analysis tools, widely supported by CI/CD systems
// including GitHub Code Scanning and Azure DevOps.
//
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/
type SARIFReporter struct {
	writer      io.Writer
	toolName    string
	toolVersion string
	toolURI     string
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(w io.Writer, toolName, toolVersion, toolURI string) *SARIFReporter {
	if toolName == "" {
		toolName = defaultToolName
	}
	if toolURI == "" {
		toolURI = defaultToolURI
	}
	return &SARIFReporter{
		writer:      w,
		toolName:    toolName,
		toolVersion: toolVersion,
		toolURI:     toolURI,
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(rows []presenter.Row, _ *sourcemap.Cache, _ ReportMetadata) error {
	// Create a new SARIF report (v2.1.0 for maximum compatibility)
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI(r.toolName, r.toolURI)
	if r.toolVersion != "" {
		run.Tool.Driver.WithVersion(r.toolVersion)
	}

	// Collect unique rule codes and files
	ruleSet := make(map[string]presenter.Row)
	fileSet := make(map[string]struct{})
	for _, row := range rows {
		if _, exists := ruleSet[row.RuleCode]; !exists {
			ruleSet[row.RuleCode] = row
		}
		fileSet[row.File()] = struct{}{}
	}

	ruleCodes := make([]string, 0, len(ruleSet))
	for code := range ruleSet {
		ruleCodes = append(ruleCodes, code)
	}
	slices.Sort(ruleCodes)

	for _, code := range ruleCodes {
		row := ruleSet[code]
		rule := run.AddRule(code)
		if row.Linter != "" {
			rule.WithShortDescription(sarif.NewMultiformatMessageString().WithText(row.Linter + " " + code))
		}
		if row.DocURL != "" {
			rule.WithHelpURI(row.DocURL)
		}
	}

	files := make([]string, 0, len(fileSet))
	for file := range fileSet {
		files = append(files, file)
	}
	slices.Sort(files)
	for _, file := range files {
		run.AddDistinctArtifact(file)
	}

	for _, row := range rows {
		result := sarif.NewRuleResult(row.RuleCode).
			WithMessage(sarif.NewTextMessage(row.Message)).
			WithLevel(severityToSARIFLevel(row.Severity))

		physicalLocation := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewSimpleArtifactLocation(row.File()))
		if region := sarifRegion(row); region != nil {
			physicalLocation.WithRegion(region)
		}

		result.WithLocations([]*sarif.Location{
			sarif.NewLocationWithPhysicalLocation(physicalLocation),
		})
		run.AddResult(result)
	}

	report.AddRun(run)

	// Write with pretty formatting for readability
	return report.PrettyWrite(r.writer)
}

// sarifRegion returns the region of a row, nil for file-level rows.
func sarifRegion(row presenter.Row) *sarif.Region {
	loc := row.Location
	if loc.IsFileLevel() {
		return nil
	}

	region := sarif.NewRegion().
		WithStartLine(loc.Start.Line).
		WithStartColumn(loc.Start.Column + 1) // SARIF uses 1-based columns

	if !loc.IsPointLocation() && loc.End.Line > 0 {
		region.WithEndLine(loc.End.Line)
		if loc.End.Column >= 0 {
			region.WithEndColumn(loc.End.Column + 1)
		}
	}

	if row.SourceCode != "" {
		region.WithSnippet(sarif.NewArtifactContent().WithText(row.SourceCode))
	}
	return region
}

// SARIF severity levels.
const (
	sarifLevelError   = "error"
	sarifLevelWarning = "warning"
	sarifLevelNote    = "note"
)

// severityToSARIFLevel maps our Severity to SARIF levels.
// SARIF uses: "error", "warning", "note", "none"
func severityToSARIFLevel(s diagnostic.Severity) string {
	switch s {
	case diagnostic.SeverityError:
		return sarifLevelError
	case diagnostic.SeverityWarning:
		return sarifLevelWarning
	case diagnostic.SeverityInfo, diagnostic.SeverityStyle:
		return sarifLevelNote
	default:
		return sarifLevelWarning
	}
}

package linter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/wharflab/diffscope/internal/diagnostic"
)

// SARIFParser reads SARIF 2.1.0 logs. Every result of every run becomes one
// diagnostic at its first physical location; the run's tool name becomes
// the diagnostic's linter.
type SARIFParser struct{}

// sarifLog is the subset of the SARIF 2.1.0 schema diffscope reads.
type sarifLog struct {
	Version string `json:"version"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name  string `json:"name"`
				Rules []struct {
					ID      string `json:"id"`
					HelpURI string `json:"helpUri"`
				} `json:"rules"`
			} `json:"driver"`
		} `json:"tool"`
		Results []sarifResult `json:"results"`
	} `json:"runs"`
}

type sarifResult struct {
	RuleID  string `json:"ruleId"`
	Level   string `json:"level"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
	Locations []struct {
		PhysicalLocation struct {
			ArtifactLocation struct {
				URI string `json:"uri"`
			} `json:"artifactLocation"`
			Region struct {
				StartLine   int `json:"startLine"`
				StartColumn int `json:"startColumn"`
				EndLine     int `json:"endLine"`
				EndColumn   int `json:"endColumn"`
			} `json:"region"`
		} `json:"physicalLocation"`
	} `json:"locations"`
}

// Parse implements Parser.
func (SARIFParser) Parse(out []byte) ([]diagnostic.Diagnostic, error) {
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, nil
	}
	var log sarifLog
	if err := json.Unmarshal(out, &log); err != nil {
		return nil, fmt.Errorf("parse sarif linter output: %w", err)
	}

	var diags []diagnostic.Diagnostic
	for _, run := range log.Runs {
		helpURIs := make(map[string]string, len(run.Tool.Driver.Rules))
		for _, r := range run.Tool.Driver.Rules {
			if r.HelpURI != "" {
				helpURIs[r.ID] = r.HelpURI
			}
		}
		for _, res := range run.Results {
			d := diagnostic.New(sarifLocation(res), res.RuleID, res.Message.Text, sarifSeverity(res.Level))
			d.Linter = run.Tool.Driver.Name
			d.DocURL = helpURIs[res.RuleID]
			diags = append(diags, d)
		}
	}
	return diags, nil
}

func sarifLocation(res sarifResult) diagnostic.Location {
	if len(res.Locations) == 0 {
		return diagnostic.NewFileLocation("")
	}
	pl := res.Locations[0].PhysicalLocation
	file := sarifURIToPath(pl.ArtifactLocation.URI)
	region := pl.Region
	if region.StartLine < 1 {
		return diagnostic.NewFileLocation(file)
	}

	loc := diagnostic.NewPointLocation(file, region.StartLine, max(region.StartColumn-1, 0))
	if region.EndLine > region.StartLine || (region.EndLine == region.StartLine && region.EndColumn > region.StartColumn) {
		loc.End = diagnostic.Position{Line: region.EndLine, Column: max(region.EndColumn-1, 0)}
	}
	return loc
}

// sarifURIToPath turns an artifact URI into a slash-separated path.
func sarifURIToPath(uri string) string {
	if uri == "" {
		return ""
	}
	if strings.HasPrefix(uri, "file://") {
		if u, err := url.Parse(uri); err == nil {
			return u.Path
		}
	}
	if unescaped, err := url.PathUnescape(uri); err == nil {
		return unescaped
	}
	return uri
}

// sarifSeverity maps SARIF levels onto severities. SARIF's default level is warning.
func sarifSeverity(level string) diagnostic.Severity {
	switch level {
	case "error":
		return diagnostic.SeverityError
	case "note":
		return diagnostic.SeverityInfo
	case "none":
		return diagnostic.SeverityStyle
	default:
		return diagnostic.SeverityWarning
	}
}

package reporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/presenter"
)

func TestSARIFReporter(t *testing.T) {
	t.Parallel()

	first := row("src/deploy.sh", 5, 0, diagnostic.SeverityWarning, "SC2086", "Double quote to prevent globbing")
	first.DocURL = "https://www.shellcheck.net/wiki/SC2086"
	first.SourceCode = "echo $1"
	second := presenter.Row{Diagnostic: diagnostic.New(diagnostic.Location{
		File:  "src/deploy.sh",
		Start: diagnostic.Position{Line: 10, Column: 2},
		End:   diagnostic.Position{Line: 12, Column: 0},
	}, "SC1073", "Couldn't parse this function", diagnostic.SeverityError)}
	third := fileRow("README.md", "MD041", "First line should be a heading")

	var buf bytes.Buffer
	rep := NewSARIFReporter(&buf, "", "1.0.0", "")
	if err := rep.Report([]presenter.Row{first, second, third}, nil, ReportMetadata{}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var log struct {
		Version string `json:"version"`
		Schema  string `json:"$schema"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name    string `json:"name"`
					Version string `json:"version"`
					Rules   []struct {
						ID      string `json:"id"`
						HelpURI string `json:"helpUri"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Artifacts []any `json:"artifacts"`
			Results   []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region *struct {
							StartLine   int `json:"startLine"`
							StartColumn int `json:"startColumn"`
							EndLine     int `json:"endLine"`
							Snippet     *struct {
								Text string `json:"text"`
							} `json:"snippet"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("failed to parse SARIF output: %v\n%s", err, buf.String())
	}

	if log.Version != "2.1.0" || log.Schema == "" {
		t.Errorf("version = %q, schema = %q", log.Version, log.Schema)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(log.Runs))
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "diffscope" || run.Tool.Driver.Version != "1.0.0" {
		t.Errorf("driver = %+v", run.Tool.Driver)
	}
	if len(run.Tool.Driver.Rules) != 3 || run.Tool.Driver.Rules[0].ID != "MD041" {
		t.Errorf("rules = %+v, want 3 sorted rules", run.Tool.Driver.Rules)
	}
	if len(run.Artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(run.Artifacts))
	}
	if len(run.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(run.Results))
	}

	r0 := run.Results[0]
	if r0.RuleID != "SC2086" || r0.Level != "warning" {
		t.Errorf("result 0 = %+v", r0)
	}
	region := r0.Locations[0].PhysicalLocation.Region
	if region == nil || region.StartLine != 5 || region.StartColumn != 1 || region.Snippet == nil || region.Snippet.Text != "echo $1" {
		t.Errorf("result 0 region = %+v", region)
	}

	r1 := run.Results[1]
	if r1.Level != "error" || r1.Locations[0].PhysicalLocation.Region.EndLine != 12 {
		t.Errorf("result 1 = %+v", r1)
	}

	r2 := run.Results[2]
	if r2.Locations[0].PhysicalLocation.Region != nil {
		t.Error("file-level results carry no region")
	}
	if r2.Locations[0].PhysicalLocation.ArtifactLocation.URI != "README.md" {
		t.Errorf("uri = %q", r2.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	}
}

func TestSeverityToSARIFLevel(t *testing.T) {
	t.Parallel()

	tests := map[diagnostic.Severity]string{
		diagnostic.SeverityError:   "error",
		diagnostic.SeverityWarning: "warning",
		diagnostic.SeverityInfo:    "note",
		diagnostic.SeverityStyle:   "note",
	}
	for sev, want := range tests {
		if got := severityToSARIFLevel(sev); got != want {
			t.Errorf("severityToSARIFLevel(%v) = %q, want %q", sev, got, want)
		}
	}
}

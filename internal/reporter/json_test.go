package reporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/linter"
	"github.com/wharflab/diffscope/internal/presenter"
)

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	rows := []presenter.Row{
		row("a.sh", 3, 5, diagnostic.SeverityError, "SC1000", "first"),
		row("a.sh", 9, 0, diagnostic.SeverityWarning, "SC2086", "second"),
		row("b.sh", 1, 0, diagnostic.SeverityStyle, "SC2250", "third"),
	}

	var buf bytes.Buffer
	meta := ReportMetadata{FilesChecked: 3, FilesSkipped: 1, Scope: "lines", Linter: "shellcheck"}
	if err := NewJSONReporter(&buf).Report(rows, nil, meta); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if len(out.Files) != 2 || out.Files[0].File != "a.sh" || out.Files[1].File != "b.sh" {
		t.Fatalf("files = %+v", out.Files)
	}
	if len(out.Files[0].Diagnostics) != 2 {
		t.Errorf("a.sh diagnostics = %d, want 2", len(out.Files[0].Diagnostics))
	}
	want := Summary{Total: 3, Errors: 1, Warnings: 1, Style: 1, Files: 2}
	if out.Summary != want {
		t.Errorf("summary = %+v, want %+v", out.Summary, want)
	}
	if out.FilesChecked != 3 || out.FilesSkipped != 1 || out.Scope != "lines" || out.Linter != "shellcheck" {
		t.Errorf("metadata = %+v", out)
	}
}

func TestJSONReporterEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewJSONReporter(&buf).Report(nil, nil, ReportMetadata{}); err != nil {
		t.Fatal(err)
	}
	var out JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Files == nil || len(out.Files) != 0 {
		t.Errorf("files = %#v, want an empty array", out.Files)
	}
}

func TestJSONReportReadsBackAsLinterReport(t *testing.T) {
	t.Parallel()

	rows := []presenter.Row{
		row("a.sh", 3, 5, diagnostic.SeverityError, "SC1000", "first"),
		row("b.sh", 1, 0, diagnostic.SeverityInfo, "SC2250", "second"),
	}
	var buf bytes.Buffer
	if err := NewJSONReporter(&buf).Report(rows, nil, ReportMetadata{}); err != nil {
		t.Fatal(err)
	}

	diags, err := linter.JSONParser{}.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(diags))
	}
	for i, d := range diags {
		if d != rows[i].Diagnostic {
			t.Errorf("diagnostic %d = %+v, want %+v", i, d, rows[i].Diagnostic)
		}
	}
}

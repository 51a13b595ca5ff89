package processor

import (
	"testing"

	"github.com/wharflab/diffscope/internal/config"
	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/sourcemap"
)

func TestSnippetAttachment_Name(t *testing.T) {
	t.Parallel()
	if p := NewSnippetAttachment(); p.Name() != "snippet-attachment" {
		t.Errorf("expected snippet-attachment, got %s", p.Name())
	}
}

func TestSnippetAttachment(t *testing.T) {
	t.Parallel()
	ctx := NewContext(config.Default(), map[string][]byte{"file.txt": []byte("line 1\nline 2\nline 3\n")})

	result := NewSnippetAttachment().Process([]diagnostic.Diagnostic{diag("file.txt", 2, "rule1")}, ctx)
	if len(result) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(result))
	}
	if result[0].SourceCode != "line 2" {
		t.Errorf("expected 'line 2', got %q", result[0].SourceCode)
	}
}

func TestSnippetAttachment_SkipsExistingSnippet(t *testing.T) {
	t.Parallel()
	d := diag("file.txt", 1, "test-rule")
	d.SourceCode = "existing snippet"

	ctx := NewContext(config.Default(), map[string][]byte{"file.txt": []byte("line1\nline2\n")})
	result := NewSnippetAttachment().Process([]diagnostic.Diagnostic{d}, ctx)
	if result[0].SourceCode != "existing snippet" {
		t.Errorf("expected existing snippet preserved, got %s", result[0].SourceCode)
	}
}

func TestSnippetAttachment_SkipsFileLevelAndMissing(t *testing.T) {
	t.Parallel()
	diags := []diagnostic.Diagnostic{
		diagnostic.New(diagnostic.NewFileLocation("file.txt"), "test-rule", "file-level issue", diagnostic.SeverityWarning),
		diag("missing-file.txt", 1, "test-rule"),
		diag("file.txt", 0, "test-rule"),
		diag("file.txt", -1, "test-rule"),
	}

	ctx := NewContext(config.Default(), map[string][]byte{"file.txt": []byte("line1\nline2\n")})
	result := NewSnippetAttachment().Process(diags, ctx)
	if len(result) != len(diags) {
		t.Fatalf("expected %d diagnostics, got %d", len(diags), len(result))
	}
	for i, d := range result {
		if d.SourceCode != "" {
			t.Errorf("diagnostic[%d]: expected no snippet, got %q", i, d.SourceCode)
		}
	}
}

func TestSnippetAttachment_ReadsFromRoot(t *testing.T) {
	t.Parallel()
	cache := sourcemap.NewCache(t.TempDir(), map[string][]byte{"x.sh": []byte("a\nb\n")})
	ctx := &Context{Config: config.Default(), Sources: cache}

	result := NewSnippetAttachment().Process([]diagnostic.Diagnostic{diag("x.sh", 2, "r")}, ctx)
	if result[0].SourceCode != "b" {
		t.Errorf("expected 'b', got %q", result[0].SourceCode)
	}
}

func TestExtractSnippet(t *testing.T) {
	t.Parallel()
	sm := sourcemap.New([]byte("line1\nline2\nline3\nline4\nline5\n"))

	tests := []struct {
		name string
		loc  diagnostic.Location
		want string
	}{
		{"point", diagnostic.NewLineLocation("f", 3), "line3"},
		{
			"range with exclusive end column 0",
			diagnostic.Location{Start: diagnostic.Position{Line: 2}, End: diagnostic.Position{Line: 4}},
			"line2\nline3",
		},
		{
			"range with end column",
			diagnostic.Location{Start: diagnostic.Position{Line: 2}, End: diagnostic.Position{Line: 4, Column: 5}},
			"line2\nline3\nline4",
		},
		{
			"single line range",
			diagnostic.Location{Start: diagnostic.Position{Line: 2}, End: diagnostic.Position{Line: 2, Column: 3}},
			"line2",
		},
		{"invalid line", diagnostic.NewLineLocation("f", 0), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractSnippet(sm, tt.loc); got != tt.want {
				t.Errorf("extractSnippet() = %q, want %q", got, tt.want)
			}
		})
	}
}

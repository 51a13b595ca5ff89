package linter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/diffscope/internal/diagnostic"
)

func TestGCCParser(t *testing.T) {
	t.Parallel()

	out := []byte(`In deploy.sh line 3:
deploy.sh:3:6: warning: Double quote to prevent globbing and word splitting. [SC2086]
deploy.sh:10:1: error: Couldn't parse this function. [SC1073]
lib/util.sh:7: note: Not following: ./env.sh was not specified as input [SC1091]
main.c:4:2: fatal error: stdio.h: No such file or directory
plain.txt:12: just a message

`)
	p, err := NewParser("gcc", "")
	require.NoError(t, err)
	diags, err := p.Parse(out)
	require.NoError(t, err)
	require.Len(t, diags, 5)

	assert.Equal(t, "deploy.sh", diags[0].File())
	assert.Equal(t, 3, diags[0].Line())
	assert.Equal(t, 5, diags[0].Location.Start.Column, "columns are stored 0-based")
	assert.Equal(t, diagnostic.SeverityWarning, diags[0].Severity)
	assert.Equal(t, "SC2086", diags[0].RuleCode)
	assert.Equal(t, "Double quote to prevent globbing and word splitting.", diags[0].Message)

	assert.Equal(t, diagnostic.SeverityError, diags[1].Severity)

	assert.Equal(t, "lib/util.sh", diags[2].File())
	assert.Equal(t, 0, diags[2].Location.Start.Column)
	assert.Equal(t, diagnostic.SeverityInfo, diags[2].Severity)
	assert.Equal(t, "SC1091", diags[2].RuleCode)

	assert.Equal(t, diagnostic.SeverityError, diags[3].Severity)
	assert.Equal(t, "stdio.h: No such file or directory", diags[3].Message)
	assert.Empty(t, diags[3].RuleCode)

	assert.Equal(t, diagnostic.SeverityWarning, diags[4].Severity, "missing severity defaults to warning")
	assert.Equal(t, "just a message", diags[4].Message)
}

func TestRegexParser(t *testing.T) {
	t.Parallel()

	p, err := NewParser("regex", `^(?P<file>[^(]+)\((?P<line>\d+),(?P<column>\d+)\): (?P<severity>\w+) (?P<rule>[A-Z]+\d+): (?P<message>.+)$`)
	require.NoError(t, err)

	diags, err := p.Parse([]byte("src/a.cs(12,5): warning CS0168: unused variable\r\nnoise\nsrc/a.cs(x,5): warning CS1: bad line\n"))
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "src/a.cs", diags[0].File())
	assert.Equal(t, 12, diags[0].Line())
	assert.Equal(t, 4, diags[0].Location.Start.Column)
	assert.Equal(t, "CS0168", diags[0].RuleCode)
	assert.Equal(t, "unused variable", diags[0].Message)
}

func TestRegexParserRanges(t *testing.T) {
	t.Parallel()

	p, err := NewRegexParser(`^(?P<line>\d+)-(?P<end_line>\d+): (?P<message>.*)$`)
	require.NoError(t, err)
	diags, err := p.Parse([]byte("4-6: spans lines\n"))
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Empty(t, diags[0].File())
	assert.Equal(t, 6, diags[0].Location.End.Line)
	assert.False(t, diags[0].Location.IsPointLocation())
}

func TestNewRegexParserErrors(t *testing.T) {
	t.Parallel()

	_, err := NewRegexParser("")
	require.Error(t, err)
	_, err = NewRegexParser("(")
	require.Error(t, err)
	_, err = NewRegexParser(`(?P<line>\d+)`)
	require.Error(t, err, "message group is required")

	_, err = NewParser("xml", "")
	require.Error(t, err)
}

func TestJSONParser(t *testing.T) {
	t.Parallel()

	t.Run("array", func(t *testing.T) {
		t.Parallel()
		out := []byte(`[
  {"location": {"file": "a.txt", "start": {"line": 3, "column": 1}}, "rule": "R1", "message": "m1", "severity": "error"},
  {"location": {"start": {"line": 4, "column": 0}}, "message": "m2"}
]`)
		diags, err := JSONParser{}.Parse(out)
		require.NoError(t, err)
		require.Len(t, diags, 2)
		assert.Equal(t, diagnostic.SeverityError, diags[0].Severity)
		assert.Equal(t, "R1", diags[0].RuleCode)
		assert.True(t, diags[0].Location.IsPointLocation())
		assert.Equal(t, diagnostic.SeverityWarning, diags[1].Severity)
		assert.Empty(t, diags[1].File())
	})

	t.Run("report object", func(t *testing.T) {
		t.Parallel()
		out := []byte(`{"files": [{"file": "b.txt", "diagnostics": [
  {"location": {"start": {"line": 2, "column": 0}}, "message": "m", "severity": "style"}
]}]}`)
		diags, err := JSONParser{}.Parse(out)
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, "b.txt", diags[0].File())
		assert.Equal(t, diagnostic.SeverityStyle, diags[0].Severity)
	})

	t.Run("empty and invalid", func(t *testing.T) {
		t.Parallel()
		diags, err := JSONParser{}.Parse([]byte("  \n"))
		require.NoError(t, err)
		assert.Empty(t, diags)

		_, err = JSONParser{}.Parse([]byte("[{"))
		require.Error(t, err)
	})
}

const sampleSARIF = `{
  "version": "2.1.0",
  "runs": [{
    "tool": {"driver": {"name": "semgrep", "rules": [{"id": "no-eval", "helpUri": "https://example.com/no-eval"}]}},
    "results": [
      {
        "ruleId": "no-eval",
        "level": "error",
        "message": {"text": "eval is evil"},
        "locations": [{"physicalLocation": {
          "artifactLocation": {"uri": "src/app%20main.js"},
          "region": {"startLine": 8, "startColumn": 3, "endLine": 9, "endColumn": 1}
        }}]
      },
      {
        "ruleId": "todo",
        "message": {"text": "left a todo"},
        "locations": [{"physicalLocation": {"artifactLocation": {"uri": "file:///repo/b.js"}, "region": {"startLine": 2}}}]
      },
      {"ruleId": "whole-file", "level": "note", "message": {"text": "file level"},
       "locations": [{"physicalLocation": {"artifactLocation": {"uri": "c.js"}}}]}
    ]
  }]
}`

func TestSARIFParser(t *testing.T) {
	t.Parallel()

	diags, err := SARIFParser{}.Parse([]byte(sampleSARIF))
	require.NoError(t, err)
	require.Len(t, diags, 3)

	d := diags[0]
	assert.Equal(t, "src/app main.js", d.File())
	assert.Equal(t, 8, d.Line())
	assert.Equal(t, 2, d.Location.Start.Column)
	assert.Equal(t, 9, d.Location.End.Line)
	assert.Equal(t, diagnostic.SeverityError, d.Severity)
	assert.Equal(t, "semgrep", d.Linter)
	assert.Equal(t, "https://example.com/no-eval", d.DocURL)

	assert.Equal(t, "/repo/b.js", diags[1].File())
	assert.Equal(t, diagnostic.SeverityWarning, diags[1].Severity, "SARIF default level is warning")
	assert.True(t, diags[1].Location.IsPointLocation())

	assert.True(t, diags[2].Location.IsFileLevel())
	assert.Equal(t, diagnostic.SeverityInfo, diags[2].Severity)

	_, err = SARIFParser{}.Parse([]byte("{not json"))
	require.Error(t, err)
}

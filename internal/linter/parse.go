package linter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wharflab/diffscope/internal/diagnostic"
)

// Parser turns raw linter output into diagnostics, in output order.
type Parser interface {
	Parse(out []byte) ([]diagnostic.Diagnostic, error)
}

// Output formats.
const (
	FormatGCC   = "gcc"
	FormatRegex = "regex"
	FormatSARIF = "sarif"
	FormatJSON  = "json"
)

// gccPattern matches "file:line[:col]: [severity:] message [rule]".
var gccPattern = regexp.MustCompile(
	`^(?P<file>[^:\n]+):(?P<line>\d+):(?:(?P<column>\d+):)?\s*` +
		`(?:(?P<severity>fatal error|error|warning|note|info|style|hint)\s*:\s*)?` +
		`(?P<message>.*?)(?:\s+\[(?P<rule>[^\]\s]+)\])?\s*$`,
)

// NewParser returns the parser for a format name. pattern is only used by
// the regex format.
func NewParser(format, pattern string) (Parser, error) {
	switch strings.ToLower(format) {
	case FormatGCC, "":
		return &RegexParser{re: gccPattern}, nil
	case FormatRegex:
		return NewRegexParser(pattern)
	case FormatSARIF:
		return SARIFParser{}, nil
	case FormatJSON:
		return JSONParser{}, nil
	default:
		return nil, fmt.Errorf("unknown linter format: %q (valid: gcc, regex, sarif, json)", format)
	}
}

// RegexParser matches each output line against a pattern with named groups:
// file, line, column, end_line, end_column, severity, message and rule. Only
// line and message are required. Lines that don't match are ignored, as are
// matches with an unparsable line number. Columns are 1-based.
type RegexParser struct {
	re *regexp.Regexp
}

// NewRegexParser compiles a user supplied pattern.
func NewRegexParser(pattern string) (*RegexParser, error) {
	if pattern == "" {
		return nil, fmt.Errorf("regex format needs a pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid linter pattern: %w", err)
	}
	if re.SubexpIndex("line") < 0 || re.SubexpIndex("message") < 0 {
		return nil, fmt.Errorf("linter pattern needs named groups line and message")
	}
	return &RegexParser{re: re}, nil
}

// Parse implements Parser.
func (p *RegexParser) Parse(out []byte) ([]diagnostic.Diagnostic, error) {
	var diags []diagnostic.Diagnostic
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if d, ok := p.parseLine(line); ok {
			diags = append(diags, d)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read linter output: %w", err)
	}
	return diags, nil
}

func (p *RegexParser) parseLine(line string) (diagnostic.Diagnostic, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return diagnostic.Diagnostic{}, false
	}
	group := func(name string) string {
		if i := p.re.SubexpIndex(name); i >= 0 && i < len(m) {
			return m[i]
		}
		return ""
	}

	lineNum, err := strconv.Atoi(group("line"))
	if err != nil || lineNum < 1 {
		return diagnostic.Diagnostic{}, false
	}
	loc := diagnostic.NewPointLocation(group("file"), lineNum, oneBasedColumn(group("column")))
	if endLine, err := strconv.Atoi(group("end_line")); err == nil && endLine >= lineNum {
		loc.End = diagnostic.Position{Line: endLine, Column: oneBasedColumn(group("end_column"))}
	}

	sev := diagnostic.SeverityWarning
	if s := group("severity"); s != "" {
		if parsed, err := diagnostic.ParseSeverity(strings.TrimPrefix(s, "fatal ")); err == nil {
			sev = parsed
		}
	}
	return diagnostic.New(loc, group("rule"), strings.TrimSpace(group("message")), sev), true
}

// oneBasedColumn converts a 1-based column string to the 0-based form.
// Missing or invalid columns become 0.
func oneBasedColumn(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}

// JSONParser reads diagnostics in diffscope's own JSON schema: either an
// array of diagnostics or an object with a "diagnostics" array (the json
// report format). A missing severity means warning.
type JSONParser struct{}

type jsonDiagnostic struct {
	diagnostic.Diagnostic
	Severity *diagnostic.Severity `json:"severity"`
}

type jsonReport struct {
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	Files       []struct {
		File        string           `json:"file"`
		Diagnostics []jsonDiagnostic `json:"diagnostics"`
	} `json:"files"`
}

// Parse implements Parser.
func (JSONParser) Parse(out []byte) ([]diagnostic.Diagnostic, error) {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var raw []jsonDiagnostic
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("parse json linter output: %w", err)
		}
	} else {
		var report jsonReport
		if err := json.Unmarshal(trimmed, &report); err != nil {
			return nil, fmt.Errorf("parse json linter output: %w", err)
		}
		raw = report.Diagnostics
		for _, f := range report.Files {
			for _, d := range f.Diagnostics {
				if d.Location.File == "" {
					d.Location.File = f.File
				}
				raw = append(raw, d)
			}
		}
	}

	diags := make([]diagnostic.Diagnostic, len(raw))
	for i, r := range raw {
		d := r.Diagnostic
		d.Severity = diagnostic.SeverityWarning
		if r.Severity != nil {
			d.Severity = *r.Severity
		}
		if d.Location.End.Line < d.Location.Start.Line {
			d.Location.End = diagnostic.Position{Line: -1, Column: -1}
		}
		diags[i] = d
	}
	return diags, nil
}

package diagnostic

import "cmp"

// Position is a single point in a source file.
type Position struct {
	// Line is the 1-based line number.
	Line int `json:"line"`
	// Column is the 0-based column number. 0 when the linter gave none.
	Column int `json:"column"`
}

// Location is a range in a source file.
// Start is inclusive, End is exclusive (LSP semantics).
type Location struct {
	// File is the path of the file as it appears in the diff (slash separated).
	// Empty until resolved: linters that check a single file often omit it.
	File string `json:"file,omitempty"`
	// Start is the starting position.
	Start Position `json:"start"`
	// End is the ending position. A point location has End.Line < 0.
	End Position `json:"end"`
}

// NewFileLocation creates a location for file-level issues (no specific line).
// Uses -1 as sentinel since 0 would be invalid (lines are 1-based).
func NewFileLocation(file string) Location {
	return Location{
		File:  file,
		Start: Position{Line: -1, Column: -1},
		End:   Position{Line: -1, Column: -1},
	}
}

// NewLineLocation creates a point location at the start of a 1-based line.
func NewLineLocation(file string, line int) Location {
	return Location{
		File:  file,
		Start: Position{Line: line, Column: 0},
		End:   Position{Line: -1, Column: -1},
	}
}

// NewPointLocation creates a point location at a 1-based line and 0-based column.
func NewPointLocation(file string, line, column int) Location {
	return Location{
		File:  file,
		Start: Position{Line: line, Column: column},
		End:   Position{Line: -1, Column: -1},
	}
}

// IsFileLevel returns true if this is a file-level location (no specific line).
func (l Location) IsFileLevel() bool {
	return l.Start.Line < 1
}

// IsPointLocation returns true if this is a single-point location (no range).
func (l Location) IsPointLocation() bool {
	return l.End.Line < 0 || l.End == l.Start
}

// Diagnostic is one issue reported by a linter.
type Diagnostic struct {
	// Location specifies where the issue was reported.
	Location Location `json:"location"`

	// RuleCode is the linter's rule or checker identifier (e.g. "SC2086").
	RuleCode string `json:"rule,omitempty"`

	// Message is a human-readable description of the issue.
	Message string `json:"message"`

	// Severity indicates how critical this issue is.
	Severity Severity `json:"severity"`

	// Linter is the name of the linter that produced the diagnostic.
	Linter string `json:"linter,omitempty"`

	// DocURL links to documentation about the rule (optional).
	DocURL string `json:"docUrl,omitempty"`

	// SourceCode is the source line the diagnostic points at (optional).
	// Populated by post-processing; linters don't need to set this.
	SourceCode string `json:"sourceCode,omitempty"`
}

// New creates a diagnostic with the minimum required fields.
func New(loc Location, ruleCode, message string, severity Severity) Diagnostic {
	return Diagnostic{
		Location: loc,
		RuleCode: ruleCode,
		Message:  message,
		Severity: severity,
	}
}

// File returns the file path from the location.
func (d Diagnostic) File() string {
	return d.Location.File
}

// Line returns the starting line number.
func (d Diagnostic) Line() int {
	return d.Location.Start.Line
}

// WithFile returns a copy of d with its file path set.
func (d Diagnostic) WithFile(file string) Diagnostic {
	d.Location.File = file
	return d
}

// Compare is the default per-entry ordering of diagnostics within one file:
// line, then column, then severity (most severe first), then rule code.
// It returns a negative number when a sorts before b.
func Compare(a, b Diagnostic) int {
	if c := cmp.Compare(a.Location.Start.Line, b.Location.Start.Line); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Location.Start.Column, b.Location.Start.Column); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Severity, b.Severity); c != 0 {
		return c
	}
	return cmp.Compare(a.RuleCode, b.RuleCode)
}

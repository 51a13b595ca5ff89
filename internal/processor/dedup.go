package processor

import (
	"github.com/wharflab/diffscope/internal/diagnostic"
)

// Deduplication removes duplicate diagnostics.
// Two diagnostics are duplicates if they have the same file, position, rule
// code and message. Linters invoked once per file can report the same issue
// twice when a file shows up under two diff entries.
type Deduplication struct{}

// NewDeduplication creates a new deduplication processor.
func NewDeduplication() *Deduplication {
	return &Deduplication{}
}

// Name returns the processor's identifier.
func (p *Deduplication) Name() string {
	return "deduplication"
}

type dedupKey struct {
	file    string
	line    int
	column  int
	rule    string
	message string
}

// Process keeps the first occurrence of each diagnostic.
func (p *Deduplication) Process(diags []diagnostic.Diagnostic, _ *Context) []diagnostic.Diagnostic {
	seen := make(map[dedupKey]struct{}, len(diags))
	return filterDiagnostics(diags, func(d diagnostic.Diagnostic) bool {
		key := dedupKey{
			file:    NormalizePath(d.Location.File),
			line:    d.Location.Start.Line,
			column:  d.Location.Start.Column,
			rule:    d.RuleCode,
			message: d.Message,
		}
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

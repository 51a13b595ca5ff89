package processor

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/wharflab/diffscope/internal/diagnostic"
)

// RuleExclusionFilter removes diagnostics of rules that are turned off, and
// of rules excluded for the diagnostic's path.
type RuleExclusionFilter struct{}

// NewRuleExclusionFilter creates a new rule exclusion filter processor.
func NewRuleExclusionFilter() *RuleExclusionFilter {
	return &RuleExclusionFilter{}
}

// Name returns the processor's identifier.
func (p *RuleExclusionFilter) Name() string {
	return "rule-exclusion-filter"
}

// Process filters out diagnostics excluded by the per-rule config.
func (p *RuleExclusionFilter) Process(diags []diagnostic.Diagnostic, ctx *Context) []diagnostic.Diagnostic {
	rules := ctx.rules()
	if len(rules) == 0 {
		return diags
	}
	return filterDiagnostics(diags, func(d diagnostic.Diagnostic) bool {
		if rules.IsOff(d.RuleCode) {
			return false
		}
		return !MatchAny(rules.GetExcludePaths(d.RuleCode), d.Location.File)
	})
}

// MatchAny reports whether file matches any of the doublestar patterns.
// Invalid patterns never match.
func MatchAny(patterns []string, file string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, file)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

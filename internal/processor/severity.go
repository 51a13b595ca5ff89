package processor

import (
	"github.com/wharflab/diffscope/internal/diagnostic"
)

// SeverityOverride applies severity overrides from configuration.
// Allows users to downgrade warnings to info, upgrade info to errors, etc.
type SeverityOverride struct{}

// NewSeverityOverride creates a new severity override processor.
func NewSeverityOverride() *SeverityOverride {
	return &SeverityOverride{}
}

// Name returns the processor's identifier.
func (p *SeverityOverride) Name() string {
	return "severity-override"
}

// Process applies severity overrides from config. "off" is left to
// RuleExclusionFilter.
func (p *SeverityOverride) Process(diags []diagnostic.Diagnostic, ctx *Context) []diagnostic.Diagnostic {
	rules := ctx.rules()
	if len(rules) == 0 {
		return diags
	}
	return transformDiagnostics(diags, func(d diagnostic.Diagnostic) diagnostic.Diagnostic {
		override := rules.GetSeverity(d.RuleCode)
		if override == "" || rules.IsOff(d.RuleCode) {
			return d
		}
		sev, err := diagnostic.ParseSeverity(override)
		if err != nil {
			// Invalid severity in config - keep original
			return d
		}
		d.Severity = sev
		return d
	})
}

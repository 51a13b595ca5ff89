package config

import "strings"

// SeverityOff disables a rule entirely.
const SeverityOff = "off"

// RuleConfig represents per-rule configuration.
// Can be specified in TOML as:
//
//	[rules.SC2086]
//	severity = "info"
//	exclude-paths = ["scripts/legacy/**"]
type RuleConfig struct {
	// Severity overrides the severity reported by the linter.
	// Use "off" to drop the rule's diagnostics.
	Severity string `json:"severity,omitempty" koanf:"severity"`

	// ExcludePaths contains doublestar patterns where this rule's diagnostics are dropped.
	ExcludePaths []string `json:"exclude-paths,omitempty" koanf:"exclude-paths"`
}

// RulesConfig maps rule codes to their configuration.
type RulesConfig map[string]RuleConfig

// Get returns the configuration for a rule code, or nil if none is set.
// Rule codes are matched case-insensitively since linters are inconsistent
// about casing between their output formats.
func (rc RulesConfig) Get(ruleCode string) *RuleConfig {
	if len(rc) == 0 || ruleCode == "" {
		return nil
	}
	if cfg, ok := rc[ruleCode]; ok {
		return &cfg
	}
	for code, cfg := range rc {
		if strings.EqualFold(code, ruleCode) {
			return &cfg
		}
	}
	return nil
}

// GetSeverity returns the severity override for a rule ("" if none).
func (rc RulesConfig) GetSeverity(ruleCode string) string {
	if cfg := rc.Get(ruleCode); cfg != nil {
		return cfg.Severity
	}
	return ""
}

// IsOff reports whether the rule is disabled by configuration.
func (rc RulesConfig) IsOff(ruleCode string) bool {
	return strings.EqualFold(rc.GetSeverity(ruleCode), SeverityOff)
}

// GetExcludePaths returns the path exclusion patterns for a rule.
func (rc RulesConfig) GetExcludePaths(ruleCode string) []string {
	if cfg := rc.Get(ruleCode); cfg != nil {
		return cfg.ExcludePaths
	}
	return nil
}

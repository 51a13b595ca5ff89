package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/wharflab/diffscope/internal/changeset"
	"github.com/wharflab/diffscope/internal/diagnostic"
)

// Linter output formats understood by the linter package.
var linterFormats = []string{"gcc", "regex", "sarif", "json"}

// ValidationError reports one invalid configuration value.
type ValidationError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s=%v: %s", e.Key, e.Value, e.Reason)
}

// Validate checks the loaded configuration. All problems are reported
// together, each one as a *ValidationError reachable with errors.As.
func (c *Config) Validate() error {
	var errs []error
	add := func(key string, value any, reason string) {
		errs = append(errs, &ValidationError{Key: key, Value: value, Reason: reason})
	}

	if _, err := changeset.ParseScope(c.DefaultScope); err != nil {
		add("default-scope", c.DefaultScope, "must be lines or files")
	}
	if c.ContextLines < 0 {
		add("context-lines", c.ContextLines, "must not be negative")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		add("log-level", c.LogLevel, "unknown log level")
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			add("exclude", p, "not a valid glob pattern")
		}
	}

	c.validateLinter(add)

	if c.Output.FailLevel != "" && !strings.EqualFold(c.Output.FailLevel, "none") {
		if _, err := diagnostic.ParseSeverity(c.Output.FailLevel); err != nil {
			add("output.fail-level", c.Output.FailLevel, "unknown severity")
		}
	}

	for code, rc := range c.Rules {
		if rc.Severity != "" && !strings.EqualFold(rc.Severity, SeverityOff) {
			if _, err := diagnostic.ParseSeverity(rc.Severity); err != nil {
				add("rules."+code+".severity", rc.Severity, "unknown severity")
			}
		}
		for _, p := range rc.ExcludePaths {
			if !doublestar.ValidatePattern(p) {
				add("rules."+code+".exclude-paths", p, "not a valid glob pattern")
			}
		}
	}

	return errors.Join(errs...)
}

func (c *Config) validateLinter(add func(key string, value any, reason string)) {
	l := c.Linter

	format := strings.ToLower(l.Format)
	if !slices.Contains(linterFormats, format) {
		add("linter.format", l.Format, "must be one of "+strings.Join(linterFormats, ", "))
	}

	if format == "regex" {
		if l.Pattern == "" {
			add("linter.pattern", l.Pattern, "required for the regex format")
		} else if re, err := regexp.Compile(l.Pattern); err != nil {
			add("linter.pattern", l.Pattern, err.Error())
		} else if re.SubexpIndex("line") < 0 || re.SubexpIndex("message") < 0 {
			add("linter.pattern", l.Pattern, "needs named groups line and message")
		}
	}

	if l.Jobs < 0 {
		add("linter.jobs", l.Jobs, "must not be negative")
	}
	if l.MaxDiagnostics < 0 {
		add("linter.max-diagnostics", l.MaxDiagnostics, "must not be negative")
	}
	if l.MaxFileSize < 0 {
		add("linter.max-file-size", l.MaxFileSize, "must not be negative")
	}
	if l.CheckTimeout != "" {
		if d, err := time.ParseDuration(l.CheckTimeout); err != nil || d < 0 {
			add("linter.check-timeout", l.CheckTimeout, "must be a non-negative duration")
		}
	}
}

// Timeout returns the per-file check timeout (0 = none).
// The value has already been checked by Validate.
func (l LinterConfig) Timeout() time.Duration {
	if l.CheckTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(l.CheckTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

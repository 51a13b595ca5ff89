package processor

import (
	"fmt"

	"github.com/wharflab/diffscope/internal/changeset"
	"github.com/wharflab/diffscope/internal/diagnostic"
)

// ConfigurationError reports a scope that was never set or is not known.
// It signals a caller bug: there is no implicit default at filter time.
type ConfigurationError struct {
	Scope changeset.Scope
}

func (e *ConfigurationError) Error() string {
	if e.Scope == changeset.ScopeUnset {
		return "configuration error: scope is not set"
	}
	return fmt.Sprintf("configuration error: unknown scope %d", int(e.Scope))
}

// FilterScope applies the scope policy to the diagnostics of one file.
//
// With ScopeLines a diagnostic is kept iff its line falls inside one of the
// file's changed ranges. ScopeFiles returns diags unchanged. Any other scope
// yields a *ConfigurationError. The input slice is never modified.
func FilterScope(
	diags []diagnostic.Diagnostic,
	set changeset.FileChangeSet,
	scope changeset.Scope,
) ([]diagnostic.Diagnostic, error) {
	switch scope {
	case changeset.ScopeLines:
		return filterDiagnostics(diags, func(d diagnostic.Diagnostic) bool {
			return changeset.Contains(d.Line(), set.Ranges)
		}), nil
	case changeset.ScopeFiles:
		return diags, nil
	default:
		return nil, &ConfigurationError{Scope: scope}
	}
}

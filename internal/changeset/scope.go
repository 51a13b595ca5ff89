package changeset

import (
	"fmt"
	"strings"
)

// Scope selects the filtering policy applied to a file's diagnostics.
// The zero value is unset and rejected by the scope filter.
type Scope int

const (
	// ScopeUnset is the zero value; filtering with it is a caller bug.
	ScopeUnset Scope = iota
	// ScopeLines keeps diagnostics on changed lines only.
	ScopeLines
	// ScopeFiles keeps every diagnostic of a changed file.
	ScopeFiles
)

// String returns the configuration name of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeLines:
		return "lines"
	case ScopeFiles:
		return "files"
	case ScopeUnset:
		return "unset"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Valid reports whether s is one of the selectable scopes.
func (s Scope) Valid() bool {
	return s == ScopeLines || s == ScopeFiles
}

// ParseScope parses "lines" or "files".
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lines", "line":
		return ScopeLines, nil
	case "files", "file":
		return ScopeFiles, nil
	default:
		return ScopeUnset, fmt.Errorf("unknown scope: %q (valid: lines, files)", s)
	}
}

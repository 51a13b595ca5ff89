package processor

import (
	"path"
	"strings"

	"github.com/wharflab/diffscope/internal/diagnostic"
)

// PathNormalization converts file paths to cleaned, slash-separated form so
// linter output matches the paths in the diff.
type PathNormalization struct{}

// NewPathNormalization creates a new path normalization processor.
func NewPathNormalization() *PathNormalization {
	return &PathNormalization{}
}

// Name returns the processor's identifier.
func (p *PathNormalization) Name() string {
	return "path-normalization"
}

// Process normalizes all file paths.
func (p *PathNormalization) Process(diags []diagnostic.Diagnostic, _ *Context) []diagnostic.Diagnostic {
	return transformDiagnostics(diags, func(d diagnostic.Diagnostic) diagnostic.Diagnostic {
		d.Location.File = NormalizePath(d.Location.File)
		return d
	})
}

// NormalizePath returns the slash-separated, cleaned form of p.
// Empty stays empty.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

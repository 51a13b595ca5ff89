package processor

import (
	"github.com/wharflab/diffscope/internal/diagnostic"
)

// SnippetAttachment populates the SourceCode field of diagnostics from the
// post-change file content, so reporters don't re-read files.
type SnippetAttachment struct{}

// NewSnippetAttachment creates a new snippet attachment processor.
func NewSnippetAttachment() *SnippetAttachment {
	return &SnippetAttachment{}
}

// Name returns the processor's identifier.
func (p *SnippetAttachment) Name() string {
	return "snippet-attachment"
}

// Process attaches source code snippets to diagnostics.
// Skips diagnostics that already have SourceCode set or whose file is not
// available.
func (p *SnippetAttachment) Process(diags []diagnostic.Diagnostic, ctx *Context) []diagnostic.Diagnostic {
	return transformDiagnostics(diags, func(d diagnostic.Diagnostic) diagnostic.Diagnostic {
		if d.SourceCode != "" || d.Location.IsFileLevel() {
			return d
		}
		sm := ctx.GetSourceMap(d.Location.File)
		if sm == nil {
			return d
		}
		d.SourceCode = extractSnippet(sm, d.Location)
		return d
	})
}

// extractSnippet extracts source code for a 1-based location.
func extractSnippet(sm interface {
	Line(line int) string
	Snippet(start, end int) string
}, loc diagnostic.Location,
) string {
	if loc.Start.Line < 1 {
		return ""
	}
	if loc.IsPointLocation() {
		return sm.Line(loc.Start.Line)
	}

	// End is exclusive: column 0 on a later line doesn't include that line.
	endLine := loc.End.Line
	if loc.End.Column == 0 && endLine > loc.Start.Line {
		endLine--
	}
	return sm.Snippet(loc.Start.Line, endLine)
}

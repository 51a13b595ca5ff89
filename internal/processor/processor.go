// Package processor provides the diagnostic processing pipeline.
//
// Scoping to the diff happens per file with FilterScope. Afterwards
// diagnostics flow through a Chain of processors, each transforming the
// slice (filtering, modifying, or augmenting).
//
// Standard pipeline order:
//  1. PathNormalization - Slash-separated, cleaned paths
//  2. SeverityOverride - Apply config severity overrides
//  3. RuleExclusionFilter - Drop rules turned off or excluded by path
//  4. Deduplication - Remove duplicate diagnostics
//  5. Sorting - Stable output ordering
//  6. SnippetAttachment - Populate SourceCode field
package processor

import (
	"github.com/wharflab/diffscope/internal/config"
	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/sourcemap"
)

// Processor transforms a slice of diagnostics.
// Implementations should be stateless where possible, using Context for shared state.
type Processor interface {
	// Name returns the processor's identifier (for debugging/logging).
	Name() string

	// Process applies the processor's logic to diagnostics.
	// Must not modify the input slice; return a new slice if filtering.
	Process(diags []diagnostic.Diagnostic, ctx *Context) []diagnostic.Diagnostic
}

// Context provides shared state for processors.
type Context struct {
	// Config is the loaded configuration. May be nil.
	Config *config.Config

	// Sources resolves file content for snippets. May be nil.
	Sources *sourcemap.Cache
}

// NewContext creates a processor context. fileSources are preloaded into the
// source cache; other files are read relative to the working directory.
func NewContext(cfg *config.Config, fileSources map[string][]byte) *Context {
	return &Context{
		Config:  cfg,
		Sources: sourcemap.NewCache("", fileSources),
	}
}

// GetSourceMap returns the source map for file, or nil if unavailable.
func (ctx *Context) GetSourceMap(file string) *sourcemap.SourceMap {
	if ctx == nil {
		return nil
	}
	return ctx.Sources.Get(file)
}

func (ctx *Context) rules() config.RulesConfig {
	if ctx == nil || ctx.Config == nil {
		return nil
	}
	return ctx.Config.Rules
}

// Chain runs processors in sequence.
type Chain struct {
	processors []Processor
}

// NewChain creates a new processor chain.
func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

// Process runs all processors in sequence.
func (c *Chain) Process(diags []diagnostic.Diagnostic, ctx *Context) []diagnostic.Diagnostic {
	for _, p := range c.processors {
		diags = p.Process(diags, ctx)
	}
	return diags
}

// Names lists the processors in run order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.processors))
	for i, p := range c.processors {
		names[i] = p.Name()
	}
	return names
}

// filterDiagnostics returns a new slice containing only diagnostics where keep() returns true.
func filterDiagnostics(diags []diagnostic.Diagnostic, keep func(d diagnostic.Diagnostic) bool) []diagnostic.Diagnostic {
	result := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if keep(d) {
			result = append(result, d)
		}
	}
	return result
}

// transformDiagnostics returns a new slice with each diagnostic transformed by transform().
func transformDiagnostics(
	diags []diagnostic.Diagnostic,
	transform func(d diagnostic.Diagnostic) diagnostic.Diagnostic,
) []diagnostic.Diagnostic {
	result := make([]diagnostic.Diagnostic, len(diags))
	for i, d := range diags {
		result[i] = transform(d)
	}
	return result
}

package processor

import (
	"cmp"
	"slices"

	"github.com/wharflab/diffscope/internal/diagnostic"
)

// Sorting orders diagnostics with a comparison function. The sort is
// stable, so diagnostics that compare equal keep their reported order.
type Sorting struct {
	compare func(a, b diagnostic.Diagnostic) int
}

// NewSorting creates a sorting processor. A nil compare orders by file path,
// then diagnostic.Compare.
func NewSorting(compare func(a, b diagnostic.Diagnostic) int) *Sorting {
	if compare == nil {
		compare = ByFile
	}
	return &Sorting{compare: compare}
}

// Name returns the processor's identifier.
func (p *Sorting) Name() string {
	return "sorting"
}

// Process returns a sorted copy of diags.
func (p *Sorting) Process(diags []diagnostic.Diagnostic, _ *Context) []diagnostic.Diagnostic {
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, p.compare)
	return sorted
}

// ByFile compares by file path, then by diagnostic.Compare.
func ByFile(a, b diagnostic.Diagnostic) int {
	if c := cmp.Compare(a.Location.File, b.Location.File); c != 0 {
		return c
	}
	return diagnostic.Compare(a, b)
}

// Package presenter turns the aggregated diagnostics of a run into the
// rows a results view shows.
package presenter

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/processor"
)

// State is the run state rows are derived from.
type State interface {
	// Generation changes whenever the state is written.
	Generation() uint64

	// Snapshot returns the diagnostics and the generation they were read at.
	Snapshot() ([]diagnostic.Diagnostic, uint64)
}

// Row is one line of the results view.
type Row struct {
	diagnostic.Diagnostic
}

// Target returns the navigation target of the row: "path:line:col", or
// "line:col" when resolving against the buffer the user is in. Columns are
// 1-based. File-level rows target the file itself.
func (r Row) Target(currentBuffer bool) string {
	loc := r.Location
	if loc.IsFileLevel() {
		if currentBuffer {
			return "1:1"
		}
		return loc.File
	}
	pos := strconv.Itoa(loc.Start.Line) + ":" + strconv.Itoa(loc.Start.Column+1)
	if currentBuffer || loc.File == "" {
		return pos
	}
	return loc.File + ":" + pos
}

// Compare orders rows by file name, case-insensitively, then by the
// linter's own ordering (line, column, severity).
func Compare(a, b diagnostic.Diagnostic) int {
	if c := cmp.Compare(strings.ToLower(a.Location.File), strings.ToLower(b.Location.File)); c != 0 {
		return c
	}
	return diagnostic.Compare(a, b)
}

// Less reports whether a sorts before b.
func Less(a, b Row) bool {
	return Compare(a.Diagnostic, b.Diagnostic) < 0
}

// Presenter derives rows from a run state. The state is never modified.
type Presenter struct {
	state State
	chain *processor.Chain
	ctx   *processor.Context

	mu         sync.Mutex
	rows       []Row
	generation uint64
	computed   bool
}

// New creates a presenter over state. pctx carries the configuration and
// the sources used for snippets and may be nil. A nil state yields no rows.
func New(state State, pctx *processor.Context) *Presenter {
	return &Presenter{state: state, chain: Chain(), ctx: pctx}
}

// Chain is the processing applied to aggregated diagnostics before
// display.
func Chain() *processor.Chain {
	return processor.NewChain(
		processor.NewPathNormalization(),
		processor.NewSeverityOverride(),
		processor.NewRuleExclusionFilter(),
		processor.NewDeduplication(),
		processor.NewSorting(Compare),
		processor.NewSnippetAttachment(),
	)
}

// Rows returns the rows of the latest run, sorted with Compare.
func (p *Presenter) Rows() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.update()
	return slices.Clone(p.rows)
}

// Refresh recomputes the rows if the state changed since the last call and
// reports whether it did.
func (p *Presenter) Refresh() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.update()
}

func (p *Presenter) update() bool {
	if p.state == nil {
		p.rows = nil
		return false
	}
	if p.computed && p.state.Generation() == p.generation {
		return false
	}

	raw, gen := p.state.Snapshot()
	diags := p.chain.Process(raw, p.ctx)
	rows := make([]Row, len(diags))
	for i, d := range diags {
		rows[i] = Row{Diagnostic: d}
	}
	p.rows = rows
	p.generation = gen
	p.computed = true
	return true
}

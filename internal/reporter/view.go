package reporter

import (
	"slices"
	"sync"

	"github.com/wharflab/diffscope/internal/presenter"
	"github.com/wharflab/diffscope/internal/sourcemap"
)

// RowSource supplies rows on demand.
type RowSource interface {
	Rows() []presenter.Row
}

// View is a results view: it pulls rows from its source whenever it is
// refreshed and renders them with a Reporter.
type View struct {
	reporter Reporter
	rows     RowSource
	sources  *sourcemap.Cache
	metadata func() ReportMetadata

	mu   sync.Mutex
	last []presenter.Row
}

// NewView binds r to rows. metadata is called on every refresh and may be nil.
func NewView(r Reporter, rows RowSource, sources *sourcemap.Cache, metadata func() ReportMetadata) *View {
	return &View{reporter: r, rows: rows, sources: sources, metadata: metadata}
}

// Refresh pulls the current rows and renders them.
func (v *View) Refresh() error {
	var rows []presenter.Row
	if v.rows != nil {
		rows = v.rows.Rows()
	}
	var meta ReportMetadata
	if v.metadata != nil {
		meta = v.metadata()
	}

	v.mu.Lock()
	v.last = rows
	v.mu.Unlock()

	return v.reporter.Report(rows, v.sources, meta)
}

// Rows returns the rows rendered by the latest refresh.
func (v *View) Rows() []presenter.Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.last)
}

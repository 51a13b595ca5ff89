package presenter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/diffscope/internal/changeset"
	"github.com/wharflab/diffscope/internal/config"
	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/orchestrator"
	"github.com/wharflab/diffscope/internal/processor"
	"github.com/wharflab/diffscope/internal/sourcemap"
)

func at(file string, line, col int, sev diagnostic.Severity, rule string) diagnostic.Diagnostic {
	return diagnostic.New(diagnostic.NewPointLocation(file, line, col), rule, "msg", sev)
}

func targets(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Target(false)
	}
	return out
}

func TestRowsSorted(t *testing.T) {
	t.Parallel()

	state := orchestrator.NewRunState()
	state.Reset(changeset.ScopeLines, nil)
	state.Append(
		at("b.txt", 3, 0, diagnostic.SeverityWarning, "W"),
		at("B.txt", 1, 0, diagnostic.SeverityWarning, "W"),
		at("a.txt", 10, 4, diagnostic.SeverityInfo, "I"),
		at("a.txt", 10, 4, diagnostic.SeverityError, "E"),
		at("a.txt", 2, 0, diagnostic.SeverityStyle, "S"),
	)

	rows := New(state, nil).Rows()
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"a.txt:2:1", "a.txt:10:5", "a.txt:10:5", "B.txt:1:1", "b.txt:3:1"}, targets(rows))
	assert.Equal(t, "E", rows[1].RuleCode, "more severe first on the same position")
}

func TestRowsDoNotMutateState(t *testing.T) {
	t.Parallel()

	state := orchestrator.NewRunState()
	state.Append(at("z.txt", 1, 0, diagnostic.SeverityWarning, "A"), at("a.txt", 1, 0, diagnostic.SeverityWarning, "B"))
	before := state.Diagnostics()

	_ = New(state, nil).Rows()
	assert.Equal(t, before, state.Diagnostics())
	assert.Equal(t, "z.txt", state.Diagnostics()[0].File(), "aggregation order survives presentation")
}

func TestRowsIdempotent(t *testing.T) {
	t.Parallel()

	state := orchestrator.NewRunState()
	state.Append(at("a.txt", 3, 0, diagnostic.SeverityWarning, "A"), at("a.txt", 1, 0, diagnostic.SeverityWarning, "B"))
	p := New(state, nil)

	first := p.Rows()
	assert.False(t, p.Refresh(), "unchanged state needs no refresh")
	assert.Equal(t, first, p.Rows())

	state.Reset(changeset.ScopeFiles, nil)
	assert.True(t, p.Refresh())
	assert.Empty(t, p.Rows())
}

func TestRowsBeforeAnyRun(t *testing.T) {
	t.Parallel()

	assert.Empty(t, New(nil, nil).Rows())

	var state *orchestrator.RunState
	p := New(state, nil)
	assert.Empty(t, p.Rows())
	assert.False(t, p.Refresh())
}

func TestRowsProcessing(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Rules = config.RulesConfig{
		"OFF":  {Severity: "off"},
		"UP":   {Severity: "error"},
		"SKIP": {ExcludePaths: []string{"vendor/**"}},
	}
	pctx := processor.NewContext(cfg, map[string][]byte{"src/a.sh": []byte("one\ntwo\nthree\n")})

	state := orchestrator.NewRunState()
	state.Append(
		at("./src/a.sh", 2, 0, diagnostic.SeverityInfo, "UP"),
		at("src/a.sh", 2, 0, diagnostic.SeverityInfo, "UP"),
		at("src/a.sh", 3, 0, diagnostic.SeverityWarning, "OFF"),
		at("vendor/x.sh", 1, 0, diagnostic.SeverityWarning, "SKIP"),
	)

	rows := New(state, pctx).Rows()
	require.Len(t, rows, 1, "paths are normalized before deduplication")
	assert.Equal(t, "src/a.sh", rows[0].File())
	assert.Equal(t, diagnostic.SeverityError, rows[0].Severity)
	assert.Equal(t, "two", rows[0].SourceCode)
}

func TestRowTarget(t *testing.T) {
	t.Parallel()

	row := Row{Diagnostic: at("src/a.go", 12, 3, diagnostic.SeverityWarning, "R")}
	assert.Equal(t, "src/a.go:12:4", row.Target(false))
	assert.Equal(t, "12:4", row.Target(true))

	fileLevel := Row{Diagnostic: diagnostic.New(diagnostic.NewFileLocation("src/a.go"), "R", "m", diagnostic.SeverityWarning)}
	assert.Equal(t, "src/a.go", fileLevel.Target(false))
	assert.Equal(t, "1:1", fileLevel.Target(true))
}

func TestLess(t *testing.T) {
	t.Parallel()

	a := Row{Diagnostic: at("A.txt", 5, 0, diagnostic.SeverityWarning, "R")}
	b := Row{Diagnostic: at("b.txt", 1, 0, diagnostic.SeverityWarning, "R")}
	assert.True(t, Less(a, b))
	assert.False(t, Less(b, a))
	assert.False(t, Less(a, a))
}

// writeBetweenState records a write right after the generation is read,
// so the snapshot belongs to a later generation than the first read.
type writeBetweenState struct {
	gen   uint64
	diags []diagnostic.Diagnostic
	extra diagnostic.Diagnostic
	wrote bool
}

func (s *writeBetweenState) Generation() uint64 { return s.gen }

func (s *writeBetweenState) Snapshot() ([]diagnostic.Diagnostic, uint64) {
	if !s.wrote {
		s.wrote = true
		s.diags = append(s.diags, s.extra)
		s.gen++
	}
	return s.diags, s.gen
}

func TestRowsCachedUnderSnapshotGeneration(t *testing.T) {
	t.Parallel()

	state := &writeBetweenState{
		gen:   1,
		diags: []diagnostic.Diagnostic{at("a.txt", 1, 0, diagnostic.SeverityWarning, "A")},
		extra: at("a.txt", 2, 0, diagnostic.SeverityWarning, "B"),
	}
	p := New(state, nil)

	require.Len(t, p.Rows(), 2, "the write is part of the snapshot")
	assert.False(t, p.Refresh(), "rows are cached under the generation they were read at")
	assert.Len(t, p.Rows(), 2)
}

func TestRowsSnippetsFollowFileEdits(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("old line\n"), 0o600))

	sources := sourcemap.NewCache(root, nil)
	state := orchestrator.NewRunState()
	p := New(state, &processor.Context{Config: config.Default(), Sources: sources})

	state.Reset(changeset.ScopeLines, nil)
	state.Append(at("a.txt", 1, 0, diagnostic.SeverityWarning, "A"))
	rows := p.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "old line", rows[0].SourceCode)

	require.NoError(t, os.WriteFile(path, []byte("new line\n"), 0o600))
	sources.Reset()
	state.Reset(changeset.ScopeLines, nil)
	state.Append(at("a.txt", 1, 0, diagnostic.SeverityWarning, "A"))
	rows = p.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "new line", rows[0].SourceCode)
}

package reporter

import (
	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/presenter"
)

func row(file string, line, col int, sev diagnostic.Severity, rule, msg string) presenter.Row {
	d := diagnostic.New(diagnostic.NewPointLocation(file, line, col), rule, msg, sev)
	d.Linter = "shellcheck"
	return presenter.Row{Diagnostic: d}
}

func fileRow(file, rule, msg string) presenter.Row {
	return presenter.Row{Diagnostic: diagnostic.New(diagnostic.NewFileLocation(file), rule, msg, diagnostic.SeverityWarning)}
}

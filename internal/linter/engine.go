package linter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/wharflab/diffscope/internal/config"
)

// Stdin is read by NewEngine when the report path is "-".
var Stdin io.Reader = os.Stdin

// NewEngine builds the engine the linter configuration asks for: a
// ReportEngine when a report is given, a CommandEngine otherwise.
func NewEngine(cfg config.LinterConfig, dir string, log logrus.FieldLogger) (Engine, error) {
	parser, err := NewParser(cfg.Format, cfg.Pattern)
	if err != nil {
		return nil, err
	}

	if cfg.Report != "" {
		name := cfg.Name
		if name == "" {
			name = "report"
		}
		r := Stdin
		if cfg.Report != "-" {
			f, err := os.Open(cfg.Report)
			if err != nil {
				return nil, fmt.Errorf("open linter report: %w", err)
			}
			defer f.Close()
			r = f
		}
		e, err := NewReportEngine(name, r, parser, dir)
		if err != nil {
			return nil, err
		}
		e.SetMaxDiagnostics(cfg.MaxDiagnostics)
		return e, nil
	}

	if cfg.Command == "" {
		return nil, errors.New("no linter configured: set [linter] command or report")
	}
	e, err := NewCommandEngine(CommandOptions{
		Name:           cfg.Name,
		Command:        cfg.Command,
		Parser:         parser,
		Stdin:          cfg.Stdin,
		Dir:            dir,
		Jobs:           cfg.Jobs,
		MaxDiagnostics: cfg.MaxDiagnostics,
		MaxFileSize:    cfg.MaxFileSize,
		Log:            log,
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

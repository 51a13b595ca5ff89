package orchestrator

import (
	"fmt"

	"github.com/wharflab/diffscope/internal/async"
	"github.com/wharflab/diffscope/internal/diffsource"
	"github.com/wharflab/diffscope/internal/processor"
)

// PreconditionError is returned when a run is started without a diff.
type PreconditionError = diffsource.PreconditionError

// ConfigurationError is returned when the scope is unset or unknown.
type ConfigurationError = processor.ConfigurationError

// FileCheckError records a file whose check failed. The file contributes
// no diagnostics; the run carries on.
type FileCheckError struct {
	Path   string
	Reason async.SkipReason
	Err    error
}

func (e *FileCheckError) Error() string {
	return fmt.Sprintf("check %s (%s): %v", e.Path, e.Reason, e.Err)
}

func (e *FileCheckError) Unwrap() error {
	return e.Err
}

// TeardownError wraps failures to restore state after a run. It is logged,
// never returned.
type TeardownError struct {
	Err error
}

func (e *TeardownError) Error() string {
	return "teardown: " + e.Err.Error()
}

func (e *TeardownError) Unwrap() error {
	return e.Err
}

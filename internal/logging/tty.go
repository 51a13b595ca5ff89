package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsTerminal is isTerminal for callers outside the package, e.g. to refuse
// reading a diff from an interactive stdin.
func IsTerminal(f *os.File) bool {
	return isTerminal(f)
}

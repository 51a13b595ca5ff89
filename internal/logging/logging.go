// Package logging configures the logrus logger diffscope writes its
// status and warning messages to.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing plain text lines to w at the named level.
// An empty level means info.
func New(level string, w io.Writer) (*logrus.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	if level == "" {
		level = logrus.InfoLevel.String()
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		DisableColors:          !isTerminal(w),
	})
	return log, nil
}

// Discard returns a logger that drops everything. Used by tests and as the
// fallback when no logger is wired.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Inhibitor toggles informational messages on a logger. While suppressed
// only warnings and errors get through.
type Inhibitor struct {
	log *logrus.Logger

	mu    sync.Mutex
	depth int
	saved logrus.Level
}

// NewInhibitor wraps log.
func NewInhibitor(log *logrus.Logger) *Inhibitor {
	return &Inhibitor{log: log}
}

// Suppress raises the logger level to warn and returns the func that
// restores it. Nested calls restore the original level only when the
// outermost restore runs. Restore is safe to call more than once.
func (in *Inhibitor) Suppress() (restore func()) {
	if in == nil || in.log == nil {
		return func() {}
	}

	in.mu.Lock()
	if in.depth == 0 {
		in.saved = in.log.GetLevel()
		if in.saved > logrus.WarnLevel {
			in.log.SetLevel(logrus.WarnLevel)
		}
	}
	in.depth++
	in.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			in.mu.Lock()
			defer in.mu.Unlock()
			in.depth--
			if in.depth == 0 {
				in.log.SetLevel(in.saved)
			}
		})
	}
}

// Suppressed reports whether a Suppress call is active.
func (in *Inhibitor) Suppressed() bool {
	if in == nil {
		return false
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.depth > 0
}

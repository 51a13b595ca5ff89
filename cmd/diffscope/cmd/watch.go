package cmd

import (
	stdcontext "context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/diffscope/internal/orchestrator"
)

const debounceInterval = 200 * time.Millisecond

// watch runs the check, then re-runs it whenever a changed file or the
// diff file is written. Every run replaces the previous state and
// refreshes the view. It returns when ctx ends.
func (c *checker) watch(ctx stdcontext.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.env.log.WithError(err).Error("failed to set up watcher")
		return cli.Exit("", ExitError)
	}
	defer watcher.Close()

	dirs := make(map[string]struct{})
	rerun := func() {
		c.rerun(ctx)
		c.addWatches(watcher, dirs)
	}

	rerun()
	c.env.log.Info("watching for changes")

	loop := &eventLoop{
		log:      c.env.log,
		debounce: debounceInterval,
		relevant: c.watched,
		rerun:    rerun,
	}
	return loop.run(ctx, watcher.Events, watcher.Errors)
}

// rerun is one run of the watch loop. Failures are logged and the loop
// goes on.
func (c *checker) rerun(ctx stdcontext.Context) {
	err := c.run(ctx)
	if err == nil || errors.Is(err, stdcontext.Canceled) {
		return
	}
	var precondition *orchestrator.PreconditionError
	if errors.As(err, &precondition) {
		c.env.log.Error(precondition.Error())
		return
	}
	c.env.log.WithError(err).Error("check failed")
}

// watchedFiles returns the absolute paths whose writes trigger a re-run:
// every file of the latest run and the diff file when one is read.
func (c *checker) watchedFiles() []string {
	files := c.state.Files()
	paths := make([]string, 0, len(files)+1)
	for _, set := range files {
		paths = append(paths, filepath.Join(c.env.root, filepath.FromSlash(set.Path)))
	}
	if diff := c.env.cfg.Diff.File; diff != "" && diff != "-" {
		if !filepath.IsAbs(diff) {
			diff = filepath.Join(c.env.cwd, diff)
		}
		paths = append(paths, filepath.Clean(diff))
	}
	return paths
}

// watched reports whether a write to path triggers a re-run. Anything
// else under the watched directories, such as the report itself or a
// linter cache, is ignored.
func (c *checker) watched(path string) bool {
	path = filepath.Clean(path)
	for _, p := range c.watchedFiles() {
		if p == path {
			return true
		}
	}
	return false
}

// addWatches watches the directory of every watched file.
func (c *checker) addWatches(watcher *fsnotify.Watcher, dirs map[string]struct{}) {
	for _, path := range c.watchedFiles() {
		dir := filepath.Dir(path)
		if _, present := dirs[dir]; present {
			continue
		}
		dirs[dir] = struct{}{}
		if err := watcher.Add(dir); err != nil {
			c.env.log.WithError(err).WithField("dir", dir).Warn("failed to add watch")
			continue
		}
		c.env.log.WithField("dir", dir).Debug("added watch")
	}
}

// eventLoop turns filesystem events into re-runs.
type eventLoop struct {
	log      logrus.FieldLogger
	debounce time.Duration
	relevant func(path string) bool
	rerun    func()
}

// triggerOps are the operations that count as a change.
const triggerOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// run handles events until ctx ends or the channels close. A relevant
// event waits for the files to settle, then triggers one re-run.
func (l *eventLoop) run(ctx stdcontext.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Op&triggerOps == 0 || !l.relevant(event.Name) {
				continue
			}
			l.log.WithField("path", event.Name).Debug("change detected")
			if !l.settle(ctx, events) {
				return nil
			}
			l.rerun()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			l.log.WithError(err).Warn("error watching files")
		}
	}
}

// settle discards events until none has arrived for the debounce
// interval. It returns false when the loop must stop.
func (l *eventLoop) settle(ctx stdcontext.Context, events <-chan fsnotify.Event) bool {
	timer := time.NewTimer(l.debounce)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return false
			}
			timer.Reset(l.debounce)
		case <-timer.C:
			return true
		case <-ctx.Done():
			return false
		}
	}
}

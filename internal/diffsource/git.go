package diffsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/wharflab/diffscope/internal/changeset"
)

// GitOptions selects what a GitSource compares.
type GitOptions struct {
	// Base is the revision to compare against. Empty compares the work tree
	// with the index (or the index with HEAD when Staged is set).
	Base string

	// Staged compares the index instead of the work tree.
	Staged bool

	// Paths restricts the diff to these pathspecs.
	Paths []string
}

// GitSource runs git diff in a repository.
type GitSource struct {
	dir  string
	opts GitOptions

	mu      sync.Mutex
	context int
}

// NewGitSource creates a source for the repository containing dir.
func NewGitSource(dir string, opts GitOptions) *GitSource {
	return &GitSource{dir: dir, opts: opts}
}

// SetContext implements Source.
func (g *GitSource) SetContext(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	prev := g.context
	g.context = max(n, 0)
	return prev
}

// Args returns the git arguments Files runs with.
func (g *GitSource) Args() []string {
	g.mu.Lock()
	n := g.context
	g.mu.Unlock()

	args := []string{"diff", "--no-color", "--no-ext-diff", "-U" + strconv.Itoa(n)}
	if g.opts.Staged {
		args = append(args, "--cached")
	}
	if g.opts.Base != "" {
		args = append(args, g.opts.Base)
	}
	args = append(args, "--")
	return append(args, g.opts.Paths...)
}

// Files implements Source.
func (g *GitSource) Files(ctx context.Context) ([]*gitdiff.File, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, &PreconditionError{Reason: "git is not installed", Err: err}
	}
	if !IsWorkTree(ctx, g.dir) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, &PreconditionError{Reason: g.dir + " is not inside a git work tree"}
	}
	out, err := runGit(ctx, g.dir, g.Args()...)
	if err != nil {
		return nil, err
	}
	return changeset.ParseDiff(bytes.NewReader(out))
}

// IsWorkTree reports whether dir is inside a git work tree.
func IsWorkTree(ctx context.Context, dir string) bool {
	out, err := runGit(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// TopLevel returns the root directory of the work tree containing dir.
func TopLevel(ctx context.Context, dir string) (string, error) {
	out, err := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, &PreconditionError{Reason: "git is not installed", Err: err}
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}
	return out, nil
}

// Package security confines file access by tools to a configured root.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that resolve outside the root
var ErrOutsideRoot = errors.New("path is outside configured directory")

// PathGuard resolves tool-supplied paths against a root directory and
// refuses anything that escapes it
type PathGuard struct {
	root string
}

// NewPathGuard creates a guard for root. The directory does not have to
// exist yet; until it does, paths are not confined.
func NewPathGuard(root string) (*PathGuard, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	return &PathGuard{root: root}, nil
}

// Root returns the configured directory
func (g *PathGuard) Root() string {
	return g.root
}

// Resolve returns the absolute form of path. Relative paths are taken
// relative to the root, NUL bytes are stripped, and the result must lie
// within the root.
func (g *PathGuard) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.root, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	within, err := g.Contains(abs)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return abs, nil
}

// Contains reports whether path lies within the root. Symlinks in both the
// path and the root are followed, and the path must be inside under both
// its literal and its resolved form.
func (g *PathGuard) Contains(path string) (bool, error) {
	if _, err := os.Stat(g.root); os.IsNotExist(err) {
		return true, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	root, err := filepath.Abs(g.root)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	abs = filepath.Clean(abs)
	root = filepath.Clean(root)

	real := abs
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		real = resolved
	}
	realRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		realRoot = resolved
	}

	inside := func(p string) bool {
		return isUnder(p, root) || isUnder(p, realRoot)
	}
	return inside(abs) && inside(real), nil
}

// isUnder reports whether p equals dir or is below it
func isUnder(p, dir string) bool {
	if p == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(p, dir)
}

// Package workspace enforces harness-root boundaries on served paths. The
// harness directory is handed to an HTTP file server wholesale, so the page
// path the browser is pointed at must provably stay inside it.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard validates that harness page paths remain within the harness root,
// preventing a run from being pointed at files outside the served directory.
type Guard struct {
	rootDir string // Absolute, symlink-resolved harness root
}

// NewGuard creates a guard for the given harness root directory.
func NewGuard(rootDir string) (*Guard, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("harness directory cannot be empty")
	}

	absPath, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve harness directory: %w", err)
	}

	evalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate harness directory symlinks: %w", err)
	}

	info, err := os.Stat(evalPath)
	if err != nil {
		return nil, fmt.Errorf("harness directory error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("harness path %q is not a directory", rootDir)
	}

	return &Guard{rootDir: evalPath}, nil
}

// Root returns the absolute harness root directory.
func (g *Guard) Root() string {
	return g.rootDir
}

// ValidatePage checks that the harness page path, interpreted relative to
// the root, stays within the root. The page does not have to exist yet; the
// check is purely lexical after cleaning.
func (g *Guard) ValidatePage(page string) error {
	if page == "" {
		return fmt.Errorf("harness page cannot be empty")
	}
	if filepath.IsAbs(page) {
		return fmt.Errorf("harness page %q must be relative to the harness directory", page)
	}

	joined := filepath.Clean(filepath.Join(g.rootDir, page))
	if joined != g.rootDir && !strings.HasPrefix(joined, g.rootDir+string(filepath.Separator)) {
		return fmt.Errorf("harness page %q escapes the harness directory", page)
	}
	if joined == g.rootDir {
		return fmt.Errorf("harness page %q does not name a file", page)
	}
	return nil
}

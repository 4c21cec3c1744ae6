package collect

import (
	"errors"
	"fmt"
	"os"
)

// Workspace owns the temporary directories created during collection.
// Extracted archive entries, downloaded objects, and combined JSONL
// documents live in workspace directories; their lifetime spans the run
// and ends when the owner calls Cleanup.
type Workspace struct {
	dirs []string
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// TempDir creates and tracks a fresh temporary directory.
func (w *Workspace) TempDir() (string, error) {
	dir, err := os.MkdirTemp("", "grist-*")
	if err != nil {
		return "", fmt.Errorf("create workspace dir: %w", err)
	}
	w.dirs = append(w.dirs, dir)
	return dir, nil
}

// Cleanup removes every directory the workspace created.
// Safe to call multiple times; removal errors are joined.
func (w *Workspace) Cleanup() error {
	var errs []error
	for _, dir := range w.dirs {
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, err)
		}
	}
	w.dirs = nil
	return errors.Join(errs...)
}

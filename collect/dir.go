package collect

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// collectDir walks a directory and returns the allowed files, sorted.
// recursive selects a full tree walk; otherwise only direct children
// are considered.
func (c *Collector) collectDir(dir string, recursive bool) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, newError(ErrInvalidSource, "collect", dir, err)
	}

	pattern := "*"
	if recursive {
		pattern = "**/*"
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, newError(ErrInvalidSource, "collect", dir, err)
	}

	files := make([]string, 0, len(matches))
	for _, rel := range matches {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if !c.filter.Allows(full) {
			continue
		}
		files = append(files, full)
	}

	sort.Strings(files)
	return files, nil
}

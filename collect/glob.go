package collect

import (
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// collectGlob expands a comma-separated list of glob patterns and returns
// the union of allowed regular files, sorted. A segment that matches
// nothing and carries no glob metacharacters is likely a mistyped path;
// it warns but does not abort.
func (c *Collector) collectGlob(descriptor string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range strings.Split(descriptor, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, newError(ErrInvalidSource, "glob", pattern, err)
		}

		if len(matches) == 0 && !strings.ContainsAny(pattern, "*?[{") {
			c.logger.Warn("no files found matching pattern", map[string]any{"pattern": pattern})
			continue
		}

		for _, match := range matches {
			if !isRegular(match) || !c.filter.Allows(match) {
				continue
			}
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			files = append(files, match)
		}
	}

	sort.Strings(files)
	return files, nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

package collect

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stonemill-io/grist/iox"
)

// collectZip extracts the allowed entries of a zip archive into a fresh
// workspace directory, preserving the archive's relative layout, and
// returns the extracted paths sorted. Any open or extract failure aborts
// the collection.
func (c *Collector) collectZip(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, newError(ErrArchiveRead, "open", path, err)
	}
	defer iox.DiscardClose(r)

	dest, err := c.ws.TempDir()
	if err != nil {
		return nil, newError(ErrArchiveRead, "extract", path, err)
	}

	var files []string
	for _, entry := range r.File {
		name := entry.Name
		if strings.HasSuffix(name, "/") || entry.FileInfo().IsDir() {
			continue
		}
		if !c.filter.Allows(name) {
			continue
		}

		rel := filepath.FromSlash(name)
		if !filepath.IsLocal(rel) {
			return nil, newError(ErrArchiveRead, "extract", path, fmt.Errorf("entry %q escapes the extraction root", name))
		}

		target := filepath.Join(dest, rel)
		if err := extractEntry(entry, target); err != nil {
			return nil, newError(ErrArchiveRead, "extract", path, err)
		}
		files = append(files, target)
	}

	sort.Strings(files)
	return files, nil
}

func extractEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", entry.Name, err)
	}
	defer iox.DiscardClose(src)

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("extract entry %s: %w", entry.Name, err)
	}
	return dst.Close()
}

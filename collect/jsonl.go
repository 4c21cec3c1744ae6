package collect

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stonemill-io/grist/iox"
)

// maxRecordSize bounds a single JSONL line. Stored results can be long
// generations, well past bufio's default token limit.
const maxRecordSize = 16 * 1024 * 1024

// collectJSONL re-flattens a JSONL results file from a previous run into
// one combined document. Each record contributes a header naming the
// original file, the stored result text, and a blank separator line.
// The combined document is the single collected file and is exempt from
// the extension filter by construction.
func (c *Collector) collectJSONL(path string) ([]string, error) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return nil, newError(ErrInvalidSource, "collect", path, err)
	case info.IsDir() || !strings.HasSuffix(path, ".jsonl"):
		return nil, newError(ErrInvalidSource, "collect", path, errors.New("not a JSONL input file"))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrInvalidSource, "open", path, err)
	}
	defer iox.DiscardClose(f)

	var combined []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	line := 0
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			line++
			continue
		}

		var record struct {
			File   *string `json:"file"`
			Result string  `json:"result"`
		}
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, newError(ErrMalformedRecord, "decode", path, fmt.Errorf("line %d: %w", line+1, err))
		}

		name := fmt.Sprintf("record_%d", line)
		if record.File != nil {
			name = *record.File
		}

		combined = append(combined, "=== File: "+name+" ===", record.Result, "")
		line++
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(ErrMalformedRecord, "read", path, err)
	}

	dest, err := c.ws.TempDir()
	if err != nil {
		return nil, newError(ErrInvalidSource, "collect", path, err)
	}

	combinedPath := filepath.Join(dest, "combined_results.txt")
	if err := os.WriteFile(combinedPath, []byte(strings.Join(combined, "\n")), 0o644); err != nil {
		return nil, newError(ErrInvalidSource, "write", combinedPath, err)
	}

	return []string{combinedPath}, nil
}

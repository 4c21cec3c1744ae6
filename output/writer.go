// Package output serializes processing results to JSON or JSONL files
// and prints the console report.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/stonemill-io/grist/pipeline"
)

// WriteJSON writes results as a single pretty-printed JSON array to
// path. Field layout follows the result records: file, status, and
// result or error keyed by status.
func WriteJSON(results []pipeline.Result, path string) error {
	if results == nil {
		results = []pipeline.Result{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results to %s: %w", path, err)
	}
	return nil
}

// WriteJSONL writes one compact record per line to path. Each record
// carries the file basename and the result text, with read failures
// folded into an "Error: ..." string. Non-ASCII text is preserved as
// written.
func WriteJSONL(results []pipeline.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeJSONL(results, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write results to %s: %w", path, err)
	}
	return f.Close()
}

type jsonlRecord struct {
	File   string `json:"file"`
	Result string `json:"result"`
}

func writeJSONL(results []pipeline.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		record := jsonlRecord{File: filepath.Base(r.File), Result: r.Output()}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encode record for %s: %w", r.File, err)
		}
	}
	return nil
}

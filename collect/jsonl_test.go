package collect

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func collectJSONLInput(t *testing.T, c *Collector, path string) (string, string) {
	t.Helper()
	files, err := c.Collect(t.Context(), Source{Kind: KindJSONL, Descriptor: path}, false)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Collect() = %v, want exactly one combined file", files)
	}
	body, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read combined file: %v", err)
	}
	return files[0], string(body)
}

func TestCollectJSONL_CombinesRecords(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "results.jsonl", strings.Join([]string{
		`{"file":"a.txt","result":"alpha"}`,
		`{"file":"b.txt","result":"beta"}`,
	}, "\n"))

	c := New(Options{Workspace: newTestWorkspace(t)})
	combined, body := collectJSONLInput(t, c, input)

	if got := filepath.Base(combined); got != "combined_results.txt" {
		t.Errorf("combined file name = %s, want combined_results.txt", got)
	}
	want := "=== File: a.txt ===\nalpha\n\n=== File: b.txt ===\nbeta\n"
	if body != want {
		t.Errorf("combined content = %q, want %q", body, want)
	}
}

func TestCollectJSONL_RecordNameFallback(t *testing.T) {
	dir := t.TempDir()
	// Blank lines still advance the record index, and an explicit empty
	// file name is kept as-is rather than replaced.
	input := writeFile(t, dir, "results.jsonl", strings.Join([]string{
		"",
		`{"result":"first"}`,
		"   ",
		`{"file":"named.txt","result":"second"}`,
		`{"file":"","result":"third"}`,
	}, "\n"))

	c := New(Options{Workspace: newTestWorkspace(t)})
	_, body := collectJSONLInput(t, c, input)

	want := strings.Join([]string{
		"=== File: record_1 ===", "first", "",
		"=== File: named.txt ===", "second", "",
		"=== File:  ===", "third", "",
	}, "\n")
	if body != want {
		t.Errorf("combined content = %q, want %q", body, want)
	}
}

func TestCollectJSONL_EmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "results.jsonl", "")

	c := New(Options{Workspace: newTestWorkspace(t)})
	_, body := collectJSONLInput(t, c, input)
	if body != "" {
		t.Errorf("combined content = %q, want empty", body)
	}
}

func TestCollectJSONL_BypassesExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "results.jsonl", `{"file":"a.txt","result":"alpha"}`)

	// The combined .txt document is returned even when .txt is not in
	// the allow-list.
	c := New(Options{Extensions: []string{".md"}, Workspace: newTestWorkspace(t)})
	_, body := collectJSONLInput(t, c, input)
	if !strings.Contains(body, "=== File: a.txt ===") {
		t.Errorf("combined content = %q, want record header", body)
	}
}

func TestCollectJSONL_MalformedRecord(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "results.jsonl", strings.Join([]string{
		`{"file":"ok.txt","result":"fine"}`,
		`{not json at all`,
	}, "\n"))

	c := New(Options{Workspace: newTestWorkspace(t)})
	_, err := c.Collect(t.Context(), Source{Kind: KindJSONL, Descriptor: input}, false)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("Collect() error = %v, want ErrMalformedRecord", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Collect() error = %v, want line number 2", err)
	}
}

func TestCollectJSONL_InvalidInputs(t *testing.T) {
	dir := t.TempDir()
	notJSONL := writeFile(t, dir, "results.txt", `{"file":"a.txt","result":"alpha"}`)
	asDir := filepath.Join(dir, "dir.jsonl")
	if err := os.Mkdir(asDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "absent.jsonl")},
		{name: "wrong extension", path: notJSONL},
		{name: "directory", path: asDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Options{Workspace: newTestWorkspace(t)})
			_, err := c.Collect(t.Context(), Source{Kind: KindJSONL, Descriptor: tt.path}, false)
			if !errors.Is(err, ErrInvalidSource) {
				t.Errorf("Collect(%s) error = %v, want ErrInvalidSource", tt.path, err)
			}
		})
	}
}

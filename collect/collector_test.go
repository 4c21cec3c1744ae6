package collect

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates name under dir with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// newTestWorkspace returns a workspace whose dirs are removed at test end.
func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws := NewWorkspace()
	t.Cleanup(func() {
		if err := ws.Cleanup(); err != nil {
			t.Errorf("workspace cleanup: %v", err)
		}
	})
	return ws
}

func TestNewExtFilter(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want ExtFilter
	}{
		{
			name: "nil falls back to defaults",
			in:   nil,
			want: ExtFilter{".txt", ".md", ".log", ".csv"},
		},
		{
			name: "blank entries fall back to defaults",
			in:   []string{"", "  "},
			want: ExtFilter{".txt", ".md", ".log", ".csv"},
		},
		{
			name: "missing dots are added",
			in:   []string{"txt", "md"},
			want: ExtFilter{".txt", ".md"},
		},
		{
			name: "case is normalized",
			in:   []string{".TXT", ".Md"},
			want: ExtFilter{".txt", ".md"},
		},
		{
			name: "whitespace is trimmed",
			in:   []string{" .rst ", "adoc"},
			want: ExtFilter{".rst", ".adoc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewExtFilter(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("NewExtFilter(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("filter[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtFilter_Allows(t *testing.T) {
	filter := NewExtFilter(nil)

	tests := []struct {
		path string
		want bool
	}{
		{path: "notes.txt", want: true},
		{path: "REPORT.MD", want: true},
		{path: "/var/log/app.log", want: true},
		{path: "data.csv", want: true},
		{path: "archive.zip", want: false},
		{path: "binary", want: false},
		{path: "script.txt.bak", want: false},
	}

	for _, tt := range tests {
		if got := filter.Allows(tt.path); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCollect_SingleFile(t *testing.T) {
	dir := t.TempDir()
	allowed := writeFile(t, dir, "note.txt", "content")
	disallowed := writeFile(t, dir, "image.png", "content")

	c := New(Options{})

	files, err := c.Collect(t.Context(), Resolve(allowed, ResolveOptions{}), true)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(files) != 1 || files[0] != allowed {
		t.Errorf("Collect() = %v, want [%s]", files, allowed)
	}

	files, err = c.Collect(t.Context(), Resolve(disallowed, ResolveOptions{}), true)
	if err != nil {
		t.Fatalf("Collect() error for disallowed extension: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Collect() = %v, want empty for disallowed extension", files)
	}
}

func TestCollect_UnknownKind(t *testing.T) {
	c := New(Options{})

	_, err := c.Collect(t.Context(), Source{Kind: Kind(42), Descriptor: "x"}, true)
	if !errors.Is(err, ErrInvalidSource) {
		t.Errorf("Collect() error = %v, want ErrInvalidSource", err)
	}
}

package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"json lowercase", "json", FormatJSON, false},
		{"json uppercase", "JSON", FormatJSON, false},
		{"table", "table", FormatTable, false},
		{"yaml", "yaml", FormatYAML, false},
		{"empty", "", "", false},
		{"invalid", "xml", "", true},
		{"invalid with message", "csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat_InvalidErrorMessage(t *testing.T) {
	_, err := ParseFormat("xml")
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
	if !strings.Contains(err.Error(), "json, table, or yaml") {
		t.Errorf("error message should mention valid formats, got: %v", err)
	}
}

func TestRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatJSON, &buf)

	data := map[string]string{"model": "llama3.2"}
	if err := r.Render(data, Table{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, `"model"`) || !strings.Contains(got, `"llama3.2"`) {
		t.Errorf("JSON output missing expected content: %s", got)
	}
}

func TestRenderer_YAML(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatYAML, &buf)

	data := map[string]string{"model": "llama3.2"}
	if err := r.Render(data, Table{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "model:") || !strings.Contains(got, "llama3.2") {
		t.Errorf("YAML output missing expected content: %s", got)
	}
}

func TestRenderer_TableWithHeaders(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, &buf)

	table := Table{
		Headers: []string{"NAME", "SIZE"},
		Rows: [][]string{
			{"llama3.2", "2.0 GB"},
			{"mistral", "4.1 GB"},
		},
	}
	if err := r.Render(nil, table); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("table has %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "NAME") || !strings.Contains(lines[0], "SIZE") {
		t.Errorf("header row = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "llama3.2") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestRenderer_TableKeyValue(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, &buf)

	table := Table{Rows: [][]string{
		{"version:", "0.3.0"},
		{"commit:", "abc1234"},
	}}
	if err := r.Render(nil, table); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "version:") || !strings.Contains(got, "0.3.0") {
		t.Errorf("key/value table missing content: %s", got)
	}
}

func TestRenderer_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, &buf)

	if err := r.Render(nil, Table{Headers: []string{"NAME"}}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := buf.String(); got != "(no results)\n" {
		t.Errorf("empty table = %q, want (no results)", got)
	}
}

func TestRenderer_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(Format("csv"), &buf)
	if err := r.Render(nil, Table{}); err == nil {
		t.Error("Render() error = nil, want unknown format error")
	}
}

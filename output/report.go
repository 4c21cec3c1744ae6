package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/stonemill-io/grist/metrics"
	"github.com/stonemill-io/grist/pipeline"
)

// Color palette.
var (
	successColor = lipgloss.Color("#10B981") // Green
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	ruleStyle    = lipgloss.NewStyle().Foreground(mutedColor)
)

// Report prints per-file results in human-readable form.
type Report struct {
	out   io.Writer
	color bool
}

// NewReport creates a report bound to out. color enables styling and
// should track whether out is a terminal; the text content is identical
// either way.
func NewReport(out io.Writer, color bool) *Report {
	return &Report{out: out, color: color}
}

// Print writes one block per result, separated by a rule line.
func (r *Report) Print(results []pipeline.Result) {
	fmt.Fprintf(r.out, "\n%s\n", r.styled(titleStyle, "--- Results ---"))
	for _, result := range results {
		fmt.Fprintf(r.out, "\nFile: %s\n", result.File)
		fmt.Fprintf(r.out, "Status: %s\n", r.status(result.Status))
		if result.Status == pipeline.StatusSuccess {
			fmt.Fprintf(r.out, "Result:\n%s\n", deref(result.Result))
		} else {
			fmt.Fprintf(r.out, "Error: %s\n", r.styled(errorStyle, errorMessage(result)))
		}
		fmt.Fprintln(r.out, r.styled(ruleStyle, strings.Repeat("-", 50)))
	}
}

// Summary prints the one-line completion summary built from the run's
// metrics snapshot.
func (r *Report) Summary(snap metrics.Snapshot, elapsed time.Duration) {
	succeeded := r.styled(successStyle, fmt.Sprintf("%d succeeded", snap.Succeeded))
	failed := fmt.Sprintf("%d failed", snap.Failed)
	if snap.Failed > 0 {
		failed = r.styled(errorStyle, failed)
	}

	line := fmt.Sprintf("Processed %d files in %s: %s, %s",
		snap.FilesProcessed, elapsed.Round(time.Millisecond), succeeded, failed)
	if snap.GenerationErrors > 0 {
		line += fmt.Sprintf(" (%d generation errors)", snap.GenerationErrors)
	}
	fmt.Fprintf(r.out, "\n%s\n", line)
}

func (r *Report) status(s pipeline.Status) string {
	if s == pipeline.StatusSuccess {
		return r.styled(successStyle, string(s))
	}
	return r.styled(errorStyle, string(s))
}

func (r *Report) styled(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func errorMessage(result pipeline.Result) string {
	if result.Error != nil {
		return *result.Error
	}
	return "Unknown error"
}

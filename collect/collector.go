package collect

import (
	"context"
	"fmt"
	"strings"

	"github.com/stonemill-io/grist/log"
	"github.com/stonemill-io/grist/metrics"
)

// DefaultExtensions is the allow-list applied when none is configured.
var DefaultExtensions = []string{".txt", ".md", ".log", ".csv"}

// ExtFilter is a case-insensitive filename extension allow-list.
type ExtFilter []string

// NewExtFilter normalizes exts into a filter. Entries gain a leading dot
// when missing and match case-insensitively. An empty or all-blank list
// falls back to DefaultExtensions.
func NewExtFilter(exts []string) ExtFilter {
	out := make(ExtFilter, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, strings.ToLower(ext))
	}
	if len(out) == 0 {
		return ExtFilter(DefaultExtensions)
	}
	return out
}

// Allows reports whether path ends in one of the allowed extensions.
func (f ExtFilter) Allows(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range f {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Options configure a Collector.
type Options struct {
	// Extensions is the allow-list; empty selects DefaultExtensions.
	Extensions []string
	// Workspace receives the temp dirs the zip, S3, and JSONL variants
	// create. Required for those variants.
	Workspace *Workspace
	// Logger receives collection progress and warnings. Nil discards.
	Logger *log.Logger
	// S3 carries client options for the S3 variant.
	S3 S3Options
	// Metrics counts downloads. Optional.
	Metrics *metrics.Collector
	// Progress enables download progress bars on stderr.
	Progress bool
}

// Collector loads the file list for a resolved Source.
type Collector struct {
	filter   ExtFilter
	ws       *Workspace
	logger   *log.Logger
	s3       S3Options
	metrics  *metrics.Collector
	progress bool

	// s3Client overrides client construction when set. Tests inject
	// fakes here; production code leaves it nil.
	s3Client s3API
}

// New creates a Collector from opts.
func New(opts Options) *Collector {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	ws := opts.Workspace
	if ws == nil {
		ws = NewWorkspace()
	}
	return &Collector{
		filter:   NewExtFilter(opts.Extensions),
		ws:       ws,
		logger:   logger,
		s3:       opts.S3,
		metrics:  opts.Metrics,
		progress: opts.Progress,
	}
}

// Filter returns the collector's extension allow-list.
func (c *Collector) Filter() ExtFilter { return c.filter }

// Collect loads the file list for src. Paths come back lexicographically
// sorted within each variant. A nil error with an empty list is valid:
// a single file outside the allow-list and a prefix with no matching
// objects both collect to nothing.
func (c *Collector) Collect(ctx context.Context, src Source, recursive bool) ([]string, error) {
	switch src.Kind {
	case KindJSONL:
		return c.collectJSONL(src.Descriptor)
	case KindS3:
		return c.collectS3(ctx, src)
	case KindZip:
		return c.collectZip(src.Descriptor)
	case KindDir:
		return c.collectDir(src.Descriptor, recursive)
	case KindFile:
		return c.collectFile(src.Descriptor)
	case KindGlob:
		return c.collectGlob(src.Descriptor)
	default:
		return nil, newError(ErrInvalidSource, "collect", src.Descriptor, fmt.Errorf("unknown source kind %d", src.Kind))
	}
}

// collectFile passes through a single file when its extension is allowed.
// A disallowed extension warns and collects nothing rather than failing
// the run.
func (c *Collector) collectFile(path string) ([]string, error) {
	if !c.filter.Allows(path) {
		c.logger.Warn("file skipped: extension not allowed", map[string]any{"path": path})
		return nil, nil
	}
	return []string{path}, nil
}

// Package pipeline runs collected files through the generation client
// one at a time, in input order, and records a per-file result.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/stonemill-io/grist/iox"
	"github.com/stonemill-io/grist/log"
	"github.com/stonemill-io/grist/metrics"
	"github.com/stonemill-io/grist/ollama"
	"github.com/stonemill-io/grist/prompt"
)

// Status labels a per-file outcome.
type Status string

const (
	// StatusSuccess marks a record whose generate call returned. The
	// returned text may itself be an "Error: ..." string from the
	// client's soft-failure path; that still counts as success here.
	StatusSuccess Status = "success"
	// StatusError marks a record whose file could not be read.
	StatusError Status = "error"
)

// Result is one file's processing record. Exactly one of Result and
// Error is set, keyed by Status.
type Result struct {
	// File is the collected path as processed.
	File string `json:"file"`
	// Status is success or error.
	Status Status `json:"status"`
	// Result is the generated text. Set only when Status is success.
	Result *string `json:"result,omitempty"`
	// Error is the read failure message. Set only when Status is error.
	Error *string `json:"error,omitempty"`
}

// Output returns the record's result text, folding a read failure into
// an "Error: ..." string. This is the JSONL and report rendering of the
// record.
func (r Result) Output() string {
	if r.Status == StatusSuccess && r.Result != nil {
		return *r.Result
	}
	msg := "Unknown error"
	if r.Error != nil {
		msg = *r.Error
	}
	return "Error: " + msg
}

// Generator issues one generation request for a file's content.
// *ollama.Client satisfies this.
type Generator interface {
	Generate(ctx context.Context, content string, tmpl prompt.Template) ollama.Generation
}

// Config configures a Pipeline.
type Config struct {
	// Generator handles the per-file generate call. Required.
	Generator Generator
	// Template is the active prompt template.
	Template prompt.Template
	// Logger receives per-file progress. Nil discards.
	Logger *log.Logger
	// Collector records per-file counters. Nil-safe.
	Collector *metrics.Collector
	// Progress enables a stderr progress bar across the batch.
	Progress bool
}

// Pipeline processes files strictly sequentially, one blocking request
// in flight at a time.
type Pipeline struct {
	config Config
	logger *log.Logger
}

// New creates a Pipeline from config.
func New(config Config) *Pipeline {
	logger := config.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{config: config, logger: logger}
}

// Run processes files in input order and returns one Result per file,
// in the same order. A file that cannot be read fails its own record
// and the batch continues. Cancelling ctx stops the batch between
// files; records for the remaining files are not produced.
func (p *Pipeline) Run(ctx context.Context, files []string) []Result {
	results := make([]Result, 0, len(files))
	bar := p.newProcessBar(len(files))

	for _, file := range files {
		if ctx.Err() != nil {
			p.logger.Warn("processing interrupted", map[string]any{
				"processed": len(results),
				"remaining": len(files) - len(results),
			})
			break
		}

		p.logger.Info("processing file", map[string]any{"path": file})
		result := p.processFile(ctx, file)

		p.config.Collector.IncProcessed()
		switch result.Status {
		case StatusSuccess:
			p.config.Collector.IncSucceeded()
		case StatusError:
			p.config.Collector.IncFailed()
		}

		results = append(results, result)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		iox.DiscardErr(bar.Finish)
	}

	return results
}

func (p *Pipeline) processFile(ctx context.Context, file string) Result {
	content, err := os.ReadFile(file)
	if err != nil {
		p.logger.Warn("file read failed", map[string]any{
			"path":  file,
			"error": err.Error(),
		})
		msg := err.Error()
		return Result{File: file, Status: StatusError, Error: &msg}
	}
	p.config.Collector.AddBytesRead(int64(len(content)))

	gen := p.config.Generator.Generate(ctx, string(content), p.config.Template)
	if gen.Failed() {
		p.config.Collector.IncGenerationError()
		p.logger.Warn("generation failed", map[string]any{
			"path":  file,
			"error": gen.Err.Error(),
		})
	}

	text := gen.Output()
	return Result{File: file, Status: StatusSuccess, Result: &text}
}

// newProcessBar builds the stderr progress bar for the batch. Returns
// nil when progress display is disabled.
func (p *Pipeline) newProcessBar(total int) *progressbar.ProgressBar {
	if !p.config.Progress {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("processing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

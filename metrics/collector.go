// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single run. It is a leaf
// package with no internal dependencies. Counters feed the completion
// summary and the run completion event; nothing is exported live.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all run metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Collection
	FilesCollected int64
	Downloads      int64

	// Processing
	FilesProcessed   int64
	Succeeded        int64
	Failed           int64
	GenerationErrors int64
	BytesRead        int64

	// Dimensions (informational, set at construction)
	SourceKind string
	Model      string
	RunID      string
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	filesCollected   int64
	downloads        int64
	filesProcessed   int64
	succeeded        int64
	failed           int64
	generationErrors int64
	bytesRead        int64

	sourceKind string
	model      string
	runID      string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(sourceKind, model, runID string) *Collector {
	return &Collector{
		sourceKind: sourceKind,
		model:      model,
		runID:      runID,
	}
}

// SetFilesCollected records the size of the collected file list.
func (c *Collector) SetFilesCollected(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.filesCollected = n
	c.mu.Unlock()
}

// IncDownload records one remote object downloaded during collection.
func (c *Collector) IncDownload() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.downloads++
	c.mu.Unlock()
}

// IncProcessed records one file consumed by the pipeline.
func (c *Collector) IncProcessed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.filesProcessed++
	c.mu.Unlock()
}

// IncSucceeded records one file that produced a result.
func (c *Collector) IncSucceeded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.succeeded++
	c.mu.Unlock()
}

// IncFailed records one file whose read or decode failed.
func (c *Collector) IncFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.failed++
	c.mu.Unlock()
}

// IncGenerationError records a generation request that returned an error
// payload. The file still counts as succeeded; the counter tracks model
// availability separately from file failures.
func (c *Collector) IncGenerationError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.generationErrors++
	c.mu.Unlock()
}

// AddBytesRead records bytes read from a collected file.
func (c *Collector) AddBytesRead(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.bytesRead += n
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		FilesCollected:   c.filesCollected,
		Downloads:        c.downloads,
		FilesProcessed:   c.filesProcessed,
		Succeeded:        c.succeeded,
		Failed:           c.failed,
		GenerationErrors: c.generationErrors,
		BytesRead:        c.bytesRead,

		SourceKind: c.sourceKind,
		Model:      c.model,
		RunID:      c.runID,
	}
}

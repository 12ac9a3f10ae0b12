// Package search implements the traversal engine: it walks directory trees,
// applies the filter chain to every entry, and emits a lazy stream of
// results. It also owns the per-command SearchContext with its telemetry
// counters and the buffering/sorting result pipeline.
package search

import (
	"context"
	"fmt"
	"io"
	"time"
)

// TerminationReason records why a command stopped before exhausting its
// traversal.
type TerminationReason int

const (
	// TerminationNone means the traversal ran to completion.
	TerminationNone TerminationReason = iota
	// TerminationMaxReached means the matching-file cap was hit; this is a
	// success.
	TerminationMaxReached
	// TerminationCanceled means the cancellation signal fired.
	TerminationCanceled
)

// Telemetry aggregates the monotonic counters reported in the end-of-command
// summary. Counters are only mutated from the command's foreground
// goroutine.
type Telemetry struct {
	SearchedDirectoryCount int
	FileCount              int
	DirectoryCount         int
	MatchingFileCount      int
	MatchingDirectoryCount int
	AddedCount             int
	UpdatedCount           int
	RenamedCount           int
	DeletedCount           int
	ErrorCount             int
	MaxFileSize            int64
	TotalSize              int64
	Elapsed                time.Duration
}

// MatchingCount is the combined number of matched files and directories.
func (t *Telemetry) MatchingCount() int {
	return t.MatchingFileCount + t.MatchingDirectoryCount
}

// SummaryLines renders the telemetry for --include-summary.
func (t *Telemetry) SummaryLines() []string {
	lines := []string{
		fmt.Sprintf("Searched directories: %d", t.SearchedDirectoryCount),
		fmt.Sprintf("Files: %d  Directories: %d", t.FileCount, t.DirectoryCount),
		fmt.Sprintf("Matching files: %d  Matching directories: %d", t.MatchingFileCount, t.MatchingDirectoryCount),
	}
	if t.AddedCount+t.UpdatedCount+t.RenamedCount+t.DeletedCount > 0 {
		lines = append(lines, fmt.Sprintf("Added: %d  Updated: %d  Renamed: %d  Deleted: %d",
			t.AddedCount, t.UpdatedCount, t.RenamedCount, t.DeletedCount))
	}
	if t.ErrorCount > 0 {
		lines = append(lines, fmt.Sprintf("Errors: %d", t.ErrorCount))
	}
	lines = append(lines, fmt.Sprintf("Elapsed: %s", t.Elapsed.Round(time.Millisecond)))
	return lines
}

// ProgressReporter receives live traversal progress.
type ProgressReporter interface {
	// Report is called when the walker enters a directory.
	Report(path string)
	// Done is called once when the traversal finishes, so a transient
	// progress line can be cleared.
	Done()
}

// NoProgress discards progress reports.
type NoProgress struct{}

func (NoProgress) Report(string) {}
func (NoProgress) Done()         {}

// LineProgress writes a transient carriage-return progress line; intended
// for TTY output only.
type LineProgress struct {
	W io.Writer

	lastLen int
}

func (p *LineProgress) Report(path string) {
	if p.W == nil {
		return
	}
	line := "Searching " + path
	pad := p.lastLen - len(line)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(p.W, "\r%s%*s", line, pad, "")
	p.lastLen = len(line)
}

func (p *LineProgress) Done() {
	if p.W == nil || p.lastLen == 0 {
		return
	}
	fmt.Fprintf(p.W, "\r%*s\r", p.lastLen, "")
	p.lastLen = 0
}

// Context carries the shared state of one command invocation: telemetry, the
// progress reporter, the cancellation signal, the matching-file cap and the
// termination reason.
type Context struct {
	Ctx         context.Context
	Telemetry   Telemetry
	Progress    ProgressReporter
	Termination TerminationReason
	// MaxMatchingFiles caps the combined matching count; zero is unlimited.
	MaxMatchingFiles int

	start time.Time
}

// NewContext creates a Context bound to ctx.
func NewContext(ctx context.Context) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		Ctx:      ctx,
		Progress: NoProgress{},
		start:    time.Now(),
	}
}

// Canceled polls the cancellation signal; on the first trigger it records
// TerminationCanceled.
func (c *Context) Canceled() bool {
	if c.Termination == TerminationCanceled {
		return true
	}
	if c.Ctx.Err() != nil {
		c.Termination = TerminationCanceled
		return true
	}
	return false
}

// RecordMatch updates the matching counters and size accumulators for an
// emitted result and reports whether the matching-file cap has been reached.
func (c *Context) RecordMatch(isDir bool, size int64) bool {
	if isDir {
		c.Telemetry.MatchingDirectoryCount++
	} else {
		c.Telemetry.MatchingFileCount++
		c.Telemetry.TotalSize += size
		if size > c.Telemetry.MaxFileSize {
			c.Telemetry.MaxFileSize = size
		}
	}
	if c.MaxMatchingFiles > 0 && c.Telemetry.MatchingCount() >= c.MaxMatchingFiles {
		c.Termination = TerminationMaxReached
		return true
	}
	return false
}

// Finish stamps the elapsed time and clears any transient progress line.
func (c *Context) Finish() {
	c.Telemetry.Elapsed = time.Since(c.start)
	c.Progress.Done()
}

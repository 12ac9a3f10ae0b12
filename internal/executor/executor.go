// Package executor implements the per-match actions behind each verb: the
// find/match sinks, replace, rename, delete, copy and move. Every executor
// consumes search results one at a time, honours dry-run, and feeds the
// telemetry counters that end up in the summary.
package executor

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/harrison/orang/internal/content"
	"github.com/harrison/orang/internal/fileutil"
	"github.com/harrison/orang/internal/filter"
	"github.com/harrison/orang/internal/logger"
	"github.com/harrison/orang/internal/search"
)

// Consumer is the per-match action of a command. Returned errors are
// per-path: the command loop logs them and continues.
type Consumer interface {
	Consume(sc *search.Context, r *search.SearchResult, widths search.ColumnWidths) error
}

// Finder writes each matched path, optionally with property columns. It
// performs no filesystem mutation.
type Finder struct {
	Log           logger.Logger
	Columns       search.Columns
	Sizes         *search.DirectorySizeMap
	AbsolutePaths bool
}

func (f *Finder) Consume(_ *search.Context, r *search.SearchResult, widths search.ColumnWidths) error {
	path := f.displayPath(r)
	line := path
	if f.Columns != 0 {
		line = runewidth.FillRight(path, widths.Path)
		if f.Columns&search.ColumnSize != 0 {
			size := fileutil.FormatSize(r.Size(f.sizes()))
			line += "  " + fmt.Sprintf("%*s", widths.Size, size)
		}
		if f.Columns&search.ColumnModifiedTime != 0 {
			line += "  " + r.Match.Info.ModTime().Format("2006-01-02 15:04:05")
		}
		if f.Columns&search.ColumnCreationTime != 0 {
			line += "  " + r.Match.Info.ModTime().Format("2006-01-02 15:04:05")
		}
		line = strings.TrimRight(line, " ")
	}
	f.Log.Result(line)
	return nil
}

func (f *Finder) displayPath(r *search.SearchResult) string {
	if f.AbsolutePaths {
		return r.Match.Path
	}
	return r.RelativePath()
}

func (f *Finder) sizes() *search.DirectorySizeMap {
	if f.Sizes == nil {
		f.Sizes = search.NewDirectorySizeMap()
	}
	return f.Sizes
}

// Matcher writes every content match of a file, one region per line,
// prefixed with the path. It backs the match verb.
type Matcher struct {
	Log    logger.Logger
	Filter *filter.Filter
	// NoHighlight suppresses the colour decoration of matched regions.
	NoHighlight bool
}

func (m *Matcher) Consume(_ *search.Context, r *search.SearchResult, _ search.ColumnWidths) error {
	if r.Match.IsDirectory {
		return nil
	}
	matches := content.Matches(m.Filter, r.Match.Text)
	if len(matches) == 0 && r.Match.ContentMatch != nil {
		matches = []filter.Match{*r.Match.ContentMatch}
	}
	rel := r.RelativePath()
	for _, match := range matches {
		value := match.Value
		if !m.NoHighlight {
			value = m.Log.Highlight(value)
		}
		m.Log.Result(fmt.Sprintf("%s: %s", rel, value))
	}
	return nil
}

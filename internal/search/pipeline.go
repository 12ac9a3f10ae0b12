package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/harrison/orang/internal/fileutil"
)

// SortField identifies a result property results can be ordered by.
type SortField int

const (
	SortByName SortField = iota
	SortByCreationTime
	SortByModifiedTime
	SortBySize
	SortByMatch
	SortByLength
)

// SortDescriptor is one element of the ordered sort specification.
type SortDescriptor struct {
	Field      SortField
	Descending bool
}

var sortFieldNames = map[string]SortField{
	"name":          SortByName,
	"n":             SortByName,
	"creation-time": SortByCreationTime,
	"c":             SortByCreationTime,
	"modified-time": SortByModifiedTime,
	"m":             SortByModifiedTime,
	"size":          SortBySize,
	"s":             SortBySize,
	"match":         SortByMatch,
	"length":        SortByLength,
	"l":             SortByLength,
}

// ParseSortDescriptors parses the --sort flag: a comma-separated list of
// fields, each optionally suffixed with "-descending" (or "-desc").
func ParseSortDescriptors(s string) ([]SortDescriptor, error) {
	var descriptors []SortDescriptor
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		var desc bool
		for _, suffix := range []string{"-descending", "-desc"} {
			if strings.HasSuffix(part, suffix) {
				part = strings.TrimSuffix(part, suffix)
				desc = true
				break
			}
		}
		field, ok := sortFieldNames[part]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q", part)
		}
		descriptors = append(descriptors, SortDescriptor{Field: field, Descending: desc})
	}
	return descriptors, nil
}

// Columns is the set of file-property columns requested for display.
// Requesting any column forces result buffering so widths can be computed.
type Columns uint8

const (
	ColumnSize Columns = 1 << iota
	ColumnModifiedTime
	ColumnCreationTime
)

// ParseColumns parses the column part of --display.
func ParseColumns(s string) (Columns, error) {
	var cols Columns
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
		case "size", "s":
			cols |= ColumnSize
		case "modified-time", "m":
			cols |= ColumnModifiedTime
		case "creation-time", "c":
			cols |= ColumnCreationTime
		default:
			return 0, fmt.Errorf("unknown display column %q", part)
		}
	}
	return cols, nil
}

// ColumnWidths carries the computed alignment widths handed to the emitter.
type ColumnWidths struct {
	Path int
	Size int
}

// Pipeline buffers, orders and caps results before emission. With no sort
// descriptors and no property columns results stream straight through and
// the pipeline is bypassed entirely.
type Pipeline struct {
	Sort     []SortDescriptor
	Columns  Columns
	MaxCount int
	Sizes    *DirectorySizeMap

	buffer []*SearchResult
}

// NeedsBuffer reports whether results must be collected before emission.
func (p *Pipeline) NeedsBuffer() bool {
	return len(p.Sort) > 0 || p.Columns != 0
}

// Add appends a result to the buffer.
func (p *Pipeline) Add(r *SearchResult) {
	p.buffer = append(p.buffer, r)
}

// Len returns the number of buffered results.
func (p *Pipeline) Len() int { return len(p.buffer) }

// Flush sorts the buffered results by the declared descriptors, caps them to
// MaxCount, computes column widths and emits them in order. Ties keep their
// traversal order.
func (p *Pipeline) Flush(emit func(*SearchResult, ColumnWidths) error) error {
	results := p.buffer
	if len(p.Sort) > 0 {
		sort.SliceStable(results, func(i, j int) bool {
			return p.less(results[i], results[j])
		})
	}
	if p.MaxCount > 0 && len(results) > p.MaxCount {
		results = results[:p.MaxCount]
	}

	widths := p.widths(results)
	for _, r := range results {
		if err := emit(r, widths); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) widths(results []*SearchResult) ColumnWidths {
	var w ColumnWidths
	for _, r := range results {
		if pw := runewidth.StringWidth(r.RelativePath()); pw > w.Path {
			w.Path = pw
		}
		if p.Columns&ColumnSize != 0 {
			if sw := len(fileutil.FormatSize(r.Size(p.sizes()))); sw > w.Size {
				w.Size = sw
			}
		}
	}
	return w
}

func (p *Pipeline) sizes() *DirectorySizeMap {
	if p.Sizes == nil {
		p.Sizes = NewDirectorySizeMap()
	}
	return p.Sizes
}

func (p *Pipeline) less(a, b *SearchResult) bool {
	for _, d := range p.Sort {
		cmp := compareBy(d.Field, a, b, p.sizes())
		if cmp == 0 {
			continue
		}
		if d.Descending {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

func compareBy(field SortField, a, b *SearchResult, sizes *DirectorySizeMap) int {
	switch field {
	case SortByCreationTime, SortByModifiedTime:
		ta, tb := a.Match.Info.ModTime(), b.Match.Info.ModTime()
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		}
		return 0
	case SortBySize:
		return compareInt64(a.Size(sizes), b.Size(sizes))
	case SortByMatch:
		return strings.Compare(primaryMatchValue(a.Match), primaryMatchValue(b.Match))
	case SortByLength:
		return compareInt64(int64(len(a.Match.Path)), int64(len(b.Match.Path)))
	default:
		return strings.Compare(a.Match.Path, b.Match.Path)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// primaryMatchValue is the matched text used for match-ordered sorts:
// content match first, then name, then extension.
func primaryMatchValue(m *FileMatch) string {
	switch {
	case m.ContentMatch != nil:
		return m.ContentMatch.Value
	case m.NameMatch != nil:
		return m.NameMatch.Value
	case m.ExtensionMatch != nil:
		return m.ExtensionMatch.Value
	default:
		return ""
	}
}

package filter

import (
	"fmt"
	"os"
	"time"
)

// EmptyOption restricts candidates by emptiness: a file with zero length, or
// a directory with no entries.
type EmptyOption int

const (
	EmptyAny EmptyOption = iota
	EmptyOnly
	NonEmptyOnly
)

// ParseEmptyOption parses the --empty flag value.
func ParseEmptyOption(s string) (EmptyOption, error) {
	switch s {
	case "", "any":
		return EmptyAny, nil
	case "empty", "e":
		return EmptyOnly, nil
	case "non-empty", "ne":
		return NonEmptyOnly, nil
	default:
		return EmptyAny, fmt.Errorf("unknown empty option %q (expected any, empty or non-empty)", s)
	}
}

// ContentReader loads and decodes the text of a file. It is supplied by the
// content engine so the filter package stays free of encoding concerns.
type ContentReader func(path string) (string, error)

// Acceptance is the evidence produced when a candidate passes every
// sub-filter: the individual matches plus, for content searches, the decoded
// text and the primary content match.
type Acceptance struct {
	NameMatch      *Match
	ExtensionMatch *Match
	Text           string
	ContentMatch   *Match
}

// FileSystemFilter combines the optional sub-filters of a search. A candidate
// passes only if every present sub-filter passes.
type FileSystemFilter struct {
	Name             *Filter
	Extension        *Filter
	Content          *Filter
	Attributes       Attributes
	AttributesToSkip Attributes
	Empty            EmptyOption
	Properties       FilePropertyFilter
}

// Accept evaluates the filter chain for one candidate, short-circuiting on
// the first failure. Checks run in a fixed order: attribute require,
// attribute skip, name, extension, property predicates, empty option and
// finally (files only) the content filter, which is the sole step that reads
// file bytes. A read error is returned to the caller for logging; it never
// aborts the traversal.
func (f *FileSystemFilter) Accept(path string, name string, info os.FileInfo, read ContentReader) (*Acceptance, error) {
	attrs := AttributesOf(name, info)
	if f.Attributes != 0 && !attrs.Has(f.Attributes) {
		return nil, nil
	}
	if f.AttributesToSkip != 0 && attrs.Intersects(f.AttributesToSkip) {
		return nil, nil
	}

	acc := &Acceptance{}
	if f.Name != nil {
		m, ok := f.Name.EvaluatePath(path, info.IsDir())
		if !ok {
			return nil, nil
		}
		acc.NameMatch = &m
	}
	if f.Extension != nil {
		m, ok := f.Extension.Evaluate(PartExtension.Slice(path, info.IsDir()))
		if !ok {
			return nil, nil
		}
		acc.ExtensionMatch = &m
	}

	p := f.Properties
	if p.CreationTime != nil && !p.CreationTime.Match(creationTime(info)) {
		return nil, nil
	}
	if p.ModifiedTime != nil && !p.ModifiedTime.Match(info.ModTime()) {
		return nil, nil
	}
	if p.Size != nil {
		if info.IsDir() {
			return nil, nil
		}
		if !p.Size.Match(info.Size()) {
			return nil, nil
		}
	}

	if f.Empty != EmptyAny {
		empty, err := isEmpty(path, info)
		if err != nil {
			return nil, err
		}
		if empty != (f.Empty == EmptyOnly) {
			return nil, nil
		}
	}

	if f.Content != nil {
		// Directories carry no content; a content search never matches them.
		if info.IsDir() {
			return nil, nil
		}
		text, err := read(path)
		if err != nil {
			return nil, err
		}
		m, ok := f.Content.Evaluate(text)
		if !ok {
			return nil, nil
		}
		acc.Text = text
		acc.ContentMatch = &m
	}

	return acc, nil
}

// isEmpty reports whether a file has zero length or a directory no entries.
func isEmpty(path string, info os.FileInfo) (bool, error) {
	if !info.IsDir() {
		return info.Size() == 0, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// creationTime returns the platform creation time of a file. On platforms
// where birth time is not exposed through os.FileInfo the modification time
// is the closest observable lower bound.
func creationTime(info os.FileInfo) time.Time {
	return info.ModTime()
}

// Package filter provides the composable predicates that drive searching:
// regex name/extension/content filters, numeric and time property predicates,
// attribute masks, and the FileSystemFilter that combines them.
//
// Filters are immutable after construction and safe for concurrent use.
package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// NamePart selects the slice of a path a name filter is evaluated against.
type NamePart int

const (
	// PartName matches against the base name including extension.
	PartName NamePart = iota
	// PartNameWithoutExtension matches against the base name with the
	// extension removed.
	PartNameWithoutExtension
	// PartExtension matches against the extension without the leading dot.
	PartExtension
	// PartFullName matches against the whole path.
	PartFullName
)

// ParseNamePart parses a name-part keyword as accepted on the command line.
func ParseNamePart(s string) (NamePart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name", "n":
		return PartName, nil
	case "name-without-extension", "w":
		return PartNameWithoutExtension, nil
	case "extension", "e":
		return PartExtension, nil
	case "full-name", "f":
		return PartFullName, nil
	default:
		return PartName, fmt.Errorf("unknown name part %q (expected name, name-without-extension, extension or full-name)", s)
	}
}

// Slice extracts the part of path this NamePart refers to.
// Directories have no extension; PartExtension returns "" for them.
func (p NamePart) Slice(path string, isDir bool) string {
	name := filepath.Base(path)
	switch p {
	case PartNameWithoutExtension:
		if isDir {
			return name
		}
		return strings.TrimSuffix(name, filepath.Ext(name))
	case PartExtension:
		if isDir {
			return ""
		}
		return strings.TrimPrefix(filepath.Ext(name), ".")
	case PartFullName:
		return path
	default:
		return name
	}
}

// PatternOptions configure how a pattern string is compiled.
// The regex-level toggles are folded into the pattern as inline flags.
type PatternOptions struct {
	IgnoreCase bool
	Multiline  bool
	Singleline bool
	// Negate inverts the filter result.
	Negate bool
	// GroupName selects a named capture group whose value becomes the match.
	GroupName string
	// Part selects which slice of the path name filters look at.
	Part NamePart
	// WholeWord wraps the pattern in \b anchors.
	WholeWord bool
	// Literal escapes the pattern before compiling.
	Literal bool
}

// Match is a single regex match inside an input string.
type Match struct {
	// Value is the matched text (possibly empty).
	Value string
	// Index is the byte offset of the match inside the evaluated input.
	Index int
	// Negated is set when the match is synthetic, produced because a
	// negated filter did not find the pattern.
	Negated bool
}

// End returns the byte offset one past the matched text.
func (m Match) End() int { return m.Index + len(m.Value) }

// Filter is a compiled regular expression with evaluation options.
type Filter struct {
	re         *regexp.Regexp
	groupIndex int // -1 means whole match
	negate     bool
	part       NamePart
}

// New compiles pattern with the given options.
// An unknown group name or an invalid pattern is a fatal error.
func New(pattern string, opts PatternOptions) (*Filter, error) {
	if opts.Literal {
		pattern = regexp.QuoteMeta(pattern)
	}
	if opts.WholeWord {
		pattern = `\b(?:` + pattern + `)\b`
	}
	var flags string
	if opts.IgnoreCase {
		flags += "i"
	}
	if opts.Multiline {
		flags += "m"
	}
	if opts.Singleline {
		flags += "s"
	}
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	groupIndex := -1
	if opts.GroupName != "" {
		for i, name := range re.SubexpNames() {
			if name == opts.GroupName {
				groupIndex = i
				break
			}
		}
		if groupIndex < 0 {
			return nil, fmt.Errorf("pattern has no group named %q", opts.GroupName)
		}
	}
	return &Filter{
		re:         re,
		groupIndex: groupIndex,
		negate:     opts.Negate,
		part:       opts.Part,
	}, nil
}

// MustNew is New for statically known patterns; it panics on error.
func MustNew(pattern string, opts PatternOptions) *Filter {
	f, err := New(pattern, opts)
	if err != nil {
		panic(err)
	}
	return f
}

// Regexp exposes the compiled expression for content enumeration.
func (f *Filter) Regexp() *regexp.Regexp { return f.re }

// GroupIndex returns the selected group index, or -1 for the whole match.
func (f *Filter) GroupIndex() int { return f.groupIndex }

// Negated reports whether the filter inverts its result.
func (f *Filter) Negated() bool { return f.negate }

// Part returns the name part the filter is scoped to.
func (f *Filter) Part() NamePart { return f.part }

// Evaluate runs the filter against input.
//
// Without negation it returns the first match (the selected group when a
// group name was configured; a group that did not participate counts as no
// match). With negation the result is inverted, and a successful negated
// evaluation yields a synthetic empty match so callers can tell "passed by
// negation" from "not evaluated".
func (f *Filter) Evaluate(input string) (Match, bool) {
	m, ok := f.find(input)
	if f.negate {
		if ok {
			return Match{}, false
		}
		return Match{Negated: true}, true
	}
	return m, ok
}

func (f *Filter) find(input string) (Match, bool) {
	if f.groupIndex < 0 {
		loc := f.re.FindStringIndex(input)
		if loc == nil {
			return Match{}, false
		}
		return Match{Value: input[loc[0]:loc[1]], Index: loc[0]}, true
	}
	loc := f.re.FindStringSubmatchIndex(input)
	if loc == nil {
		return Match{}, false
	}
	start, end := loc[2*f.groupIndex], loc[2*f.groupIndex+1]
	if start < 0 {
		// The group did not participate in the match.
		return Match{}, false
	}
	return Match{Value: input[start:end], Index: start}, true
}

// EvaluatePath evaluates the filter against the configured name part of path.
func (f *Filter) EvaluatePath(path string, isDir bool) (Match, bool) {
	return f.Evaluate(f.part.Slice(path, isDir))
}

package content

import (
	"os"

	"golang.org/x/text/encoding"

	"github.com/harrison/orang/internal/filelock"
	"github.com/harrison/orang/internal/filter"
)

// Engine loads file text with a configured default encoding and applies
// content mutations. It is stateless apart from that default and safe to
// share across a command.
type Engine struct {
	defaultEncoding encoding.Encoding
}

// NewEngine creates an Engine. A nil defaultEncoding means plain UTF-8 with
// BOM detection.
func NewEngine(defaultEncoding encoding.Encoding) *Engine {
	return &Engine{defaultEncoding: defaultEncoding}
}

// ReadText decodes a file for filtering; it satisfies filter.ContentReader.
func (e *Engine) ReadText(path string) (string, error) {
	t, err := ReadText(path, e.defaultEncoding)
	if err != nil {
		return "", err
	}
	return t.Content, nil
}

// Matches enumerates every match of f in text, honouring the filter's group
// selection. Matches where the selected group did not participate are
// dropped. A negated content filter yields no enumerable regions.
func Matches(f *filter.Filter, text string) []filter.Match {
	if f.Negated() {
		return nil
	}
	locs := f.Regexp().FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return nil
	}
	group := f.GroupIndex()
	if group < 0 {
		group = 0
	}
	matches := make([]filter.Match, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[2*group], loc[2*group+1]
		if start < 0 {
			continue
		}
		matches = append(matches, filter.Match{Value: text[start:end], Index: start})
	}
	return matches
}

// Replacement describes how matched regions are rewritten: either a template
// with $1/${name} references, or an evaluator function that maps each match
// to its replacement text. The evaluator wins when both are set.
type Replacement struct {
	Template  string
	Evaluator func(filter.Match) string
}

// ReplaceText rewrites every match of f in text left to right without
// overlap and returns the new text with the number of replacements. For
// group-scoped filters only the selected group's region is rewritten.
func ReplaceText(f *filter.Filter, text string, r Replacement) (string, int) {
	re := f.Regexp()
	locs := re.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return text, 0
	}
	group := f.GroupIndex()
	if group < 0 {
		group = 0
	}

	var out []byte
	last := 0
	count := 0
	for _, loc := range locs {
		start, end := loc[2*group], loc[2*group+1]
		if start < 0 || start < last {
			continue
		}
		out = append(out, text[last:start]...)
		if r.Evaluator != nil {
			out = append(out, r.Evaluator(filter.Match{Value: text[start:end], Index: start})...)
		} else {
			out = re.ExpandString(out, r.Template, text, loc)
		}
		last = end
		count++
	}
	out = append(out, text[last:]...)
	return string(out), count
}

// ReplaceResult reports what ReplaceInFile did (or would do, on a dry run).
type ReplaceResult struct {
	// Count is the number of replaced regions.
	Count int
	// Changed is true when the rewritten text differs from the original.
	Changed bool
	// NewText is the rewritten content.
	NewText string
}

// ReplaceInFile applies the replacement to a file's content. Unless dryRun is
// set, a changed buffer is re-encoded into the file's original encoding and
// written atomically, preserving mode and times. A file whose text the
// replacement leaves unchanged is not rewritten.
func (e *Engine) ReplaceInFile(path string, f *filter.Filter, r Replacement, dryRun bool) (ReplaceResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReplaceResult{}, err
	}
	text, err := DecodeBytes(path, data, e.defaultEncoding)
	if err != nil {
		return ReplaceResult{}, err
	}

	newText, count := ReplaceText(f, text.Content, r)
	res := ReplaceResult{Count: count, Changed: newText != text.Content, NewText: newText}
	if dryRun || !res.Changed {
		return res, nil
	}

	encoded, err := text.Encode(newText)
	if err != nil {
		return ReplaceResult{}, &EncodingError{Path: path, Cause: err}
	}
	if err := filelock.AtomicWrite(path, encoded); err != nil {
		return ReplaceResult{}, err
	}
	return res, nil
}

// Package patterns provides the regex syntax reference behind the
// list-patterns verb. The reference ships as an embedded Markdown document
// that is parsed into categorized entries for terminal display.
package patterns

import (
	"bytes"
	_ "embed"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

//go:embed reference.md
var referenceSource []byte

// Entry is one syntax element of the reference.
type Entry struct {
	Category    string
	Syntax      string
	Description string
}

// Library is the parsed pattern reference.
type Library struct {
	entries []Entry
}

// Load parses the embedded reference document. Each level-2 heading starts a
// category; list items pairing a code span with a trailing description become
// entries.
func Load() (*Library, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(referenceSource))

	lib := &Library{}
	var category string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 2 {
				category = extractText(node, referenceSource)
			}
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			syntax, description := splitItem(node, referenceSource)
			if syntax == "" {
				return ast.WalkContinue, nil
			}
			lib.entries = append(lib.entries, Entry{
				Category:    category,
				Syntax:      syntax,
				Description: description,
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// All returns every entry in document order.
func (l *Library) All() []Entry {
	return l.entries
}

// Search returns entries whose syntax or description contains the filter,
// case-insensitively. An empty filter returns everything.
func (l *Library) Search(filter string) []Entry {
	if filter == "" {
		return l.entries
	}
	filter = strings.ToLower(filter)
	var matched []Entry
	for _, e := range l.entries {
		if strings.Contains(strings.ToLower(e.Syntax), filter) ||
			strings.Contains(strings.ToLower(e.Description), filter) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Categories returns the distinct categories in document order.
func (l *Library) Categories() []string {
	var categories []string
	seen := map[string]bool{}
	for _, e := range l.entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			categories = append(categories, e.Category)
		}
	}
	return categories
}

// splitItem pulls the code span and the trailing text out of one list item.
func splitItem(item ast.Node, source []byte) (string, string) {
	var syntax string
	var desc bytes.Buffer
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *ast.TextBlock, *ast.Paragraph:
		default:
			continue
		}
		for c := child.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.CodeSpan:
				if syntax == "" {
					syntax = extractText(node, source)
				}
			case *ast.Text:
				desc.Write(node.Segment.Value(source))
			}
		}
	}
	description := strings.TrimSpace(desc.String())
	description = strings.TrimPrefix(description, "—")
	description = strings.TrimPrefix(description, "-")
	return syntax, strings.TrimSpace(description)
}

func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}

package filter

import (
	"fmt"
	"os"
	"strings"
)

// Attributes is a bitmask of file-system attributes a search can require or
// skip. The set is the portable subset: hidden means a dot-prefixed name,
// read-only means no owner write bit.
type Attributes uint16

const (
	AttrDirectory Attributes = 1 << iota
	AttrFile
	AttrSymlink
	AttrHidden
	AttrReadOnly
	AttrEmpty
)

var attributeNames = map[string]Attributes{
	"directory": AttrDirectory,
	"d":         AttrDirectory,
	"file":      AttrFile,
	"f":         AttrFile,
	"symlink":   AttrSymlink,
	"l":         AttrSymlink,
	"hidden":    AttrHidden,
	"h":         AttrHidden,
	"read-only": AttrReadOnly,
	"r":         AttrReadOnly,
	"empty":     AttrEmpty,
	"e":         AttrEmpty,
}

// ParseAttributes parses a comma-separated attribute list.
func ParseAttributes(s string) (Attributes, error) {
	var attrs Attributes
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		a, ok := attributeNames[part]
		if !ok {
			return 0, fmt.Errorf("unknown attribute %q", part)
		}
		attrs |= a
	}
	return attrs, nil
}

// String renders the mask as a comma-separated list in a stable order.
func (a Attributes) String() string {
	ordered := []struct {
		attr Attributes
		name string
	}{
		{AttrDirectory, "directory"},
		{AttrFile, "file"},
		{AttrSymlink, "symlink"},
		{AttrHidden, "hidden"},
		{AttrReadOnly, "read-only"},
		{AttrEmpty, "empty"},
	}
	var names []string
	for _, o := range ordered {
		if a&o.attr != 0 {
			names = append(names, o.name)
		}
	}
	return strings.Join(names, ",")
}

// Has reports whether every bit of want is set.
func (a Attributes) Has(want Attributes) bool { return a&want == want }

// Intersects reports whether any bit of other is set.
func (a Attributes) Intersects(other Attributes) bool { return a&other != 0 }

// AttributesOf derives the attribute mask for a stat result.
// The empty bit is only set for zero-length files; empty directories are
// handled by the EmptyOption check, which may need to list the directory.
func AttributesOf(name string, info os.FileInfo) Attributes {
	var attrs Attributes
	if info.IsDir() {
		attrs |= AttrDirectory
	} else {
		attrs |= AttrFile
	}
	if info.Mode()&os.ModeSymlink != 0 {
		attrs &^= AttrFile
		attrs |= AttrSymlink
	}
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		attrs |= AttrHidden
	}
	if info.Mode().Perm()&0o200 == 0 {
		attrs |= AttrReadOnly
	}
	if !info.IsDir() && info.Size() == 0 {
		attrs |= AttrEmpty
	}
	return attrs
}

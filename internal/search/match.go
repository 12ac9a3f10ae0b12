package search

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/harrison/orang/internal/filter"
)

// FileMatch is the record produced for each path that passed filtering. For
// content searches on files it also carries the decoded text and the primary
// content match; directory matches never do.
type FileMatch struct {
	Path        string
	IsDirectory bool
	Info        os.FileInfo

	NameMatch          *filter.Match
	ExtensionMatch     *filter.Match
	DirectoryNameMatch *filter.Match

	Text         string
	ContentMatch *filter.Match
}

// Name returns the base name of the matched path.
func (m *FileMatch) Name() string { return filepath.Base(m.Path) }

// SearchResult wraps a FileMatch with the base directory it was discovered
// under, used to render relative paths.
type SearchResult struct {
	Match         *FileMatch
	BaseDirectory string
}

// RelativePath renders the match's path relative to its base directory,
// falling back to the match's own path when no relative path can be computed.
func (r *SearchResult) RelativePath() string {
	if r.BaseDirectory == "" {
		return r.Match.Path
	}
	rel, err := filepath.Rel(r.BaseDirectory, r.Match.Path)
	if err != nil {
		return r.Match.Path
	}
	return rel
}

// Size returns the result's size in bytes. For directories the subtree size
// is computed once and cached in sizes.
func (r *SearchResult) Size(sizes *DirectorySizeMap) int64 {
	if !r.Match.IsDirectory {
		return r.Match.Info.Size()
	}
	return sizes.Size(r.Match.Path)
}

// DirectorySizeMap caches recursive directory sizes for the result pipeline,
// so a directory observed several times is only walked once.
type DirectorySizeMap struct {
	sizes map[string]int64
}

// NewDirectorySizeMap creates an empty cache.
func NewDirectorySizeMap() *DirectorySizeMap {
	return &DirectorySizeMap{sizes: make(map[string]int64)}
}

// Size returns the total size of all regular files under path, computing and
// caching it on first observation. Unreadable children count as zero.
func (m *DirectorySizeMap) Size(path string) int64 {
	if size, ok := m.sizes[path]; ok {
		return size
	}
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	m.sizes[path] = size
	return size
}

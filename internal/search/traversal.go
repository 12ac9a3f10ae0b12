package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/orang/internal/filter"
)

// Target selects which entry kinds a search emits.
type Target int

const (
	TargetFiles Target = iota
	TargetDirectories
	TargetAll
)

// ParseTarget parses a search-target keyword.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "files", "f":
		return TargetFiles, nil
	case "directories", "d":
		return TargetDirectories, nil
	case "all", "a":
		return TargetAll, nil
	default:
		return TargetFiles, fmt.Errorf("unknown search target %q (expected files, directories or all)", s)
	}
}

// Includes reports whether the target covers an entry of the given kind.
func (t Target) Includes(isDir bool) bool {
	switch t {
	case TargetFiles:
		return !isDir
	case TargetDirectories:
		return isDir
	default:
		return true
	}
}

// Walker enumerates a directory tree, applying the filter chain to every
// entry and emitting results through a yield callback. The walk is pre-order
// and depth-first in the order the filesystem returns entries; the walker
// itself never sorts.
type Walker struct {
	Filter *filter.FileSystemFilter
	// DirFilter controls descent: a subdirectory it rejects is not entered.
	// Its match is also attached to emitted children as DirectoryNameMatch.
	DirFilter   *filter.Filter
	Target      Target
	Recurse     bool
	ReadContent filter.ContentReader
	// Errors receives per-path non-fatal errors; the traversal continues.
	Errors func(path string, err error)
}

// frame is one directory being enumerated on the explicit walk stack.
type frame struct {
	path     string
	entries  []os.DirEntry
	next     int
	dirMatch *filter.Match
}

// Walk searches root and calls yield for every match. Yield returning false
// stops the walk, as do cancellation and the matching-file cap; both record
// their termination reason in sc. Only a root that cannot be inspected at
// all produces an error.
func (w *Walker) Walk(sc *Context, root string, yield func(*SearchResult) bool) error {
	info, err := os.Lstat(root)
	if err != nil {
		return err
	}

	// A file root is evaluated directly, without enumeration.
	if !info.IsDir() {
		sc.Telemetry.FileCount++
		w.visit(sc, root, filepath.Base(root), info, filepath.Dir(root), nil, yield)
		return nil
	}

	stack := []*frame{}
	if f := w.enter(sc, root, nil); f != nil {
		stack = append(stack, f)
	}

	for len(stack) > 0 {
		if sc.Canceled() {
			return nil
		}
		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			sc.Telemetry.SearchedDirectoryCount++
			continue
		}
		entry := top.entries[top.next]
		top.next++

		name := entry.Name()
		path := filepath.Join(top.path, name)
		entryInfo, err := entry.Info()
		if err != nil {
			w.fail(sc, path, err)
			continue
		}

		isDir := entry.IsDir()
		if isDir {
			sc.Telemetry.DirectoryCount++
		} else {
			sc.Telemetry.FileCount++
		}

		if !w.visit(sc, path, name, entryInfo, root, top.dirMatch, yield) {
			return nil
		}
		if sc.Termination != TerminationNone {
			return nil
		}

		// Descend. Symlinked directories are never followed; entry.IsDir is
		// false for them, so they cannot reach this branch.
		if isDir && w.Recurse {
			dirMatch := top.dirMatch
			if w.DirFilter != nil {
				m, ok := w.DirFilter.EvaluatePath(path, true)
				if !ok {
					continue
				}
				dirMatch = &m
			}
			if f := w.enter(sc, path, dirMatch); f != nil {
				stack = append(stack, f)
			}
		}
	}
	return nil
}

// enter reads a directory's entries in filesystem order and builds its
// frame. Enumeration errors are non-fatal: they are reported and the
// directory is skipped, but still counted as searched.
func (w *Walker) enter(sc *Context, path string, dirMatch *filter.Match) *frame {
	sc.Progress.Report(path)
	f, err := os.Open(path)
	if err != nil {
		w.fail(sc, path, err)
		sc.Telemetry.SearchedDirectoryCount++
		return nil
	}
	entries, err := f.ReadDir(-1)
	f.Close()
	if err != nil {
		w.fail(sc, path, err)
		sc.Telemetry.SearchedDirectoryCount++
		return nil
	}
	return &frame{path: path, entries: entries, dirMatch: dirMatch}
}

// visit applies the filter to one entry and emits it when accepted. The
// return value is the yield verdict; filter failures always continue.
func (w *Walker) visit(sc *Context, path, name string, info os.FileInfo, base string, dirMatch *filter.Match, yield func(*SearchResult) bool) bool {
	if !w.Target.Includes(info.IsDir()) {
		return true
	}
	acc, err := w.Filter.Accept(path, name, info, w.ReadContent)
	if err != nil {
		w.fail(sc, path, err)
		return true
	}
	if acc == nil {
		return true
	}

	match := &FileMatch{
		Path:               path,
		IsDirectory:        info.IsDir(),
		Info:               info,
		NameMatch:          acc.NameMatch,
		ExtensionMatch:     acc.ExtensionMatch,
		DirectoryNameMatch: dirMatch,
		Text:               acc.Text,
		ContentMatch:       acc.ContentMatch,
	}
	ok := yield(&SearchResult{Match: match, BaseDirectory: base})
	sc.RecordMatch(match.IsDirectory, info.Size())
	return ok
}

func (w *Walker) fail(sc *Context, path string, err error) {
	sc.Telemetry.ErrorCount++
	if w.Errors != nil {
		w.Errors(path, err)
	}
}

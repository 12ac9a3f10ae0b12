package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/orang/internal/fileutil"
	"github.com/harrison/orang/internal/logger"
	"github.com/harrison/orang/internal/search"
)

// ConflictPolicy decides what copy and move do when the destination already
// exists.
type ConflictPolicy int

const (
	// ConflictFail reports an error for the conflicting path.
	ConflictFail ConflictPolicy = iota
	// ConflictOverwrite replaces the destination.
	ConflictOverwrite
	// ConflictSkip leaves the destination untouched.
	ConflictSkip
	// ConflictRenameNew writes to a numbered sibling name instead.
	ConflictRenameNew
)

// ParseConflictPolicy parses the copy/move --conflict flag.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail", "f":
		return ConflictFail, nil
	case "overwrite", "o":
		return ConflictOverwrite, nil
	case "skip", "s":
		return ConflictSkip, nil
	case "rename-new", "r":
		return ConflictRenameNew, nil
	default:
		return ConflictFail, fmt.Errorf("unknown conflict option %q (expected fail, overwrite, skip or rename-new)", s)
	}
}

// Deleter removes matched items. Directories require Recursive; with
// EmptyOnly a non-empty directory is refused instead of removed.
type Deleter struct {
	Log       logger.Logger
	Recursive bool
	EmptyOnly bool
	DryRun    bool
}

func (d *Deleter) Consume(sc *search.Context, r *search.SearchResult, _ search.ColumnWidths) error {
	path := r.Match.Path
	if r.Match.IsDirectory {
		if !d.Recursive {
			return fmt.Errorf("cannot delete directory without --recurse")
		}
		if d.EmptyOnly {
			empty, err := fileutil.IsEmptyDir(path)
			if err != nil {
				return err
			}
			if !empty {
				return fmt.Errorf("directory not empty")
			}
		}
		if !d.DryRun {
			if err := os.RemoveAll(path); err != nil {
				return err
			}
		}
	} else {
		if !d.DryRun {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}
	sc.Telemetry.DeletedCount++
	d.Log.Op(logger.TagDelete, r.RelativePath())
	return nil
}

// Copier mirrors matched items into a target directory, preserving their
// path relative to the base directory they were found under.
type Copier struct {
	Log      logger.Logger
	Target   string
	Conflict ConflictPolicy
	DryRun   bool
}

func (c *Copier) Consume(sc *search.Context, r *search.SearchResult, _ search.ColumnWidths) error {
	return transfer(sc, c.Log, r, c.Target, c.Conflict, c.DryRun, false)
}

// Mover is Copier followed by removal of the source.
type Mover struct {
	Log      logger.Logger
	Target   string
	Conflict ConflictPolicy
	DryRun   bool
}

func (m *Mover) Consume(sc *search.Context, r *search.SearchResult, _ search.ColumnWidths) error {
	return transfer(sc, m.Log, r, m.Target, m.Conflict, m.DryRun, true)
}

// transfer projects a result into the target tree and copies or moves it
// there, applying the conflict policy when the destination exists.
func transfer(sc *search.Context, log logger.Logger, r *search.SearchResult, target string, conflict ConflictPolicy, dryRun, move bool) error {
	dst := filepath.Join(target, r.RelativePath())

	if r.Match.IsDirectory {
		if !dryRun {
			if err := os.MkdirAll(dst, r.Match.Info.Mode().Perm()); err != nil {
				return err
			}
		}
		if move && !dryRun {
			// Children were already projected by their own matches; only an
			// empty source directory can be removed here.
			if empty, err := fileutil.IsEmptyDir(r.Match.Path); err == nil && empty {
				_ = os.Remove(r.Match.Path)
			}
		}
		sc.Telemetry.AddedCount++
		log.Op(logger.TagAdd, r.RelativePath())
		return nil
	}

	tag := logger.TagAdd
	if _, err := os.Lstat(dst); err == nil {
		switch conflict {
		case ConflictFail:
			return fmt.Errorf("destination already exists: %s", dst)
		case ConflictSkip:
			return nil
		case ConflictRenameNew:
			var err error
			dst, err = numberedPath(dst)
			if err != nil {
				return err
			}
		case ConflictOverwrite:
			tag = logger.TagUpdate
		}
	}

	if !dryRun {
		if move {
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return err
			}
			if err := os.Rename(r.Match.Path, dst); err != nil {
				// Cross-device moves fall back to copy and delete.
				if err := fileutil.CopyFile(sc.Ctx, r.Match.Path, dst); err != nil {
					return err
				}
				if err := os.Remove(r.Match.Path); err != nil {
					return err
				}
			}
		} else {
			if err := fileutil.CopyFile(sc.Ctx, r.Match.Path, dst); err != nil {
				return err
			}
		}
	}

	if tag == logger.TagAdd {
		sc.Telemetry.AddedCount++
	} else {
		sc.Telemetry.UpdatedCount++
	}
	log.Op(tag, r.RelativePath())
	return nil
}

// numberedPath probes "name (2).ext", "name (3).ext", ... for the first name
// that does not exist yet.
func numberedPath(path string) (string, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	for i := 2; i < 10000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free numbered name for %s", path)
}

package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/harrison/orang/internal/filter"
)

// RenameConflictError reports that a proposed rename target already exists.
type RenameConflictError struct {
	Path string
}

func (e *RenameConflictError) Error() string {
	return fmt.Sprintf("rename target already exists: %s", e.Path)
}

// ProposeRename applies the replacement to the filter's name part of path and
// returns the proposed new path. ok is false when the name filter does not
// match, the name is unchanged, or the new path would leave path's directory.
func ProposeRename(f *filter.Filter, path string, isDir bool, r Replacement) (string, bool) {
	part := f.Part().Slice(path, isDir)
	if part == "" {
		return "", false
	}
	newPart, count := ReplaceText(f, part, r)
	if count == 0 || newPart == part {
		return "", false
	}

	name := filepath.Base(path)
	var newName string
	switch f.Part() {
	case filter.PartNameWithoutExtension:
		newName = newPart + filepath.Ext(name)
	case filter.PartExtension:
		newName = strings.TrimSuffix(name, filepath.Ext(name)) + "." + newPart
	case filter.PartFullName:
		if filepath.Dir(newPart) != filepath.Dir(path) {
			return "", false
		}
		newName = filepath.Base(newPart)
	default:
		newName = newPart
	}
	if newName == "" || strings.ContainsRune(newName, filepath.Separator) {
		return "", false
	}
	return filepath.Join(filepath.Dir(path), newName), true
}

// Rename moves oldPath to newPath within its directory. An existing target
// that is not the same file is a RenameConflictError. A change that differs
// only by letter case goes through a unique intermediate name so it also
// works on case-insensitive filesystems.
func Rename(oldPath, newPath string) error {
	if oldPath == newPath {
		return nil
	}

	oldInfo, err := os.Lstat(oldPath)
	if err != nil {
		return err
	}

	caseOnly := strings.EqualFold(filepath.Base(oldPath), filepath.Base(newPath))
	if newInfo, err := os.Lstat(newPath); err == nil {
		if !os.SameFile(oldInfo, newInfo) {
			return &RenameConflictError{Path: newPath}
		}
		if !caseOnly {
			return nil
		}
	}

	if caseOnly {
		intermediate := filepath.Join(filepath.Dir(oldPath), ".orang-"+uuid.NewString())
		if err := os.Rename(oldPath, intermediate); err != nil {
			return err
		}
		if err := os.Rename(intermediate, newPath); err != nil {
			// Best effort to land back on the original name.
			_ = os.Rename(intermediate, oldPath)
			return err
		}
		return nil
	}

	return os.Rename(oldPath, newPath)
}

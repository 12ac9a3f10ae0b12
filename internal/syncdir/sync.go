package syncdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/harrison/orang/internal/filelock"
	"github.com/harrison/orang/internal/fileutil"
	"github.com/harrison/orang/internal/filter"
	"github.com/harrison/orang/internal/logger"
	"github.com/harrison/orang/internal/search"
)

// Syncer harmonizes two directory trees in two passes. The first pass walks
// Left and mirrors into Right, recording every mirror path; the second pass
// walks Right with the roles swapped and the conflict policy inverted,
// skipping everything the first pass already touched.
type Syncer struct {
	Left  string
	Right string

	Filter      *filter.FileSystemFilter
	DirFilter   *filter.Filter
	ReadContent filter.ContentReader
	Compare     CompareOptions
	Conflict    ConflictResolution
	DryRun      bool
	Log         logger.Logger
	Prompter    Prompter

	sctx             *search.Context
	destinationPaths map[string]struct{}
	ignoredPaths     map[string]struct{}
	dirData          *directoryData
}

func (s *Syncer) ctx() context.Context { return s.sctx.Ctx }

// Run executes the sync state machine: left-to-right pass, ignored-set
// transfer, right-to-left pass. Cancellation or the matching cap move it
// straight to the summary, which the caller renders from the telemetry.
func (s *Syncer) Run(sc *search.Context) error {
	s.sctx = sc
	if s.Compare == 0 {
		s.Compare = DefaultCompare
	}
	if s.Log == nil {
		s.Log = logger.NoOpLogger{}
	}

	left, err := filepath.Abs(s.Left)
	if err != nil {
		return err
	}
	right, err := filepath.Abs(s.Right)
	if err != nil {
		return err
	}
	s.Left, s.Right = left, right

	unlock, err := s.lockRoots(left, right)
	if err != nil {
		return err
	}
	defer unlock()

	s.destinationPaths = make(map[string]struct{})
	if err := s.pass(sc, left, right, true); err != nil {
		return err
	}
	if sc.Termination != search.TerminationNone {
		return nil
	}

	// Ignored-set transfer: mirror paths written by the first pass are not
	// revisited when the roots swap.
	s.ignoredPaths = s.destinationPaths
	s.destinationPaths = make(map[string]struct{})
	s.dirData = nil

	return s.pass(sc, right, left, false)
}

// lockRoots takes one advisory lock per root so two concurrent syncs over
// the same directory cannot interleave. Lock files live under the system
// temp directory, keyed by the root's absolute path.
func (s *Syncer) lockRoots(roots ...string) (func(), error) {
	var held []*filelock.FileLock
	release := func() {
		for _, l := range held {
			_ = l.Unlock()
		}
	}
	for _, root := range roots {
		lockPath := filepath.Join(os.TempDir(), fmt.Sprintf("orang-sync-%x.lock", xxhash.Sum64String(root)))
		lock := filelock.NewFileLock(lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			release()
			return nil, err
		}
		if !ok {
			release()
			return nil, fmt.Errorf("another sync is already running on %s", root)
		}
		held = append(held, lock)
	}
	return release, nil
}

// pass walks srcRoot and harmonizes every visited path against its mirror
// under dstRoot.
func (s *Syncer) pass(sc *search.Context, srcRoot, dstRoot string, first bool) error {
	walker := &search.Walker{
		Filter:      s.Filter,
		DirFilter:   s.DirFilter,
		Target:      search.TargetAll,
		Recurse:     true,
		ReadContent: s.ReadContent,
		Errors: func(path string, err error) {
			s.Log.Error(path, err)
		},
	}
	return walker.Walk(sc, srcRoot, func(r *search.SearchResult) bool {
		if !first {
			if _, ignored := s.ignoredPaths[r.Match.Path]; ignored {
				return true
			}
		}
		if err := s.harmonize(sc, dstRoot, r, first); err != nil {
			sc.Telemetry.ErrorCount++
			s.Log.Error(r.Match.Path, err)
		}
		return sc.Termination == search.TerminationNone
	})
}

// harmonize decides and executes the action for one source/mirror pair.
func (s *Syncer) harmonize(sc *search.Context, dstRoot string, r *search.SearchResult, first bool) error {
	rel := r.RelativePath()
	src := r.Match.Path
	dst := filepath.Join(dstRoot, rel)
	s.destinationPaths[dst] = struct{}{}

	srcInfo := r.Match.Info
	srcIsDir := r.Match.IsDirectory

	dstInfo, err := os.Lstat(dst)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	// A missing or kind-mismatched destination is decided by the pass
	// direction alone: the visited side wins during the left-to-right pass,
	// the mirror side afterwards.
	if dstInfo == nil {
		// Missing destination: in the first pass a moved file may still be
		// present under another name; prefer a rename over copy+delete.
		if !srcIsDir && first {
			if done, err := s.tryRename(sc, src, srcInfo, dst, rel); done || err != nil {
				return err
			}
		}
		return s.apply(sc, src, dst, srcInfo, nil, first, rel)
	}

	dstIsDir := dstInfo.IsDir()
	if srcIsDir != dstIsDir {
		return s.apply(sc, src, dst, srcInfo, dstInfo, first, rel)
	}

	if srcIsDir {
		if s.dirsEqual(srcInfo, dstInfo) {
			return nil
		}
		preferLeft, cancel, err := s.resolveConflict(sc, first, rel)
		if cancel || err != nil {
			return err
		}
		return s.apply(sc, src, dst, srcInfo, dstInfo, preferLeft, rel)
	}

	equal, err := s.filesEqual(src, dst, srcInfo, dstInfo)
	if err != nil {
		return err
	}
	if equal {
		return nil
	}

	var preferLeft bool
	if !srcInfo.ModTime().Equal(dstInfo.ModTime()) {
		// The newer side wins before any conflict policy applies.
		preferLeft = srcInfo.ModTime().After(dstInfo.ModTime())
	} else {
		var cancel bool
		preferLeft, cancel, err = s.resolveConflict(sc, first, rel)
		if cancel || err != nil {
			return err
		}
	}
	return s.apply(sc, src, dst, srcInfo, dstInfo, preferLeft, rel)
}

// tryRename performs rename detection for a file whose mirror is missing.
// It reports done=true when a rename was carried out.
func (s *Syncer) tryRename(sc *search.Context, src string, srcInfo os.FileInfo, dst, rel string) (bool, error) {
	srcDir := filepath.Dir(src)
	mirrorExists := func(name string) bool {
		_, err := os.Lstat(filepath.Join(srcDir, name))
		return err == nil
	}
	renamed, err := s.findRenamedFile(src, srcInfo, filepath.Dir(dst), mirrorExists)
	if err != nil || renamed == "" {
		return false, err
	}

	if !s.DryRun {
		if err := os.Rename(renamed, dst); err != nil {
			return false, err
		}
	}
	s.invalidateDirData()
	sc.Telemetry.RenamedCount++
	s.Log.Op(logger.TagRename, fmt.Sprintf("%s -> %s", filepath.Base(renamed), rel))
	return true, nil
}

// resolveConflict applies the live conflict policy, prompting on Ask.
// cancel is true when the user aborted the command.
func (s *Syncer) resolveConflict(sc *search.Context, first bool, rel string) (preferLeft, cancel bool, err error) {
	effective := s.Conflict
	if !first {
		effective = effective.invert()
	}
	switch effective {
	case ConflictLeftWins:
		return true, false, nil
	case ConflictRightWins:
		return false, false, nil
	}

	if s.Prompter == nil {
		return true, false, nil
	}
	answer, err := s.Prompter.Ask(fmt.Sprintf("Overwrite %s?", rel))
	if err != nil {
		return false, false, err
	}
	switch answer {
	case AnswerYes:
		return true, false, nil
	case AnswerNo:
		return false, false, nil
	case AnswerYesToAll:
		s.setPolicy(first, true)
		return true, false, nil
	case AnswerNoToAll:
		s.setPolicy(first, false)
		return false, false, nil
	default:
		sc.Termination = search.TerminationCanceled
		return false, true, nil
	}
}

// setPolicy rewrites the live conflict resolution after YesToAll/NoToAll.
// The stored policy always names the original orientation, so a second-pass
// answer is inverted back.
func (s *Syncer) setPolicy(first, preferVisited bool) {
	policy := ConflictLeftWins
	if !preferVisited {
		policy = ConflictRightWins
	}
	if !first {
		policy = policy.invert()
	}
	s.Conflict = policy
}

// apply executes one decision-table row. With preferLeft the mirror side is
// rewritten to match the visited side; without it the visited side is
// rewritten to match the mirror. Dry runs log and count without mutating.
func (s *Syncer) apply(sc *search.Context, src, dst string, srcInfo, dstInfo os.FileInfo, preferLeft bool, rel string) error {
	srcIsDir := srcInfo.IsDir()
	dstExists := dstInfo != nil
	dstIsDir := dstExists && dstInfo.IsDir()

	if preferLeft {
		switch {
		case srcIsDir && dstIsDir:
			if !s.DryRun {
				if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
					return err
				}
			}
			sc.Telemetry.UpdatedCount++
			s.Log.Op(logger.TagUpdate, rel)
		case srcIsDir && dstExists:
			if !s.DryRun {
				if err := os.Remove(dst); err != nil {
					return err
				}
				if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
					return err
				}
			}
			s.invalidateDirData()
			sc.Telemetry.DeletedCount++
			sc.Telemetry.AddedCount++
			s.Log.Op(logger.TagDelete, rel)
			s.Log.Op(logger.TagAdd, rel)
		case srcIsDir:
			if !s.DryRun {
				if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
					return err
				}
			}
			sc.Telemetry.AddedCount++
			s.Log.Op(logger.TagAdd, rel)
		case dstIsDir:
			if !s.DryRun {
				if err := os.RemoveAll(dst); err != nil {
					return err
				}
				if err := fileutil.CopyFile(s.ctx(), src, dst); err != nil {
					return err
				}
			}
			s.invalidateDirData()
			sc.Telemetry.DeletedCount++
			sc.Telemetry.AddedCount++
			s.Log.Op(logger.TagDelete, rel)
			s.Log.Op(logger.TagAdd, rel)
		case dstExists:
			if !s.DryRun {
				if err := fileutil.CopyFile(s.ctx(), src, dst); err != nil {
					return err
				}
			}
			sc.Telemetry.UpdatedCount++
			s.Log.Op(logger.TagUpdate, rel)
		default:
			if !s.DryRun {
				if err := fileutil.CopyFile(s.ctx(), src, dst); err != nil {
					return err
				}
			}
			sc.Telemetry.AddedCount++
			s.Log.Op(logger.TagAdd, rel)
		}
		return nil
	}

	switch {
	case srcIsDir && dstIsDir:
		if !s.DryRun {
			if err := os.Chmod(src, dstInfo.Mode().Perm()); err != nil {
				return err
			}
		}
		sc.Telemetry.UpdatedCount++
		s.Log.Op(logger.TagUpdate, rel)
	case srcIsDir && dstExists:
		if !s.DryRun {
			if err := os.RemoveAll(src); err != nil {
				return err
			}
			if err := fileutil.CopyFile(s.ctx(), dst, src); err != nil {
				return err
			}
		}
		sc.Telemetry.DeletedCount++
		sc.Telemetry.AddedCount++
		s.Log.Op(logger.TagDelete, rel)
		s.Log.Op(logger.TagAdd, rel)
	case srcIsDir:
		if !s.DryRun {
			if err := os.RemoveAll(src); err != nil {
				return err
			}
		}
		sc.Telemetry.DeletedCount++
		s.Log.Op(logger.TagDelete, rel)
	case dstIsDir:
		if !s.DryRun {
			if err := os.Remove(src); err != nil {
				return err
			}
			if err := os.MkdirAll(src, dstInfo.Mode().Perm()); err != nil {
				return err
			}
		}
		sc.Telemetry.DeletedCount++
		sc.Telemetry.AddedCount++
		s.Log.Op(logger.TagDelete, rel)
		s.Log.Op(logger.TagAdd, rel)
	case dstExists:
		if !s.DryRun {
			if err := fileutil.CopyFile(s.ctx(), dst, src); err != nil {
				return err
			}
		}
		sc.Telemetry.UpdatedCount++
		s.Log.Op(logger.TagUpdate, rel)
	default:
		if !s.DryRun {
			if err := os.Remove(src); err != nil {
				return err
			}
		}
		sc.Telemetry.DeletedCount++
		s.Log.Op(logger.TagDelete, rel)
	}
	return nil
}

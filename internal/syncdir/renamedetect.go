package syncdir

import (
	"os"
	"path/filepath"

	"github.com/harrison/orang/internal/fileutil"
)

// dirEntry is one destination-directory file observed for rename detection.
type dirEntry struct {
	name string
	info os.FileInfo
}

// directoryData lists the files of one destination directory with their
// stats. It is cached while consecutive source siblings share the same
// destination parent, so a directory full of renamed files is listed once.
type directoryData struct {
	path  string
	files []dirEntry
}

func loadDirectoryData(path string) (*directoryData, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	data := &directoryData{path: path}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		data.files = append(data.files, dirEntry{name: entry.Name(), info: info})
	}
	return data, nil
}

// findRenamedFile looks for the renamed counterpart of srcPath inside the
// destination directory that should hold its mirror. A counterpart must have
// the same modification time, the same length and byte-equal content, and
// exactly one file may qualify; zero or several candidates fall back to the
// plain copy path.
//
// The source is opened and hashed once; candidates are rejected by digest
// before the byte-level comparison, and the source stream is rewound rather
// than reopened between candidates.
func (s *Syncer) findRenamedFile(srcPath string, srcInfo os.FileInfo, dstDir string, mirrorExists func(name string) bool) (string, error) {
	if s.dirData == nil || s.dirData.path != dstDir {
		data, err := loadDirectoryData(dstDir)
		if err != nil {
			if os.IsNotExist(err) {
				return "", nil
			}
			return "", err
		}
		s.dirData = data
	}

	var candidates []dirEntry
	for _, f := range s.dirData.files {
		if f.info.ModTime().Equal(srcInfo.ModTime()) && f.info.Size() == srcInfo.Size() {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return "", nil
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	srcHash, err := fileutil.HashReader(s.ctx(), src)
	if err != nil {
		return "", err
	}

	var winner string
	for _, cand := range candidates {
		// A candidate whose own mirror exists on the source side is a
		// legitimate counterpart of that sibling, not a rename.
		if mirrorExists(cand.name) {
			continue
		}
		candPath := filepath.Join(dstDir, cand.name)
		candHash, err := fileutil.HashFile(s.ctx(), candPath)
		if err != nil {
			return "", err
		}
		if candHash != srcHash {
			continue
		}

		if _, err := src.Seek(0, 0); err != nil {
			return "", err
		}
		candFile, err := os.Open(candPath)
		if err != nil {
			return "", err
		}
		equal, err := fileutil.ReadersEqual(s.ctx(), src, candFile)
		candFile.Close()
		if err != nil {
			return "", err
		}
		if !equal {
			continue
		}
		if winner != "" {
			// More than one byte-equal candidate: ambiguous, no rename.
			return "", nil
		}
		winner = candPath
	}
	return winner, nil
}

// invalidateDirData drops the cached listing after the destination directory
// was mutated.
func (s *Syncer) invalidateDirData() {
	s.dirData = nil
}

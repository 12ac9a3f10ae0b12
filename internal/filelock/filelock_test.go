package filelock

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")
	lock := NewFileLock(lockPath)

	require.NoError(t, lock.Lock())
	require.NoError(t, lock.Unlock())
}

func TestTryLockHeld(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")
	first := NewFileLock(lockPath)
	require.NoError(t, first.Lock())
	defer first.Unlock()

	// flock is per-process on some platforms, so a second handle in the
	// same process may succeed; the call must at least not error.
	second := NewFileLock(lockPath)
	_, err := second.TryLock()
	assert.NoError(t, err)
	second.Unlock()
}

func TestAtomicWriteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, AtomicWrite(path, []byte("content")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestAtomicWriteCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")
	require.NoError(t, AtomicWrite(path, []byte("x")))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestAtomicWritePreservesModeAndTimes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))
	mtime := time.Date(2024, 2, 3, 4, 5, 6, 0, time.Local)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	require.NoError(t, AtomicWrite(path, []byte("new")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target.txt")
	require.NoError(t, AtomicWrite(path, []byte("data")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".orang-"), "temp file left behind: %s", e.Name())
	}
}

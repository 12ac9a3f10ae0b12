package fileutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestEqualIdenticalFiles(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte("abcdef"), 40000) // spans multiple chunks
	a := writeFile(t, dir, "a", data)
	b := writeFile(t, dir, "b", data)

	eq, err := Equal(context.Background(), a, b)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestEqualDifferentContent(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte("abcdef"), 40000)
	a := writeFile(t, dir, "a", data)
	changed := append([]byte(nil), data...)
	changed[len(changed)-1] = 'X'
	b := writeFile(t, dir, "b", changed)

	eq, err := Equal(context.Background(), a, b)
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestEqualDifferentSizesShortCircuits(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("short"))
	b := writeFile(t, dir, "b", []byte("slightly longer"))

	eq, err := Equal(context.Background(), a, b)
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestEqualCancellation(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte("x"), 3*CompareChunkSize)
	a := writeFile(t, dir, "a", data)
	b := writeFile(t, dir, "b", data)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Equal(ctx, a, b)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("same bytes"))
	b := writeFile(t, dir, "b", []byte("same bytes"))
	c := writeFile(t, dir, "c", []byte("other bytes"))

	ha, err := HashFile(context.Background(), a)
	require.NoError(t, err)
	hb, err := HashFile(context.Background(), b)
	require.NoError(t, err)
	hc, err := HashFile(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.NotEqual(t, ha, hc)
}

func TestCopyFilePreservesTimesAndMode(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "src.txt", []byte("payload"))
	mtime := time.Date(2024, 3, 4, 5, 6, 7, 0, time.Local)
	require.NoError(t, os.Chmod(src, 0o600))
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	dst := filepath.Join(dir, "nested", "dst.txt")
	require.NoError(t, CopyFile(context.Background(), src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestCopyFileRefusesDirectory(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(context.Background(), dir, filepath.Join(dir, "out"))
	assert.Error(t, err)
}

func TestIsEmptyDir(t *testing.T) {
	dir := t.TempDir()
	empty, err := IsEmptyDir(dir)
	require.NoError(t, err)
	assert.True(t, empty)

	writeFile(t, dir, "x", []byte("1"))
	empty, err = IsEmptyDir(dir)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
		{int64(1.5 * float64(1<<30)), "1.5 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.size), "size %d", tt.size)
	}
}

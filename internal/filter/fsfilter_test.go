package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func statFor(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Lstat(path)
	require.NoError(t, err)
	return info
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

func TestAcceptNameAndExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.txt", "hello")

	f := &FileSystemFilter{
		Name:      MustNew(`^report`, PatternOptions{}),
		Extension: MustNew(`^txt$`, PatternOptions{}),
	}
	acc, err := f.Accept(path, "report.txt", statFor(t, path), readPlain)
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "report", acc.NameMatch.Value)
	assert.Equal(t, "txt", acc.ExtensionMatch.Value)
	assert.Nil(t, acc.ContentMatch)
}

func TestAcceptShortCircuitsOnName(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "other.txt", "hello")

	f := &FileSystemFilter{Name: MustNew(`^report`, PatternOptions{})}
	acc, err := f.Accept(path, "other.txt", statFor(t, path), readPlain)
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestAcceptContentFilter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "alpha beta gamma")

	f := &FileSystemFilter{Content: MustNew(`beta`, PatternOptions{})}
	acc, err := f.Accept(path, "a.md", statFor(t, path), readPlain)
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "alpha beta gamma", acc.Text)
	assert.Equal(t, "beta", acc.ContentMatch.Value)
	assert.Equal(t, 6, acc.ContentMatch.Index)
}

func TestAcceptContentFilterRejectsDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	f := &FileSystemFilter{Content: MustNew(`.`, PatternOptions{})}
	acc, err := f.Accept(sub, "sub", statFor(t, sub), readPlain)
	require.NoError(t, err)
	assert.Nil(t, acc, "a content search never matches a directory")
}

func TestAcceptAttributes(t *testing.T) {
	dir := t.TempDir()
	hidden := writeFile(t, dir, ".secret", "x")
	plain := writeFile(t, dir, "plain.txt", "x")

	wantHidden := &FileSystemFilter{Attributes: AttrHidden}
	acc, err := wantHidden.Accept(hidden, ".secret", statFor(t, hidden), readPlain)
	require.NoError(t, err)
	assert.NotNil(t, acc)
	acc, err = wantHidden.Accept(plain, "plain.txt", statFor(t, plain), readPlain)
	require.NoError(t, err)
	assert.Nil(t, acc)

	skip := &FileSystemFilter{AttributesToSkip: AttrHidden}
	acc, err = skip.Accept(hidden, ".secret", statFor(t, hidden), readPlain)
	require.NoError(t, err)
	assert.Nil(t, acc)
	acc, err = skip.Accept(plain, "plain.txt", statFor(t, plain), readPlain)
	require.NoError(t, err)
	assert.NotNil(t, acc)
}

func TestAcceptEmptyOption(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.log", "")
	full := writeFile(t, dir, "full.log", "data")

	onlyEmpty := &FileSystemFilter{Empty: EmptyOnly}
	acc, err := onlyEmpty.Accept(empty, "empty.log", statFor(t, empty), readPlain)
	require.NoError(t, err)
	assert.NotNil(t, acc)
	acc, err = onlyEmpty.Accept(full, "full.log", statFor(t, full), readPlain)
	require.NoError(t, err)
	assert.Nil(t, acc)

	nonEmpty := &FileSystemFilter{Empty: NonEmptyOnly}
	acc, err = nonEmpty.Accept(full, "full.log", statFor(t, full), readPlain)
	require.NoError(t, err)
	assert.NotNil(t, acc)
}

func TestAcceptEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	emptyDir := filepath.Join(dir, "hollow")
	require.NoError(t, os.Mkdir(emptyDir, 0o755))
	fullDir := filepath.Join(dir, "stuffed")
	require.NoError(t, os.Mkdir(fullDir, 0o755))
	writeFile(t, fullDir, "x.txt", "x")

	f := &FileSystemFilter{Empty: EmptyOnly}
	acc, err := f.Accept(emptyDir, "hollow", statFor(t, emptyDir), readPlain)
	require.NoError(t, err)
	assert.NotNil(t, acc)
	acc, err = f.Accept(fullDir, "stuffed", statFor(t, fullDir), readPlain)
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestAcceptSizePredicate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sized.bin", "0123456789")

	big, err := ParseSizePredicate(">5")
	require.NoError(t, err)
	f := &FileSystemFilter{Properties: FilePropertyFilter{Size: big}}
	acc, err := f.Accept(path, "sized.bin", statFor(t, path), readPlain)
	require.NoError(t, err)
	assert.NotNil(t, acc)

	small, err := ParseSizePredicate("<5")
	require.NoError(t, err)
	f = &FileSystemFilter{Properties: FilePropertyFilter{Size: small}}
	acc, err = f.Accept(path, "sized.bin", statFor(t, path), readPlain)
	require.NoError(t, err)
	assert.Nil(t, acc)
}

// Conjunction law: the composite accepts iff every sub-filter accepts alone.
func TestAcceptConjunction(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "alpha.txt", "needle here"),
		writeFile(t, dir, "alpha.log", "needle here"),
		writeFile(t, dir, "beta.txt", "needle here"),
		writeFile(t, dir, "alpha2.txt", "nothing"),
	}

	name := MustNew(`^alpha`, PatternOptions{})
	ext := MustNew(`^txt$`, PatternOptions{})
	content := MustNew(`needle`, PatternOptions{})
	composite := &FileSystemFilter{Name: name, Extension: ext, Content: content}

	for _, path := range paths {
		info := statFor(t, path)
		nameOnly, err := (&FileSystemFilter{Name: name}).Accept(path, filepath.Base(path), info, readPlain)
		require.NoError(t, err)
		extOnly, err := (&FileSystemFilter{Extension: ext}).Accept(path, filepath.Base(path), info, readPlain)
		require.NoError(t, err)
		contentOnly, err := (&FileSystemFilter{Content: content}).Accept(path, filepath.Base(path), info, readPlain)
		require.NoError(t, err)

		all, err := composite.Accept(path, filepath.Base(path), info, readPlain)
		require.NoError(t, err)

		wantPass := nameOnly != nil && extOnly != nil && contentOnly != nil
		assert.Equal(t, wantPass, all != nil, "path %s", path)
	}
}

func TestParseAttributes(t *testing.T) {
	attrs, err := ParseAttributes("directory, hidden")
	require.NoError(t, err)
	assert.True(t, attrs.Has(AttrDirectory|AttrHidden))
	assert.Equal(t, "directory,hidden", attrs.String())

	_, err = ParseAttributes("sparkly")
	assert.Error(t, err)
}

func TestParseEmptyOption(t *testing.T) {
	opt, err := ParseEmptyOption("non-empty")
	require.NoError(t, err)
	assert.Equal(t, NonEmptyOnly, opt)

	_, err = ParseEmptyOption("half-full")
	assert.Error(t, err)
}

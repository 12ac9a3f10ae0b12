package executor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/orang/internal/content"
	"github.com/harrison/orang/internal/filter"
	"github.com/harrison/orang/internal/logger"
	"github.com/harrison/orang/internal/search"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func resultFor(t *testing.T, base, path string) *search.SearchResult {
	t.Helper()
	info, err := os.Lstat(path)
	require.NoError(t, err)
	return &search.SearchResult{
		Match:         &search.FileMatch{Path: path, IsDirectory: info.IsDir(), Info: info},
		BaseDirectory: base,
	}
}

func testLogger() (*logger.ConsoleLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.NewConsoleLogger(&buf, &buf, logger.Normal), &buf
}

func TestFinderWritesRelativePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, filepath.Join("sub", "a.txt"), "x")
	log, buf := testLogger()

	f := &Finder{Log: log}
	sc := search.NewContext(context.Background())
	require.NoError(t, f.Consume(sc, resultFor(t, dir, path), search.ColumnWidths{}))

	assert.Equal(t, filepath.Join("sub", "a.txt")+"\n", buf.String())
}

func TestFinderSizeColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "12345")
	log, buf := testLogger()

	f := &Finder{Log: log, Columns: search.ColumnSize}
	sc := search.NewContext(context.Background())
	require.NoError(t, f.Consume(sc, resultFor(t, dir, path), search.ColumnWidths{Path: 10, Size: 5}))

	assert.Equal(t, "a.txt         5 B\n", buf.String())
}

func TestMatcherWritesEveryRegion(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x1 y2 z3")
	log, buf := testLogger()

	cf := filter.MustNew(`\d`, filter.PatternOptions{})
	r := resultFor(t, dir, path)
	r.Match.Text = "x1 y2 z3"
	r.Match.ContentMatch = &filter.Match{Value: "1", Index: 1}

	m := &Matcher{Log: log, Filter: cf}
	sc := search.NewContext(context.Background())
	require.NoError(t, m.Consume(sc, r, search.ColumnWidths{}))

	assert.Equal(t, "a.txt: 1\na.txt: 2\na.txt: 3\n", buf.String())
}

func TestReplacerUpdatesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "x.md", "hello\nHELLO\n")
	log, buf := testLogger()

	rp := &Replacer{
		Log:         log,
		Engine:      content.NewEngine(nil),
		Filter:      filter.MustNew(`hello`, filter.PatternOptions{IgnoreCase: true}),
		Replacement: content.Replacement{Template: "world"},
	}
	sc := search.NewContext(context.Background())
	require.NoError(t, rp.Consume(sc, resultFor(t, dir, path), search.ColumnWidths{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "world\nworld\n", string(data))
	assert.Equal(t, 1, sc.Telemetry.UpdatedCount)
	assert.Contains(t, buf.String(), "UPD x.md (2)")
}

func TestReplacerDryRunDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "x.md", "hello")
	log, _ := testLogger()

	rp := &Replacer{
		Log:         log,
		Engine:      content.NewEngine(nil),
		Filter:      filter.MustNew(`hello`, filter.PatternOptions{}),
		Replacement: content.Replacement{Template: "world"},
		DryRun:      true,
	}
	sc := search.NewContext(context.Background())
	require.NoError(t, rp.Consume(sc, resultFor(t, dir, path), search.ColumnWidths{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, 1, sc.Telemetry.UpdatedCount, "dry run still reports counts")
}

func TestRenamerRenames(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "draft.txt", "x")
	log, buf := testLogger()

	rn := &Renamer{
		Log:         log,
		Filter:      filter.MustNew(`draft`, filter.PatternOptions{}),
		Replacement: content.Replacement{Template: "final"},
	}
	sc := search.NewContext(context.Background())
	require.NoError(t, rn.Consume(sc, resultFor(t, dir, path), search.ColumnWidths{}))

	_, err := os.Stat(filepath.Join(dir, "final.txt"))
	assert.NoError(t, err)
	assert.Equal(t, 1, sc.Telemetry.RenamedCount)
	assert.Contains(t, buf.String(), "REN draft.txt -> final.txt")
}

func TestRenamerConflict(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "draft.txt", "x")
	writeFile(t, dir, "final.txt", "y")
	log, _ := testLogger()

	rn := &Renamer{
		Log:         log,
		Filter:      filter.MustNew(`draft`, filter.PatternOptions{}),
		Replacement: content.Replacement{Template: "final"},
	}
	sc := search.NewContext(context.Background())
	err := rn.Consume(sc, resultFor(t, dir, path), search.ColumnWidths{})

	var conflict *content.RenameConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Zero(t, sc.Telemetry.RenamedCount)
}

func TestDeleterFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "junk.tmp", "x")
	log, buf := testLogger()

	d := &Deleter{Log: log}
	sc := search.NewContext(context.Background())
	require.NoError(t, d.Consume(sc, resultFor(t, dir, path), search.ColumnWidths{}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 1, sc.Telemetry.DeletedCount)
	assert.Contains(t, buf.String(), "DEL junk.tmp")
}

func TestDeleterDirectoryNeedsRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	log, _ := testLogger()

	d := &Deleter{Log: log}
	sc := search.NewContext(context.Background())
	err := d.Consume(sc, resultFor(t, dir, sub), search.ColumnWidths{})
	assert.Error(t, err)

	_, statErr := os.Stat(sub)
	assert.NoError(t, statErr)
}

func TestDeleterEmptyOnlyRefusesNonEmpty(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "keep.txt", "x")
	log, _ := testLogger()

	d := &Deleter{Log: log, Recursive: true, EmptyOnly: true}
	sc := search.NewContext(context.Background())
	err := d.Consume(sc, resultFor(t, dir, sub), search.ColumnWidths{})
	assert.Error(t, err)
}

func TestDeleterDryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "junk.tmp", "x")
	log, buf := testLogger()

	d := &Deleter{Log: log, DryRun: true}
	sc := search.NewContext(context.Background())
	require.NoError(t, d.Consume(sc, resultFor(t, dir, path), search.ColumnWidths{}))

	_, err := os.Stat(path)
	assert.NoError(t, err, "dry run must not delete")
	assert.Contains(t, buf.String(), "DEL junk.tmp")
	assert.Equal(t, 1, sc.Telemetry.DeletedCount)
}

func TestCopierProjectsRelativePath(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := writeFile(t, src, filepath.Join("docs", "a.txt"), "payload")
	log, buf := testLogger()

	c := &Copier{Log: log, Target: dst}
	sc := search.NewContext(context.Background())
	require.NoError(t, c.Consume(sc, resultFor(t, src, path), search.ColumnWidths{}))

	data, err := os.ReadFile(filepath.Join(dst, "docs", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, 1, sc.Telemetry.AddedCount)
	assert.Contains(t, buf.String(), "ADD "+filepath.Join("docs", "a.txt"))
}

func TestCopierConflictFail(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := writeFile(t, src, "a.txt", "new")
	writeFile(t, dst, "a.txt", "old")
	log, _ := testLogger()

	c := &Copier{Log: log, Target: dst}
	sc := search.NewContext(context.Background())
	err := c.Consume(sc, resultFor(t, src, path), search.ColumnWidths{})
	assert.Error(t, err)

	data, _ := os.ReadFile(filepath.Join(dst, "a.txt"))
	assert.Equal(t, "old", string(data))
}

func TestCopierConflictOverwrite(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := writeFile(t, src, "a.txt", "new")
	writeFile(t, dst, "a.txt", "old")
	log, buf := testLogger()

	c := &Copier{Log: log, Target: dst, Conflict: ConflictOverwrite}
	sc := search.NewContext(context.Background())
	require.NoError(t, c.Consume(sc, resultFor(t, src, path), search.ColumnWidths{}))

	data, _ := os.ReadFile(filepath.Join(dst, "a.txt"))
	assert.Equal(t, "new", string(data))
	assert.Equal(t, 1, sc.Telemetry.UpdatedCount)
	assert.Contains(t, buf.String(), "UPD a.txt")
}

func TestCopierConflictSkip(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := writeFile(t, src, "a.txt", "new")
	writeFile(t, dst, "a.txt", "old")
	log, _ := testLogger()

	c := &Copier{Log: log, Target: dst, Conflict: ConflictSkip}
	sc := search.NewContext(context.Background())
	require.NoError(t, c.Consume(sc, resultFor(t, src, path), search.ColumnWidths{}))

	data, _ := os.ReadFile(filepath.Join(dst, "a.txt"))
	assert.Equal(t, "old", string(data))
	assert.Zero(t, sc.Telemetry.AddedCount)
}

func TestCopierConflictRenameNew(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := writeFile(t, src, "a.txt", "new")
	writeFile(t, dst, "a.txt", "old")
	log, _ := testLogger()

	c := &Copier{Log: log, Target: dst, Conflict: ConflictRenameNew}
	sc := search.NewContext(context.Background())
	require.NoError(t, c.Consume(sc, resultFor(t, src, path), search.ColumnWidths{}))

	data, err := os.ReadFile(filepath.Join(dst, "a (2).txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestMoverRemovesSource(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := writeFile(t, src, "a.txt", "payload")
	log, _ := testLogger()

	m := &Mover{Log: log, Target: dst}
	sc := search.NewContext(context.Background())
	require.NoError(t, m.Consume(sc, resultFor(t, src, path), search.ColumnWidths{}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestParseConflictPolicy(t *testing.T) {
	p, err := ParseConflictPolicy("overwrite")
	require.NoError(t, err)
	assert.Equal(t, ConflictOverwrite, p)

	p, err = ParseConflictPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ConflictFail, p)

	_, err = ParseConflictPolicy("merge")
	assert.Error(t, err)
}

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/orang/internal/filter"
	"github.com/harrison/orang/internal/search"
)

// buildFrom parses the given flags on a throwaway find command and returns
// the resulting options record.
func buildFrom(t *testing.T, needsContent bool, flagArgs ...string) (*options, error) {
	t.Helper()
	cmd := newFindCommand(&appState{})
	require.NoError(t, cmd.ParseFlags(flagArgs))
	return buildOptions(cmd, nil, needsContent)
}

func TestBuildOptionsDefaults(t *testing.T) {
	o, err := buildFrom(t, false)
	require.NoError(t, err)
	defer o.Close()

	assert.Equal(t, []string{"."}, o.paths)
	assert.Nil(t, o.fsFilter.Name)
	assert.Nil(t, o.fsFilter.Content)
	assert.False(t, o.recurse)
	assert.False(t, o.pipeline.NeedsBuffer())
	assert.True(t, o.highlightMatch)
}

func TestBuildOptionsFilters(t *testing.T) {
	o, err := buildFrom(t, false,
		"-n", `^report`, "-e", "^txt$", "-c", "needle",
		"--ignore-case", "--negate-content",
		"--attributes-to-skip", "hidden",
		"--size", ">1k", "--empty", "non-empty",
		"--recurse")
	require.NoError(t, err)
	defer o.Close()

	require.NotNil(t, o.fsFilter.Name)
	require.NotNil(t, o.fsFilter.Extension)
	require.NotNil(t, o.fsFilter.Content)
	assert.True(t, o.fsFilter.Content.Negated())
	assert.True(t, o.fsFilter.AttributesToSkip.Has(filter.AttrHidden))
	require.NotNil(t, o.fsFilter.Properties.Size)
	assert.Equal(t, filter.NonEmptyOnly, o.fsFilter.Empty)
	assert.True(t, o.recurse)

	m, ok := o.fsFilter.Name.Evaluate("REPORT-2024")
	require.True(t, ok, "ignore-case applies to the name filter")
	assert.Equal(t, "REPORT", m.Value)
}

func TestBuildOptionsNamePart(t *testing.T) {
	o, err := buildFrom(t, false, "-n", "^report$", "--name-part", "name-without-extension")
	require.NoError(t, err)
	defer o.Close()
	assert.Equal(t, filter.PartNameWithoutExtension, o.fsFilter.Name.Part())
}

func TestBuildOptionsSortForcesBuffer(t *testing.T) {
	o, err := buildFrom(t, false, "--sort", "name")
	require.NoError(t, err)
	defer o.Close()
	assert.True(t, o.pipeline.NeedsBuffer())
}

func TestBuildOptionsDisplayColumns(t *testing.T) {
	o, err := buildFrom(t, false, "--display", "absolute-path,size")
	require.NoError(t, err)
	defer o.Close()
	assert.True(t, o.absolutePaths)
	assert.Equal(t, search.ColumnSize, o.columns)
	assert.True(t, o.pipeline.NeedsBuffer(), "a property column forces buffering")
}

func TestBuildOptionsNeedsContent(t *testing.T) {
	_, err := buildFrom(t, true)
	assert.Error(t, err)
}

func TestBuildOptionsInvalidValues(t *testing.T) {
	for _, args := range [][]string{
		{"-n", "("},
		{"--attributes", "sparkly"},
		{"--size", "big"},
		{"--empty", "half"},
		{"--sort", "altitude"},
		{"--encoding", "klingon-8"},
		{"--verbosity", "shouty"},
		{"--highlight", "everything"},
		{"--display", "shape"},
		{"-c", "x", "--group", "missing"},
	} {
		_, err := buildFrom(t, false, args...)
		assert.Error(t, err, "args %v", args)
	}
}

func TestBuildOptionsGroupName(t *testing.T) {
	o, err := buildFrom(t, false, "-c", `(?P<num>\d+)px`, "--group", "num")
	require.NoError(t, err)
	defer o.Close()

	m, ok := o.contentFilter.Evaluate("margin: 12px")
	require.True(t, ok)
	assert.Equal(t, "12", m.Value)
}

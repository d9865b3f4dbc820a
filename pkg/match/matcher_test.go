package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherEmptyMatchesEverything(t *testing.T) {
	m, err := New(Config{})
	require.NoError(t, err)

	assert.True(t, m.Empty())
	assert.True(t, m.Match("anything"))
	assert.True(t, m.Match("deep/nested/key.log"))
}

func TestMatcherIncludes(t *testing.T) {
	m, err := New(Config{Includes: []string{"tmp-*", "scratch-*"}})
	require.NoError(t, err)

	assert.True(t, m.Match("tmp-reports"))
	assert.True(t, m.Match("scratch-1"))
	assert.False(t, m.Match("prod-data"))
}

func TestMatcherExcludes(t *testing.T) {
	m, err := New(Config{Excludes: []string{"*.keep"}})
	require.NoError(t, err)

	assert.True(t, m.Match("report.csv"))
	assert.False(t, m.Match("archive.keep"))
}

func TestMatcherIncludeExcludeInteraction(t *testing.T) {
	m, err := New(Config{
		Includes: []string{"logs/**"},
		Excludes: []string{"logs/audit/**"},
	})
	require.NoError(t, err)

	assert.True(t, m.Match("logs/app/2026/08/30.log"))
	assert.False(t, m.Match("logs/audit/2026/08/30.log"))
	assert.False(t, m.Match("data/app.log"))
}

func TestMatcherDoublestarCrossesSeparators(t *testing.T) {
	m, err := New(Config{Includes: []string{"**/*.tmp"}})
	require.NoError(t, err)

	assert.True(t, m.Match("a/b/c/file.tmp"))
	assert.False(t, m.Match("a/b/c/file.dat"))
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	_, err := New(Config{Includes: []string{"[unclosed"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)

	var perr *PatternError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "[unclosed", perr.Pattern)
}

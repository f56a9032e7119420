package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultFillsEveryField(t *testing.T) {
	t.Parallel()
	c := Default()
	require.Equal(t, "auto", c.Color)
	require.Equal(t, ".nullgraph-cache.db", c.CachePath)
	require.True(t, c.ShouldGroup())
}

func TestParseOverridesOnlyProvidedFields(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte("workers: 4\ncolor: always\n"), "test.yaml")
	require.NoError(t, err)
	require.Equal(t, 4, c.Workers)
	require.Equal(t, "always", c.Color)
	require.Equal(t, ".nullgraph-cache.db", c.CachePath)
	require.True(t, c.ShouldGroup())
}

func TestParseRejectsInvalidColor(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("color: purple\n"), "test.yaml")
	require.ErrorContains(t, err, "color must be one of")
}

func TestParseRejectsNegativeWorkers(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("workers: -1\n"), "test.yaml")
	require.ErrorContains(t, err, "workers must be >= 0")
}

func TestGroupContradictionsFalseDisablesGrouping(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte("group_contradictions: false\n"), "test.yaml")
	require.NoError(t, err)
	require.False(t, c.ShouldGroup())
}

func TestEffectiveWorkersFallsBackToGOMAXPROCS(t *testing.T) {
	t.Parallel()
	c := &Config{}
	require.Greater(t, c.EffectiveWorkers(), 0)

	c.Workers = 7
	require.Equal(t, 7, c.EffectiveWorkers())
}

func TestFindWalksUpToParentDirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".nullgraph.yaml"), []byte("workers: 2\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := Find(nested)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, ".nullgraph.yaml"), found)
}

func TestFindReturnsEmptyWhenNoneExists(t *testing.T) {
	t.Parallel()
	found, err := Find(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestLoadOrDefaultFallsBackWhenMissing(t *testing.T) {
	t.Parallel()
	c, err := LoadOrDefault(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestLoadOrDefaultReadsDiscoveredFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".nullgraph.yaml"), []byte("workers: 9\n"), 0o644))

	c, err := LoadOrDefault(dir)
	require.NoError(t, err)
	require.Equal(t, 9, c.Workers)
}

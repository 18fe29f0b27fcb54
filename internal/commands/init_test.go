package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstat-dev/finstat/internal/config"
	"github.com/finstat-dev/finstat/internal/registry"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runFinstat(t, "init", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Initialized finstat project")

	for _, d := range []string{"registry", "output", "raw"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinstat(t, "init", dir, "--source", "csvdir", "--suffix", ".SI")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "csvdir", cfg.Source.Name)
	assert.Equal(t, ".SI", cfg.Registry.Suffix)
	assert.Equal(t, []string{"quarterly", "annual"}, cfg.Granularities)
	assert.Equal(t, []string{"csv"}, cfg.Output.Formats)
}

func TestInit_EmptyRegistry(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinstat(t, "init", dir)
	require.NoError(t, err)

	codes, err := registry.Load(filepath.Join(dir, "registry", "companies.csv"), "code")
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinstat(t, "init", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".env")
}

func TestInit_RefusesExistingProject(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinstat(t, "init", dir)
	require.NoError(t, err)

	out, err := runFinstat(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestInit_UnknownSource(t *testing.T) {
	_, err := runFinstat(t, "init", t.TempDir(), "--source", "yahoo")
	assert.Error(t, err)
}

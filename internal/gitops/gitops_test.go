package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommitAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "balance_sheet_annual.csv"), []byte("account,entity\n"), 0o644))

	hash, err := CommitAll(dir, "run 1: 0 entities", "Test Author", "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "run 1: 0 entities|Test Author <test@example.com>")
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statements_annual.csv")
	require.NoError(t, os.WriteFile(path, []byte("accounts,code,year,value,report\n"), 0o644))

	hash, committed, err := Snapshot(dir, "run a", "finstat", "finstat@localhost")
	require.NoError(t, err)
	assert.True(t, committed)
	assert.NotEmpty(t, hash)

	// Identical output: nothing to commit.
	require.NoError(t, os.WriteFile(path, []byte("accounts,code,year,value,report\n"), 0o644))
	hash, committed, err = Snapshot(dir, "run b", "finstat", "finstat@localhost")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Empty(t, hash)

	dirty, err := Dirty(dir)
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestSnapshot_IgnoredChangesDoNotCommit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "statements_annual.csv"), []byte("accounts,code,year,value,report\n"), 0o644))
	logPath := filepath.Join(dir, "logs", "run-log.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0o755))
	require.NoError(t, os.WriteFile(logPath, []byte("run 1\n"), 0o644))

	_, committed, err := Snapshot(dir, "run a", "finstat", "finstat@localhost", "logs/")
	require.NoError(t, err)
	assert.True(t, committed)

	// Only the ignored log changes between runs.
	require.NoError(t, os.WriteFile(logPath, []byte("run 1\nrun 2\n"), 0o644))
	hash, committed, err := Snapshot(dir, "run b", "finstat", "finstat@localhost", "logs/")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Empty(t, hash)

	ls := exec.Command("git", "ls-files")
	ls.Dir = dir
	out, err := ls.Output()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "run-log.csv")
}

func TestEnsureIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("*.tmp"), 0o644))

	require.NoError(t, EnsureIgnored(dir, "logs/", "*.tmp"))
	require.NoError(t, EnsureIgnored(dir, "logs/"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "*.tmp\nlogs/\n", string(data))
}

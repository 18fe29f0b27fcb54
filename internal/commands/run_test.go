package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstat-dev/finstat/internal/config"
	"github.com/finstat-dev/finstat/internal/runlog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newProject creates a csvdir project with registry AAA, BBB where only AAA
// has quarterly statements.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runFinstat(t, "init", dir, "--source", "csvdir")
	require.NoError(t, err, out)

	writeFile(t, filepath.Join(dir, "registry", "companies.csv"), "code\nAAA\nBBB\n")

	raw := filepath.Join(dir, "raw", "quarterly")
	writeFile(t, filepath.Join(raw, "balance_sheet", "AAA.JK.csv"),
		"account,2024-06-30,2024-03-31\ncash,12,10\ntotalAssets,,100\n")
	writeFile(t, filepath.Join(raw, "income_statement", "AAA.JK.csv"),
		"account,2024Q2,2024Q1\nrevenue,5,4\n")
	writeFile(t, filepath.Join(raw, "cash_flow", "AAA.JK.csv"),
		"account,2024-06-30\nnetIncome,1.5\n")
	return dir
}

func TestRun_CSVDir(t *testing.T) {
	dir := newProject(t)
	cfgPath := filepath.Join(dir, config.FileName)

	out, err := runFinstatStdout(t, "run", "--config", cfgPath, "--granularity", "quarterly")
	require.NoError(t, err, out)
	assert.Contains(t, out, "completed, 2 entities")
	assert.Contains(t, out, "skipped 3 table(s)")
	assert.Contains(t, out, "BBB.JK")

	bs, err := os.ReadFile(filepath.Join(dir, "output", "balance_sheet_quarterly.csv"))
	require.NoError(t, err)
	assert.Equal(t, "account,entity,2024_2,2024_1\ncash,AAA.JK,12,10\ntotalAssets,AAA.JK,,100\n", string(bs))

	tall, err := os.ReadFile(filepath.Join(dir, "output", "statements_quarterly.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"accounts,code,year,value,report\n"+
			"cash,AAA.JK,2024_2,12,balance_sheet\n"+
			"totalAssets,AAA.JK,2024_2,,balance_sheet\n"+
			"cash,AAA.JK,2024_1,10,balance_sheet\n"+
			"totalAssets,AAA.JK,2024_1,100,balance_sheet\n"+
			"revenue,AAA.JK,2024_2,5,income_statement\n"+
			"revenue,AAA.JK,2024_1,4,income_statement\n"+
			"netIncome,AAA.JK,2024_2,1.5,cash_flow\n",
		string(tall))

	_, err = os.Stat(filepath.Join(dir, "output", "statements_annual.csv"))
	assert.True(t, os.IsNotExist(err), "annual was not requested")

	entries, err := runlog.Read(filepath.Join(dir, "output"))
	require.NoError(t, err)
	var skipped, persisted int
	for _, e := range entries {
		switch e.Status {
		case runlog.StatusSkipped:
			skipped++
			assert.Equal(t, "BBB.JK", e.Entity)
		case runlog.StatusPersisted:
			persisted++
		}
	}
	assert.Equal(t, 3, skipped)
	assert.Equal(t, 1, persisted)
}

func TestRun_AnnualAllFailed(t *testing.T) {
	dir := newProject(t)

	out, err := runFinstatStdout(t, "run", "--config", filepath.Join(dir, config.FileName), "--granularity", "annual")
	require.NoError(t, err, out)
	assert.Contains(t, out, "skipped 6 table(s)")

	for _, kind := range []string{"balance_sheet", "income_statement", "cash_flow"} {
		data, err := os.ReadFile(filepath.Join(dir, "output", kind+"_annual.csv"))
		require.NoError(t, err)
		assert.Equal(t, "account,entity\n", string(data))
	}
}

func TestRun_Idempotent(t *testing.T) {
	dir := newProject(t)
	cfgPath := filepath.Join(dir, config.FileName)
	outputs := []string{"balance_sheet_quarterly.csv", "income_statement_quarterly.csv", "cash_flow_quarterly.csv", "statements_quarterly.csv"}

	_, err := runFinstat(t, "run", "--config", cfgPath, "--granularity", "quarterly")
	require.NoError(t, err)
	first := make(map[string]string)
	for _, name := range outputs {
		data, err := os.ReadFile(filepath.Join(dir, "output", name))
		require.NoError(t, err)
		first[name] = string(data)
	}

	_, err = runFinstat(t, "run", "--config", cfgPath, "--granularity", "quarterly")
	require.NoError(t, err)
	for _, name := range outputs {
		data, err := os.ReadFile(filepath.Join(dir, "output", name))
		require.NoError(t, err)
		assert.Equal(t, first[name], string(data), name)
	}
}

func TestRun_GitSnapshot(t *testing.T) {
	dir := newProject(t)
	cfgPath := filepath.Join(dir, config.FileName)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Output.Git.AutoCommit = true
	require.NoError(t, config.Save(cfgPath, cfg))

	out, err := runFinstatStdout(t, "run", "--config", cfgPath, "--granularity", "quarterly")
	require.NoError(t, err, out)
	assert.Contains(t, out, "committed output snapshot")

	log := exec.Command("git", "log", "--format=%s|%an", "-1")
	log.Dir = filepath.Join(dir, "output")
	gitOut, err := log.Output()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(gitOut), "run "), string(gitOut))
	assert.Contains(t, string(gitOut), "2 entities|finstat")
}

func TestRun_GitSnapshotUnchangedRerun(t *testing.T) {
	dir := newProject(t)
	cfgPath := filepath.Join(dir, config.FileName)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Output.Git.AutoCommit = true
	require.NoError(t, config.Save(cfgPath, cfg))

	out, err := runFinstatStdout(t, "run", "--config", cfgPath, "--granularity", "quarterly")
	require.NoError(t, err, out)
	assert.Contains(t, out, "committed output snapshot")

	// The run log grows, the tables do not change.
	out, err = runFinstatStdout(t, "run", "--config", cfgPath, "--granularity", "quarterly")
	require.NoError(t, err, out)
	assert.Contains(t, out, "output unchanged, nothing to commit")

	entries, err := runlog.Read(filepath.Join(dir, "output"))
	require.NoError(t, err)
	runs := make(map[string]bool)
	for _, e := range entries {
		runs[e.RunID] = true
	}
	assert.Len(t, runs, 2, "both runs are logged")

	count := exec.Command("git", "rev-list", "--count", "HEAD")
	count.Dir = filepath.Join(dir, "output")
	gitOut, err := count.Output()
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(string(gitOut)))

	ignore, err := os.ReadFile(filepath.Join(dir, "output", ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), runlog.IgnorePattern)
}

func TestRun_Kind(t *testing.T) {
	dir := newProject(t)
	cfgPath := filepath.Join(dir, config.FileName)

	out, err := runFinstatStdout(t, "run", "--config", cfgPath, "--granularity", "quarterly", "--kind", "income_statement")
	require.NoError(t, err, out)
	assert.Contains(t, out, "skipped 1 table(s)")

	tall, err := os.ReadFile(filepath.Join(dir, "output", "statements_quarterly.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"accounts,code,year,value,report\n"+
			"revenue,AAA.JK,2024_2,5,income_statement\n"+
			"revenue,AAA.JK,2024_1,4,income_statement\n",
		string(tall))

	_, err = os.Stat(filepath.Join(dir, "output", "balance_sheet_quarterly.csv"))
	assert.True(t, os.IsNotExist(err), "balance sheet was not requested")

	out, err = runFinstat(t, "run", "--config", cfgPath, "--kind", "equity_statement")
	require.Error(t, err)
	assert.Contains(t, out, `unknown statement kind "equity_statement"`)
}

func TestRun_MissingRegistryAborts(t *testing.T) {
	dir := newProject(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "registry", "companies.csv")))

	out, err := runFinstat(t, "run", "--config", filepath.Join(dir, config.FileName))
	require.Error(t, err)
	assert.Contains(t, out, "registry unavailable")

	_, statErr := os.Stat(filepath.Join(dir, "output", "statements_quarterly.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_RegistrySchemaErrorAborts(t *testing.T) {
	dir := newProject(t)
	writeFile(t, filepath.Join(dir, "registry", "companies.csv"), "ticker\nAAA\n")

	out, err := runFinstat(t, "run", "--config", filepath.Join(dir, config.FileName))
	require.Error(t, err)
	assert.Contains(t, out, `column "code"`)
}

func TestRun_BadFlags(t *testing.T) {
	dir := newProject(t)
	cfgPath := filepath.Join(dir, config.FileName)

	_, err := runFinstat(t, "run", "--config", cfgPath, "--granularity", "monthly")
	assert.Error(t, err)

	_, err = runFinstat(t, "run", "--config", cfgPath, "--source", "yahoo")
	assert.Error(t, err)

	_, err = runFinstat(t, "run", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

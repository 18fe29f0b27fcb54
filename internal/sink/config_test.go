package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstat-dev/finstat/internal/config"
)

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.SetBaseDir(dir)
	cfg.Output.Formats = []string{config.FormatXLSX, config.FormatCSV}

	m, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, "xlsx+csv", m.Name())

	for _, r := range m.WriteEach(context.Background(), testOutput()) {
		require.NoError(t, r.Err)
	}
	_, err = os.Stat(filepath.Join(dir, "output", "statements_annual.xlsx"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "output", "statements_annual.csv"))
	assert.NoError(t, err)
}

func TestFromConfig_PostgresNeedsDSN(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Formats = []string{config.FormatPostgres}
	cfg.Output.Postgres.DSNEnv = "FINSTAT_TEST_UNSET_DSN"
	require.NoError(t, os.Unsetenv("FINSTAT_TEST_UNSET_DSN"))

	_, err := FromConfig(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FINSTAT_TEST_UNSET_DSN")
}

func TestFromConfig_UnknownFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Formats = []string{"parquet"}

	_, err := FromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

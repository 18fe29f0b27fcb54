package commands_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstat-dev/finstat/internal/config"
)

func TestRegistryList(t *testing.T) {
	dir := newProject(t)

	out, err := runFinstatStdout(t, "registry", "list", "--config", filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "AAA.JK\nBBB.JK\n", out)
}

const listingPage = `<html><body>
<table id="listing">
<tr><th>No</th><th>Code</th><th>Name</th></tr>
<tr><td>1</td><td>AAA</td><td>Alpha</td></tr>
<tr><td>2</td><td>BBB</td><td>Beta</td></tr>
</table>
</body></html>`

func TestRegistryScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "companies.csv")
	out, err := runFinstat(t, "registry", "scrape", "--url", srv.URL, "--table", "#listing", "--out", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "wrote 2 codes")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "code\nAAA\nBBB\n", string(data))
}

func TestRegistryScrape_Stdout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage)
	}))
	defer srv.Close()

	out, err := runFinstatStdout(t, "registry", "scrape", "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "code\nAAA\nBBB\n", out)
}

func TestRegistryScrape_Column(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage)
	}))
	defer srv.Close()

	out, err := runFinstatStdout(t, "registry", "scrape", "--url", srv.URL, "--header", "Code", "--column", "ticker")
	require.NoError(t, err)
	assert.Equal(t, "ticker\nAAA\nBBB\n", out)

	// Without --column the header follows registry.code_column.
	dir := newProject(t)
	cfgPath := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Registry.CodeColumn = "kode"
	require.NoError(t, config.Save(cfgPath, cfg))

	path := filepath.Join(dir, "registry", "companies.csv")
	out, err = runFinstat(t, "registry", "scrape", "--url", srv.URL, "--config", cfgPath, "--out", path)
	require.NoError(t, err, out)

	out, err = runFinstatStdout(t, "registry", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "AAA.JK\nBBB.JK\n", out)
}

func TestRegistryScrape_RequiresURL(t *testing.T) {
	_, err := runFinstat(t, "registry", "scrape")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runFinstat(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "finstat version")
}

//go:build !integration

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/asn-cli/internal/config"
)

const austriaListing = `<html><body><table class="table">
<tr><th>ASN</th><th>Name</th><th>IPv4</th><th>IPv6</th></tr>
<tr><td><a href="/AS679">AS679</a> </td><td>TUNET-AS - Technische Universitat Wien, AT</td><td>150,784</td><td>1,234</td></tr>
<tr><td>AS1853</td><td>ACONET</td><td>1,000</td><td>0</td></tr>
</table></body></html>`

func newListingServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupScrape points the global config at srv and swaps in an in-memory filesystem.
func setupScrape(t *testing.T, srv *httptest.Server) afero.Fs {
	t.Helper()
	cfg = &config.Config{
		Source: config.SourceConfig{
			BaseURL:    srv.URL,
			UserAgent:  "test-agent",
			TableClass: "table",
		},
		Export: config.ExportConfig{Dir: "/exports"},
	}

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/exports", 0o755))
	orig := appFs
	appFs = fs
	t.Cleanup(func() { appFs = orig })

	scrapeCmd.SetContext(context.Background())
	t.Cleanup(func() {
		scrapeCmd.SetContext(nil)
		scrapeCountry, scrapeOut = "", ""
	})
	return fs
}

func TestScrapeCmd_WritesExport(t *testing.T) {
	srv := newListingServer(t, map[string]string{"/countries/AT": austriaListing})
	fs := setupScrape(t, srv)
	scrapeCountry = "at"

	require.NoError(t, scrapeCmd.RunE(scrapeCmd, nil))

	data, err := afero.ReadFile(fs, "/exports/all_at_as.csv")
	require.NoError(t, err)
	assert.Equal(t,
		"country,asn,description,num_ipv6s\r\n"+
			"AT,679,\"All AS from AT - TUNET-AS - Technische Universitat Wien, AT\",1234\r\n",
		string(data))
}

func TestScrapeCmd_ExplicitOut(t *testing.T) {
	srv := newListingServer(t, map[string]string{"/countries/AT": austriaListing})
	fs := setupScrape(t, srv)
	scrapeCountry = "AT"
	scrapeOut = "/exports/custom.csv"

	require.NoError(t, scrapeCmd.RunE(scrapeCmd, nil))

	exists, err := afero.Exists(fs, "/exports/custom.csv")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestScrapeCmd_HeaderOnly(t *testing.T) {
	srv := newListingServer(t, map[string]string{
		"/countries/AT": `<table class="table"><tr><th>ASN</th><th>Name</th><th>IPv4</th><th>IPv6</th></tr></table>`,
	})
	fs := setupScrape(t, srv)
	scrapeCountry = "AT"

	require.NoError(t, scrapeCmd.RunE(scrapeCmd, nil))

	data, err := afero.ReadFile(fs, "/exports/all_at_as.csv")
	require.NoError(t, err)
	assert.Equal(t, "country,asn,description,num_ipv6s\r\n", string(data))
}

func TestScrapeCmd_NotFoundLeavesNoFile(t *testing.T) {
	srv := newListingServer(t, map[string]string{})
	fs := setupScrape(t, srv)
	scrapeCountry = "AT"

	err := scrapeCmd.RunE(scrapeCmd, nil)
	require.Error(t, err)
	assert.Equal(t, exitFetch, exitCode(err))
	assert.Contains(t, err.Error(), "unexpected status 404")

	entries, err := afero.ReadDir(fs, "/exports")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScrapeCmd_ParseErrorKeepsPreviousExport(t *testing.T) {
	srv := newListingServer(t, map[string]string{
		"/countries/AT": strings.Replace(austriaListing, "1,234", "n/a", 1),
	})
	fs := setupScrape(t, srv)
	require.NoError(t, afero.WriteFile(fs, "/exports/all_at_as.csv", []byte("previous run"), 0o644))
	scrapeCountry = "AT"

	err := scrapeCmd.RunE(scrapeCmd, nil)
	require.Error(t, err)
	assert.Equal(t, exitParse, exitCode(err))

	data, err := afero.ReadFile(fs, "/exports/all_at_as.csv")
	require.NoError(t, err)
	assert.Equal(t, "previous run", string(data))
}

func TestScrapeCmd_MissingTable(t *testing.T) {
	srv := newListingServer(t, map[string]string{"/countries/AT": `<html><body>down for maintenance</body></html>`})
	setupScrape(t, srv)
	scrapeCountry = "AT"

	err := scrapeCmd.RunE(scrapeCmd, nil)
	require.Error(t, err)
	assert.Equal(t, exitStructure, exitCode(err))
}

func TestScrapeCmd_InvalidCountry(t *testing.T) {
	srv := newListingServer(t, map[string]string{})
	setupScrape(t, srv)
	scrapeCountry = "Austria"

	err := scrapeCmd.RunE(scrapeCmd, nil)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestScrapeCmd_WritesToDisk(t *testing.T) {
	srv := newListingServer(t, map[string]string{"/countries/AT": austriaListing})
	setupScrape(t, srv)
	appFs = afero.NewOsFs()
	dir := t.TempDir()
	cfg.Export.Dir = dir
	scrapeCountry = "AT"

	require.NoError(t, scrapeCmd.RunE(scrapeCmd, nil))

	data, err := os.ReadFile(dir + "/all_at_as.csv")
	require.NoError(t, err)
	assert.Contains(t, string(data), "AT,679,")
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "all_at_as.csv", exportName("AT"))
}

func TestNewExtractor_UsesConfig(t *testing.T) {
	cfg = &config.Config{Source: config.SourceConfig{BaseURL: "http://127.0.0.1:9999/", RatePerSec: 1}}
	assert.Equal(t, "http://127.0.0.1:9999/countries/DE", newExtractor().URL("DE"))
}

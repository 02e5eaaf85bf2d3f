package commands

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlist-scraper/config"
	"carlist-scraper/storage"
	"carlist-scraper/utils"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	c := &config.Config{DataDir: t.TempDir(), ParamsPath: "params.yaml", MaxPages: 20, LifespanYears: 10}
	err := ExecuteContext(context.Background(), c, utils.NewLoggerTo(io.Discard, "error"))
	return out.String(), err
}

func TestExtractFromSavedPage(t *testing.T) {
	page := filepath.Join(t.TempDir(), "listing.html")
	html := `<html><script>{"success":true,"coe":"$54,001","depreciation":"$9,870/yr",` +
		`"price":"$88,800","transmission":"Auto"}</script></html>`
	require.NoError(t, os.WriteFile(page, []byte(html), 0o644))

	out, err := run(t, "extract", "https://sgcarmart.test/info/1", "--html", page)
	require.NoError(t, err)

	assert.Contains(t, out, "88800")
	assert.Contains(t, out, "https://sgcarmart.test/info/1")
	assert.Contains(t, out, "4/18 fields")
	assert.Contains(t, out, "missing: fuel_type")
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	params := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(params, []byte("pqp:\n  default_cat: A\n  categories:\n    A: {five_year: 5000, ten_year: 10000}\n"), 0o644))

	csv := "price,transmission,arf,reg_date,carmodel,url\n" +
		"98000,Auto,40000,19-Jan-2016,Toyota Corolla Altis 1.6A,https://sgcarmart.test/info/a\n" +
		"10000,,90000,01-Jan-2020,No Gearbox,https://sgcarmart.test/info/b\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carlist_20240309.csv"), []byte(csv), 0o644))

	out, err := run(t, "process", "--data-dir", dir, "--params", params)
	require.NoError(t, err)

	assert.Contains(t, out, "Toyota Corolla Altis 1.6A")
	assert.NotContains(t, out, "No Gearbox")
	_, err = os.Stat(filepath.Join(dir, "carlist_20240309_processed.csv"))
	assert.NoError(t, err)
}

func TestProcessCommandWithoutTables(t *testing.T) {
	dir := t.TempDir()
	params := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(params, []byte("pqp:\n  categories:\n    A: {five_year: 1, ten_year: 2}\n"), 0o644))

	_, err := run(t, "process", "--data-dir", filepath.Join(dir, "empty"), "--params", params)
	assert.ErrorIs(t, err, utils.ErrNoTables)
}

func TestPromptPages(t *testing.T) {
	var out bytes.Buffer

	n, err := promptPages(bufio.NewReader(strings.NewReader("\n")), &out, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = promptPages(bufio.NewReader(strings.NewReader("3\n")), &out, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = promptPages(bufio.NewReader(strings.NewReader("many\n")), &out, 20)
	assert.Equal(t, utils.KindConfig, utils.KindOf(err))
}

func TestPromptLineSharesReader(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("https://sgcarmart.test/list\n4"))
	var out bytes.Buffer

	url, err := promptLine(in, &out, "Enter the URL to scrape: ")
	require.NoError(t, err)
	assert.Equal(t, "https://sgcarmart.test/list", url)

	n, err := promptPages(in, &out, 20)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Contains(t, out.String(), "Enter the URL to scrape: ")
}

func TestEnrichAndReportWithoutTablesFails(t *testing.T) {
	cfg = &config.Config{LifespanYears: 10}
	logger = utils.NewLoggerTo(io.Discard, "error")
	params, err := config.ParseParams([]byte("pqp:\n  categories:\n    A: {five_year: 1, ten_year: 2}\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	err = enrichAndReport(cmd, params, storage.NewCSVStore(t.TempDir()), 5)
	assert.ErrorIs(t, err, utils.ErrNoTables)
	assert.Empty(t, out.String())
}

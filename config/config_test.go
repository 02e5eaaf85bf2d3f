package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlist-scraper/utils"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"MAX_PAGES", "DATA_DIR", "MAX_RETRIES", "RETRY_DELAY_MS", "WAIT_TIMEOUT_SEC", "LIFESPAN_YEARS", "HEADLESS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, 20, cfg.MaxPages)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay())
	assert.Equal(t, 20*time.Second, cfg.WaitTimeout)
	assert.Equal(t, 10, cfg.LifespanYears)
	assert.True(t, cfg.Headless)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_PAGES", "3")
	t.Setenv("RETRY_DELAY_MS", "250")
	t.Setenv("HEADLESS", "false")
	t.Setenv("LIFESPAN_YEARS", "not-a-number")

	cfg := Load()
	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay())
	assert.False(t, cfg.Headless)
	assert.Equal(t, 10, cfg.LifespanYears)
}

func TestParseParams(t *testing.T) {
	doc := []byte(`
pqp:
  default_cat: B
  categories:
    A: {five_year: 50000, ten_year: 100000}
    B: {five_year: 60500, ten_year: 121000}
`)
	p, err := ParseParams(doc)
	require.NoError(t, err)
	assert.Equal(t, "B", p.PQP.DefaultCat)
	assert.Equal(t, PQPCategory{FiveYear: 60500, TenYear: 121000}, p.Default())
}

func TestParseParamsDefaultsToCategoryA(t *testing.T) {
	p, err := ParseParams([]byte("pqp:\n  categories:\n    A: {five_year: 1, ten_year: 2}\n"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.Default().TenYear)
}

func TestParseParamsMissingCategory(t *testing.T) {
	_, err := ParseParams([]byte("pqp:\n  default_cat: E\n  categories:\n    A: {five_year: 1, ten_year: 2}\n"))
	require.Error(t, err)
	assert.Equal(t, utils.KindConfig, utils.KindOf(err))
}

func TestLoadParamsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pqp:\n  default_cat: A\n  categories:\n    A: {five_year: 5, ten_year: 10}\n"), 0o644))

	p, err := LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, p.Default().FiveYear)

	_, err = LoadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

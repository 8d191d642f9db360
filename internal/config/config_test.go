package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Server.Addr)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5, cfg.Database.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Database.RetryWait)
	assert.Equal(t, 3, cfg.Sync.MinLevel)
	assert.Equal(t, "primary", cfg.Google.CalendarId)
	assert.Equal(t, "https://tradingeconomics.com/calendar", cfg.Scraper.URL)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("ECOCAL_DB_HOST", "db.internal")
	t.Setenv("ECOCAL_DB_PORT", "5433")
	t.Setenv("ECOCAL_DB_RETRYWAIT", "500ms")
	t.Setenv("ECOCAL_SYNC_MINLEVEL", "2")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.RetryWait)
	assert.Equal(t, 2, cfg.Sync.MinLevel)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "application.yaml")
	writeFile(t, path, `
db:
  host: from-file
  name: calendar
sync:
  minlevel: 1
`)
	t.Setenv("ECOCAL_DB_HOST", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	// env wins over file, file wins over defaults
	assert.Equal(t, "from-env", cfg.Database.Host)
	assert.Equal(t, "calendar", cfg.Database.Name)
	assert.Equal(t, 1, cfg.Sync.MinLevel)
	assert.Equal(t, 5432, cfg.Database.Port)
}

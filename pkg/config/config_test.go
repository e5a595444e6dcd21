package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMergesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
scraper:
  url: https://shop.example.com/collections/tea
  headless: false
store:
  backend: sqlite
  database:
    dsn: /tmp/baseline.db
notify:
  channel: none
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://shop.example.com/collections/tea", cfg.Scraper.URL)
	require.False(t, cfg.Scraper.HeadlessEnabled())
	require.Equal(t, 2*time.Minute, cfg.Scraper.NavigationTimeout)
	require.Equal(t, StoreSQLite, cfg.Store.Backend)
	require.Equal(t, 10, cfg.Store.ChunkSize)
	require.Equal(t, "/tmp/baseline.db", cfg.Store.Database.DSN)
	require.Equal(t, "8080", cfg.Server.Port)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	require.Equal(t, Default().Store, cfg.Store)
	require.True(t, cfg.Scraper.HeadlessEnabled())
	require.False(t, cfg.Scraper.NoSandboxEnabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCRAPING_URL", "https://env.example.com")
	t.Setenv("AIRTABLE_API_KEY", "key")
	t.Setenv("AIRTABLE_BASE_ID", "app1")
	t.Setenv("AIRTABLE_TABLE_NAME", "Products")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.Scraper.URL)
	require.Equal(t, "Products", cfg.Store.Airtable.Table)
	require.Equal(t, "42", cfg.Notify.Telegram.ChatID)
	require.Equal(t, "9090", cfg.Server.Port)
	require.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WEBHOOK_URL=https://hooks.example.com/in\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WEBHOOK_URL") })

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example.com/in", cfg.Forward.WebhookURL)
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(writeConfig(t, "scraper: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "scraper.url")
	require.Contains(t, err.Error(), "store.airtable")
	require.Contains(t, err.Error(), "notify.telegram")

	cfg.Store.Backend = "mongo"
	require.ErrorContains(t, cfg.Validate(), `unknown store backend "mongo"`)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "cookie", cfg.Consent.Store.Method)
		assert.Equal(t, "klaro", cfg.Consent.Store.Name)
		assert.Equal(t, 120, cfg.Consent.Store.CookieExpiresAfterDays)
		assert.Equal(t, 64, cfg.Consent.EventLogLimit)
		assert.Equal(t, "consent:", cfg.Redis.KeyPrefix)
	})

	t.Run("Environment Overrides", func(t *testing.T) {
		t.Setenv("CONSENT_STORE_METHOD", "session")
		t.Setenv("SERVER_PORT", "9090")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "session", cfg.Consent.Store.Method)
		assert.Equal(t, "9090", cfg.Server.Port)
	})

	t.Run("Dotenv File", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CONSENT_CONFIG_NAME=site\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("CONSENT_CONFIG_NAME") })

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "site", cfg.Consent.ConfigName)
	})
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
consent:
  source: object
  store:
    method: local
    table: visitor_consents
redis:
  url: redis://localhost:6379/0
`), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "object", cfg.Consent.Source)
	assert.Equal(t, "local", cfg.Consent.Store.Method)
	assert.Equal(t, "visitor_consents", cfg.Consent.Store.Table)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	// untouched keys keep their defaults
	assert.Equal(t, "klaro", cfg.Consent.Store.Name)

	t.Run("Environment Beats File", func(t *testing.T) {
		t.Setenv("CONSENT_STORE_METHOD", "session")
		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "session", cfg.Consent.Store.Method)
	})

	t.Run("Malformed File", func(t *testing.T) {
		bad := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(bad, "config.yaml"), []byte("consent: [\n"), 0o644))
		_, err := LoadConfig(bad)
		assert.Error(t, err)
	})
}

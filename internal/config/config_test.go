package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"KNITS_CONFIG", "SSH_ADDR", "SSH_HOSTKEY_PATH", "SSH_AUTH_MODE", "SSH_ALLOWLIST_PATH",
	"CATALOG_SOURCE", "CATALOG_URL", "CACHE_TTL_SECONDS", "CART_DB_PATH",
	"CHECKOUT_REDIRECT_SECONDS", "METRICS_ADDR", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":23234", cfg.SSHAddr)
	assert.Equal(t, AuthModeAllowlist, cfg.SSHAuthMode)
	assert.Equal(t, CatalogEmbedded, cfg.CatalogSource)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 3*time.Second, cfg.CheckoutRedirect)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, log.InfoLevel, cfg.Level())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SSH_ADDR", ":2222")
	t.Setenv("SSH_AUTH_MODE", "public")
	t.Setenv("CATALOG_SOURCE", "remote")
	t.Setenv("CATALOG_URL", "http://catalog:18080")
	t.Setenv("CACHE_TTL_SECONDS", "5")
	t.Setenv("CHECKOUT_REDIRECT_SECONDS", "10")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":2222", cfg.SSHAddr)
	assert.Equal(t, AuthModePublic, cfg.SSHAuthMode)
	assert.Equal(t, CatalogRemote, cfg.CatalogSource)
	assert.Equal(t, "http://catalog:18080", cfg.CatalogURL)
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.CheckoutRedirect)
	assert.Equal(t, log.DebugLevel, cfg.Level())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "knits.yaml")
	doc := `
ssh_addr: ":3000"
catalog_source: remote
catalog_url: http://from-file
cache_ttl_seconds: 30
metrics_addr: ":9100"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	t.Setenv("KNITS_CONFIG", path)
	t.Setenv("CATALOG_URL", "http://from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.SSHAddr)
	assert.Equal(t, CatalogRemote, cfg.CatalogSource)
	assert.Equal(t, "http://from-env", cfg.CatalogURL, "environment wins over file")
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, "./carts.db", cfg.CartDBPath, "unset keys keep defaults")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad auth mode", env: map[string]string{"SSH_AUTH_MODE": "password"}},
		{name: "bad catalog source", env: map[string]string{"CATALOG_SOURCE": "ftp"}},
		{name: "bad ttl", env: map[string]string{"CACHE_TTL_SECONDS": "soon"}},
		{name: "negative ttl", env: map[string]string{"CACHE_TTL_SECONDS": "-1"}},
		{name: "zero redirect", env: map[string]string{"CHECKOUT_REDIRECT_SECONDS": "0"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "chatty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ssh_addr: [unclosed"), 0o644))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRemoteRequiresURL(t *testing.T) {
	cfg := Default()
	cfg.CatalogSource = CatalogRemote
	cfg.CatalogURL = ""

	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

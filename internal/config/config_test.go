package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "127.0.0.1"
port = 9000
log_level = "debug"

[database]
path = "/var/lib/watchmix/watchmix.db"

[letterboxd]
base_url = "https://letterboxd.example"
watchlist_ttl = "30m"

[availability]
url = "https://motn.example"
api_key = "secret"
country = "us"
ttl = "48h"

[session]
debounce = "100ms"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/watchmix/watchmix.db", cfg.Database.Path)
	assert.Equal(t, "https://letterboxd.example", cfg.Letterboxd.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.Letterboxd.WatchlistTTL)
	assert.Equal(t, "secret", cfg.Availability.APIKey)
	assert.Equal(t, "us", cfg.Availability.Country)
	assert.Equal(t, 48*time.Hour, cfg.Availability.TTL)
	assert.Equal(t, 100*time.Millisecond, cfg.Session.Debounce)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[availability]
api_key = "secret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8787, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "./data/watchmix.db", cfg.Database.Path)
	assert.Equal(t, time.Hour, cfg.Letterboxd.WatchlistTTL)
	assert.Equal(t, "de", cfg.Availability.Country)
	assert.Equal(t, 7*24*time.Hour, cfg.Availability.TTL)
	assert.Equal(t, 200*time.Millisecond, cfg.Session.Debounce)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("WATCHMIX_API_KEY", "from-env")

	path := writeConfig(t, `
[availability]
api_key = "${WATCHMIX_API_KEY}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Availability.APIKey)
}

func TestLoad_UnsetEnvVarLeftVerbatim(t *testing.T) {
	path := writeConfig(t, `
[availability]
api_key = "${WATCHMIX_DEFINITELY_UNSET}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${WATCHMIX_DEFINITELY_UNSET}", cfg.Availability.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeConfig(t, `[server`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.Availability.APIKey = "" },
			wantErr: "availability.api_key",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Server.LogLevel = "verbose" },
			wantErr: "server.log_level",
		},
		{
			name:    "bad country code",
			mutate:  func(c *Config) { c.Availability.Country = "deu" },
			wantErr: "availability.country",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			cfg.Availability.APIKey = "secret"
			tt.mutate(cfg)

			errs := cfg.Validate()
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Letterboxd   LetterboxdConfig   `toml:"letterboxd"`
	Availability AvailabilityConfig `toml:"availability"`
	Session      SessionConfig      `toml:"session"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LetterboxdConfig struct {
	BaseURL      string        `toml:"base_url"`
	WatchlistTTL time.Duration `toml:"watchlist_ttl"`
}

type AvailabilityConfig struct {
	URL     string        `toml:"url"`
	APIKey  string        `toml:"api_key"`
	Country string        `toml:"country"`
	TTL     time.Duration `toml:"ttl"`
}

type SessionConfig struct {
	Debounce time.Duration `toml:"debounce"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8787
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/watchmix.db"
	}
	if c.Letterboxd.WatchlistTTL == 0 {
		c.Letterboxd.WatchlistTTL = time.Hour
	}
	if c.Availability.Country == "" {
		c.Availability.Country = "de"
	}
	if c.Availability.TTL == 0 {
		c.Availability.TTL = 7 * 24 * time.Hour
	}
	if c.Session.Debounce == 0 {
		c.Session.Debounce = 200 * time.Millisecond
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if c.Availability.APIKey == "" {
		errs = append(errs, "availability.api_key: required")
	}
	if len(c.Availability.Country) != 2 {
		errs = append(errs, fmt.Sprintf("availability.country: must be a two-letter country code, got %q", c.Availability.Country))
	}

	return errs
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Leave unchanged if not found
	})
}

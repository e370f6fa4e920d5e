// Package config handles configuration from an optional YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// AuthMode represents the SSH authentication mode.
type AuthMode string

const (
	AuthModeAllowlist AuthMode = "allowlist"
	AuthModePublic    AuthMode = "public"
)

// CatalogSource selects where products come from.
type CatalogSource string

const (
	CatalogEmbedded CatalogSource = "embedded"
	CatalogRemote   CatalogSource = "remote"
)

// Config holds all application configuration.
type Config struct {
	// SSH server settings
	SSHAddr        string   `yaml:"ssh_addr"`
	SSHHostKeyPath string   `yaml:"ssh_hostkey_path"`
	SSHAuthMode    AuthMode `yaml:"ssh_auth_mode"`
	AllowlistPath  string   `yaml:"ssh_allowlist_path"`

	// Catalog settings
	CatalogSource CatalogSource `yaml:"catalog_source"`
	CatalogURL    string        `yaml:"catalog_url"`
	CacheTTL      time.Duration `yaml:"-"`

	// Cart persistence; empty keeps carts in memory only.
	CartDBPath string `yaml:"cart_db_path"`

	CheckoutRedirect time.Duration `yaml:"-"`

	// Empty disables the metrics listener.
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`

	CacheTTLSeconds         int `yaml:"cache_ttl_seconds"`
	CheckoutRedirectSeconds int `yaml:"checkout_redirect_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SSHAddr:                 ":23234",
		SSHHostKeyPath:          "./.ssh_host_ed25519_key",
		SSHAuthMode:             AuthModeAllowlist,
		AllowlistPath:           "./allowlist_authorized_keys",
		CatalogSource:           CatalogEmbedded,
		CatalogURL:              "http://127.0.0.1:18080",
		CartDBPath:              "./carts.db",
		LogLevel:                "info",
		CacheTTLSeconds:         60,
		CheckoutRedirectSeconds: 3,
	}
}

// Load reads the file named by KNITS_CONFIG (if any) and then the
// environment.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("KNITS_CONFIG"))
}

// LoadFile layers defaults, the YAML file at path (skipped when empty) and
// environment variables, in that order, and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
		}
	}

	cfg.SSHAddr = getEnv("SSH_ADDR", cfg.SSHAddr)
	cfg.SSHHostKeyPath = getEnv("SSH_HOSTKEY_PATH", cfg.SSHHostKeyPath)
	cfg.SSHAuthMode = AuthMode(getEnv("SSH_AUTH_MODE", string(cfg.SSHAuthMode)))
	cfg.AllowlistPath = getEnv("SSH_ALLOWLIST_PATH", cfg.AllowlistPath)
	cfg.CatalogSource = CatalogSource(getEnv("CATALOG_SOURCE", string(cfg.CatalogSource)))
	cfg.CatalogURL = getEnv("CATALOG_URL", cfg.CatalogURL)
	cfg.CartDBPath = getEnv("CART_DB_PATH", cfg.CartDBPath)
	cfg.MetricsAddr = getEnv("METRICS_ADDR", cfg.MetricsAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.CacheTTLSeconds, err = getEnvInt("CACHE_TTL_SECONDS", cfg.CacheTTLSeconds); err != nil {
		return nil, err
	}
	if cfg.CheckoutRedirectSeconds, err = getEnvInt("CHECKOUT_REDIRECT_SECONDS", cfg.CheckoutRedirectSeconds); err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	cfg.CheckoutRedirect = time.Duration(cfg.CheckoutRedirectSeconds) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.SSHAuthMode != AuthModeAllowlist && c.SSHAuthMode != AuthModePublic {
		return fmt.Errorf("%w: SSH_AUTH_MODE must be 'allowlist' or 'public'", ErrInvalidConfig)
	}
	switch c.CatalogSource {
	case CatalogEmbedded:
	case CatalogRemote:
		if c.CatalogURL == "" {
			return fmt.Errorf("%w: CATALOG_URL is required when CATALOG_SOURCE is 'remote'", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: CATALOG_SOURCE must be 'embedded' or 'remote'", ErrInvalidConfig)
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("%w: CACHE_TTL_SECONDS must not be negative", ErrInvalidConfig)
	}
	if c.CheckoutRedirectSeconds <= 0 {
		return fmt.Errorf("%w: CHECKOUT_REDIRECT_SECONDS must be positive", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a valid integer", ErrInvalidConfig, key)
	}
	return n, nil
}

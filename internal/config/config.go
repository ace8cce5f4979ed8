// Package config loads layered TOML configuration with TRANSFLOW_* environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/database"
	"github.com/JaimeStill/transflow/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvTransflowEnv             = "TRANSFLOW_ENV"
	EnvTransflowConfigDir       = "TRANSFLOW_CONFIG_DIR"
	EnvTransflowShutdownTimeout = "TRANSFLOW_SHUTDOWN_TIMEOUT"
	EnvTransflowVersion         = "TRANSFLOW_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "TRANSFLOW_DB_HOST",
	Port:            "TRANSFLOW_DB_PORT",
	Name:            "TRANSFLOW_DB_NAME",
	User:            "TRANSFLOW_DB_USER",
	Password:        "TRANSFLOW_DB_PASSWORD",
	SSLMode:         "TRANSFLOW_DB_SSL_MODE",
	MaxOpenConns:    "TRANSFLOW_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "TRANSFLOW_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "TRANSFLOW_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "TRANSFLOW_DB_CONN_TIMEOUT",
	AutoMigrate:     "TRANSFLOW_DB_AUTO_MIGRATE",
}

var storageEnv = &storage.Env{
	ContainerName:    "TRANSFLOW_STORAGE_CONTAINER_NAME",
	ConnectionString: "TRANSFLOW_STORAGE_CONNECTION_STRING",
	ServiceURL:       "TRANSFLOW_STORAGE_SERVICE_URL",
	PublishPrefix:    "TRANSFLOW_STORAGE_PUBLISH_PREFIX",
}

var authEnv = &identity.Env{
	Mode:      "TRANSFLOW_AUTH_MODE",
	IssuerURL: "TRANSFLOW_AUTH_ISSUER_URL",
	JWKSURL:   "TRANSFLOW_AUTH_JWKS_URL",
	ClientID:  "TRANSFLOW_AUTH_CLIENT_ID",
	IDClaim:   "TRANSFLOW_AUTH_ID_CLAIM",
	RoleClaim: "TRANSFLOW_AUTH_ROLE_CLAIM",
}

// Config is the root configuration for the Transflow service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Auth            identity.Config `toml:"auth"`
	Log             LogConfig       `toml:"log"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns TRANSFLOW_ENV, or "local" when unset.
func (c *Config) Env() string {
	if env := os.Getenv(EnvTransflowEnv); env != "" {
		return env
	}
	return "local"
}

func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load layers config.toml and then config.<TRANSFLOW_ENV>.toml from
// TRANSFLOW_CONFIG_DIR (default the working directory), applies
// environment overrides and validates. Missing files are skipped, so a
// deployment may configure everything through the environment. Unknown
// keys in either file are an error.
func Load() (*Config, error) {
	dir := os.Getenv(EnvTransflowConfigDir)
	if dir == "" {
		dir = "."
	}

	files := []string{BaseConfigFile}
	if env := os.Getenv(EnvTransflowEnv); env != "" {
		files = append(files, fmt.Sprintf(OverlayConfigPattern, env))
	}

	cfg := &Config{}
	for _, name := range files {
		layer, err := decodeFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cfg.Merge(layer)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Merge overwrites the fields overlay sets, section by section.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Log.Merge(&overlay.Log)
}

func (c *Config) finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if v := os.Getenv(EnvTransflowShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvTransflowVersion); v != "" {
		c.Version = v
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"auth", func() error { return c.Auth.Finalize(authEnv) }},
		{"log", c.Log.Finalize},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func decodeFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

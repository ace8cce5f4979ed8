package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "TRANSFLOW_SERVER_HOST"
	EnvServerPort              = "TRANSFLOW_SERVER_PORT"
	EnvServerReadTimeout       = "TRANSFLOW_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "TRANSFLOW_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "TRANSFLOW_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "TRANSFLOW_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "TRANSFLOW_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Timeouts are Go duration
// strings.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// timeout binds one duration field to its TOML key, default and env var.
type timeout struct {
	key   string
	field *string
	def   string
	env   string
}

func (c *ServerConfig) timeouts() []timeout {
	return []timeout{
		{"read_timeout", &c.ReadTimeout, "1m", EnvServerReadTimeout},
		{"read_header_timeout", &c.ReadHeaderTimeout, "10s", EnvServerReadHeaderTimeout},
		{"write_timeout", &c.WriteTimeout, "15m", EnvServerWriteTimeout},
		{"idle_timeout", &c.IdleTimeout, "2m", EnvServerIdleTimeout},
		{"shutdown_timeout", &c.ShutdownTimeout, "30s", EnvServerShutdownTimeout},
	}
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration       { return duration(c.ReadTimeout) }
func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration { return duration(c.ReadHeaderTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration      { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration       { return duration(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration   { return duration(c.ShutdownTimeout) }

// Finalize applies defaults, then environment overrides, then validates.
func (c *ServerConfig) Finalize() error {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if port, err := strconv.Atoi(os.Getenv(EnvServerPort)); err == nil {
		c.Port = port
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	for _, t := range c.timeouts() {
		if *t.field == "" {
			*t.field = t.def
		}
		if v := os.Getenv(t.env); v != "" {
			*t.field = v
		}
		if _, err := time.ParseDuration(*t.field); err != nil {
			return fmt.Errorf("invalid %s: %w", t.key, err)
		}
	}
	return nil
}

// Merge overwrites fields that overlay sets.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	dst := c.timeouts()
	for i, t := range overlay.timeouts() {
		if *t.field != "" {
			*dst[i].field = *t.field
		}
	}
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

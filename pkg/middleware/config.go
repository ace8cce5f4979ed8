package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig is the cross-origin policy. A nil Enabled means the policy
// was never configured and counts as disabled.
type CORSConfig struct {
	Enabled          *bool    `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORSConfig.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

func (c *CORSConfig) Active() bool { return c.Enabled != nil && *c.Enabled }

func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Principal-ID", "X-Principal-Role"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}
	if env != nil {
		envBool(env.Enabled, &c.Enabled)
		envList(env.Origins, &c.Origins)
		envList(env.AllowedMethods, &c.AllowedMethods)
		envList(env.AllowedHeaders, &c.AllowedHeaders)
		if v, err := strconv.ParseBool(lookup(env.AllowCredentials)); err == nil {
			c.AllowCredentials = v
		}
		envInt(env.MaxAge, &c.MaxAge)
	}
	return nil
}

// Merge overwrites fields that overlay sets. AllowCredentials only ever
// switches on.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
	if overlay.AllowCredentials {
		c.AllowCredentials = true
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

// RateLimitConfig is the per-caller token bucket. Callers idle longer than
// IdleTTL lose their bucket.
type RateLimitConfig struct {
	Enabled           *bool   `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	IdleTTL           string  `toml:"idle_ttl"`
}

// RateLimitEnv names the environment variables that override RateLimitConfig.
type RateLimitEnv struct {
	Enabled           string
	RequestsPerSecond string
	Burst             string
	IdleTTL           string
}

func (c *RateLimitConfig) Active() bool { return c.Enabled != nil && *c.Enabled }

func (c *RateLimitConfig) IdleTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTTL)
	return d
}

func (c *RateLimitConfig) Finalize(env *RateLimitEnv) error {
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 10
	}
	if c.Burst <= 0 {
		c.Burst = 20
	}
	if c.IdleTTL == "" {
		c.IdleTTL = "10m"
	}
	if env != nil {
		envBool(env.Enabled, &c.Enabled)
		if v, err := strconv.ParseFloat(lookup(env.RequestsPerSecond), 64); err == nil {
			c.RequestsPerSecond = v
		}
		envInt(env.Burst, &c.Burst)
		if v := lookup(env.IdleTTL); v != "" {
			c.IdleTTL = v
		}
	}

	switch ttl, err := time.ParseDuration(c.IdleTTL); {
	case c.RequestsPerSecond <= 0:
		return errors.New("requests_per_second must be positive")
	case c.Burst < 1:
		return errors.New("burst must be positive")
	case err != nil:
		return fmt.Errorf("invalid idle_ttl: %w", err)
	case ttl <= 0:
		return errors.New("idle_ttl must be positive")
	}
	return nil
}

func (c *RateLimitConfig) Merge(overlay *RateLimitConfig) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.RequestsPerSecond != 0 {
		c.RequestsPerSecond = overlay.RequestsPerSecond
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
	if overlay.IdleTTL != "" {
		c.IdleTTL = overlay.IdleTTL
	}
}

func lookup(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}

func envBool(key string, dst **bool) {
	if v, err := strconv.ParseBool(lookup(key)); err == nil {
		*dst = &v
	}
}

func envInt(key string, dst *int) {
	if v, err := strconv.Atoi(lookup(key)); err == nil {
		*dst = v
	}
}

// envList replaces dst with the non-blank entries of a comma-separated value.
func envList(key string, dst *[]string) {
	v := lookup(key)
	if v == "" {
		return
	}
	var items []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}

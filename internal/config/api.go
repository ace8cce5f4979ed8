package config

import (
	"cmp"
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/transflow/pkg/formatting"
	"github.com/JaimeStill/transflow/pkg/middleware"
	"github.com/JaimeStill/transflow/pkg/openapi"
	"github.com/JaimeStill/transflow/pkg/pagination"
)

const defaultMaxContentSize = 5 * 1024 * 1024

var corsEnv = &middleware.CORSEnv{
	Enabled:          "TRANSFLOW_CORS_ENABLED",
	Origins:          "TRANSFLOW_CORS_ORIGINS",
	AllowedMethods:   "TRANSFLOW_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "TRANSFLOW_CORS_ALLOWED_HEADERS",
	AllowCredentials: "TRANSFLOW_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "TRANSFLOW_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "TRANSFLOW_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "TRANSFLOW_PAGINATION_MAX_PAGE_SIZE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:           "TRANSFLOW_RATE_LIMIT_ENABLED",
	RequestsPerSecond: "TRANSFLOW_RATE_LIMIT_RPS",
	Burst:             "TRANSFLOW_RATE_LIMIT_BURST",
	IdleTTL:           "TRANSFLOW_RATE_LIMIT_IDLE_TTL",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "TRANSFLOW_OPENAPI_TITLE",
	Description: "TRANSFLOW_OPENAPI_DESCRIPTION",
	ServerURL:   "TRANSFLOW_OPENAPI_SERVER_URL",
}

// APIConfig is the [api] section: routing, body limits and the HTTP policies
// applied in front of every domain route.
type APIConfig struct {
	BasePath       string                     `toml:"base_path"`
	MaxContentSize string                     `toml:"max_content_size"`
	CORS           middleware.CORSConfig      `toml:"cors"`
	RateLimit      middleware.RateLimitConfig `toml:"rate_limit"`
	Pagination     pagination.Config          `toml:"pagination"`
	OpenAPI        openapi.Config             `toml:"openapi"`
}

// MaxContentSizeBytes is the largest version body the API accepts.
func (c *APIConfig) MaxContentSizeBytes() int64 {
	if size, err := formatting.ParseBytes(c.MaxContentSize); err == nil {
		return size
	}
	return defaultMaxContentSize
}

// Finalize resolves the API section and each nested policy.
func (c *APIConfig) Finalize() error {
	c.BasePath = cmp.Or(os.Getenv("TRANSFLOW_API_BASE_PATH"), c.BasePath, "/api")
	c.MaxContentSize = cmp.Or(os.Getenv("TRANSFLOW_API_MAX_CONTENT_SIZE"), c.MaxContentSize, "5MB")

	if len(c.BasePath) < 2 || c.BasePath[0] != '/' || strings.Contains(c.BasePath[1:], "/") {
		return fmt.Errorf("invalid base_path %q: want a single segment such as /api", c.BasePath)
	}
	if _, err := formatting.ParseBytes(c.MaxContentSize); err != nil {
		return fmt.Errorf("invalid max_content_size: %w", err)
	}

	nested := []struct {
		name     string
		finalize func() error
	}{
		{"cors", func() error { return c.CORS.Finalize(corsEnv) }},
		{"rate_limit", func() error { return c.RateLimit.Finalize(rateLimitEnv) }},
		{"pagination", func() error { return c.Pagination.Finalize(paginationEnv) }},
		{"openapi", func() error { return c.OpenAPI.Finalize(openAPIEnv) }},
	}
	for _, n := range nested {
		if err := n.finalize(); err != nil {
			return fmt.Errorf("%s: %w", n.name, err)
		}
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	c.BasePath = cmp.Or(overlay.BasePath, c.BasePath)
	c.MaxContentSize = cmp.Or(overlay.MaxContentSize, c.MaxContentSize)
	c.CORS.Merge(&overlay.CORS)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

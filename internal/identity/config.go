package identity

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider modes.
const (
	ModeOIDC   = "oidc"
	ModeHeader = "header"
)

// Config selects and configures the identity provider.
type Config struct {
	Mode      string `toml:"mode"`
	IssuerURL string `toml:"issuer_url"`
	JWKSURL   string `toml:"jwks_url"`
	ClientID  string `toml:"client_id"`
	IDClaim   string `toml:"id_claim"`
	RoleClaim string `toml:"role_claim"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode      string
	IssuerURL string
	JWKSURL   string
	ClientID  string
	IDClaim   string
	RoleClaim string
}

// New creates the Provider selected by cfg.Mode.
func New(ctx context.Context, cfg *Config) (Provider, error) {
	switch cfg.Mode {
	case ModeOIDC:
		return NewOIDC(ctx, cfg), nil
	case ModeHeader:
		return HeaderProvider{}, nil
	}
	return nil, fmt.Errorf("unsupported identity mode %q", cfg.Mode)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	c.deriveJWKS()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.IssuerURL != "" {
		c.IssuerURL = overlay.IssuerURL
	}
	if overlay.JWKSURL != "" {
		c.JWKSURL = overlay.JWKSURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.IDClaim != "" {
		c.IDClaim = overlay.IDClaim
	}
	if overlay.RoleClaim != "" {
		c.RoleClaim = overlay.RoleClaim
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeOIDC
	}
	if c.IDClaim == "" {
		c.IDClaim = "oid"
	}
	if c.RoleClaim == "" {
		c.RoleClaim = "roles"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Mode, &c.Mode)
	set(env.IssuerURL, &c.IssuerURL)
	set(env.JWKSURL, &c.JWKSURL)
	set(env.ClientID, &c.ClientID)
	set(env.IDClaim, &c.IDClaim)
	set(env.RoleClaim, &c.RoleClaim)
}

func (c *Config) deriveJWKS() {
	if c.JWKSURL == "" && c.IssuerURL != "" {
		c.JWKSURL = strings.TrimSuffix(c.IssuerURL, "/") + "/.well-known/jwks.json"
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeHeader:
		return nil
	case ModeOIDC:
		if c.IssuerURL == "" {
			return fmt.Errorf("issuer_url required for oidc mode")
		}
		return nil
	}
	return fmt.Errorf("invalid mode %q: must be %s or %s", c.Mode, ModeOIDC, ModeHeader)
}

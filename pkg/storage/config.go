package storage

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config locates the blob container. ConnectionString takes precedence;
// with only ServiceURL set the client authenticates through the default
// Azure credential chain. Published exports are written under
// PublishPrefix.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	PublishPrefix    string `toml:"publish_prefix"`
}

// Env names the environment variables that override Config.
type Env struct {
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	PublishPrefix    string
}

func (c *Config) Finalize(env *Env) error {
	if env == nil {
		env = &Env{}
	}
	c.ContainerName = cmp.Or(getenv(env.ContainerName), c.ContainerName, "transflow")
	c.ConnectionString = cmp.Or(getenv(env.ConnectionString), c.ConnectionString)
	c.ServiceURL = cmp.Or(getenv(env.ServiceURL), c.ServiceURL)
	c.PublishPrefix = strings.Trim(cmp.Or(getenv(env.PublishPrefix), c.PublishPrefix, "published"), "/")

	switch {
	case c.ConnectionString == "" && c.ServiceURL == "":
		return errors.New("connection_string or service_url required")
	case c.PublishPrefix == "" || strings.Contains(c.PublishPrefix, ".."):
		return fmt.Errorf("invalid publish_prefix %q", c.PublishPrefix)
	}
	if c.ServiceURL != "" {
		if _, err := url.ParseRequestURI(c.ServiceURL); err != nil {
			return fmt.Errorf("invalid service_url: %w", err)
		}
	}
	return nil
}

func (c *Config) Merge(overlay *Config) {
	c.ContainerName = cmp.Or(overlay.ContainerName, c.ContainerName)
	c.ConnectionString = cmp.Or(overlay.ConnectionString, c.ConnectionString)
	c.ServiceURL = cmp.Or(overlay.ServiceURL, c.ServiceURL)
	c.PublishPrefix = cmp.Or(overlay.PublishPrefix, c.PublishPrefix)
}

func getenv(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}

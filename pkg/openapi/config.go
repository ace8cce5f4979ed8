package openapi

import "os"

const (
	defaultTitle       = "Transflow API"
	defaultDescription = "Translation workflow service: documents, versions, translation tasks, reviews and terms."
)

// Config is the document metadata. ServerURL, when set, is advertised in
// place of the API base path, for deployments behind a gateway.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	ServerURL   string `toml:"server_url"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	Title       string
	Description string
	ServerURL   string
}

func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = defaultTitle
	}
	if c.Description == "" {
		c.Description = defaultDescription
	}
	if env == nil {
		return nil
	}
	for dst, key := range map[*string]string{
		&c.Title:       env.Title,
		&c.Description: env.Description,
		&c.ServerURL:   env.ServerURL,
	} {
		if v := os.Getenv(key); key != "" && v != "" {
			*dst = v
		}
	}
	return nil
}

func (c *Config) Merge(overlay *Config) {
	for dst, src := range map[*string]string{
		&c.Title:       overlay.Title,
		&c.Description: overlay.Description,
		&c.ServerURL:   overlay.ServerURL,
	} {
		if src != "" {
			*dst = src
		}
	}
}

// Server returns the URL to advertise for an API mounted at basePath.
func (c *Config) Server(basePath string) string {
	if c.ServerURL != "" {
		return c.ServerURL
	}
	return basePath
}

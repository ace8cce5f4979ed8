// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, storage, identity,
// metrics) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/transflow/internal/config"
	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/internal/migrations"
	"github.com/JaimeStill/transflow/pkg/database"
	"github.com/JaimeStill/transflow/pkg/lifecycle"
	"github.com/JaimeStill/transflow/pkg/metrics"
	"github.com/JaimeStill/transflow/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Identity  identity.Provider
	Metrics   *metrics.Metrics

	// migrateURL is set when the schema is migrated on Start.
	migrateURL string
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := cfg.Log.NewLogger(os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	provider, err := identity.New(lc.Context(), &cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("identity init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Identity:  provider,
		Metrics:   metrics.New(),
	}
	if cfg.Database.AutoMigrate {
		infra.migrateURL = cfg.Database.URL()
	}
	return infra, nil
}

// Start applies pending migrations when enabled, then registers the
// database and storage systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.migrateURL != "" {
		if err := migrations.Up(i.migrateURL); err != nil {
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
		i.Logger.Info("schema migrations applied")
	}
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

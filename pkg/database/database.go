// Package database owns the PostgreSQL connection pool and ties it to the
// service lifecycle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/transflow/pkg/lifecycle"
)

const pingInterval = 250 * time.Millisecond

type System interface {
	// Connection returns the shared pool.
	Connection() *sql.DB
	// Start pings the database during startup and closes the pool on shutdown.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	pool        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
}

// New configures the pool without connecting.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	pool, err := sql.Open("pgx", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		pool:        pool,
		logger:      logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB { return d.pool }

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
		defer cancel()

		if attempts, err := d.ping(ctx); err != nil {
			d.logger.Error("database unreachable", "attempts", attempts, "error", err)
		} else {
			d.logger.Info("database connection established", "attempts", attempts)
		}
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := d.pool.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}

// ping retries until the database answers or ctx expires.
func (d *database) ping(ctx context.Context) (int, error) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		err := d.pool.PingContext(ctx)
		if err == nil {
			return attempt, nil
		}
		select {
		case <-ctx.Done():
			return attempt, err
		case <-ticker.C:
		}
	}
}

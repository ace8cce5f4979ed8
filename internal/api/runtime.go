package api

import (
	"github.com/JaimeStill/transflow/internal/config"
	"github.com/JaimeStill/transflow/internal/infrastructure"
	"github.com/JaimeStill/transflow/pkg/pagination"
)

// Runtime is the infrastructure view handed to the api module, plus the
// request limits its handlers enforce.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination     pagination.Config
	MaxContentSize int64
	PublishPrefix  string
}

// NewRuntime scopes the shared infrastructure to the api module.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		MaxContentSize: cfg.API.MaxContentSizeBytes(),
		PublishPrefix:  cfg.Storage.PublishPrefix,
	}
}

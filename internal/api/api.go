// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/transflow/internal/config"
	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/internal/infrastructure"
	"github.com/JaimeStill/transflow/pkg/middleware"
	"github.com/JaimeStill/transflow/pkg/module"
	"github.com/JaimeStill/transflow/pkg/openapi"
)

// NewModule creates the API module with all domain handlers and middleware.
// The OpenAPI document is public; every other route requires a principal and
// is subject to the per-caller rate limit.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)
	groups := routeGroups(domain, runtime)

	specBytes, err := buildSpec(cfg, groups)
	if err != nil {
		return nil, err
	}

	domainMux := http.NewServeMux()
	registerRoutes(domainMux, groups)

	limiter := middleware.NewRateLimiter(&cfg.API.RateLimit, principalKey, runtime.Logger)
	limiter.Start(runtime.Lifecycle)

	secured := identity.Middleware(runtime.Identity, runtime.Logger)(
		limiter.Middleware()(domainMux),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))
	mux.Handle("/", secured)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(runtime.Metrics.Middleware())

	return m, nil
}

// principalKey buckets authenticated callers by principal id.
func principalKey(r *http.Request) string {
	if p, ok := identity.FromContext(r.Context()); ok {
		return p.ID.String()
	}
	return middleware.RemoteAddrKey(r)
}

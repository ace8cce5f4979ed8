package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/transflow/internal/config"
	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/openapi"
	"github.com/JaimeStill/transflow/pkg/routes"
)

func routeGroups(domain *Domain, runtime *Runtime) []routes.Group {
	return []routes.Group{
		domain.Documents.Handler().Routes(),
		newWorkflowHandler(domain.Snapshot, runtime.Logger).routes(),
		domain.Versions.Handler().Routes(),
		domain.Tasks.Handler().Routes(),
		domain.Reviews.Handler().Routes(),
		domain.Terms.Handler().Routes(),
		newStorageHandler(runtime.Storage, runtime.PublishPrefix, runtime.Logger).routes(),
	}
}

func registerRoutes(mux *http.ServeMux, groups []routes.Group) {
	routes.Register(mux, groups...)
}

// buildSpec describes groups as an OpenAPI document served under basePath.
func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.OpenAPI.Server(cfg.API.BasePath))
	spec.Components.AddSchemas(domainSchemas())

	if cfg.Auth.Mode == identity.ModeOIDC {
		spec.RequireScheme(openapi.BearerAuth)
	} else {
		spec.RequireScheme(openapi.HeaderAuth)
	}

	routes.Describe(spec, groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}

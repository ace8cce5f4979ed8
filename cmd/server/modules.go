package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/transflow/internal/api"
	"github.com/JaimeStill/transflow/internal/config"
	"github.com/JaimeStill/transflow/internal/infrastructure"
	"github.com/JaimeStill/transflow/pkg/module"
)

// Modules holds the prefix-mounted modules of the service.
type Modules struct {
	API *module.Module
}

// NewModules creates every module from the shared infrastructure.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

// Mount registers every module on router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})

	router.HandleNative("GET /metrics", infra.Metrics.Handler().ServeHTTP)

	return router
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

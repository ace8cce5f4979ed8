package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/transflow/internal/api"
	"github.com/JaimeStill/transflow/internal/config"
	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/internal/infrastructure"
	"github.com/JaimeStill/transflow/pkg/database"
	"github.com/JaimeStill/transflow/pkg/middleware"
	"github.com/JaimeStill/transflow/pkg/openapi"
	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "transflow",
			User:            "transflow",
			Password:        "transflow",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "exports",
			ConnectionString: azuriteConnString,
			PublishPrefix:    "published",
		},
		API: config.APIConfig{
			BasePath:       "/api",
			MaxContentSize: "1MB",
			CORS:           middleware.CORSConfig{},
			RateLimit: middleware.RateLimitConfig{
				RequestsPerSecond: 10,
				Burst:             20,
				IdleTTL:           "10m",
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
			OpenAPI: openapi.Config{Title: "Transflow API"},
		},
		Auth:            identity.Config{Mode: identity.ModeHeader},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Database.Connection().Close() })
	return infra
}

func TestNewModule(t *testing.T) {
	m, err := api.NewModule(validConfig(), setupInfra(t))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	runtime := api.NewRuntime(validConfig(), setupInfra(t))

	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.MaxContentSize != 1024*1024 {
		t.Errorf("max content size: got %d, want %d", runtime.MaxContentSize, 1024*1024)
	}
	if runtime.PublishPrefix != "published" {
		t.Errorf("publish prefix: got %s, want published", runtime.PublishPrefix)
	}
	if runtime.Logger == nil || runtime.Database == nil || runtime.Storage == nil {
		t.Error("runtime missing infrastructure")
	}
	if runtime.Identity == nil || runtime.Metrics == nil {
		t.Error("runtime missing identity or metrics")
	}
}

func TestNewDomain(t *testing.T) {
	domain := api.NewDomain(api.NewRuntime(validConfig(), setupInfra(t)))

	if domain.Documents == nil {
		t.Error("documents system is nil")
	}
	if domain.Versions == nil {
		t.Error("versions system is nil")
	}
	if domain.Tasks == nil {
		t.Error("tasks system is nil")
	}
	if domain.Reviews == nil {
		t.Error("reviews system is nil")
	}
	if domain.Terms == nil {
		t.Error("terms system is nil")
	}
}

func TestOpenAPIIsPublic(t *testing.T) {
	m, err := api.NewModule(validConfig(), setupInfra(t))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var spec openapi.Spec
	if err := json.NewDecoder(rec.Body).Decode(&spec); err != nil {
		t.Fatalf("decode spec: %v", err)
	}

	for _, path := range []string{
		"/documents",
		"/documents/{id}/workflow",
		"/documents/{id}/versions/{versionId}/set-current",
		"/tasks/{id}/abandon",
		"/reviews/{id}/publish",
		"/terms/lookup",
		"/storage/download/{key}",
	} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("spec missing path %s", path)
		}
	}

	for _, name := range []string{"Document", "Version", "Task", "Review", "Term", "WorkflowSnapshot"} {
		if _, ok := spec.Components.Schemas[name]; !ok {
			t.Errorf("spec missing schema %s", name)
		}
	}

	if len(spec.Security) != 1 {
		t.Fatalf("security = %v, want one requirement", spec.Security)
	}
	if _, ok := spec.Security[0][openapi.HeaderAuth]; !ok {
		t.Errorf("security = %v, want %s for header auth", spec.Security, openapi.HeaderAuth)
	}
}

func TestRoutesRequirePrincipal(t *testing.T) {
	m, err := api.NewModule(validConfig(), setupInfra(t))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	for _, path := range []string{"/api/documents", "/api/tasks", "/api/terms/lookup"} {
		rec := httptest.NewRecorder()
		m.Serve(rec, httptest.NewRequest("GET", path, nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}
}

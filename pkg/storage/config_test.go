package storage_test

import (
	"testing"

	"github.com/JaimeStill/transflow/pkg/storage"
)

func TestConfigDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: azuriteConnString}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.ContainerName != "transflow" {
		t.Errorf("container_name = %s, want transflow", cfg.ContainerName)
	}
	if cfg.PublishPrefix != "published" {
		t.Errorf("publish_prefix = %s, want published", cfg.PublishPrefix)
	}
}

func TestConfigServiceURL(t *testing.T) {
	t.Setenv("TEST_STORAGE_URL", "https://account.blob.core.windows.net/")

	cfg := storage.Config{}
	if err := cfg.Finalize(&storage.Env{ServiceURL: "TEST_STORAGE_URL"}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.ServiceURL != "https://account.blob.core.windows.net/" {
		t.Errorf("service_url = %s", cfg.ServiceURL)
	}
}

func TestConfigRequiresCredentialSource(t *testing.T) {
	cfg := storage.Config{}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("Finalize() expected error without connection_string or service_url")
	}
}

func TestConfigMerge(t *testing.T) {
	base := storage.Config{ContainerName: "transflow", ConnectionString: "base"}
	base.Merge(&storage.Config{ConnectionString: "overlay"})

	if base.ContainerName != "transflow" {
		t.Errorf("container_name = %s, want transflow", base.ContainerName)
	}
	if base.ConnectionString != "overlay" {
		t.Errorf("connection_string = %s, want overlay", base.ConnectionString)
	}
}

func TestConfigPublishPrefix(t *testing.T) {
	cfg := storage.Config{ConnectionString: "UseDevelopmentStorage=true", PublishPrefix: "/exports/final/"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.PublishPrefix != "exports/final" {
		t.Errorf("PublishPrefix = %q, want exports/final", cfg.PublishPrefix)
	}

	bad := storage.Config{ConnectionString: "UseDevelopmentStorage=true", PublishPrefix: "exports/../secrets"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("Finalize() expected error for a prefix escaping its root")
	}
}

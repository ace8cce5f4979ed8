package storage_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/transflow/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewFromConnectionString(t *testing.T) {
	sys, err := storage.New(&storage.Config{
		ContainerName:    "transflow",
		ConnectionString: azuriteConnString,
	}, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewInvalidConnectionString(t *testing.T) {
	_, err := storage.New(&storage.Config{
		ContainerName:    "transflow",
		ConnectionString: "not-a-connection-string",
	}, discard())
	if err == nil {
		t.Fatal("expected error for invalid connection string")
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key  string
		want error
	}{
		{"published/doc/version.html", nil},
		{"published/..hidden/file.html", nil},
		{"", storage.ErrEmptyKey},
		{"../secrets", storage.ErrInvalidKey},
		{"published/../../etc", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := storage.ValidateKey(tt.key); !errors.Is(err, tt.want) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{errors.New("timeout"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

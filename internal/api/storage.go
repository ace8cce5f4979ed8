package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/JaimeStill/transflow/pkg/handlers"
	"github.com/JaimeStill/transflow/pkg/openapi"
	"github.com/JaimeStill/transflow/pkg/routes"
	"github.com/JaimeStill/transflow/pkg/storage"
)

// exportHeaders maps export blob metadata to response headers.
var exportHeaders = map[string]string{
	"document_id":    "X-Transflow-Document-Id",
	"version_id":     "X-Transflow-Version-Id",
	"version_number": "X-Transflow-Version-Number",
}

// storageHandler serves published exports. Keys outside the publish prefix
// are reported as missing.
type storageHandler struct {
	store  storage.System
	prefix string
	logger *slog.Logger
}

func newStorageHandler(store storage.System, prefix string, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		prefix: strings.Trim(prefix, "/") + "/",
		logger: logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Tags:   []string{"Storage"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.download, OpenAPI: &openapi.Operation{
				Summary: "Download a published export",
				Parameters: []*openapi.Parameter{{
					Name:     "key",
					In:       "path",
					Required: true,
					Schema:   &openapi.Schema{Type: "string"},
				}},
				Responses: map[int]*openapi.Response{
					200: {Description: "Export content"},
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
	}
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if err := storage.ValidateKey(key); err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	if !strings.HasPrefix(key, h.prefix) {
		handlers.RespondError(w, h.logger, http.StatusNotFound, storage.ErrNotFound)
		return
	}

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	for meta, header := range exportHeaders {
		if v := result.Metadata[meta]; v != "" {
			w.Header().Set(header, v)
		}
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.Warn("export stream interrupted", "key", key, "error", err)
	}
}

package documents

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/handlers"
	"github.com/JaimeStill/transflow/pkg/openapi"
	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/routes"
	"github.com/JaimeStill/transflow/workflow"
)

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "documents"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	id := openapi.PathParam("id", "Document ID")

	return routes.Group{
		Prefix: "/documents",
		Tags:   []string{"Documents"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary:    "List documents",
				Parameters: listParams(),
				Responses:  map[int]*openapi.Response{200: openapi.ResponseJSON("Document page", "DocumentPage")},
			}},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: &openapi.Operation{
				Summary:     "Create a DRAFT document",
				RequestBody: openapi.RequestBodyJSON("CreateDocument", true),
				Responses: map[int]*openapi.Response{
					201: openapi.ResponseJSON("Created document", "Document"),
					400: openapi.ResponseRef("BadRequest"),
					403: openapi.ResponseRef("Forbidden"),
				},
			}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: &openapi.Operation{
				Summary:     "Search documents",
				RequestBody: openapi.RequestBodyJSON("DocumentSearch", true),
				Responses:   map[int]*openapi.Response{200: openapi.ResponseJSON("Document page", "DocumentPage")},
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Get a document",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Document", "Document"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: &openapi.Operation{
				Summary:     "Update document metadata",
				Parameters:  []*openapi.Parameter{id},
				RequestBody: openapi.RequestBodyJSON("UpdateDocument", true),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Updated document", "Document"),
					403: openapi.ResponseRef("Forbidden"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: &openapi.Operation{
				Summary:    "Delete a document without dependents",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					204: {Description: "Deleted"},
					404: openapi.ResponseRef("NotFound"),
					409: openapi.ResponseRef("Conflict"),
				},
			}},
		},
	}
}

func listParams() []*openapi.Parameter {
	return []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("search", "string", "Matches title or original URL", false),
		openapi.QueryParam("sort", "string", "Sort fields, - prefix for descending", false),
		openapi.QueryParam("status", "string", "Document status", false),
		openapi.QueryParam("category_id", "integer", "Category", false),
		openapi.QueryParam("created_by", "string", "Creator id", false),
		openapi.QueryParam("source_lang", "string", "Source language", false),
		openapi.QueryParam("target_lang", "string", "Target language", false),
	}
}

// List returns a paginated list of documents with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching documents.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := handlers.DecodeJSON(w, r, &req, 0); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single document by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Create registers a new DRAFT document.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := identity.Require(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	var cmd CreateCommand
	if err := handlers.DecodeJSON(w, r, &cmd, 0); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	doc, err := h.sys.Create(r.Context(), actor, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// Update changes the metadata of a document.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := identity.Require(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	var cmd UpdateCommand
	if err := handlers.DecodeJSON(w, r, &cmd, 0); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	doc, err := h.sys.Update(r.Context(), actor, id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Delete removes a document by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := identity.Require(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	if err := h.sys.Delete(r.Context(), actor, id); err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

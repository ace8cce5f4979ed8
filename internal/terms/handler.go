package terms

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

// Handler provides HTTP endpoints for glossary operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "terms"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for glossary endpoints.
func (h *Handler) Routes() routes.Group {
	id := openapi.PathParam("id", "Term ID")

	return routes.Group{
		Prefix: "/terms",
		Tags:   []string{"Terms"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary: "List glossary entries",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("page", "integer", "Page number", false),
					openapi.QueryParam("page_size", "integer", "Results per page", false),
					openapi.QueryParam("search", "string", "Matches source or target term", false),
					openapi.QueryParam("source_lang", "string", "Source language", false),
					openapi.QueryParam("target_lang", "string", "Target language", false),
				},
				Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("Term page", "TermPage")},
			}},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: &openapi.Operation{
				Summary:     "Create a glossary entry",
				RequestBody: openapi.RequestBodyJSON("CreateTerm", true),
				Responses: map[int]*openapi.Response{
					201: openapi.ResponseJSON("Created term", "Term"),
					400: openapi.ResponseRef("BadRequest"),
					403: openapi.ResponseRef("Forbidden"),
					409: openapi.ResponseRef("Conflict"),
				},
			}},
			{Method: "GET", Pattern: "/lookup", Handler: h.Lookup, OpenAPI: &openapi.Operation{
				Summary: "Find the entry for an exact source term",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("source_term", "string", "Source term", true),
					openapi.QueryParam("source_lang", "string", "Source language", true),
					openapi.QueryParam("target_lang", "string", "Target language", true),
				},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Term", "Term"),
					400: openapi.ResponseRef("BadRequest"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Get a glossary entry",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Term", "Term"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: &openapi.Operation{
				Summary:     "Update a glossary entry",
				Parameters:  []*openapi.Parameter{id},
				RequestBody: openapi.RequestBodyJSON("UpdateTerm", true),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Updated term", "Term"),
					403: openapi.ResponseRef("Forbidden"),
					404: openapi.ResponseRef("NotFound"),
					409: openapi.ResponseRef("Conflict"),
				},
			}},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: &openapi.Operation{
				Summary:    "Delete a glossary entry",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					204: {Description: "Deleted"},
					403: openapi.ResponseRef("Forbidden"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
	}
}

// List returns a paginated list of glossary entries.
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

// Lookup returns the entry for source_term in the source_lang/target_lang pair.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	t, err := h.sys.Lookup(r.Context(), q.Get("source_term"), q.Get("source_lang"), q.Get("target_lang"))
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

// Find returns a single glossary entry.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	t, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

// Create adds a glossary entry.
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

	t, err := h.sys.Create(r.Context(), actor, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, t)
}

// Update changes a glossary entry.
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

	t, err := h.sys.Update(r.Context(), actor, id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

// Delete removes a glossary entry.
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

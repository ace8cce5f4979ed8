package reviews

import (
	"context"
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

type action func(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Review, error)

// Handler provides HTTP endpoints for review operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "reviews"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for review endpoints.
func (h *Handler) Routes() routes.Group {
	id := openapi.PathParam("id", "Review ID")
	decision := func(summary string) *openapi.Operation {
		return &openapi.Operation{
			Summary:    summary,
			Parameters: []*openapi.Parameter{id},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Review", "Review"),
				400: openapi.ResponseRef("BadRequest"),
				401: openapi.ResponseRef("Unauthorized"),
				403: openapi.ResponseRef("Forbidden"),
				404: openapi.ResponseRef("NotFound"),
			},
		}
	}

	update := decision("Edit a pending review")
	update.RequestBody = openapi.RequestBodyJSON("UpdateReview", true)

	return routes.Group{
		Prefix: "/reviews",
		Tags:   []string{"Reviews"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary: "List reviews",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("page", "integer", "Page number", false),
					openapi.QueryParam("page_size", "integer", "Results per page", false),
					openapi.QueryParam("search", "string", "Matches the review comment", false),
					openapi.QueryParam("sort", "string", "Sort fields, - prefix for descending", false),
					openapi.QueryParam("document_id", "string", "Document", false),
					openapi.QueryParam("document_version_id", "string", "Reviewed version", false),
					openapi.QueryParam("reviewer_id", "string", "Reviewer", false),
					openapi.QueryParam("status", "string", "Review status", false),
				},
				Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("Review page", "ReviewPage")},
			}},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: &openapi.Operation{
				Summary:     "Open a review of a version",
				RequestBody: openapi.RequestBodyJSON("CreateReview", true),
				Responses: map[int]*openapi.Response{
					201: openapi.ResponseJSON("Created review", "Review"),
					400: openapi.ResponseRef("BadRequest"),
					403: openapi.ResponseRef("Forbidden"),
					404: openapi.ResponseRef("NotFound"),
					409: openapi.ResponseRef("Conflict"),
				},
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Get a review",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Review", "Review"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: update},
			{Method: "POST", Pattern: "/{id}/approve", Handler: h.Approve, OpenAPI: decision("Approve a pending review")},
			{Method: "POST", Pattern: "/{id}/reject", Handler: h.Reject, OpenAPI: decision("Reject a pending review")},
			{Method: "POST", Pattern: "/{id}/publish", Handler: h.Publish, OpenAPI: decision("Publish an approved review")},
		},
	}
}

// List returns a paginated list of reviews with optional query parameter filters.
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

// Find returns a single review by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	rv, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rv)
}

// Create opens a review.
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

	rv, err := h.sys.Create(r.Context(), actor, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rv)
}

// Update edits the comment, checklist or completeness of a pending review.
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

	rv, err := h.sys.Update(r.Context(), actor, id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rv)
}

// Approve approves a pending review.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.sys.Approve)
}

// Reject rejects a pending review.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.sys.Reject)
}

// Publish publishes an approved review.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.sys.Publish)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn action) {
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

	rv, err := fn(r.Context(), actor, id)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rv)
}

package tasks

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

type action func(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Task, error)

// Handler provides HTTP endpoints for task operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "tasks"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for task endpoints.
func (h *Handler) Routes() routes.Group {
	id := openapi.PathParam("id", "Task ID")
	transition := func(summary string) *openapi.Operation {
		return &openapi.Operation{
			Summary:    summary,
			Parameters: []*openapi.Parameter{id},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Task", "Task"),
				400: openapi.ResponseRef("BadRequest"),
				401: openapi.ResponseRef("Unauthorized"),
				403: openapi.ResponseRef("Forbidden"),
				404: openapi.ResponseRef("NotFound"),
			},
		}
	}

	return routes.Group{
		Prefix: "/tasks",
		Tags:   []string{"Tasks"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary: "List tasks",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("page", "integer", "Page number", false),
					openapi.QueryParam("page_size", "integer", "Results per page", false),
					openapi.QueryParam("search", "string", "Matches document title", false),
					openapi.QueryParam("sort", "string", "Sort fields, - prefix for descending", false),
					openapi.QueryParam("document_id", "string", "Document", false),
					openapi.QueryParam("translator_id", "string", "Translator", false),
					openapi.QueryParam("status", "string", "Task status", false),
				},
				Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("Task page", "TaskPage")},
			}},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: &openapi.Operation{
				Summary:     "Claim or assign a task",
				RequestBody: openapi.RequestBodyJSON("CreateTask", true),
				Responses: map[int]*openapi.Response{
					201: openapi.ResponseJSON("Created task", "Task"),
					403: openapi.ResponseRef("Forbidden"),
					404: openapi.ResponseRef("NotFound"),
					409: openapi.ResponseRef("Conflict"),
				},
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Get a task",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Task", "Task"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "POST", Pattern: "/{id}/start", Handler: h.Start, OpenAPI: transition("Start an available task")},
			{Method: "POST", Pattern: "/{id}/submit", Handler: h.Submit, OpenAPI: transition("Submit an in-progress task")},
			{Method: "POST", Pattern: "/{id}/abandon", Handler: h.Abandon, OpenAPI: transition("Abandon a task")},
			{Method: "POST", Pattern: "/{id}/touch-activity", Handler: h.Touch, OpenAPI: transition("Record translator activity")},
		},
	}
}

// List returns a paginated list of tasks with optional query parameter filters.
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

// Find returns a single task by its UUID path parameter.
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

// Create opens a task for the caller or, for administrators, another translator.
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

// Start moves the task to IN_PROGRESS.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sys.Start)
}

// Submit moves the task to SUBMITTED.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sys.Submit)
}

// Abandon moves the task to ABANDONED.
func (h *Handler) Abandon(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sys.Abandon)
}

// Touch records activity on the task.
func (h *Handler) Touch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sys.Touch)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn action) {
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

	t, err := fn(r.Context(), actor, id)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

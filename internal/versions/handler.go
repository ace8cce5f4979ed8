package versions

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/handlers"
	"github.com/JaimeStill/transflow/pkg/openapi"
	"github.com/JaimeStill/transflow/pkg/routes"
	"github.com/JaimeStill/transflow/workflow"
)

// bodyEnvelope is the allowance for JSON framing and escaping on top of the
// content size limit.
const bodyEnvelope = 64 << 10

// Handler provides HTTP endpoints for version ledger operations.
type Handler struct {
	sys     System
	logger  *slog.Logger
	maxBody int64
}

// NewHandler creates a Handler. maxContentSize bounds the request body of
// version creation; non-positive values fall back to the shared body limit.
func NewHandler(sys System, logger *slog.Logger, maxContentSize int64) *Handler {
	var maxBody int64
	if maxContentSize > 0 {
		maxBody = maxContentSize + bodyEnvelope
	}
	return &Handler{
		sys:     sys,
		logger:  logger.With("handler", "versions"),
		maxBody: maxBody,
	}
}

// Routes returns the route group definition for version endpoints. Versions
// are addressed under their document, and by id alone.
func (h *Handler) Routes() routes.Group {
	docID := openapi.PathParam("id", "Document ID")
	found := func(summary string) *openapi.Operation {
		return &openapi.Operation{
			Summary:    summary,
			Parameters: []*openapi.Parameter{docID},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Version", "Version"),
				404: openapi.ResponseRef("NotFound"),
			},
		}
	}

	return routes.Group{
		Tags: []string{"Versions"},
		Children: []routes.Group{
			{
				Prefix: "/documents/{id}/versions",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
						Summary:    "List versions by ascending number",
						Parameters: []*openapi.Parameter{docID},
						Responses: map[int]*openapi.Response{
							200: openapi.ResponseJSON("Versions", "VersionList"),
							404: openapi.ResponseRef("NotFound"),
						},
					}},
					{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: &openapi.Operation{
						Summary:     "Append a version",
						Parameters:  []*openapi.Parameter{docID},
						RequestBody: openapi.RequestBodyJSON("CreateVersion", true),
						Responses: map[int]*openapi.Response{
							201: openapi.ResponseJSON("Created version", "Version"),
							400: openapi.ResponseRef("BadRequest"),
							403: openapi.ResponseRef("Forbidden"),
							404: openapi.ResponseRef("NotFound"),
						},
					}},
					{Method: "GET", Pattern: "/latest", Handler: h.Latest, OpenAPI: found("Get the highest-numbered version")},
					{Method: "GET", Pattern: "/final", Handler: h.Final, OpenAPI: found("Get the final version")},
					{Method: "GET", Pattern: "/number/{n}", Handler: h.ByNumber, OpenAPI: &openapi.Operation{
						Summary: "Get a version by number",
						Parameters: []*openapi.Parameter{
							docID,
							{Name: "n", In: "path", Required: true, Schema: &openapi.Schema{Type: "integer"}},
						},
						Responses: map[int]*openapi.Response{
							200: openapi.ResponseJSON("Version", "Version"),
							404: openapi.ResponseRef("NotFound"),
						},
					}},
					{Method: "POST", Pattern: "/{versionId}/set-current", Handler: h.SetCurrent, OpenAPI: &openapi.Operation{
						Summary:    "Point the document at a version",
						Parameters: []*openapi.Parameter{docID, openapi.PathParam("versionId", "Version ID")},
						Responses: map[int]*openapi.Response{
							200: openapi.ResponseJSON("Version", "Version"),
							400: openapi.ResponseRef("BadRequest"),
							403: openapi.ResponseRef("Forbidden"),
							404: openapi.ResponseRef("NotFound"),
						},
					}},
				},
			},
			{
				Prefix: "/versions",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
						Summary:    "Get a version",
						Parameters: []*openapi.Parameter{openapi.PathParam("id", "Version ID")},
						Responses: map[int]*openapi.Response{
							200: openapi.ResponseJSON("Version", "Version"),
							404: openapi.ResponseRef("NotFound"),
						},
					}},
				},
			},
		},
	}
}

// List returns every version of a document in ascending number order.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	versions, err := h.sys.List(r.Context(), docID)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, versions)
}

// Create appends a version to a document.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := identity.Require(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	docID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var cmd CreateCommand
	if err := handlers.DecodeJSON(w, r, &cmd, h.maxBody); err != nil {
		if errors.Is(err, handlers.ErrBodyTooLarge) {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrContentTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	v, err := h.sys.Create(r.Context(), actor, docID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, v)
}

// SetCurrent moves the document's current version pointer.
func (h *Handler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	actor, err := identity.Require(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	docID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	versionID, ok := h.pathID(w, r, "versionId")
	if !ok {
		return
	}

	v, err := h.sys.SetCurrent(r.Context(), actor, docID, versionID)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// Find returns a version by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	v, err := h.sys.Find(r.Context(), id)
	h.respond(w, v, err)
}

// Latest returns the version with the highest number.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	docID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	v, err := h.sys.Latest(r.Context(), docID)
	h.respond(w, v, err)
}

// Final returns the version flagged final.
func (h *Handler) Final(w http.ResponseWriter, r *http.Request) {
	docID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	v, err := h.sys.Final(r.Context(), docID)
	h.respond(w, v, err)
}

// ByNumber returns the version with the given number.
func (h *Handler) ByNumber(w http.ResponseWriter, r *http.Request) {
	docID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidNumber)
		return
	}

	v, err := h.sys.ByNumber(r.Context(), docID, n)
	h.respond(w, v, err)
}

func (h *Handler) respond(w http.ResponseWriter, v *Version, err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, v)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/documents"
	"github.com/JaimeStill/transflow/internal/reviews"
	"github.com/JaimeStill/transflow/internal/tasks"
	"github.com/JaimeStill/transflow/internal/versions"
	"github.com/JaimeStill/transflow/pkg/handlers"
	"github.com/JaimeStill/transflow/pkg/openapi"
	"github.com/JaimeStill/transflow/pkg/repository"
	"github.com/JaimeStill/transflow/pkg/routes"
	"github.com/JaimeStill/transflow/workflow"
)

// WorkflowSnapshot is the complete workflow state of one document. All four
// parts are read from one database snapshot, so a concurrent transition is
// either wholly visible or not at all.
type WorkflowSnapshot struct {
	Document *documents.Document `json:"document"`
	Versions []versions.Version  `json:"versions"`
	Tasks    []tasks.Task        `json:"tasks"`
	Reviews  []reviews.Review    `json:"reviews"`
}

var snapshotTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// Snapshot reads the workflow state of document id in one repeatable-read
// transaction.
func (d *Domain) Snapshot(ctx context.Context, id uuid.UUID) (*WorkflowSnapshot, error) {
	return repository.WithTxOptions(ctx, d.db, snapshotTx, func(tx *sql.Tx) (*WorkflowSnapshot, error) {
		return d.readSnapshot(ctx, tx, id)
	})
}

func (d *Domain) readSnapshot(ctx context.Context, q repository.Querier, id uuid.UUID) (*WorkflowSnapshot, error) {
	doc, err := d.Documents.Get(ctx, q, id)
	if err != nil {
		return nil, err
	}

	snap := &WorkflowSnapshot{Document: doc}
	if snap.Versions, err = d.Versions.ByDocument(ctx, q, id); err != nil {
		return nil, err
	}
	if snap.Tasks, err = d.Tasks.ByDocument(ctx, q, id); err != nil {
		return nil, err
	}
	if snap.Reviews, err = d.Reviews.ByDocument(ctx, q, id); err != nil {
		return nil, err
	}
	return snap, nil
}

type snapshotFunc func(ctx context.Context, id uuid.UUID) (*WorkflowSnapshot, error)

type workflowHandler struct {
	snapshotFn snapshotFunc
	logger     *slog.Logger
}

func newWorkflowHandler(fn snapshotFunc, logger *slog.Logger) *workflowHandler {
	return &workflowHandler{
		snapshotFn: fn,
		logger:     logger.With("handler", "workflow"),
	}
}

func (h *workflowHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Tags:   []string{"Documents"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/workflow", Handler: h.snapshot, OpenAPI: &openapi.Operation{
				Summary:    "Get the document with its versions, tasks and reviews",
				Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Workflow snapshot", "WorkflowSnapshot"),
					400: openapi.ResponseRef("BadRequest"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
	}
}

func (h *workflowHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrInvalidID)
		return
	}

	snap, err := h.snapshotFn(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, workflow.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snap)
}

package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/documents"
	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/metrics"
	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/query"
	"github.com/JaimeStill/transflow/pkg/repository"
	"github.com/JaimeStill/transflow/workflow"
)

const entity = "task"

// step applies one transition to a task locked inside tx.
type step func(ctx context.Context, tx *sql.Tx, t *Task, actor uuid.UUID) error

type repo struct {
	db         *sql.DB
	docs       documents.Lifecycle
	logger     *slog.Logger
	metrics    *metrics.Metrics
	pagination pagination.Config
}

// New creates a task coordinator implementing the System interface.
func New(
	db *sql.DB,
	docs documents.Lifecycle,
	logger *slog.Logger,
	m *metrics.Metrics,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		docs:       docs,
		logger:     logger.With("system", "tasks"),
		metrics:    m,
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Task], error) {
	page.Normalize(r.pagination)

	qb := listQuery(page, filters)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	tasks, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanTask)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	result := pagination.NewPageResult(tasks, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Task, error) {
	return r.get(ctx, r.db, id, false)
}

func (r *repo) ByDocument(ctx context.Context, q repository.Querier, documentID uuid.UUID) ([]Task, error) {
	stmt, args := query.
		NewBuilder(projection, query.SortField{Field: "CreatedAt"}).
		WhereEquals("DocumentID", documentID).
		Build()

	tasks, err := repository.QueryMany(ctx, q, stmt, args, scanTask)
	if err != nil {
		return nil, fmt.Errorf("query document tasks: %w", err)
	}
	return tasks, nil
}

func (r *repo) HasActiveTask(ctx context.Context, q repository.Querier, documentID, translatorID uuid.UUID) (bool, error) {
	var active bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM translation_tasks
			WHERE document_id = $1 AND translator_id = $2 AND status = $3
		)`,
		documentID, translatorID, workflow.TaskInProgress,
	).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("check active task: %w", err)
	}
	return active, nil
}

func (r *repo) Create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Task, error) {
	t, err := r.create(ctx, actor, cmd)
	r.metrics.RecordTransition(entity, "create", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"task created",
		"id", t.ID,
		"document_id", t.DocumentID,
		"translator_id", t.TranslatorID,
		"assigned", t.AssignedBy != nil,
	)
	return t, nil
}

func (r *repo) create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Task, error) {
	if cmd.DocumentID == uuid.Nil {
		return nil, ErrNoDocument
	}

	translator := actor.ID
	var assigner *uuid.UUID
	if cmd.TranslatorID != nil && *cmd.TranslatorID != actor.ID {
		if err := actor.RequireAdmin(); err != nil {
			return nil, err
		}
		translator = *cmd.TranslatorID
		assigner = &actor.ID
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Task, error) {
		if _, err := r.docs.Lock(ctx, tx, cmd.DocumentID); err != nil {
			return nil, err
		}

		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM translation_tasks WHERE document_id = $1 AND translator_id = $2)",
			cmd.DocumentID, translator,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check existing task: %w", err)
		}
		if exists {
			return nil, ErrDuplicate
		}

		id := uuid.New()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO translation_tasks(id, document_id, translator_id, assigned_by, status)
			VALUES ($1, $2, $3, $4, $5)`,
			id, cmd.DocumentID, translator, assigner, workflow.TaskAvailable,
		)
		if err != nil {
			return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		return r.get(ctx, tx, id, false)
	})
}

func (r *repo) Start(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Task, error) {
	return r.run(ctx, actor, id, "start", func(ctx context.Context, tx *sql.Tx, t *Task, caller uuid.UUID) error {
		next, err := workflow.StartTask(t.TranslatorID, caller, t.Status)
		if err != nil {
			return err
		}

		err = repository.ExecExpectOne(ctx, tx, `
			UPDATE translation_tasks
			SET status = $2, started_at = NOW(), last_activity_at = NOW(), updated_at = NOW()
			WHERE id = $1`,
			t.ID, next,
		)
		if err != nil {
			return repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		return r.docs.SetStatus(ctx, tx, t.DocumentID, workflow.StartCascade(), caller)
	})
}

func (r *repo) Submit(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Task, error) {
	return r.run(ctx, actor, id, "submit", func(ctx context.Context, tx *sql.Tx, t *Task, caller uuid.UUID) error {
		next, err := workflow.SubmitTask(t.TranslatorID, caller, t.Status)
		if err != nil {
			return err
		}

		err = repository.ExecExpectOne(ctx, tx, `
			UPDATE translation_tasks
			SET status = $2, submitted_at = NOW(), last_activity_at = NOW(), updated_at = NOW()
			WHERE id = $1`,
			t.ID, next,
		)
		if err != nil {
			return repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		return r.docs.SetStatus(ctx, tx, t.DocumentID, workflow.SubmitCascade(), caller)
	})
}

func (r *repo) Abandon(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Task, error) {
	return r.run(ctx, actor, id, "abandon", func(ctx context.Context, tx *sql.Tx, t *Task, caller uuid.UUID) error {
		next, err := workflow.AbandonTask(t.TranslatorID, caller, t.Status)
		if err != nil {
			return err
		}

		err = repository.ExecExpectOne(ctx, tx, `
			UPDATE translation_tasks
			SET status = $2, last_activity_at = NOW(), updated_at = NOW()
			WHERE id = $1`,
			t.ID, next,
		)
		if err != nil {
			return repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		active, err := repository.Count(ctx, tx, `
			SELECT COUNT(*) FROM translation_tasks
			WHERE document_id = $1 AND id <> $2 AND status = $3`,
			t.DocumentID, t.ID, workflow.TaskInProgress,
		)
		if err != nil {
			return fmt.Errorf("count active tasks: %w", err)
		}

		status, downgrade := workflow.AbandonCascade(active)
		if !downgrade {
			r.logger.Debug("document kept in translation", "document_id", t.DocumentID, "active", active)
			return nil
		}
		return r.docs.SetStatus(ctx, tx, t.DocumentID, status, caller)
	})
}

func (r *repo) Touch(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Task, error) {
	return r.run(ctx, actor, id, "touch", func(ctx context.Context, tx *sql.Tx, t *Task, caller uuid.UUID) error {
		if err := workflow.TouchTask(t.TranslatorID, caller); err != nil {
			return err
		}

		err := repository.ExecExpectOne(ctx, tx,
			"UPDATE translation_tasks SET last_activity_at = NOW(), updated_at = NOW() WHERE id = $1",
			t.ID,
		)
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	})
}

// run executes fn against task id under the document lock and returns the
// task as committed. The document is locked before the task row so that
// every writer of a document acquires locks in the same order.
func (r *repo) run(ctx context.Context, actor *identity.Principal, id uuid.UUID, action string, fn step) (*Task, error) {
	t, err := r.runTx(ctx, actor, id, fn)
	r.metrics.RecordTransition(entity, action, err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("task "+action, "id", t.ID, "document_id", t.DocumentID, "status", t.Status, "actor", actor.ID)
	return t, nil
}

func (r *repo) runTx(ctx context.Context, actor *identity.Principal, id uuid.UUID, fn step) (*Task, error) {
	var documentID uuid.UUID
	err := r.db.QueryRowContext(ctx, "SELECT document_id FROM translation_tasks WHERE id = $1", id).Scan(&documentID)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Task, error) {
		if _, err := r.docs.Lock(ctx, tx, documentID); err != nil {
			return nil, err
		}

		t, err := r.get(ctx, tx, id, true)
		if err != nil {
			return nil, err
		}

		if err := fn(ctx, tx, t, actor.ID); err != nil {
			return nil, err
		}

		return r.get(ctx, tx, id, false)
	})
}

func (r *repo) get(ctx context.Context, q repository.Querier, id uuid.UUID, lock bool) (*Task, error) {
	qb := query.NewBuilder(projection)
	if lock {
		qb.ForUpdate()
	}
	stmt, args := qb.BuildSingle("ID", id)

	t, err := repository.QueryOne(ctx, q, stmt, args, scanTask)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

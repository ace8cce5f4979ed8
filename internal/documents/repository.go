package documents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/metrics"
	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/query"
	"github.com/JaimeStill/transflow/pkg/repository"
	"github.com/JaimeStill/transflow/workflow"
)

const entity = "document"

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	metrics    *metrics.Metrics
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	m *metrics.Metrics,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "documents"),
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
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := listQuery(page, filters)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	return r.Get(ctx, r.db, id)
}

func (r *repo) Get(ctx context.Context, q repository.Querier, id uuid.UUID) (*Document, error) {
	stmt, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, q, stmt, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrHasDependents)
	}
	return &d, nil
}

func (r *repo) Create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Document, error) {
	d, err := r.create(ctx, actor, cmd)
	r.metrics.RecordTransition(entity, "create", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("document created", "id", d.ID, "title", d.Title, "actor", actor.ID)
	return d, nil
}

func (r *repo) create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Document, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := cmd.normalize(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO documents(id, title, original_url, source_lang, target_lang, category_id, status, estimated_length, created_by, last_modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING %s`, returning)

	args := []any{
		uuid.New(),
		cmd.Title,
		cmd.OriginalURL,
		cmd.SourceLang,
		cmd.TargetLang,
		cmd.CategoryID,
		workflow.DocumentDraft,
		cmd.EstimatedLength,
		actor.ID,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, args, scanDocument)
	})
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return &d, nil
}

func (r *repo) Update(ctx context.Context, actor *identity.Principal, id uuid.UUID, cmd UpdateCommand) (*Document, error) {
	d, err := r.update(ctx, actor, id, cmd)
	r.metrics.RecordTransition(entity, "update", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("document updated", "id", id, "actor", actor.ID)
	return d, nil
}

func (r *repo) update(ctx context.Context, actor *identity.Principal, id uuid.UUID, cmd UpdateCommand) (*Document, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := cmd.normalize(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		UPDATE documents SET
			title = COALESCE($2, title),
			original_url = COALESCE($3, original_url),
			source_lang = COALESCE($4, source_lang),
			target_lang = COALESCE($5, target_lang),
			category_id = COALESCE($6, category_id),
			estimated_length = COALESCE($7, estimated_length),
			last_modified_by = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, returning)

	args := []any{
		id,
		cmd.Title,
		cmd.OriginalURL,
		cmd.SourceLang,
		cmd.TargetLang,
		cmd.CategoryID,
		cmd.EstimatedLength,
		actor.ID,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, args, scanDocument)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrHasDependents)
	}
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, actor *identity.Principal, id uuid.UUID) error {
	err := r.delete(ctx, actor, id)
	r.metrics.RecordTransition(entity, "delete", err)
	if err != nil {
		return err
	}

	r.logger.Info("document deleted", "id", id, "actor", actor.ID)
	return nil
}

func (r *repo) delete(ctx context.Context, actor *identity.Principal, id uuid.UUID) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := r.Lock(ctx, tx, id); err != nil {
			return struct{}{}, err
		}

		dependents, err := repository.Count(ctx, tx, `
			SELECT
				(SELECT COUNT(*) FROM document_versions WHERE document_id = $1) +
				(SELECT COUNT(*) FROM translation_tasks WHERE document_id = $1) +
				(SELECT COUNT(*) FROM reviews WHERE document_id = $1)`,
			id,
		)
		if err != nil {
			return struct{}{}, fmt.Errorf("count dependents: %w", err)
		}
		if dependents > 0 {
			return struct{}{}, ErrHasDependents
		}

		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM documents WHERE id = $1", id)
	})

	if repository.IsForeignKeyViolation(err) {
		return ErrHasDependents
	}
	return repository.MapError(err, ErrNotFound, ErrHasDependents)
}

func (r *repo) Lock(ctx context.Context, tx repository.Querier, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).ForUpdate().BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, tx, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrHasDependents)
	}
	return &d, nil
}

func (r *repo) SetStatus(ctx context.Context, tx repository.Executor, id uuid.UUID, status workflow.DocumentStatus, actor uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, tx,
		"UPDATE documents SET status = $2, last_modified_by = $3, updated_at = NOW() WHERE id = $1",
		id, status, actor,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrHasDependents)
	}

	r.logger.Debug("document status recorded", "id", id, "status", status)
	return nil
}

func (r *repo) Exists(ctx context.Context, q repository.Querier, id uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}
	return exists, nil
}

package terms

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/metrics"
	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/query"
	"github.com/JaimeStill/transflow/pkg/repository"
)

const entity = "term"

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	metrics    *metrics.Metrics
	pagination pagination.Config
}

// New creates a glossary repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	m *metrics.Metrics,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "terms"),
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
) (*pagination.PageResult[Term], error) {
	page.Normalize(r.pagination)

	qb := listQuery(page, filters)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count terms: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	terms, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanTerm)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}

	result := pagination.NewPageResult(terms, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Term, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	t, err := repository.QueryOne(ctx, r.db, q, args, scanTerm)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

func (r *repo) Lookup(ctx context.Context, sourceTerm, sourceLang, targetLang string) (*Term, error) {
	sourceTerm = strings.TrimSpace(sourceTerm)
	if sourceTerm == "" {
		return nil, ErrTermRequired
	}
	if sourceLang == "" || targetLang == "" {
		return nil, ErrLanguageRequired
	}

	q, args := query.
		NewBuilder(projection).
		WhereEquals("SourceTerm", sourceTerm).
		WhereEquals("SourceLang", sourceLang).
		WhereEquals("TargetLang", targetLang).
		Limit(1).
		Build()

	t, err := repository.QueryOne(ctx, r.db, q, args, scanTerm)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

func (r *repo) Create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Term, error) {
	t, err := r.create(ctx, actor, cmd)
	r.metrics.RecordTransition(entity, "create", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("term created", "id", t.ID, "source_term", t.SourceTerm, "source_lang", t.SourceLang, "target_lang", t.TargetLang)
	return t, nil
}

func (r *repo) create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Term, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := cmd.normalize(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO terms(id, source_term, target_term, source_lang, target_lang, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, returning)

	args := []any{
		uuid.New(),
		cmd.SourceTerm,
		cmd.TargetTerm,
		cmd.SourceLang,
		cmd.TargetLang,
		cmd.Description,
		actor.ID,
	}

	t, err := repository.QueryOne(ctx, r.db, q, args, scanTerm)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

func (r *repo) Update(ctx context.Context, actor *identity.Principal, id uuid.UUID, cmd UpdateCommand) (*Term, error) {
	t, err := r.update(ctx, actor, id, cmd)
	r.metrics.RecordTransition(entity, "update", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("term updated", "id", id)
	return t, nil
}

func (r *repo) update(ctx context.Context, actor *identity.Principal, id uuid.UUID, cmd UpdateCommand) (*Term, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := cmd.normalize(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		UPDATE terms SET
			source_term = COALESCE($2, source_term),
			target_term = COALESCE($3, target_term),
			source_lang = COALESCE($4, source_lang),
			target_lang = COALESCE($5, target_lang),
			description = COALESCE($6, description),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, returning)

	args := []any{id, cmd.SourceTerm, cmd.TargetTerm, cmd.SourceLang, cmd.TargetLang, cmd.Description}

	t, err := repository.QueryOne(ctx, r.db, q, args, scanTerm)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

func (r *repo) Delete(ctx context.Context, actor *identity.Principal, id uuid.UUID) error {
	err := r.delete(ctx, actor, id)
	r.metrics.RecordTransition(entity, "delete", err)
	if err != nil {
		return err
	}

	r.logger.Info("term deleted", "id", id)
	return nil
}

func (r *repo) delete(ctx context.Context, actor *identity.Principal, id uuid.UUID) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM terms WHERE id = $1", id)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

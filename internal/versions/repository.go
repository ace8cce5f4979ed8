package versions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/documents"
	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/formatting"
	"github.com/JaimeStill/transflow/pkg/metrics"
	"github.com/JaimeStill/transflow/pkg/query"
	"github.com/JaimeStill/transflow/pkg/repository"
	"github.com/JaimeStill/transflow/workflow"
)

const entity = "version"

type repo struct {
	db             *sql.DB
	docs           documents.Lifecycle
	tasks          TaskChecker
	logger         *slog.Logger
	metrics        *metrics.Metrics
	maxContentSize int64
}

// New creates a version ledger implementing the System interface.
// A non-positive maxContentSize disables the content size check.
func New(
	db *sql.DB,
	docs documents.Lifecycle,
	tasks TaskChecker,
	logger *slog.Logger,
	m *metrics.Metrics,
	maxContentSize int64,
) System {
	return &repo{
		db:             db,
		docs:           docs,
		tasks:          tasks,
		logger:         logger.With("system", "versions"),
		metrics:        m,
		maxContentSize: maxContentSize,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.maxContentSize)
}

func (r *repo) Create(ctx context.Context, actor *identity.Principal, documentID uuid.UUID, cmd CreateCommand) (*Version, error) {
	v, err := r.create(ctx, actor, documentID, cmd)
	r.metrics.RecordTransition(entity, "create", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"version created",
		"id", v.ID,
		"document_id", documentID,
		"number", v.VersionNumber,
		"type", v.VersionType,
		"final", v.IsFinal,
	)
	return v, nil
}

func (r *repo) create(ctx context.Context, actor *identity.Principal, documentID uuid.UUID, cmd CreateCommand) (*Version, error) {
	v, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Version, error) {
		if _, err := r.docs.Lock(ctx, tx, documentID); err != nil {
			return Version{}, err
		}
		if err := r.authorize(ctx, tx, actor, documentID); err != nil {
			return Version{}, err
		}

		versionType, err := r.validate(cmd)
		if err != nil {
			return Version{}, err
		}

		var highest *int
		err = tx.QueryRowContext(ctx,
			"SELECT MAX(version_number) FROM document_versions WHERE document_id = $1",
			documentID,
		).Scan(&highest)
		if err != nil {
			return Version{}, fmt.Errorf("read highest version: %w", err)
		}

		number, err := workflow.NextVersionNumber(versionType, highest)
		if err != nil {
			return Version{}, err
		}

		if cmd.IsFinal {
			if err := clearFinal(ctx, tx, documentID); err != nil {
				return Version{}, err
			}
		}

		q := fmt.Sprintf(`
			INSERT INTO document_versions(id, document_id, version_number, version_type, content, is_final, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING %s`, returning)

		v, err := repository.QueryOne(ctx, tx, q, []any{
			uuid.New(),
			documentID,
			number,
			versionType,
			cmd.Content,
			cmd.IsFinal,
			actor.ID,
		}, scanVersion)
		if err != nil {
			return Version{}, repository.MapError(err, ErrNotFound, ErrFinalConflict)
		}

		if err := setCurrent(ctx, tx, documentID, v.ID, actor.ID); err != nil {
			return Version{}, err
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// validate checks the version type and content size of cmd. A missing
// document is reported before either.
func (r *repo) validate(cmd CreateCommand) (workflow.VersionType, error) {
	versionType, err := workflow.ParseVersionType(cmd.VersionType)
	if err != nil {
		return "", err
	}
	if r.maxContentSize > 0 && int64(len(cmd.Content)) > r.maxContentSize {
		return "", fmt.Errorf(
			"%w: %s exceeds %s",
			ErrContentTooLarge,
			formatting.FormatBytes(int64(len(cmd.Content)), 1),
			formatting.FormatBytes(r.maxContentSize, 1),
		)
	}
	return versionType, nil
}

func (r *repo) SetCurrent(ctx context.Context, actor *identity.Principal, documentID, versionID uuid.UUID) (*Version, error) {
	v, err := r.setCurrent(ctx, actor, documentID, versionID)
	r.metrics.RecordTransition(entity, "set_current", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("current version set", "document_id", documentID, "version_id", versionID, "actor", actor.ID)
	return v, nil
}

func (r *repo) setCurrent(ctx context.Context, actor *identity.Principal, documentID, versionID uuid.UUID) (*Version, error) {
	v, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Version, error) {
		if _, err := r.docs.Lock(ctx, tx, documentID); err != nil {
			return nil, err
		}
		if err := r.authorize(ctx, tx, actor, documentID); err != nil {
			return nil, err
		}

		v, err := r.Get(ctx, tx, versionID)
		if err != nil {
			return nil, err
		}
		if v.DocumentID != documentID {
			return nil, ErrWrongDocument
		}

		if err := setCurrent(ctx, tx, documentID, v.ID, actor.ID); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *repo) Get(ctx context.Context, q repository.Querier, id uuid.UUID) (*Version, error) {
	stmt, args := query.NewBuilder(projection).BuildSingle("ID", id)

	v, err := repository.QueryOne(ctx, q, stmt, args, scanVersion)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrFinalConflict)
	}
	return &v, nil
}

func (r *repo) MarkFinal(ctx context.Context, tx repository.DBTX, documentID, versionID uuid.UUID) error {
	if err := clearFinal(ctx, tx, documentID); err != nil {
		return err
	}

	err := repository.ExecExpectOne(ctx, tx,
		"UPDATE document_versions SET is_final = TRUE WHERE id = $1 AND document_id = $2",
		versionID, documentID,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrFinalConflict)
	}

	err = repository.ExecExpectOne(ctx, tx,
		"UPDATE documents SET current_version_id = $2, updated_at = NOW() WHERE id = $1",
		documentID, versionID,
	)
	if err != nil {
		return repository.MapError(err, documents.ErrNotFound, ErrFinalConflict)
	}

	r.logger.Debug("final version marked", "document_id", documentID, "version_id", versionID)
	return nil
}

func (r *repo) List(ctx context.Context, documentID uuid.UUID) ([]Version, error) {
	if err := r.requireDocument(ctx, documentID); err != nil {
		return nil, err
	}

	return r.ByDocument(ctx, r.db, documentID)
}

func (r *repo) ByDocument(ctx context.Context, q repository.Querier, documentID uuid.UUID) ([]Version, error) {
	stmt, args := query.
		NewBuilder(projection, ascending...).
		WhereEquals("DocumentID", documentID).
		Build()

	versions, err := repository.QueryMany(ctx, q, stmt, args, scanVersion)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	return versions, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Version, error) {
	return r.Get(ctx, r.db, id)
}

func (r *repo) Latest(ctx context.Context, documentID uuid.UUID) (*Version, error) {
	qb := query.
		NewBuilder(projection, newest...).
		WhereEquals("DocumentID", documentID)

	return r.first(ctx, documentID, qb, ErrNotFound)
}

func (r *repo) Final(ctx context.Context, documentID uuid.UUID) (*Version, error) {
	qb := query.
		NewBuilder(projection, newest...).
		WhereEquals("DocumentID", documentID).
		WhereEquals("IsFinal", true)

	return r.first(ctx, documentID, qb, ErrNoFinal)
}

func (r *repo) ByNumber(ctx context.Context, documentID uuid.UUID, number int) (*Version, error) {
	if number < 0 {
		return nil, ErrInvalidNumber
	}

	qb := query.
		NewBuilder(projection, newest...).
		WhereEquals("DocumentID", documentID).
		WhereEquals("VersionNumber", number)

	return r.first(ctx, documentID, qb, ErrNotFound)
}

// first returns the leading row of qb, distinguishing a missing document from
// a document without a matching version.
func (r *repo) first(ctx context.Context, documentID uuid.UUID, qb *query.Builder, missing error) (*Version, error) {
	q, args := qb.Limit(1).Build()

	v, err := repository.QueryOne(ctx, r.db, q, args, scanVersion)
	if err == nil {
		return &v, nil
	}
	if err := r.requireDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return nil, repository.MapError(err, missing, ErrFinalConflict)
}

func (r *repo) requireDocument(ctx context.Context, documentID uuid.UUID) error {
	exists, err := r.docs.Exists(ctx, r.db, documentID)
	if err != nil {
		return err
	}
	if !exists {
		return documents.ErrNotFound
	}
	return nil
}

func (r *repo) authorize(ctx context.Context, q repository.Querier, actor *identity.Principal, documentID uuid.UUID) error {
	if actor.IsAdminOrAbove() {
		return nil
	}

	active, err := r.tasks.HasActiveTask(ctx, q, documentID, actor.ID)
	if err != nil {
		return err
	}
	if !active {
		return ErrNotContributor
	}
	return nil
}

func clearFinal(ctx context.Context, e repository.Executor, documentID uuid.UUID) error {
	_, err := e.ExecContext(ctx,
		"UPDATE document_versions SET is_final = FALSE WHERE document_id = $1 AND is_final",
		documentID,
	)
	if err != nil {
		return fmt.Errorf("clear final version: %w", err)
	}
	return nil
}

func setCurrent(ctx context.Context, e repository.Executor, documentID, versionID, actor uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, e,
		"UPDATE documents SET current_version_id = $2, last_modified_by = $3, updated_at = NOW() WHERE id = $1",
		documentID, versionID, actor,
	)
	if err != nil {
		return repository.MapError(err, documents.ErrNotFound, ErrFinalConflict)
	}
	return nil
}

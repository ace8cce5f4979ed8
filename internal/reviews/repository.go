package reviews

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/documents"
	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/internal/versions"
	"github.com/JaimeStill/transflow/pkg/metrics"
	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/query"
	"github.com/JaimeStill/transflow/pkg/repository"
	"github.com/JaimeStill/transflow/pkg/storage"
	"github.com/JaimeStill/transflow/workflow"
)

const (
	entity        = "review"
	publishedType = "text/html; charset=utf-8"
)

// step applies one transition to a review locked inside tx.
type step func(ctx context.Context, tx *sql.Tx, rv *Review, actor uuid.UUID) error

type repo struct {
	db            *sql.DB
	docs          documents.Lifecycle
	ledger        versions.Ledger
	storage       storage.System
	publishPrefix string
	logger        *slog.Logger
	metrics       *metrics.Metrics
	pagination    pagination.Config
}

// New creates a review workflow implementing the System interface.
// Published versions are exported to store under publishPrefix.
func New(
	db *sql.DB,
	docs documents.Lifecycle,
	ledger versions.Ledger,
	store storage.System,
	publishPrefix string,
	logger *slog.Logger,
	m *metrics.Metrics,
	pagination pagination.Config,
) System {
	return &repo{
		db:            db,
		docs:          docs,
		ledger:        ledger,
		storage:       store,
		publishPrefix: publishPrefix,
		logger:        logger.With("system", "reviews"),
		metrics:       m,
		pagination:    pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Review], error) {
	page.Normalize(r.pagination)

	qb := listQuery(page, filters)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	reviews, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanReview)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}

	result := pagination.NewPageResult(reviews, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Review, error) {
	return r.get(ctx, r.db, id, false)
}

func (r *repo) ByDocument(ctx context.Context, q repository.Querier, documentID uuid.UUID) ([]Review, error) {
	stmt, args := query.
		NewBuilder(projection, query.SortField{Field: "CreatedAt"}).
		WhereEquals("DocumentID", documentID).
		Build()

	reviews, err := repository.QueryMany(ctx, q, stmt, args, scanReview)
	if err != nil {
		return nil, fmt.Errorf("query document reviews: %w", err)
	}
	return reviews, nil
}

func (r *repo) Create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Review, error) {
	rv, err := r.create(ctx, actor, cmd)
	r.metrics.RecordTransition(entity, "create", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"review created",
		"id", rv.ID,
		"document_id", rv.DocumentID,
		"version_id", rv.DocumentVersionID,
		"reviewer_id", rv.ReviewerID,
	)
	return rv, nil
}

func (r *repo) create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Review, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	reviewer := actor.ID
	if cmd.ReviewerID != nil {
		reviewer = *cmd.ReviewerID
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Review, error) {
		if _, err := r.docs.Lock(ctx, tx, cmd.DocumentID); err != nil {
			return nil, err
		}

		v, err := r.ledger.Get(ctx, tx, cmd.DocumentVersionID)
		if err != nil {
			return nil, err
		}
		if v.DocumentID != cmd.DocumentID {
			return nil, ErrWrongDocument
		}

		var exists bool
		err = tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM reviews WHERE document_id = $1 AND document_version_id = $2)",
			cmd.DocumentID, cmd.DocumentVersionID,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check existing review: %w", err)
		}
		if exists {
			return nil, ErrDuplicate
		}

		q := fmt.Sprintf(`
			INSERT INTO reviews(id, document_id, document_version_id, reviewer_id, status, comment, checklist, is_complete)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING %s`, returning)

		rv, err := repository.QueryOne(ctx, tx, q, []any{
			uuid.New(),
			cmd.DocumentID,
			cmd.DocumentVersionID,
			reviewer,
			workflow.ReviewPending,
			strings.TrimSpace(cmd.Comment),
			cmd.Checklist,
			cmd.IsComplete,
		}, scanReview)
		if err != nil {
			return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}
		return &rv, nil
	})
}

func (r *repo) Update(ctx context.Context, actor *identity.Principal, id uuid.UUID, cmd UpdateCommand) (*Review, error) {
	return r.run(ctx, actor, id, "update", func(ctx context.Context, tx *sql.Tx, rv *Review, caller uuid.UUID) error {
		if err := workflow.EditReview(rv.ReviewerID, caller, rv.Status); err != nil {
			return err
		}

		var checklist any
		if cmd.Checklist != nil {
			checklist = cmd.Checklist
		}

		err := repository.ExecExpectOne(ctx, tx, `
			UPDATE reviews SET
				comment = COALESCE($2, comment),
				checklist = COALESCE($3::jsonb, checklist),
				is_complete = COALESCE($4, is_complete),
				updated_at = NOW()
			WHERE id = $1`,
			rv.ID, cmd.Comment, checklist, cmd.IsComplete,
		)
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	})
}

func (r *repo) Approve(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Review, error) {
	return r.run(ctx, actor, id, "approve", func(ctx context.Context, tx *sql.Tx, rv *Review, caller uuid.UUID) error {
		next, err := workflow.ApproveReview(rv.ReviewerID, caller, rv.Status)
		if err != nil {
			return err
		}

		err = repository.ExecExpectOne(ctx, tx, `
			UPDATE reviews
			SET status = $2, reviewed_at = NOW(), final_approval_at = NOW(), updated_at = NOW()
			WHERE id = $1`,
			rv.ID, next,
		)
		if err != nil {
			return repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		if err := r.ledger.MarkFinal(ctx, tx, rv.DocumentID, rv.DocumentVersionID); err != nil {
			return err
		}

		return r.docs.SetStatus(ctx, tx, rv.DocumentID, workflow.ApprovalCascade(rv.IsComplete), caller)
	})
}

func (r *repo) Reject(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Review, error) {
	return r.run(ctx, actor, id, "reject", func(ctx context.Context, tx *sql.Tx, rv *Review, caller uuid.UUID) error {
		next, err := workflow.RejectReview(rv.ReviewerID, caller, rv.Status)
		if err != nil {
			return err
		}

		err = repository.ExecExpectOne(ctx, tx,
			"UPDATE reviews SET status = $2, reviewed_at = NOW(), updated_at = NOW() WHERE id = $1",
			rv.ID, next,
		)
		if err != nil {
			return repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		return r.docs.SetStatus(ctx, tx, rv.DocumentID, workflow.RejectionCascade(), caller)
	})
}

// Publish exports the reviewed version to blob storage and then records the
// publication. The export is removed again if the transaction fails.
func (r *repo) Publish(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Review, error) {
	current, err := r.Find(ctx, id)
	if err != nil {
		r.metrics.RecordTransition(entity, "publish", err)
		return nil, err
	}
	if err := workflow.PublishReview(current.ReviewerID, actor.ID, current.Status); err != nil {
		r.metrics.RecordTransition(entity, "publish", err)
		return nil, err
	}

	key, err := r.export(ctx, current)
	if err != nil {
		r.metrics.RecordTransition(entity, "publish", err)
		return nil, err
	}

	rv, err := r.run(ctx, actor, id, "publish", func(ctx context.Context, tx *sql.Tx, rv *Review, caller uuid.UUID) error {
		if err := workflow.PublishReview(rv.ReviewerID, caller, rv.Status); err != nil {
			return err
		}

		err := repository.ExecExpectOne(ctx, tx,
			"UPDATE reviews SET published_at = NOW(), published_key = $2, updated_at = NOW() WHERE id = $1",
			rv.ID, key,
		)
		if err != nil {
			return repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		return r.docs.SetStatus(ctx, tx, rv.DocumentID, workflow.PublicationCascade(), caller)
	})
	if err != nil {
		republish := current.PublishedKey != nil && *current.PublishedKey == key
		if !republish {
			if delErr := r.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				r.logger.Warn("failed to remove orphaned export", "key", key, "error", delErr)
			}
		}
		return nil, err
	}

	return rv, nil
}

func (r *repo) export(ctx context.Context, rv *Review) (string, error) {
	v, err := r.ledger.Get(ctx, r.db, rv.DocumentVersionID)
	if err != nil {
		return "", err
	}

	obj := storage.Object{
		Key:         path.Join(r.publishPrefix, rv.DocumentID.String(), rv.DocumentVersionID.String()+".html"),
		ContentType: publishedType,
		Metadata: map[string]string{
			"document_id":    rv.DocumentID.String(),
			"version_id":     rv.DocumentVersionID.String(),
			"version_number": strconv.Itoa(v.VersionNumber),
			"review_id":      rv.ID.String(),
		},
	}
	key := obj.Key
	if err := r.storage.Upload(ctx, obj, strings.NewReader(v.Content)); err != nil {
		return "", fmt.Errorf("export published version: %w", err)
	}
	return key, nil
}

// run executes fn against review id under the document lock and returns the
// review as committed.
func (r *repo) run(ctx context.Context, actor *identity.Principal, id uuid.UUID, action string, fn step) (*Review, error) {
	rv, err := r.runTx(ctx, actor, id, fn)
	r.metrics.RecordTransition(entity, action, err)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"review "+action,
		"id", rv.ID,
		"document_id", rv.DocumentID,
		"version_id", rv.DocumentVersionID,
		"status", rv.Status,
		"actor", actor.ID,
	)
	return rv, nil
}

func (r *repo) runTx(ctx context.Context, actor *identity.Principal, id uuid.UUID, fn step) (*Review, error) {
	var documentID uuid.UUID
	err := r.db.QueryRowContext(ctx, "SELECT document_id FROM reviews WHERE id = $1", id).Scan(&documentID)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Review, error) {
		if _, err := r.docs.Lock(ctx, tx, documentID); err != nil {
			return nil, err
		}

		rv, err := r.get(ctx, tx, id, true)
		if err != nil {
			return nil, err
		}

		if err := fn(ctx, tx, rv, actor.ID); err != nil {
			return nil, err
		}

		return r.get(ctx, tx, id, false)
	})
}

func (r *repo) get(ctx context.Context, q repository.Querier, id uuid.UUID, lock bool) (*Review, error) {
	qb := query.NewBuilder(projection)
	if lock {
		qb.ForUpdate()
	}
	stmt, args := qb.BuildSingle("ID", id)

	rv, err := repository.QueryOne(ctx, q, stmt, args, scanReview)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rv, nil
}

package versions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/repository"
)

// TaskChecker reports whether a translator holds an IN_PROGRESS task on a
// document. Contributors may only add versions while working on one.
type TaskChecker interface {
	HasActiveTask(ctx context.Context, q repository.Querier, documentID, translatorID uuid.UUID) (bool, error)
}

// Ledger is the version contract consumed by the review workflow inside its
// own transaction.
type Ledger interface {
	// Get loads a version by id.
	Get(ctx context.Context, q repository.Querier, id uuid.UUID) (*Version, error)
	// MarkFinal clears any other final version of the document, flags the
	// given version final and points the document's current version at it.
	// The caller must hold the document lock.
	MarkFinal(ctx context.Context, tx repository.DBTX, documentID, versionID uuid.UUID) error
}

// System defines the public contract for version ledger operations.
type System interface {
	Ledger

	Handler() *Handler

	Create(ctx context.Context, actor *identity.Principal, documentID uuid.UUID, cmd CreateCommand) (*Version, error)
	SetCurrent(ctx context.Context, actor *identity.Principal, documentID, versionID uuid.UUID) (*Version, error)

	List(ctx context.Context, documentID uuid.UUID) ([]Version, error)
	// ByDocument is List read through q, without the existence check.
	ByDocument(ctx context.Context, q repository.Querier, documentID uuid.UUID) ([]Version, error)
	Find(ctx context.Context, id uuid.UUID) (*Version, error)
	Latest(ctx context.Context, documentID uuid.UUID) (*Version, error)
	Final(ctx context.Context, documentID uuid.UUID) (*Version, error)
	ByNumber(ctx context.Context, documentID uuid.UUID, number int) (*Version, error)
}

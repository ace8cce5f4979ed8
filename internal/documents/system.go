package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/repository"
	"github.com/JaimeStill/transflow/workflow"
)

// Lifecycle is the document contract consumed by the version, task and review
// workflows. Lock and SetStatus run inside the caller's transaction.
type Lifecycle interface {
	// Lock takes a row lock on the document for the rest of tx.
	// Every mutating workflow action calls it before touching child rows.
	Lock(ctx context.Context, tx repository.Querier, id uuid.UUID) (*Document, error)
	// SetStatus records status on the document. It performs no transition
	// validation; callers are the source of truth for legal transitions.
	SetStatus(ctx context.Context, tx repository.Executor, id uuid.UUID, status workflow.DocumentStatus, actor uuid.UUID) error
	// Exists reports whether the document exists.
	Exists(ctx context.Context, q repository.Querier, id uuid.UUID) (bool, error)
}

// System defines the public contract for document domain operations.
type System interface {
	Lifecycle

	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	// Get is Find read through q without locking.
	Get(ctx context.Context, q repository.Querier, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Document, error)
	Update(ctx context.Context, actor *identity.Principal, id uuid.UUID, cmd UpdateCommand) (*Document, error)
	Delete(ctx context.Context, actor *identity.Principal, id uuid.UUID) error
}

package tasks

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/repository"
)

// System defines the public contract for task coordination.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Task], error)

	Find(ctx context.Context, id uuid.UUID) (*Task, error)
	// ByDocument lists the document's tasks oldest first, read through q.
	ByDocument(ctx context.Context, q repository.Querier, documentID uuid.UUID) ([]Task, error)

	Create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Task, error)
	Start(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Task, error)
	Submit(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Task, error)
	Abandon(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Task, error)
	Touch(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Task, error)

	// HasActiveTask reports whether translatorID holds an IN_PROGRESS task
	// on the document.
	HasActiveTask(ctx context.Context, q repository.Querier, documentID, translatorID uuid.UUID) (bool, error)
}

package reviews

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/repository"
)

// System defines the public contract for the review workflow.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Review], error)

	Find(ctx context.Context, id uuid.UUID) (*Review, error)
	// ByDocument lists the document's reviews oldest first, read through q.
	ByDocument(ctx context.Context, q repository.Querier, documentID uuid.UUID) ([]Review, error)

	Create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Review, error)
	Update(ctx context.Context, actor *identity.Principal, id uuid.UUID, cmd UpdateCommand) (*Review, error)
	Approve(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Review, error)
	Reject(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Review, error)
	Publish(ctx context.Context, actor *identity.Principal, id uuid.UUID) (*Review, error)
}

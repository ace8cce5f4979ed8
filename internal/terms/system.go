package terms

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/pkg/pagination"
)

// System defines the public contract for glossary operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Term], error)

	Find(ctx context.Context, id uuid.UUID) (*Term, error)
	// Lookup finds the entry for an exact source term in a language pair.
	Lookup(ctx context.Context, sourceTerm, sourceLang, targetLang string) (*Term, error)

	Create(ctx context.Context, actor *identity.Principal, cmd CreateCommand) (*Term, error)
	Update(ctx context.Context, actor *identity.Principal, id uuid.UUID, cmd UpdateCommand) (*Term, error)
	Delete(ctx context.Context, actor *identity.Principal, id uuid.UUID) error
}

package identity

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/workflow"
)

// Trusted headers read by HeaderProvider.
const (
	HeaderPrincipalID   = "X-Principal-ID"
	HeaderPrincipalRole = "X-Principal-Role"
)

// HeaderProvider trusts principal headers set by an upstream proxy.
// It is intended for local development and for deployments behind an
// authenticating gateway.
type HeaderProvider struct{}

// Authenticate reads the principal id and role from trusted headers.
func (HeaderProvider) Authenticate(r *http.Request) (*Principal, error) {
	id, err := uuid.Parse(r.Header.Get(HeaderPrincipalID))
	if err != nil {
		return nil, workflow.NewError(workflow.ErrUnauthorized, "missing or invalid principal id header")
	}

	role := RoleContributor
	if v := r.Header.Get(HeaderPrincipalRole); v != "" {
		role, err = ParseRole(v)
		if err != nil {
			return nil, workflow.NewError(workflow.ErrUnauthorized, fmt.Sprintf("invalid principal role: %v", err))
		}
	}

	return &Principal{ID: id, Role: role}, nil
}

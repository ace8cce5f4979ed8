// Package identity resolves the caller of an API request into a Principal:
// a stable user id and a permission level. Credential validation is delegated
// to a Provider; the workflow domains only consume the resulting Principal.
package identity

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/workflow"
)

// Role is an opaque permission level. The workflow only distinguishes
// admin-or-above from everyone else.
type Role string

// Roles ordered from most to least privileged. Numeric levels 1-3 map to them
// in the same order.
const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleAdmin       Role = "ADMIN"
	RoleContributor Role = "CONTRIBUTOR"
)

// ErrAdminRequired is returned when a contributor attempts an administrative action.
var ErrAdminRequired = workflow.NewError(workflow.ErrForbidden, "administrator permission required")

// IsAdminOrAbove reports whether r may perform administrative actions.
func (r Role) IsAdminOrAbove() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// ParseRole accepts a role name or a numeric permission level (1, 2, 3) as
// carried in a token claim.
func ParseRole(v any) (Role, error) {
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			break
		}
		return roleFromLevel(int(val))
	case int:
		return roleFromLevel(val)
	case string:
		s := strings.ToUpper(strings.TrimSpace(val))
		if n, err := strconv.Atoi(s); err == nil {
			return roleFromLevel(n)
		}
		switch Role(s) {
		case RoleSuperAdmin, RoleAdmin, RoleContributor:
			return Role(s), nil
		}
	}
	return "", fmt.Errorf("unrecognized role %v", v)
}

func roleFromLevel(level int) (Role, error) {
	switch level {
	case 1:
		return RoleSuperAdmin, nil
	case 2:
		return RoleAdmin, nil
	case 3:
		return RoleContributor, nil
	}
	return "", fmt.Errorf("unrecognized role level %d", level)
}

// Principal is an authenticated caller.
type Principal struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// IsAdminOrAbove reports whether the principal may perform administrative actions.
func (p *Principal) IsAdminOrAbove() bool {
	return p.Role.IsAdminOrAbove()
}

// RequireAdmin returns ErrAdminRequired unless the principal is admin-or-above.
func (p *Principal) RequireAdmin() error {
	if !p.IsAdminOrAbove() {
		return ErrAdminRequired
	}
	return nil
}

// Provider validates the credential carried by a request.
type Provider interface {
	Authenticate(r *http.Request) (*Principal, error)
}

type contextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal attached by Middleware, if any.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok && p != nil
}

// Require returns the request principal or workflow.ErrUnauthorized.
func Require(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, workflow.ErrUnauthorized
	}
	return p, nil
}

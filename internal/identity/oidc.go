package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/workflow"
)

// OIDCProvider verifies bearer tokens against an issuer's JSON Web Key Set.
// Keys are fetched lazily on first verification.
type OIDCProvider struct {
	verifier  *oidc.IDTokenVerifier
	idClaim   string
	roleClaim string
}

// NewOIDC creates an OIDCProvider from cfg. ctx bounds background key refreshes.
func NewOIDC(ctx context.Context, cfg *Config) *OIDCProvider {
	keySet := oidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
	verifier := oidc.NewVerifier(cfg.IssuerURL, keySet, &oidc.Config{
		ClientID:          cfg.ClientID,
		SkipClientIDCheck: cfg.ClientID == "",
	})

	return &OIDCProvider{
		verifier:  verifier,
		idClaim:   cfg.IDClaim,
		roleClaim: cfg.RoleClaim,
	}
}

// Authenticate verifies the Authorization bearer token and maps its claims to a Principal.
func (p *OIDCProvider) Authenticate(r *http.Request) (*Principal, error) {
	raw, ok := bearerToken(r)
	if !ok {
		return nil, workflow.NewError(workflow.ErrUnauthorized, "missing bearer token")
	}

	token, err := p.verifier.Verify(r.Context(), raw)
	if err != nil {
		return nil, workflow.NewError(workflow.ErrUnauthorized, fmt.Sprintf("invalid token: %v", err))
	}

	var claims map[string]any
	if err := token.Claims(&claims); err != nil {
		return nil, workflow.NewError(workflow.ErrUnauthorized, fmt.Sprintf("decode claims: %v", err))
	}

	return principalFromClaims(claims, token.Subject, p.idClaim, p.roleClaim)
}

func principalFromClaims(claims map[string]any, subject, idClaim, roleClaim string) (*Principal, error) {
	rawID := subject
	if v, ok := claims[idClaim].(string); ok && v != "" {
		rawID = v
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, workflow.NewError(workflow.ErrUnauthorized, fmt.Sprintf("principal id %q is not a uuid", rawID))
	}

	role := RoleContributor
	if v, ok := claims[roleClaim]; ok {
		if roles, isList := v.([]any); isList {
			role = highestRole(roles)
		} else if parsed, err := ParseRole(v); err == nil {
			role = parsed
		}
	}

	return &Principal{ID: id, Role: role}, nil
}

func highestRole(values []any) Role {
	best := RoleContributor
	for _, v := range values {
		r, err := ParseRole(v)
		if err != nil {
			continue
		}
		if r == RoleSuperAdmin {
			return r
		}
		if r == RoleAdmin {
			best = r
		}
	}
	return best
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

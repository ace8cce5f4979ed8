package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestPrincipalFromClaims(t *testing.T) {
	oid := uuid.New()
	sub := uuid.New()

	t.Run("id claim preferred over subject", func(t *testing.T) {
		p, err := principalFromClaims(map[string]any{"oid": oid.String(), "roles": []any{"CONTRIBUTOR", "ADMIN"}}, sub.String(), "oid", "roles")
		if err != nil {
			t.Fatalf("principalFromClaims() error = %v", err)
		}
		if p.ID != oid {
			t.Errorf("id = %s, want %s", p.ID, oid)
		}
		if p.Role != RoleAdmin {
			t.Errorf("role = %s, want ADMIN", p.Role)
		}
	})

	t.Run("falls back to subject and numeric level", func(t *testing.T) {
		p, err := principalFromClaims(map[string]any{"role_level": float64(1)}, sub.String(), "oid", "role_level")
		if err != nil {
			t.Fatalf("principalFromClaims() error = %v", err)
		}
		if p.ID != sub || p.Role != RoleSuperAdmin {
			t.Errorf("principal = %+v", p)
		}
	})

	t.Run("non uuid subject", func(t *testing.T) {
		if _, err := principalFromClaims(map[string]any{}, "user@example.com", "oid", "roles"); err == nil {
			t.Error("expected error for non-uuid subject")
		}
	})
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := bearerToken(req); ok {
		t.Error("bearerToken() ok without header")
	}

	req.Header.Set("Authorization", "Basic abc")
	if _, ok := bearerToken(req); ok {
		t.Error("bearerToken() ok for basic auth")
	}

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	tok, ok := bearerToken(req)
	if !ok || tok != "abc.def.ghi" {
		t.Errorf("bearerToken() = %q, %v", tok, ok)
	}
}

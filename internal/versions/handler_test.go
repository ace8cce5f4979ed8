package versions_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/documents"
	"github.com/JaimeStill/transflow/internal/identity"
	"github.com/JaimeStill/transflow/internal/versions"
	"github.com/JaimeStill/transflow/pkg/repository"
	"github.com/JaimeStill/transflow/pkg/routes"
	"github.com/JaimeStill/transflow/workflow"
)

type mockSystem struct {
	createFn     func(ctx context.Context, actor *identity.Principal, documentID uuid.UUID, cmd versions.CreateCommand) (*versions.Version, error)
	setCurrentFn func(ctx context.Context, actor *identity.Principal, documentID, versionID uuid.UUID) (*versions.Version, error)
	listFn       func(ctx context.Context, documentID uuid.UUID) ([]versions.Version, error)
	findFn       func(ctx context.Context, id uuid.UUID) (*versions.Version, error)
	latestFn     func(ctx context.Context, documentID uuid.UUID) (*versions.Version, error)
	finalFn      func(ctx context.Context, documentID uuid.UUID) (*versions.Version, error)
	byNumberFn   func(ctx context.Context, documentID uuid.UUID, number int) (*versions.Version, error)
}

func (m *mockSystem) Handler() *versions.Handler { return newTestHandler(m, 0) }

func (m *mockSystem) Get(context.Context, repository.Querier, uuid.UUID) (*versions.Version, error) {
	return nil, versions.ErrNotFound
}

func (m *mockSystem) MarkFinal(context.Context, repository.DBTX, uuid.UUID, uuid.UUID) error {
	return nil
}

func (m *mockSystem) Create(ctx context.Context, actor *identity.Principal, documentID uuid.UUID, cmd versions.CreateCommand) (*versions.Version, error) {
	return m.createFn(ctx, actor, documentID, cmd)
}

func (m *mockSystem) SetCurrent(ctx context.Context, actor *identity.Principal, documentID, versionID uuid.UUID) (*versions.Version, error) {
	return m.setCurrentFn(ctx, actor, documentID, versionID)
}

func (m *mockSystem) List(ctx context.Context, documentID uuid.UUID) ([]versions.Version, error) {
	return m.listFn(ctx, documentID)
}

func (m *mockSystem) ByDocument(ctx context.Context, _ repository.Querier, documentID uuid.UUID) ([]versions.Version, error) {
	return m.listFn(ctx, documentID)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*versions.Version, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Latest(ctx context.Context, documentID uuid.UUID) (*versions.Version, error) {
	return m.latestFn(ctx, documentID)
}

func (m *mockSystem) Final(ctx context.Context, documentID uuid.UUID) (*versions.Version, error) {
	return m.finalFn(ctx, documentID)
}

func (m *mockSystem) ByNumber(ctx context.Context, documentID uuid.UUID, number int) (*versions.Version, error) {
	return m.byNumberFn(ctx, documentID, number)
}

func newTestHandler(sys versions.System, maxContentSize int64) *versions.Handler {
	return versions.NewHandler(sys, slog.New(slog.NewTextHandler(io.Discard, nil)), maxContentSize)
}

func setupMux(h *versions.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux
}

var (
	docID      = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	translator = &identity.Principal{ID: uuid.New(), Role: identity.RoleContributor}
)

func as(req *http.Request, p *identity.Principal) *http.Request {
	return req.WithContext(identity.WithPrincipal(req.Context(), p))
}

func sampleVersion(number int, typ workflow.VersionType) versions.Version {
	return versions.Version{
		ID:            uuid.New(),
		DocumentID:    docID,
		VersionNumber: number,
		VersionType:   typ,
		Content:       "<p>hello</p>",
		CreatedBy:     translator.ID,
		CreatedAt:     time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestHandlerList(t *testing.T) {
	sys := &mockSystem{
		listFn: func(_ context.Context, id uuid.UUID) ([]versions.Version, error) {
			if id != docID {
				return nil, documents.ErrNotFound
			}
			return []versions.Version{
				sampleVersion(0, workflow.VersionOriginal),
				sampleVersion(1, workflow.VersionAIDraft),
			}, nil
		},
	}
	mux := setupMux(newTestHandler(sys, 0))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+docID.String()+"/versions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got []versions.Version
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[1].VersionType != workflow.VersionAIDraft {
		t.Errorf("versions = %+v", got)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+uuid.NewString()+"/versions", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing document status = %d, want 404", rec.Code)
	}
}

func TestHandlerCreate(t *testing.T) {
	sys := &mockSystem{
		createFn: func(_ context.Context, actor *identity.Principal, id uuid.UUID, cmd versions.CreateCommand) (*versions.Version, error) {
			if id != docID {
				return nil, documents.ErrNotFound
			}
			if cmd.VersionType == "DRAFT" {
				return nil, workflow.NewError(workflow.ErrInvalidState, "unsupported version type")
			}
			if actor.ID != translator.ID {
				return nil, versions.ErrNotContributor
			}
			v := sampleVersion(2, workflow.VersionManualTranslation)
			return &v, nil
		},
	}
	mux := setupMux(newTestHandler(sys, 1024))
	path := "/documents/" + docID.String() + "/versions"

	tests := []struct {
		name   string
		actor  *identity.Principal
		body   string
		status int
	}{
		{"created", translator, `{"version_type":"MANUAL_TRANSLATION","content":"<p>hi</p>","is_final":true}`, http.StatusCreated},
		{"unknown type", translator, `{"version_type":"DRAFT","content":"x"}`, http.StatusBadRequest},
		{"not contributor", &identity.Principal{ID: uuid.New(), Role: identity.RoleContributor}, `{"version_type":"MANUAL_TRANSLATION","content":"x"}`, http.StatusForbidden},
		{"anonymous", nil, `{"version_type":"MANUAL_TRANSLATION","content":"x"}`, http.StatusUnauthorized},
		{"malformed", translator, `{"version_type":`, http.StatusBadRequest},
		{"oversized", translator, `{"version_type":"MANUAL_TRANSLATION","content":"` + strings.Repeat("a", 70<<10) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", path, strings.NewReader(tt.body))
			if tt.actor != nil {
				req = as(req, tt.actor)
			}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestHandlerSetCurrent(t *testing.T) {
	belongs := uuid.New()
	sys := &mockSystem{
		setCurrentFn: func(_ context.Context, _ *identity.Principal, _ uuid.UUID, versionID uuid.UUID) (*versions.Version, error) {
			if versionID != belongs {
				return nil, versions.ErrWrongDocument
			}
			v := sampleVersion(3, workflow.VersionManualTranslation)
			v.ID = versionID
			return &v, nil
		},
	}
	mux := setupMux(newTestHandler(sys, 0))
	base := "/documents/" + docID.String() + "/versions/"

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, as(httptest.NewRequest("POST", base+belongs.String()+"/set-current", nil), translator))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, as(httptest.NewRequest("POST", base+uuid.NewString()+"/set-current", nil), translator))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("foreign version status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, as(httptest.NewRequest("POST", base+"nope/set-current", nil), translator))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", rec.Code)
	}
}

func TestHandlerReads(t *testing.T) {
	latest := sampleVersion(4, workflow.VersionManualTranslation)
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*versions.Version, error) {
			if id == latest.ID {
				return &latest, nil
			}
			return nil, versions.ErrNotFound
		},
		latestFn: func(context.Context, uuid.UUID) (*versions.Version, error) { return &latest, nil },
		finalFn: func(context.Context, uuid.UUID) (*versions.Version, error) {
			return nil, versions.ErrNoFinal
		},
		byNumberFn: func(_ context.Context, _ uuid.UUID, n int) (*versions.Version, error) {
			if n == 4 {
				return &latest, nil
			}
			return nil, versions.ErrNotFound
		},
	}
	mux := setupMux(newTestHandler(sys, 0))
	doc := "/documents/" + docID.String() + "/versions"

	tests := []struct {
		name string
		path string
		want int
	}{
		{"find", "/versions/" + latest.ID.String(), http.StatusOK},
		{"find missing", "/versions/" + uuid.NewString(), http.StatusNotFound},
		{"latest", doc + "/latest", http.StatusOK},
		{"final missing", doc + "/final", http.StatusNotFound},
		{"by number", doc + "/number/4", http.StatusOK},
		{"by number missing", doc + "/number/9", http.StatusNotFound},
		{"negative number", doc + "/number/-1", http.StatusBadRequest},
		{"non-numeric", doc + "/number/two", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

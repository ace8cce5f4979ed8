package query_test

import (
	"reflect"
	"testing"

	"github.com/JaimeStill/transflow/pkg/query"
)

func taskProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "translation_tasks", "t").
		Project("id", "ID").
		Project("status", "Status").
		Project("created_at", "CreatedAt")
}

func joinedProjection() *query.ProjectionMap {
	return taskProjection().
		Join("public", "documents", "d", "JOIN", "d.id = t.document_id").
		Project("title", "DocumentTitle")
}

func ptr[T any](v T) *T { return &v }

func TestProjection(t *testing.T) {
	p := taskProjection()

	if got := p.Table(); got != "public.translation_tasks t" {
		t.Errorf("Table() = %q", got)
	}
	if got := p.From(); got != "public.translation_tasks t" {
		t.Errorf("From() = %q", got)
	}
	if got := p.Columns(); got != "t.id, t.status, t.created_at" {
		t.Errorf("Columns() = %q", got)
	}
	if got := p.Column("Status"); got != "t.status" {
		t.Errorf("Column(Status) = %q", got)
	}
	if got := p.Column("unmapped"); got != "unmapped" {
		t.Errorf("Column(unmapped) = %q, want passthrough", got)
	}
}

func TestProjectionJoin(t *testing.T) {
	p := joinedProjection()

	want := "public.translation_tasks t JOIN public.documents d ON d.id = t.document_id"
	if got := p.From(); got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
	if got := p.Column("DocumentTitle"); got != "d.title" {
		t.Errorf("Column(DocumentTitle) = %q, want d.title", got)
	}
	if got := p.Columns(); got != "t.id, t.status, t.created_at, d.title" {
		t.Errorf("Columns() = %q", got)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		in   string
		want []query.SortField
	}{
		{"", nil},
		{"Status", []query.SortField{{Field: "Status"}}},
		{"Status,-CreatedAt", []query.SortField{{Field: "Status"}, {Field: "CreatedAt", Descending: true}}},
		{" , -ID ,", []query.SortField{{Field: "ID", Descending: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := query.ParseSortFields(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSortFields(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildWithConditions(t *testing.T) {
	status := "IN_PROGRESS"
	sql, args := query.NewBuilder(taskProjection(), query.SortField{Field: "CreatedAt", Descending: true}).
		WhereEquals("Status", &status).
		WhereEquals("ID", (*string)(nil)).
		Build()

	want := "SELECT t.id, t.status, t.created_at FROM public.translation_tasks t WHERE t.status = $1 ORDER BY t.created_at DESC"
	if sql != want {
		t.Errorf("Build() sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != &status {
		t.Errorf("Build() args = %v", args)
	}
}

func TestBuildPageJoined(t *testing.T) {
	sql, args := query.NewBuilder(joinedProjection()).
		WhereContains("DocumentTitle", ptr("manual")).
		OrderByFields([]query.SortField{{Field: "DocumentTitle"}}).
		BuildPage(3, 20)

	want := `SELECT t.id, t.status, t.created_at, d.title FROM public.translation_tasks t JOIN public.documents d ON d.id = t.document_id WHERE d.title ILIKE $1 ESCAPE '\' ORDER BY d.title ASC LIMIT 20 OFFSET 40`
	if sql != want {
		t.Errorf("BuildPage() sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "%manual%" {
		t.Errorf("BuildPage() args = %v", args)
	}
}

func TestBuildCount(t *testing.T) {
	sql, args := query.NewBuilder(taskProjection()).
		WhereSearch(ptr("x"), "Status", "ID").
		WhereIn("Status", []any{"AVAILABLE", "IN_PROGRESS"}).
		BuildCount()

	want := `SELECT COUNT(*) FROM public.translation_tasks t WHERE (t.status ILIKE $1 ESCAPE '\' OR t.id ILIKE $2 ESCAPE '\') AND t.status IN ($3, $4)`
	if sql != want {
		t.Errorf("BuildCount() sql = %q, want %q", sql, want)
	}
	if len(args) != 4 {
		t.Errorf("BuildCount() args = %v, want 4", args)
	}
}

func TestBuildCountKeepsConditions(t *testing.T) {
	status := "IN_PROGRESS"
	sql, args := query.NewBuilder(taskProjection()).
		WhereEquals("Status", &status).
		BuildCount()

	want := "SELECT COUNT(*) FROM public.translation_tasks t WHERE t.status = $1"
	if sql != want {
		t.Errorf("BuildCount() sql = %q, want %q", sql, want)
	}
	if len(args) != 1 {
		t.Errorf("BuildCount() args = %v, want 1", args)
	}
}

func TestContainsEscapesWildcards(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"manual", "%manual%"},
		{"50%", `%50\%%`},
		{"snake_case", `%snake\_case%`},
		{`C:\docs`, `%C:\\docs%`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, args := query.NewBuilder(taskProjection()).
				WhereContains("Status", ptr(tt.in)).
				Build()
			if len(args) != 1 || args[0] != tt.want {
				t.Errorf("WhereContains(%q) args = %v, want %q", tt.in, args, tt.want)
			}

			_, args = query.NewBuilder(taskProjection()).
				WhereSearch(ptr(tt.in), "Status").
				BuildCount()
			if len(args) != 1 || args[0] != tt.want {
				t.Errorf("WhereSearch(%q) args = %v, want %q", tt.in, args, tt.want)
			}
		})
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(taskProjection()).BuildSingle("ID", "abc")
	want := "SELECT t.id, t.status, t.created_at FROM public.translation_tasks t WHERE t.id = $1"
	if sql != want || len(args) != 1 {
		t.Errorf("BuildSingle() = %q %v", sql, args)
	}
}

func TestBuildLockAndLimit(t *testing.T) {
	sql, args := query.NewBuilder(joinedProjection()).
		ForUpdate().
		BuildSingle("ID", "abc")

	want := "SELECT t.id, t.status, t.created_at, d.title FROM public.translation_tasks t JOIN public.documents d ON d.id = t.document_id WHERE t.id = $1 FOR UPDATE OF t"
	if sql != want || len(args) != 1 {
		t.Errorf("BuildSingle() = %q %v, want %q", sql, args, want)
	}

	sql, _ = query.NewBuilder(taskProjection(), query.SortField{Field: "CreatedAt", Descending: true}).
		WhereEquals("Status", "AVAILABLE").
		Limit(1).
		Build()

	want = "SELECT t.id, t.status, t.created_at FROM public.translation_tasks t WHERE t.status = $1 ORDER BY t.created_at DESC LIMIT 1"
	if sql != want {
		t.Errorf("Build() = %q, want %q", sql, want)
	}
}

func TestSortFieldsNormalized(t *testing.T) {
	fallback := query.SortField{Field: "CreatedAt", Descending: true}

	tests := []struct {
		name string
		sort string
		want string
	}{
		{"snake case", "created_at", " ORDER BY t.created_at ASC"},
		{"lower case", "-status", " ORDER BY t.status DESC"},
		{"unknown dropped", "status;DROP TABLE x,-created_at", " ORDER BY t.created_at DESC"},
		{"all unknown uses default", "secret", " ORDER BY t.created_at DESC"},
	}

	base := "SELECT t.id, t.status, t.created_at FROM public.translation_tasks t"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := query.NewBuilder(taskProjection(), fallback).
				OrderByFields(query.ParseSortFields(tt.sort)).
				Build()
			if sql != base+tt.want {
				t.Errorf("Build() = %q, want %q", sql, base+tt.want)
			}
		})
	}
}

package terms

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/JaimeStill/transflow/pkg/pagination"
)

func ptr[T any](v T) *T { return &v }

var placeholder = regexp.MustCompile(`\$(\d+)`)

// checkPlaceholders fails unless sql numbers exactly len(args) parameters
// as $1..$n.
func checkPlaceholders(t *testing.T, sql string, args []any) {
	t.Helper()
	seen := map[string]bool{}
	for _, m := range placeholder.FindAllStringSubmatch(sql, -1) {
		seen[m[1]] = true
	}
	if len(seen) != len(args) {
		t.Fatalf("%d placeholders, %d args: %s", len(seen), len(args), sql)
	}
	for i := 1; i <= len(args); i++ {
		if !seen[strconv.Itoa(i)] {
			t.Fatalf("missing $%d: %s", i, sql)
		}
	}
}

// whereOf returns the WHERE clause of sql without ordering or paging.
func whereOf(sql string) string {
	_, where, _ := strings.Cut(sql, " WHERE ")
	where, _, _ = strings.Cut(where, " ORDER BY ")
	return where
}

func TestListQuery(t *testing.T) {
	tests := []struct {
		name    string
		page    pagination.PageRequest
		filters Filters
		args    int
	}{
		{"unfiltered", pagination.PageRequest{Page: 1, PageSize: 20}, Filters{}, 0},
		{
			"language pair",
			pagination.PageRequest{Page: 1, PageSize: 20},
			Filters{SourceLang: ptr("en"), TargetLang: ptr("ko")},
			2,
		},
		{
			"search with language pair",
			pagination.PageRequest{Page: 1, PageSize: 20, Search: ptr("snake_case")},
			Filters{SourceLang: ptr("en"), TargetLang: ptr("ko")},
			4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			countSQL, countArgs := listQuery(tt.page, tt.filters).BuildCount()
			pageSQL, pageArgs := listQuery(tt.page, tt.filters).BuildPage(tt.page.Page, tt.page.PageSize)

			if len(countArgs) != tt.args || len(pageArgs) != tt.args {
				t.Fatalf("args = %d/%d, want %d", len(countArgs), len(pageArgs), tt.args)
			}
			checkPlaceholders(t, countSQL, countArgs)
			checkPlaceholders(t, pageSQL, pageArgs)

			if tt.args > 0 && whereOf(countSQL) != whereOf(pageSQL) {
				t.Errorf("count WHERE %q differs from page WHERE %q", whereOf(countSQL), whereOf(pageSQL))
			}
		})
	}
}

package terms

import (
	"net/url"

	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/query"
	"github.com/JaimeStill/transflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "terms", "g").
	Project("id", "ID").
	Project("source_term", "SourceTerm").
	Project("target_term", "TargetTerm").
	Project("source_lang", "SourceLang").
	Project("target_lang", "TargetLang").
	Project("description", "Description").
	Project("created_by", "CreatedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "SourceTerm"}

// Filters contains optional filtering criteria for term queries.
type Filters struct {
	SourceLang *string `json:"source_lang,omitempty"`
	TargetLang *string `json:"target_lang,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("SourceLang", f.SourceLang).
		WhereEquals("TargetLang", f.TargetLang)
}

// listQuery builds the conditions and ordering List shares between its
// count and page queries.
func listQuery(page pagination.PageRequest, filters Filters) *query.Builder {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "SourceTerm", "TargetTerm")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}
	return qb
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if sl := values.Get("source_lang"); sl != "" {
		f.SourceLang = &sl
	}

	if tl := values.Get("target_lang"); tl != "" {
		f.TargetLang = &tl
	}

	return f
}

func scanTerm(s repository.Scanner) (Term, error) {
	var t Term
	err := s.Scan(
		&t.ID,
		&t.SourceTerm,
		&t.TargetTerm,
		&t.SourceLang,
		&t.TargetLang,
		&t.Description,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

const returning = `id, source_term, target_term, source_lang, target_lang, description, created_by, created_at, updated_at`

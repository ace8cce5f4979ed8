package documents

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/query"
	"github.com/JaimeStill/transflow/pkg/repository"
	"github.com/JaimeStill/transflow/workflow"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("title", "Title").
	Project("original_url", "OriginalURL").
	Project("source_lang", "SourceLang").
	Project("target_lang", "TargetLang").
	Project("category_id", "CategoryID").
	Project("status", "Status").
	Project("current_version_id", "CurrentVersionID").
	Project("estimated_length", "EstimatedLength").
	Project("created_by", "CreatedBy").
	Project("last_modified_by", "LastModifiedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Title uses case-insensitive contains matching;
// the remaining fields match exactly.
type Filters struct {
	Status     *workflow.DocumentStatus `json:"status,omitempty"`
	CategoryID *int64                   `json:"category_id,omitempty"`
	CreatedBy  *uuid.UUID               `json:"created_by,omitempty"`
	SourceLang *string                  `json:"source_lang,omitempty"`
	TargetLang *string                  `json:"target_lang,omitempty"`
	Title      *string                  `json:"title,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("CategoryID", f.CategoryID).
		WhereEquals("CreatedBy", f.CreatedBy).
		WhereEquals("SourceLang", f.SourceLang).
		WhereEquals("TargetLang", f.TargetLang).
		WhereContains("Title", f.Title)
}

// listQuery builds the conditions and ordering List shares between its
// count and page queries.
func listQuery(page pagination.PageRequest, filters Filters) *query.Builder {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "OriginalURL")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}
	return qb
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unparseable values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		if status, err := workflow.ParseDocumentStatus(s); err == nil {
			f.Status = &status
		}
	}

	if c := values.Get("category_id"); c != "" {
		if v, err := strconv.ParseInt(c, 10, 64); err == nil {
			f.CategoryID = &v
		}
	}

	if cb := values.Get("created_by"); cb != "" {
		if id, err := uuid.Parse(cb); err == nil {
			f.CreatedBy = &id
		}
	}

	if sl := values.Get("source_lang"); sl != "" {
		f.SourceLang = &sl
	}

	if tl := values.Get("target_lang"); tl != "" {
		f.TargetLang = &tl
	}

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Title,
		&d.OriginalURL,
		&d.SourceLang,
		&d.TargetLang,
		&d.CategoryID,
		&d.Status,
		&d.CurrentVersionID,
		&d.EstimatedLength,
		&d.CreatedBy,
		&d.LastModifiedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

const returning = `id, title, original_url, source_lang, target_lang, category_id, status,
	current_version_id, estimated_length, created_by, last_modified_by, created_at, updated_at`

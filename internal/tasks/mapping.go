package tasks

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/query"
	"github.com/JaimeStill/transflow/pkg/repository"
	"github.com/JaimeStill/transflow/workflow"
)

var projection = query.
	NewProjectionMap("public", "translation_tasks", "t").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("translator_id", "TranslatorID").
	Project("assigned_by", "AssignedBy").
	Project("status", "Status").
	Project("started_at", "StartedAt").
	Project("submitted_at", "SubmittedAt").
	Project("last_activity_at", "LastActivityAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "documents", "d", "JOIN", "d.id = t.document_id").
	Project("title", "DocumentTitle")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for task queries.
type Filters struct {
	DocumentID   *uuid.UUID           `json:"document_id,omitempty"`
	TranslatorID *uuid.UUID           `json:"translator_id,omitempty"`
	Status       *workflow.TaskStatus `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("TranslatorID", f.TranslatorID).
		WhereEquals("Status", f.Status)
}

// listQuery builds the conditions and ordering List shares between its
// count and page queries.
func listQuery(page pagination.PageRequest, filters Filters) *query.Builder {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "DocumentTitle")

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

	if d := values.Get("document_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.DocumentID = &id
		}
	}

	if tr := values.Get("translator_id"); tr != "" {
		if id, err := uuid.Parse(tr); err == nil {
			f.TranslatorID = &id
		}
	}

	if s := values.Get("status"); s != "" {
		if status, err := workflow.ParseTaskStatus(s); err == nil {
			f.Status = &status
		}
	}

	return f
}

func scanTask(s repository.Scanner) (Task, error) {
	var t Task
	err := s.Scan(
		&t.ID,
		&t.DocumentID,
		&t.TranslatorID,
		&t.AssignedBy,
		&t.Status,
		&t.StartedAt,
		&t.SubmittedAt,
		&t.LastActivityAt,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.DocumentTitle,
	)
	return t, err
}

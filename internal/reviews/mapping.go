package reviews

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/pkg/pagination"
	"github.com/JaimeStill/transflow/pkg/query"
	"github.com/JaimeStill/transflow/pkg/repository"
	"github.com/JaimeStill/transflow/workflow"
)

var projection = query.
	NewProjectionMap("public", "reviews", "r").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("document_version_id", "DocumentVersionID").
	Project("reviewer_id", "ReviewerID").
	Project("status", "Status").
	Project("comment", "Comment").
	Project("checklist", "Checklist").
	Project("is_complete", "IsComplete").
	Project("reviewed_at", "ReviewedAt").
	Project("final_approval_at", "FinalApprovalAt").
	Project("published_at", "PublishedAt").
	Project("published_key", "PublishedKey").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for review queries.
type Filters struct {
	DocumentID        *uuid.UUID             `json:"document_id,omitempty"`
	DocumentVersionID *uuid.UUID             `json:"document_version_id,omitempty"`
	ReviewerID        *uuid.UUID             `json:"reviewer_id,omitempty"`
	Status            *workflow.ReviewStatus `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("DocumentVersionID", f.DocumentVersionID).
		WhereEquals("ReviewerID", f.ReviewerID).
		WhereEquals("Status", f.Status)
}

// listQuery builds the conditions and ordering List shares between its
// count and page queries.
func listQuery(page pagination.PageRequest, filters Filters) *query.Builder {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Comment")

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

	f.DocumentID = parseID(values.Get("document_id"))
	f.DocumentVersionID = parseID(values.Get("document_version_id"))
	f.ReviewerID = parseID(values.Get("reviewer_id"))

	if s := values.Get("status"); s != "" {
		if status, err := workflow.ParseReviewStatus(s); err == nil {
			f.Status = &status
		}
	}

	return f
}

func parseID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func scanReview(s repository.Scanner) (Review, error) {
	var r Review
	err := s.Scan(
		&r.ID,
		&r.DocumentID,
		&r.DocumentVersionID,
		&r.ReviewerID,
		&r.Status,
		&r.Comment,
		&r.Checklist,
		&r.IsComplete,
		&r.ReviewedAt,
		&r.FinalApprovalAt,
		&r.PublishedAt,
		&r.PublishedKey,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

const returning = `id, document_id, document_version_id, reviewer_id, status, comment, checklist, is_complete,
	reviewed_at, final_approval_at, published_at, published_key, created_at, updated_at`

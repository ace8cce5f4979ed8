// Package reviews implements the review workflow: a reviewer's decision on one
// version of a document, and the cascades an approval, rejection or
// publication drives into the version ledger and the document status.
package reviews

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/workflow"
)

// Checklist maps opaque check names to their outcome. It is stored as JSONB.
type Checklist map[string]bool

// Value implements driver.Valuer. A nil checklist is stored as an empty object.
func (c Checklist) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]bool(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (c *Checklist) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = Checklist{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan checklist: unsupported type %T", src)
	}

	m := map[string]bool{}
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("scan checklist: %w", err)
	}
	*c = m
	return nil
}

// Review is a reviewer's judgment on one version of a document.
// Publication is recorded by PublishedAt on an APPROVED review.
type Review struct {
	ID                uuid.UUID             `json:"id"`
	DocumentID        uuid.UUID             `json:"document_id"`
	DocumentVersionID uuid.UUID             `json:"document_version_id"`
	ReviewerID        uuid.UUID             `json:"reviewer_id"`
	Status            workflow.ReviewStatus `json:"status"`
	Comment           string                `json:"comment"`
	Checklist         Checklist             `json:"checklist"`
	IsComplete        bool                  `json:"is_complete"`
	ReviewedAt        *time.Time            `json:"reviewed_at"`
	FinalApprovalAt   *time.Time            `json:"final_approval_at"`
	PublishedAt       *time.Time            `json:"published_at"`
	PublishedKey      *string               `json:"published_key"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// CreateCommand opens a review of a version. A nil ReviewerID assigns the
// review to the caller.
type CreateCommand struct {
	DocumentID        uuid.UUID  `json:"document_id"`
	DocumentVersionID uuid.UUID  `json:"document_version_id"`
	ReviewerID        *uuid.UUID `json:"reviewer_id,omitempty"`
	Comment           string     `json:"comment"`
	Checklist         Checklist  `json:"checklist,omitempty"`
	IsComplete        bool       `json:"is_complete"`
}

// UpdateCommand edits a pending review. Nil fields are left unchanged.
type UpdateCommand struct {
	Comment    *string   `json:"comment,omitempty"`
	Checklist  Checklist `json:"checklist,omitempty"`
	IsComplete *bool     `json:"is_complete,omitempty"`
}

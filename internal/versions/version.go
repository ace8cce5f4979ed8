// Package versions implements the version ledger: the append-only history of a
// document's content, its numbering rule, and the current and final pointers.
package versions

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/workflow"
)

// Version is an immutable snapshot of a document's content.
type Version struct {
	ID            uuid.UUID            `json:"id"`
	DocumentID    uuid.UUID            `json:"document_id"`
	VersionNumber int                  `json:"version_number"`
	VersionType   workflow.VersionType `json:"version_type"`
	Content       string               `json:"content"`
	IsFinal       bool                 `json:"is_final"`
	CreatedBy     uuid.UUID            `json:"created_by"`
	CreatedAt     time.Time            `json:"created_at"`
}

// CreateCommand carries the content of a new version.
type CreateCommand struct {
	VersionType string `json:"version_type"`
	Content     string `json:"content"`
	IsFinal     bool   `json:"is_final"`
}

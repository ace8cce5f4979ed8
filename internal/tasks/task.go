// Package tasks coordinates translation work items: who is translating which
// document, the task state machine, and the document status cascades its
// transitions trigger.
package tasks

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/workflow"
)

// Task is one translator's claim on one document.
type Task struct {
	ID             uuid.UUID           `json:"id"`
	DocumentID     uuid.UUID           `json:"document_id"`
	DocumentTitle  string              `json:"document_title"`
	TranslatorID   uuid.UUID           `json:"translator_id"`
	AssignedBy     *uuid.UUID          `json:"assigned_by"`
	Status         workflow.TaskStatus `json:"status"`
	StartedAt      *time.Time          `json:"started_at"`
	SubmittedAt    *time.Time          `json:"submitted_at"`
	LastActivityAt *time.Time          `json:"last_activity_at"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// CreateCommand opens a task on a document. A nil TranslatorID claims the
// task for the caller; naming another translator is an administrative
// assignment.
type CreateCommand struct {
	DocumentID   uuid.UUID  `json:"document_id"`
	TranslatorID *uuid.UUID `json:"translator_id,omitempty"`
}

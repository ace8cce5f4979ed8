package tasks

import "github.com/JaimeStill/transflow/workflow"

// Domain errors for task operations.
var (
	ErrNotFound    = workflow.NewError(workflow.ErrNotFound, "task not found")
	ErrDuplicate   = workflow.NewError(workflow.ErrConflict, "a task already exists for this document and translator")
	ErrNoDocument  = workflow.NewError(workflow.ErrInvalidState, "document_id is required")
	ErrInvalidID   = workflow.NewError(workflow.ErrInvalidState, "invalid task id")
	ErrInvalidBody = workflow.NewError(workflow.ErrInvalidState, "invalid request body")
)

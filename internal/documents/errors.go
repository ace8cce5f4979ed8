package documents

import "github.com/JaimeStill/transflow/workflow"

// Domain errors for document operations.
var (
	ErrNotFound         = workflow.NewError(workflow.ErrNotFound, "document not found")
	ErrHasDependents    = workflow.NewError(workflow.ErrConflict, "document still has versions, tasks or reviews")
	ErrTitleRequired    = workflow.NewError(workflow.ErrInvalidState, "title is required")
	ErrLanguageRequired = workflow.NewError(workflow.ErrInvalidState, "source_lang and target_lang are required")
	ErrInvalidLength    = workflow.NewError(workflow.ErrInvalidState, "estimated_length must not be negative")
	ErrInvalidID        = workflow.NewError(workflow.ErrInvalidState, "invalid document id")
	ErrInvalidBody      = workflow.NewError(workflow.ErrInvalidState, "invalid request body")
)

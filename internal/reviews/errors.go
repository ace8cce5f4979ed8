package reviews

import "github.com/JaimeStill/transflow/workflow"

// Domain errors for review operations.
var (
	ErrNotFound      = workflow.NewError(workflow.ErrNotFound, "review not found")
	ErrDuplicate     = workflow.NewError(workflow.ErrConflict, "a review already exists for this document version")
	ErrWrongDocument = workflow.NewError(workflow.ErrInvalidState, "version does not belong to the document")
	ErrInvalidID     = workflow.NewError(workflow.ErrInvalidState, "invalid review id")
	ErrInvalidBody   = workflow.NewError(workflow.ErrInvalidState, "invalid request body")
)

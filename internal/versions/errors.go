package versions

import "github.com/JaimeStill/transflow/workflow"

// Domain errors for version operations.
var (
	ErrNotFound        = workflow.NewError(workflow.ErrNotFound, "version not found")
	ErrNoFinal         = workflow.NewError(workflow.ErrNotFound, "document has no final version")
	ErrFinalConflict   = workflow.NewError(workflow.ErrConflict, "document already has a final version")
	ErrWrongDocument   = workflow.NewError(workflow.ErrInvalidState, "version does not belong to the document")
	ErrContentTooLarge = workflow.NewError(workflow.ErrInvalidState, "version content exceeds the maximum size")
	ErrNotContributor  = workflow.NewError(workflow.ErrForbidden, "version changes require an administrator or an active task on the document")
	ErrInvalidID       = workflow.NewError(workflow.ErrInvalidState, "invalid id")
	ErrInvalidNumber   = workflow.NewError(workflow.ErrInvalidState, "invalid version number")
	ErrInvalidBody     = workflow.NewError(workflow.ErrInvalidState, "invalid request body")
)

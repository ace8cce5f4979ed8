package terms

import "github.com/JaimeStill/transflow/workflow"

// Domain errors for glossary operations.
var (
	ErrNotFound         = workflow.NewError(workflow.ErrNotFound, "term not found")
	ErrDuplicate        = workflow.NewError(workflow.ErrConflict, "term already exists for this language pair")
	ErrTermRequired     = workflow.NewError(workflow.ErrInvalidState, "source_term and target_term are required")
	ErrLanguageRequired = workflow.NewError(workflow.ErrInvalidState, "source_lang and target_lang are required")
	ErrInvalidID        = workflow.NewError(workflow.ErrInvalidState, "invalid term id")
	ErrInvalidBody      = workflow.NewError(workflow.ErrInvalidState, "invalid request body")
)

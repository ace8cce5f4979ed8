package api

import (
	"github.com/JaimeStill/transflow/internal/documents"
	"github.com/JaimeStill/transflow/internal/reviews"
	"github.com/JaimeStill/transflow/internal/tasks"
	"github.com/JaimeStill/transflow/internal/terms"
	"github.com/JaimeStill/transflow/internal/versions"
	"github.com/JaimeStill/transflow/pkg/repository"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents documents.System
	Versions  versions.System
	Tasks     tasks.System
	Reviews   reviews.System
	Terms     terms.System

	db repository.Beginner
}

// NewDomain creates all domain systems from the API runtime. Documents are
// built first since every workflow locks through them.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	docsSystem := documents.New(
		db,
		runtime.Logger,
		runtime.Metrics,
		runtime.Pagination,
	)

	tasksSystem := tasks.New(
		db,
		docsSystem,
		runtime.Logger,
		runtime.Metrics,
		runtime.Pagination,
	)

	versionsSystem := versions.New(
		db,
		docsSystem,
		tasksSystem,
		runtime.Logger,
		runtime.Metrics,
		runtime.MaxContentSize,
	)

	reviewsSystem := reviews.New(
		db,
		docsSystem,
		versionsSystem,
		runtime.Storage,
		runtime.PublishPrefix,
		runtime.Logger,
		runtime.Metrics,
		runtime.Pagination,
	)

	termsSystem := terms.New(
		db,
		runtime.Logger,
		runtime.Metrics,
		runtime.Pagination,
	)

	return &Domain{
		Documents: docsSystem,
		Versions:  versionsSystem,
		Tasks:     tasksSystem,
		Reviews:   reviewsSystem,
		Terms:     termsSystem,
		db:        db,
	}
}

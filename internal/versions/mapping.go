package versions

import (
	"github.com/JaimeStill/transflow/pkg/query"
	"github.com/JaimeStill/transflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "document_versions", "v").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("version_number", "VersionNumber").
	Project("version_type", "VersionType").
	Project("content", "Content").
	Project("is_final", "IsFinal").
	Project("created_by", "CreatedBy").
	Project("created_at", "CreatedAt")

var (
	ascending = []query.SortField{
		{Field: "VersionNumber"},
		{Field: "CreatedAt"},
	}
	newest = []query.SortField{
		{Field: "VersionNumber", Descending: true},
		{Field: "CreatedAt", Descending: true},
	}
)

func scanVersion(s repository.Scanner) (Version, error) {
	var v Version
	err := s.Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.VersionType,
		&v.Content,
		&v.IsFinal,
		&v.CreatedBy,
		&v.CreatedAt,
	)
	return v, err
}

const returning = `id, document_id, version_number, version_type, content, is_final, created_by, created_at`

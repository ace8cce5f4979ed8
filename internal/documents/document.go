// Package documents implements the document lifecycle: registration and
// metadata management by administrators, filtered reads, and the internal
// Lock/SetStatus contract through which the version, task and review
// workflows record document status inside their own transactions.
package documents

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/workflow"
)

// Document is a unit of content moving through the translation pipeline.
type Document struct {
	ID               uuid.UUID               `json:"id"`
	Title            string                  `json:"title"`
	OriginalURL      string                  `json:"original_url"`
	SourceLang       string                  `json:"source_lang"`
	TargetLang       string                  `json:"target_lang"`
	CategoryID       *int64                  `json:"category_id"`
	Status           workflow.DocumentStatus `json:"status"`
	CurrentVersionID *uuid.UUID              `json:"current_version_id"`
	EstimatedLength  *int                    `json:"estimated_length"`
	CreatedBy        uuid.UUID               `json:"created_by"`
	LastModifiedBy   *uuid.UUID              `json:"last_modified_by"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// CreateCommand carries the metadata of a new document.
type CreateCommand struct {
	Title           string `json:"title"`
	OriginalURL     string `json:"original_url"`
	SourceLang      string `json:"source_lang"`
	TargetLang      string `json:"target_lang"`
	CategoryID      *int64 `json:"category_id,omitempty"`
	EstimatedLength *int   `json:"estimated_length,omitempty"`
}

func (c *CreateCommand) normalize() error {
	c.Title = strings.TrimSpace(c.Title)
	c.OriginalURL = strings.TrimSpace(c.OriginalURL)
	c.SourceLang = strings.TrimSpace(c.SourceLang)
	c.TargetLang = strings.TrimSpace(c.TargetLang)

	if c.Title == "" {
		return ErrTitleRequired
	}
	if c.SourceLang == "" || c.TargetLang == "" {
		return ErrLanguageRequired
	}
	if c.EstimatedLength != nil && *c.EstimatedLength < 0 {
		return ErrInvalidLength
	}
	return nil
}

// UpdateCommand changes document metadata. Nil fields are left unchanged.
// Status is not part of the command; only the workflow cascades write it.
type UpdateCommand struct {
	Title           *string `json:"title,omitempty"`
	OriginalURL     *string `json:"original_url,omitempty"`
	SourceLang      *string `json:"source_lang,omitempty"`
	TargetLang      *string `json:"target_lang,omitempty"`
	CategoryID      *int64  `json:"category_id,omitempty"`
	EstimatedLength *int    `json:"estimated_length,omitempty"`
}

func (c *UpdateCommand) normalize() error {
	for _, f := range []*string{c.Title, c.OriginalURL, c.SourceLang, c.TargetLang} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}

	if c.Title != nil && *c.Title == "" {
		return ErrTitleRequired
	}
	if (c.SourceLang != nil && *c.SourceLang == "") || (c.TargetLang != nil && *c.TargetLang == "") {
		return ErrLanguageRequired
	}
	if c.EstimatedLength != nil && *c.EstimatedLength < 0 {
		return ErrInvalidLength
	}
	return nil
}

// Package terms maintains the translation glossary: preferred target terms
// for source terms per language pair.
package terms

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Term is a glossary entry.
type Term struct {
	ID          uuid.UUID `json:"id"`
	SourceTerm  string    `json:"source_term"`
	TargetTerm  string    `json:"target_term"`
	SourceLang  string    `json:"source_lang"`
	TargetLang  string    `json:"target_lang"`
	Description string    `json:"description"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCommand carries a new glossary entry.
type CreateCommand struct {
	SourceTerm  string `json:"source_term"`
	TargetTerm  string `json:"target_term"`
	SourceLang  string `json:"source_lang"`
	TargetLang  string `json:"target_lang"`
	Description string `json:"description"`
}

func (c *CreateCommand) normalize() error {
	c.SourceTerm = strings.TrimSpace(c.SourceTerm)
	c.TargetTerm = strings.TrimSpace(c.TargetTerm)
	c.SourceLang = strings.TrimSpace(c.SourceLang)
	c.TargetLang = strings.TrimSpace(c.TargetLang)
	c.Description = strings.TrimSpace(c.Description)

	if c.SourceTerm == "" || c.TargetTerm == "" {
		return ErrTermRequired
	}
	if c.SourceLang == "" || c.TargetLang == "" {
		return ErrLanguageRequired
	}
	return nil
}

// UpdateCommand changes a glossary entry. Nil fields are left unchanged.
type UpdateCommand struct {
	SourceTerm  *string `json:"source_term,omitempty"`
	TargetTerm  *string `json:"target_term,omitempty"`
	SourceLang  *string `json:"source_lang,omitempty"`
	TargetLang  *string `json:"target_lang,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (c *UpdateCommand) normalize() error {
	for _, f := range []*string{c.SourceTerm, c.TargetTerm, c.SourceLang, c.TargetLang, c.Description} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}

	if (c.SourceTerm != nil && *c.SourceTerm == "") || (c.TargetTerm != nil && *c.TargetTerm == "") {
		return ErrTermRequired
	}
	if (c.SourceLang != nil && *c.SourceLang == "") || (c.TargetLang != nil && *c.TargetLang == "") {
		return ErrLanguageRequired
	}
	return nil
}

package documents_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/transflow/internal/documents"
	"github.com/JaimeStill/transflow/workflow"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{documents.ErrNotFound, workflow.ErrNotFound},
		{documents.ErrHasDependents, workflow.ErrConflict},
		{documents.ErrTitleRequired, workflow.ErrInvalidState},
		{documents.ErrLanguageRequired, workflow.ErrInvalidState},
		{documents.ErrInvalidID, workflow.ErrInvalidState},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.kind) {
			t.Errorf("%v should wrap %v", tt.err, tt.kind)
		}
	}
}

func TestFiltersFromQuery(t *testing.T) {
	creator := uuid.New()

	t.Run("all fields", func(t *testing.T) {
		values := url.Values{
			"status":      {"approved"},
			"category_id": {"42"},
			"created_by":  {creator.String()},
			"source_lang": {"en"},
			"target_lang": {"ja"},
			"title":       {"guide"},
		}

		f := documents.FiltersFromQuery(values)

		if f.Status == nil || *f.Status != workflow.DocumentApproved {
			t.Errorf("Status = %v, want APPROVED", f.Status)
		}
		if f.CategoryID == nil || *f.CategoryID != 42 {
			t.Errorf("CategoryID = %v, want 42", f.CategoryID)
		}
		if f.CreatedBy == nil || *f.CreatedBy != creator {
			t.Errorf("CreatedBy = %v, want %v", f.CreatedBy, creator)
		}
		if f.SourceLang == nil || *f.SourceLang != "en" {
			t.Errorf("SourceLang = %v", f.SourceLang)
		}
		if f.TargetLang == nil || *f.TargetLang != "ja" {
			t.Errorf("TargetLang = %v", f.TargetLang)
		}
		if f.Title == nil || *f.Title != "guide" {
			t.Errorf("Title = %v", f.Title)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		f := documents.FiltersFromQuery(url.Values{
			"status":      {"ARCHIVED"},
			"category_id": {"abc"},
			"created_by":  {"someone"},
		})

		if f.Status != nil || f.CategoryID != nil || f.CreatedBy != nil {
			t.Errorf("expected invalid filters to be dropped, got %+v", f)
		}
	})

	t.Run("empty", func(t *testing.T) {
		f := documents.FiltersFromQuery(url.Values{})
		if f.Status != nil || f.Title != nil || f.SourceLang != nil {
			t.Errorf("expected empty filters, got %+v", f)
		}
	})
}

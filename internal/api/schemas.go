package api

import "github.com/JaimeStill/transflow/pkg/openapi"

func str() *openapi.Schema       { return &openapi.Schema{Type: "string"} }
func id() *openapi.Schema        { return &openapi.Schema{Type: "string", Format: "uuid"} }
func timestamp() *openapi.Schema { return &openapi.Schema{Type: "string", Format: "date-time"} }
func integer() *openapi.Schema   { return &openapi.Schema{Type: "integer"} }
func boolean() *openapi.Schema   { return &openapi.Schema{Type: "boolean"} }

func enum(values ...string) *openapi.Schema {
	s := &openapi.Schema{Type: "string"}
	for _, v := range values {
		s.Enum = append(s.Enum, v)
	}
	return s
}

func object(required []string, props map[string]*openapi.Schema) *openapi.Schema {
	return &openapi.Schema{Type: "object", Properties: props, Required: required}
}

func list(name string) *openapi.Schema {
	return &openapi.Schema{Type: "array", Items: openapi.SchemaRef(name)}
}

func page(name string) *openapi.Schema {
	return object(nil, map[string]*openapi.Schema{
		"data":        list(name),
		"total":       integer(),
		"page":        integer(),
		"page_size":   integer(),
		"total_pages": integer(),
	})
}

var documentStatus = enum("DRAFT", "PENDING_TRANSLATION", "IN_TRANSLATION", "PENDING_REVIEW", "APPROVED", "PUBLISHED")

func domainSchemas() map[string]*openapi.Schema {
	checklist := &openapi.Schema{Type: "object", Description: "Checklist item name to completion flag"}

	return map[string]*openapi.Schema{
		"Document": object(nil, map[string]*openapi.Schema{
			"id":                 id(),
			"title":              str(),
			"original_url":       str(),
			"source_lang":        str(),
			"target_lang":        str(),
			"category_id":        integer(),
			"status":             documentStatus,
			"current_version_id": id(),
			"estimated_length":   integer(),
			"created_by":         id(),
			"last_modified_by":   id(),
			"created_at":         timestamp(),
			"updated_at":         timestamp(),
		}),
		"DocumentPage": page("Document"),
		"CreateDocument": object([]string{"title", "source_lang", "target_lang"}, map[string]*openapi.Schema{
			"title":            str(),
			"original_url":     str(),
			"source_lang":      str(),
			"target_lang":      str(),
			"category_id":      integer(),
			"estimated_length": integer(),
		}),
		"UpdateDocument": object(nil, map[string]*openapi.Schema{
			"title":            str(),
			"original_url":     str(),
			"source_lang":      str(),
			"target_lang":      str(),
			"category_id":      integer(),
			"estimated_length": integer(),
		}),
		"DocumentSearch": object(nil, map[string]*openapi.Schema{
			"page":        integer(),
			"page_size":   integer(),
			"search":      str(),
			"sort":        str(),
			"status":      documentStatus,
			"source_lang": str(),
			"target_lang": str(),
			"title":       str(),
			"category_id": integer(),
			"created_by":  id(),
		}),
		"WorkflowSnapshot": object(nil, map[string]*openapi.Schema{
			"document": openapi.SchemaRef("Document"),
			"versions": list("Version"),
			"tasks":    list("Task"),
			"reviews":  list("Review"),
		}),

		"Version": object(nil, map[string]*openapi.Schema{
			"id":             id(),
			"document_id":    id(),
			"version_number": integer(),
			"version_type":   enum("ORIGINAL", "AI_DRAFT", "MANUAL_TRANSLATION", "FINAL"),
			"content":        str(),
			"is_final":       boolean(),
			"created_by":     id(),
			"created_at":     timestamp(),
		}),
		"VersionList": list("Version"),
		"CreateVersion": object([]string{"version_type", "content"}, map[string]*openapi.Schema{
			"version_type": enum("ORIGINAL", "AI_DRAFT", "MANUAL_TRANSLATION", "FINAL"),
			"content":      str(),
			"is_final":     boolean(),
		}),

		"Task": object(nil, map[string]*openapi.Schema{
			"id":               id(),
			"document_id":      id(),
			"document_title":   str(),
			"translator_id":    id(),
			"assigned_by":      id(),
			"status":           enum("AVAILABLE", "IN_PROGRESS", "SUBMITTED", "ABANDONED"),
			"started_at":       timestamp(),
			"submitted_at":     timestamp(),
			"last_activity_at": timestamp(),
			"created_at":       timestamp(),
			"updated_at":       timestamp(),
		}),
		"TaskPage": page("Task"),
		"CreateTask": object([]string{"document_id"}, map[string]*openapi.Schema{
			"document_id":   id(),
			"translator_id": id(),
		}),

		"Review": object(nil, map[string]*openapi.Schema{
			"id":                  id(),
			"document_id":         id(),
			"document_version_id": id(),
			"reviewer_id":         id(),
			"status":              enum("PENDING", "APPROVED", "REJECTED"),
			"comment":             str(),
			"checklist":           checklist,
			"is_complete":         boolean(),
			"reviewed_at":         timestamp(),
			"final_approval_at":   timestamp(),
			"published_at":        timestamp(),
			"published_key":       str(),
			"created_at":          timestamp(),
			"updated_at":          timestamp(),
		}),
		"ReviewPage": page("Review"),
		"CreateReview": object([]string{"document_id", "document_version_id"}, map[string]*openapi.Schema{
			"document_id":         id(),
			"document_version_id": id(),
			"reviewer_id":         id(),
			"comment":             str(),
			"checklist":           checklist,
			"is_complete":         boolean(),
		}),
		"UpdateReview": object(nil, map[string]*openapi.Schema{
			"comment":     str(),
			"checklist":   checklist,
			"is_complete": boolean(),
		}),

		"Term": object(nil, map[string]*openapi.Schema{
			"id":          id(),
			"source_term": str(),
			"target_term": str(),
			"source_lang": str(),
			"target_lang": str(),
			"description": str(),
			"created_by":  id(),
			"created_at":  timestamp(),
			"updated_at":  timestamp(),
		}),
		"TermPage": page("Term"),
		"CreateTerm": object([]string{"source_term", "target_term", "source_lang", "target_lang"}, map[string]*openapi.Schema{
			"source_term": str(),
			"target_term": str(),
			"source_lang": str(),
			"target_lang": str(),
			"description": str(),
		}),
		"UpdateTerm": object(nil, map[string]*openapi.Schema{
			"source_term": str(),
			"target_term": str(),
			"source_lang": str(),
			"target_lang": str(),
			"description": str(),
		}),
	}
}

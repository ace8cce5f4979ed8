package workflow

import (
	"fmt"
	"strings"
)

// DocumentStatus is the pipeline position of a document.
type DocumentStatus string

// Document statuses in pipeline order.
const (
	DocumentDraft              DocumentStatus = "DRAFT"
	DocumentPendingTranslation DocumentStatus = "PENDING_TRANSLATION"
	DocumentInTranslation      DocumentStatus = "IN_TRANSLATION"
	DocumentPendingReview      DocumentStatus = "PENDING_REVIEW"
	DocumentApproved           DocumentStatus = "APPROVED"
	DocumentPublished          DocumentStatus = "PUBLISHED"
)

var documentStatuses = []DocumentStatus{
	DocumentDraft,
	DocumentPendingTranslation,
	DocumentInTranslation,
	DocumentPendingReview,
	DocumentApproved,
	DocumentPublished,
}

// Valid reports whether s is a known document status.
func (s DocumentStatus) Valid() bool {
	for _, v := range documentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseDocumentStatus converts a case-insensitive string into a DocumentStatus.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	status := DocumentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", NewError(ErrInvalidState, fmt.Sprintf("unknown document status %q", s))
	}
	return status, nil
}

// VersionType tags a document version with its origin.
type VersionType string

// Version types. The numbering rule in NextVersionNumber depends on them.
const (
	VersionOriginal          VersionType = "ORIGINAL"
	VersionAIDraft           VersionType = "AI_DRAFT"
	VersionManualTranslation VersionType = "MANUAL_TRANSLATION"
	VersionFinal             VersionType = "FINAL"
)

// Valid reports whether t is a known version type.
func (t VersionType) Valid() bool {
	switch t {
	case VersionOriginal, VersionAIDraft, VersionManualTranslation, VersionFinal:
		return true
	}
	return false
}

// ParseVersionType converts a case-insensitive string into a VersionType.
func ParseVersionType(s string) (VersionType, error) {
	t := VersionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", NewError(ErrInvalidState, fmt.Sprintf("unsupported version type %q", s))
	}
	return t, nil
}

// TaskStatus is the lifecycle position of a translation task.
type TaskStatus string

// Task statuses.
const (
	TaskAvailable  TaskStatus = "AVAILABLE"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskSubmitted  TaskStatus = "SUBMITTED"
	TaskAbandoned  TaskStatus = "ABANDONED"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskAvailable, TaskInProgress, TaskSubmitted, TaskAbandoned:
		return true
	}
	return false
}

// ParseTaskStatus converts a case-insensitive string into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", NewError(ErrInvalidState, fmt.Sprintf("unknown task status %q", s))
	}
	return status, nil
}

// ReviewStatus is the decision state of a review. Publication is tracked by
// a timestamp on an approved review rather than a status of its own.
type ReviewStatus string

// Review statuses.
const (
	ReviewPending  ReviewStatus = "PENDING"
	ReviewApproved ReviewStatus = "APPROVED"
	ReviewRejected ReviewStatus = "REJECTED"
)

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// ParseReviewStatus converts a case-insensitive string into a ReviewStatus.
func ParseReviewStatus(s string) (ReviewStatus, error) {
	status := ReviewStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", NewError(ErrInvalidState, fmt.Sprintf("unknown review status %q", s))
	}
	return status, nil
}

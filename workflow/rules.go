package workflow

import (
	"fmt"

	"github.com/google/uuid"
)

// Ownership errors shared by the task and review state machines.
var (
	ErrNotTranslator = NewError(ErrForbidden, "only the assigned translator may act on this task")
	ErrNotReviewer   = NewError(ErrForbidden, "only the assigned reviewer may act on this review")
)

// Version numbers double as a coarse tag: 0 is the source text, 1 the machine
// draft, 2 and above human translations.
const (
	OriginalVersionNumber = 0
	AIDraftVersionNumber  = 1
	FirstManualNumber     = 2
)

// NextVersionNumber computes the number of a new version of type t given the
// highest number already present for the document (nil when none exist).
// FINAL does not allocate a number; it reuses the highest existing one and
// therefore requires at least one prior version.
func NextVersionNumber(t VersionType, highest *int) (int, error) {
	switch t {
	case VersionOriginal:
		return OriginalVersionNumber, nil
	case VersionAIDraft:
		return AIDraftVersionNumber, nil
	case VersionManualTranslation:
		if highest == nil {
			return FirstManualNumber, nil
		}
		return *highest + 1, nil
	case VersionFinal:
		if highest == nil {
			return 0, NewError(ErrInvalidState, "a FINAL version requires an existing version")
		}
		return *highest, nil
	}
	return 0, NewError(ErrInvalidState, fmt.Sprintf("unsupported version type %q", t))
}

// StartTask moves an AVAILABLE task owned by caller to IN_PROGRESS.
func StartTask(translator, caller uuid.UUID, current TaskStatus) (TaskStatus, error) {
	if translator != caller {
		return current, ErrNotTranslator
	}
	if current != TaskAvailable {
		return current, NewError(ErrInvalidState, fmt.Sprintf("cannot start task in status %s", current))
	}
	return TaskInProgress, nil
}

// SubmitTask moves an IN_PROGRESS task owned by caller to SUBMITTED.
func SubmitTask(translator, caller uuid.UUID, current TaskStatus) (TaskStatus, error) {
	if translator != caller {
		return current, ErrNotTranslator
	}
	if current != TaskInProgress {
		return current, NewError(ErrInvalidState, fmt.Sprintf("cannot submit task in status %s", current))
	}
	return TaskSubmitted, nil
}

// AbandonTask moves a task owned by caller to ABANDONED from any status.
func AbandonTask(translator, caller uuid.UUID, current TaskStatus) (TaskStatus, error) {
	if translator != caller {
		return current, ErrNotTranslator
	}
	return TaskAbandoned, nil
}

// TouchTask checks that caller may record activity on the task.
func TouchTask(translator, caller uuid.UUID) error {
	if translator != caller {
		return ErrNotTranslator
	}
	return nil
}

// StartCascade is the document status written when a task starts.
// It applies unconditionally; the last writer wins.
func StartCascade() DocumentStatus { return DocumentInTranslation }

// SubmitCascade is the document status written when a task is submitted.
func SubmitCascade() DocumentStatus { return DocumentPendingReview }

// AbandonCascade reports the document status to write after an abandon,
// given the number of other tasks on the document still IN_PROGRESS.
// The document is only downgraded when no peer is active.
func AbandonCascade(activeSiblings int) (DocumentStatus, bool) {
	if activeSiblings > 0 {
		return "", false
	}
	return DocumentPendingTranslation, true
}

// ApproveReview moves a PENDING review owned by caller to APPROVED.
func ApproveReview(reviewer, caller uuid.UUID, current ReviewStatus) (ReviewStatus, error) {
	if reviewer != caller {
		return current, ErrNotReviewer
	}
	if current != ReviewPending {
		return current, NewError(ErrInvalidState, fmt.Sprintf("cannot approve review in status %s", current))
	}
	return ReviewApproved, nil
}

// RejectReview moves a PENDING review owned by caller to REJECTED.
func RejectReview(reviewer, caller uuid.UUID, current ReviewStatus) (ReviewStatus, error) {
	if reviewer != caller {
		return current, ErrNotReviewer
	}
	if current != ReviewPending {
		return current, NewError(ErrInvalidState, fmt.Sprintf("cannot reject review in status %s", current))
	}
	return ReviewRejected, nil
}

// PublishReview checks that caller may publish the review. Only APPROVED
// reviews are publishable.
func PublishReview(reviewer, caller uuid.UUID, current ReviewStatus) error {
	if reviewer != caller {
		return ErrNotReviewer
	}
	if current != ReviewApproved {
		return NewError(ErrInvalidState, fmt.Sprintf("cannot publish review in status %s", current))
	}
	return nil
}

// EditReview checks that caller may change the review's comment, checklist,
// or completeness. Decided reviews are immutable.
func EditReview(reviewer, caller uuid.UUID, current ReviewStatus) error {
	if reviewer != caller {
		return ErrNotReviewer
	}
	if current != ReviewPending {
		return NewError(ErrInvalidState, fmt.Sprintf("cannot update review in status %s", current))
	}
	return nil
}

// ApprovalCascade decides where an approved review sends its document.
// A partial translation returns the document to the translation queue so
// another translator can continue; a complete one advances it to APPROVED.
func ApprovalCascade(isComplete bool) DocumentStatus {
	if !isComplete {
		return DocumentPendingTranslation
	}
	return DocumentApproved
}

// RejectionCascade is the document status written when a review is rejected.
func RejectionCascade() DocumentStatus { return DocumentInTranslation }

// PublicationCascade is the document status written when a review is published.
func PublicationCascade() DocumentStatus { return DocumentPublished }

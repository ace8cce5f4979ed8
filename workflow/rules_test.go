package workflow_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/transflow/workflow"
)

func ptr[T any](v T) *T { return &v }

func TestNextVersionNumber(t *testing.T) {
	tests := []struct {
		name    string
		typ     workflow.VersionType
		highest *int
		want    int
		wantErr error
	}{
		{"original always zero", workflow.VersionOriginal, ptr(7), 0, nil},
		{"ai draft always one", workflow.VersionAIDraft, nil, 1, nil},
		{"first manual is two", workflow.VersionManualTranslation, nil, 2, nil},
		{"manual follows highest", workflow.VersionManualTranslation, ptr(1), 2, nil},
		{"manual after manual", workflow.VersionManualTranslation, ptr(4), 5, nil},
		{"final reuses highest", workflow.VersionFinal, ptr(3), 3, nil},
		{"final without versions", workflow.VersionFinal, nil, 0, workflow.ErrInvalidState},
		{"unknown type", workflow.VersionType("DRAFT"), ptr(1), 0, workflow.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := workflow.NextVersionNumber(tt.typ, tt.highest)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumberingSequence(t *testing.T) {
	var highest *int
	next := func(typ workflow.VersionType) int {
		n, err := workflow.NextVersionNumber(typ, highest)
		require.NoError(t, err)
		if highest == nil || n > *highest {
			highest = ptr(n)
		}
		return n
	}

	got := []int{
		next(workflow.VersionOriginal),
		next(workflow.VersionAIDraft),
		next(workflow.VersionManualTranslation),
		next(workflow.VersionManualTranslation),
	}
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestTaskTransitions(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	t.Run("start requires owner", func(t *testing.T) {
		status, err := workflow.StartTask(owner, other, workflow.TaskAvailable)
		require.ErrorIs(t, err, workflow.ErrForbidden)
		assert.Equal(t, workflow.TaskAvailable, status)
	})

	t.Run("start requires available", func(t *testing.T) {
		_, err := workflow.StartTask(owner, owner, workflow.TaskInProgress)
		require.ErrorIs(t, err, workflow.ErrInvalidState)
	})

	t.Run("start", func(t *testing.T) {
		status, err := workflow.StartTask(owner, owner, workflow.TaskAvailable)
		require.NoError(t, err)
		assert.Equal(t, workflow.TaskInProgress, status)
	})

	t.Run("submit requires in progress", func(t *testing.T) {
		_, err := workflow.SubmitTask(owner, owner, workflow.TaskAvailable)
		require.ErrorIs(t, err, workflow.ErrInvalidState)
	})

	t.Run("submit", func(t *testing.T) {
		status, err := workflow.SubmitTask(owner, owner, workflow.TaskInProgress)
		require.NoError(t, err)
		assert.Equal(t, workflow.TaskSubmitted, status)
	})

	t.Run("ownership checked before status", func(t *testing.T) {
		_, err := workflow.SubmitTask(owner, other, workflow.TaskAbandoned)
		require.ErrorIs(t, err, workflow.ErrForbidden)
	})

	t.Run("abandon from any status", func(t *testing.T) {
		for _, s := range []workflow.TaskStatus{
			workflow.TaskAvailable,
			workflow.TaskInProgress,
			workflow.TaskSubmitted,
			workflow.TaskAbandoned,
		} {
			status, err := workflow.AbandonTask(owner, owner, s)
			require.NoError(t, err, "from %s", s)
			assert.Equal(t, workflow.TaskAbandoned, status)
		}
	})

	t.Run("abandon requires owner", func(t *testing.T) {
		_, err := workflow.AbandonTask(owner, other, workflow.TaskInProgress)
		require.ErrorIs(t, err, workflow.ErrForbidden)
	})

	t.Run("touch requires owner", func(t *testing.T) {
		require.NoError(t, workflow.TouchTask(owner, owner))
		require.ErrorIs(t, workflow.TouchTask(owner, other), workflow.ErrForbidden)
	})
}

func TestAbandonCascade(t *testing.T) {
	status, ok := workflow.AbandonCascade(1)
	assert.False(t, ok, "active peer keeps document in translation")
	assert.Empty(t, status)

	status, ok = workflow.AbandonCascade(0)
	assert.True(t, ok)
	assert.Equal(t, workflow.DocumentPendingTranslation, status)
}

func TestReviewTransitions(t *testing.T) {
	reviewer := uuid.New()
	other := uuid.New()

	t.Run("approve", func(t *testing.T) {
		status, err := workflow.ApproveReview(reviewer, reviewer, workflow.ReviewPending)
		require.NoError(t, err)
		assert.Equal(t, workflow.ReviewApproved, status)
	})

	t.Run("approve twice", func(t *testing.T) {
		_, err := workflow.ApproveReview(reviewer, reviewer, workflow.ReviewApproved)
		require.ErrorIs(t, err, workflow.ErrInvalidState)
	})

	t.Run("approve by other", func(t *testing.T) {
		_, err := workflow.ApproveReview(reviewer, other, workflow.ReviewPending)
		require.ErrorIs(t, err, workflow.ErrForbidden)
	})

	t.Run("reject", func(t *testing.T) {
		status, err := workflow.RejectReview(reviewer, reviewer, workflow.ReviewPending)
		require.NoError(t, err)
		assert.Equal(t, workflow.ReviewRejected, status)
	})

	t.Run("reject decided", func(t *testing.T) {
		_, err := workflow.RejectReview(reviewer, reviewer, workflow.ReviewRejected)
		require.ErrorIs(t, err, workflow.ErrInvalidState)
	})

	t.Run("publish requires approval", func(t *testing.T) {
		require.ErrorIs(t, workflow.PublishReview(reviewer, reviewer, workflow.ReviewPending), workflow.ErrInvalidState)
		require.ErrorIs(t, workflow.PublishReview(reviewer, reviewer, workflow.ReviewRejected), workflow.ErrInvalidState)
		require.NoError(t, workflow.PublishReview(reviewer, reviewer, workflow.ReviewApproved))
	})

	t.Run("edit only while pending", func(t *testing.T) {
		require.NoError(t, workflow.EditReview(reviewer, reviewer, workflow.ReviewPending))
		require.ErrorIs(t, workflow.EditReview(reviewer, reviewer, workflow.ReviewApproved), workflow.ErrInvalidState)
		require.ErrorIs(t, workflow.EditReview(reviewer, other, workflow.ReviewPending), workflow.ErrForbidden)
	})
}

func TestReviewCascades(t *testing.T) {
	assert.Equal(t, workflow.DocumentApproved, workflow.ApprovalCascade(true))
	assert.Equal(t, workflow.DocumentPendingTranslation, workflow.ApprovalCascade(false))
	assert.Equal(t, workflow.DocumentInTranslation, workflow.RejectionCascade())
	assert.Equal(t, workflow.DocumentPublished, workflow.PublicationCascade())
	assert.Equal(t, workflow.DocumentInTranslation, workflow.StartCascade())
	assert.Equal(t, workflow.DocumentPendingReview, workflow.SubmitCascade())
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", workflow.NewError(workflow.ErrNotFound, "task not found"), http.StatusNotFound},
		{"conflict", workflow.NewError(workflow.ErrConflict, "duplicate"), http.StatusConflict},
		{"forbidden", workflow.ErrNotTranslator, http.StatusForbidden},
		{"invalid state", workflow.NewError(workflow.ErrInvalidState, "bad"), http.StatusBadRequest},
		{"unauthorized", workflow.ErrUnauthorized, http.StatusUnauthorized},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, workflow.MapHTTPStatus(tt.err))
		})
	}
}

func TestParseStatuses(t *testing.T) {
	s, err := workflow.ParseDocumentStatus("pending_review")
	require.NoError(t, err)
	assert.Equal(t, workflow.DocumentPendingReview, s)

	_, err = workflow.ParseDocumentStatus("ARCHIVED")
	require.ErrorIs(t, err, workflow.ErrInvalidState)

	vt, err := workflow.ParseVersionType("manual_translation")
	require.NoError(t, err)
	assert.Equal(t, workflow.VersionManualTranslation, vt)

	_, err = workflow.ParseTaskStatus("DONE")
	require.ErrorIs(t, err, workflow.ErrInvalidState)

	rs, err := workflow.ParseReviewStatus("Approved")
	require.NoError(t, err)
	assert.Equal(t, workflow.ReviewApproved, rs)
}

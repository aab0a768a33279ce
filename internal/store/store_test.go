package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notewall/moderation-backend/internal/models"
)

func TestMemStore_UpdateStatusConditional(t *testing.T) {
	mem := NewMemStore()
	report := models.Report{
		ContentType: models.ContentTypeNote,
		ContentID:   "n1",
		Reason:      models.ReasonSpam,
		ReporterID:  "u1",
	}
	require.NoError(t, mem.Create(context.Background(), &report))

	update := StatusUpdate{
		Status:      models.ReportStatusApproved,
		ProcessedAt: time.Now().UTC(),
		ProcessedBy: "system",
		Priority:    2,
	}

	require.NoError(t, mem.UpdateStatus(context.Background(), report.ID, update, models.ReportStatusPending))

	// Second conditional write sees the terminal status and refuses.
	err := mem.UpdateStatus(context.Background(), report.ID, update, models.ReportStatusPending)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	stored, err := mem.Get(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
}

func TestMemStore_UpdateStatusNotFound(t *testing.T) {
	mem := NewMemStore()
	err := mem.UpdateStatus(context.Background(), uuid.New(), StatusUpdate{Status: models.ReportStatusRejected}, models.ReportStatusPending)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, fmt.Errorf("%w: flaky", ErrStoreUnavailable)
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_GivesUpAfterThreeAttempts(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, fmt.Errorf("%w: still down", ErrStoreUnavailable)
	})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_DoesNotRetryOtherErrors(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, ErrNotFound
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, attempts)
}

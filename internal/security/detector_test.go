package security

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notewall/moderation-backend/internal/models"
	"github.com/notewall/moderation-backend/internal/store"
)

func seedEvents(t *testing.T, mem *store.MemStore, eventType, ip, userUID string, count int, age time.Duration) {
	t.Helper()
	ts := time.Now().UTC().Add(-age)
	for i := 0; i < count; i++ {
		err := mem.Append(context.Background(), &models.SecurityLogEntry{
			EventType: eventType,
			Severity:  models.SeverityLow,
			IP:        ip,
			UserUID:   userUID,
			Timestamp: ts,
		})
		require.NoError(t, err)
	}
}

func TestDetect_IPThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		findings int
		severity string
	}{
		{"100 events is under threshold", 100, 0, ""},
		{"101 events is medium", 101, 1, models.SeverityMedium},
		{"500 events is still medium", 500, 1, models.SeverityMedium},
		{"501 events is high", 501, 1, models.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemStore()
			seedEvents(t, mem, "PAGE_VIEW", "10.0.0.1", "", tt.count, time.Hour)

			result, err := NewDetector(mem).Detect(context.Background(), 24*time.Hour)
			require.NoError(t, err)
			require.Len(t, result.Activities, tt.findings)
			if tt.findings > 0 {
				activity := result.Activities[0]
				assert.Equal(t, TypeExcessiveRequests, activity.Type)
				assert.Equal(t, "10.0.0.1", activity.Target)
				assert.Equal(t, tt.count, activity.Count)
				assert.Equal(t, tt.severity, activity.Severity, "high supersedes medium, single entry per IP")
			}
		})
	}
}

func TestDetect_UserActivityThresholds(t *testing.T) {
	mem := store.NewMemStore()
	seedEvents(t, mem, "NOTE_CREATE", "", "user-a", 51, time.Hour)
	seedEvents(t, mem, "NOTE_CREATE", "", "user-b", 201, time.Hour)
	seedEvents(t, mem, "NOTE_CREATE", "", "user-c", 50, time.Hour)

	result, err := NewDetector(mem).Detect(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, result.Activities, 2)

	assert.Equal(t, Activity{Type: TypeExcessiveUserActivity, Target: "user-a", Count: 51, Severity: models.SeverityMedium}, result.Activities[0])
	assert.Equal(t, Activity{Type: TypeExcessiveUserActivity, Target: "user-b", Count: 201, Severity: models.SeverityHigh}, result.Activities[1])
}

func TestDetect_LoginFailures(t *testing.T) {
	mem := store.NewMemStore()
	seedEvents(t, mem, models.EventLoginFailed, "10.0.0.9", "", 11, time.Hour)

	result, err := NewDetector(mem).Detect(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, result.Activities, 1)
	assert.Equal(t, TypeRepeatedLoginFailures, result.Activities[0].Type)
	assert.Equal(t, models.SeverityMedium, result.Activities[0].Severity)
}

func TestDetect_LoginFailuresCountTowardIPTotal(t *testing.T) {
	mem := store.NewMemStore()
	seedEvents(t, mem, models.EventLoginFailed, "10.0.0.9", "", 101, time.Hour)

	result, err := NewDetector(mem).Detect(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, result.Activities, 2)

	// Stable ordering: request-flood findings first, then login failures.
	assert.Equal(t, TypeExcessiveRequests, result.Activities[0].Type)
	assert.Equal(t, TypeRepeatedLoginFailures, result.Activities[1].Type)
	assert.Equal(t, models.SeverityHigh, result.Activities[1].Severity)
}

func TestDetect_WindowExcludesOldEvents(t *testing.T) {
	mem := store.NewMemStore()
	seedEvents(t, mem, "PAGE_VIEW", "10.0.0.1", "", 101, 48*time.Hour)

	result, err := NewDetector(mem).Detect(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, result.Activities)
}

func TestDetect_StableInsertionOrder(t *testing.T) {
	mem := store.NewMemStore()
	seedEvents(t, mem, "PAGE_VIEW", "10.0.0.1", "", 101, 2*time.Hour)
	seedEvents(t, mem, "PAGE_VIEW", "10.0.0.2", "", 101, time.Hour)

	for i := 0; i < 5; i++ {
		result, err := NewDetector(mem).Detect(context.Background(), 24*time.Hour)
		require.NoError(t, err)
		require.Len(t, result.Activities, 2)
		assert.Equal(t, "10.0.0.1", result.Activities[0].Target)
		assert.Equal(t, "10.0.0.2", result.Activities[1].Target)
	}
}

func TestDetect_DegradedOnStoreFailure(t *testing.T) {
	mem := store.NewMemStore()
	mem.FailQuerySince = fmt.Errorf("%w: connection reset", store.ErrStoreUnavailable)

	result, err := NewDetector(mem).Detect(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Empty(t, result.Activities)
}

package moderation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notewall/moderation-backend/internal/models"
	"github.com/notewall/moderation-backend/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.MemStore) {
	t.Helper()
	mem := store.NewMemStore()
	filters := store.MemFilterStore{MemStore: mem}
	require.NoError(t, filters.Create(context.Background(), &models.KeywordFilter{Keyword: "casino", Severity: models.FilterSeverityHigh, IsActive: true}))
	require.NoError(t, filters.Create(context.Background(), &models.KeywordFilter{Keyword: "click here", Severity: models.FilterSeverityMedium, IsActive: true}))
	require.NoError(t, filters.Create(context.Background(), &models.KeywordFilter{Keyword: "dormant", Severity: models.FilterSeverityHigh, IsActive: false}))
	return NewEngine(filters, mem, mem), mem
}

func TestScanContent_Clean(t *testing.T) {
	engine, mem := newTestEngine(t)

	result, err := engine.ScanContent(context.Background(), models.ContentTypeNote, "n1", "a perfectly normal note")
	require.NoError(t, err)

	assert.Equal(t, ActionNone, result.Action)
	assert.False(t, result.AutoBlocked)
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.Reasons)

	// No side effects below threshold.
	_, err = mem.FindPendingByContent(context.Background(), models.ContentTypeNote, "n1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, mem.SecurityEvents())
}

func TestScanContent_KeywordWeights(t *testing.T) {
	engine, _ := newTestEngine(t)

	result, err := engine.ScanContent(context.Background(), models.ContentTypeNote, "n1", "visit the CASINO")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, result.Confidence, 1e-9)
	assert.Equal(t, ActionNone, result.Action)

	result, err = engine.ScanContent(context.Background(), models.ContentTypeNote, "n2", "just click here")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, result.Confidence, 1e-9)

	// Inactive filters never match.
	result, err = engine.ScanContent(context.Background(), models.ContentTypeNote, "n3", "dormant account")
	require.NoError(t, err)
	assert.Zero(t, result.Confidence)
}

func TestScanContent_BlockThresholdBoundary(t *testing.T) {
	engine, _ := newTestEngine(t)

	// casino (0.4) + click here (0.2) = 0.6: below threshold.
	result, err := engine.ScanContent(context.Background(), models.ContentTypeNote, "n1", "casino, click here")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, result.Confidence, 1e-9)
	assert.Equal(t, ActionNone, result.Action)
	assert.False(t, result.AutoBlocked)

	// Adding a URL (0.3) crosses 0.8 exactly at 0.9.
	result, err = engine.ScanContent(context.Background(), models.ContentTypeNote, "n2", "casino, click here http://x.test")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
	assert.Equal(t, ActionBlock, result.Action)
	assert.True(t, result.AutoBlocked)
}

func TestScanContent_ConfidenceMonotonic(t *testing.T) {
	engine, _ := newTestEngine(t)

	texts := []string{
		"hello",
		"hello click here",
		"hello click here casino",
		"hello click here casino http://x.test",
		"hello click here casino http://x.test 010-1234-5678",
	}
	prev := -1.0
	for _, text := range texts {
		result, err := engine.ScanContent(context.Background(), models.ContentTypeNote, "n", text)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Confidence, prev, "text=%q", text)
		prev = result.Confidence
	}
}

func TestScanContent_BlockSideEffects(t *testing.T) {
	engine, mem := newTestEngine(t)

	result, err := engine.ScanContent(context.Background(), models.ContentTypeNote, "n1", "casino casino-adjacent click here http://spam.test")
	require.NoError(t, err)
	require.True(t, result.AutoBlocked)

	report, err := mem.FindPendingByContent(context.Background(), models.ContentTypeNote, "n1")
	require.NoError(t, err)
	assert.Equal(t, models.ReasonInappropriate, report.Reason)
	assert.Equal(t, SystemReporter, report.ReporterID)
	assert.True(t, report.AutoGenerated)
	assert.Equal(t, models.ReportStatusPending, report.Status)

	events := mem.SecurityEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventAutoModerationBlock, events[0].EventType)
	assert.Equal(t, models.SeverityHigh, events[0].Severity)
}

func TestScanContent_DegradedFilterFetch(t *testing.T) {
	engine, mem := newTestEngine(t)
	mem.FailListActive = fmt.Errorf("%w: connection refused", store.ErrStoreUnavailable)

	// Keywords unavailable: pattern matching still runs.
	result, err := engine.ScanContent(context.Background(), models.ContentTypeNote, "n1", "casino http://x.test")
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.InDelta(t, 0.3, result.Confidence, 1e-9)
	assert.Equal(t, ActionNone, result.Action)
}

func TestScanContent_WriteFailureSurfacedDistinctly(t *testing.T) {
	engine, mem := newTestEngine(t)
	mem.FailReports = fmt.Errorf("%w: write timeout", store.ErrStoreUnavailable)

	text := "casino click here " + strings.Repeat("!", 11)
	result, err := engine.ScanContent(context.Background(), models.ContentTypeNote, "n1", text)

	// The verdict stands even though recording it failed.
	require.Error(t, err)
	require.NotNil(t, result)
	assert.True(t, result.AutoBlocked)
	assert.Equal(t, ActionBlock, result.Action)
}

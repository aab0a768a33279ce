package triage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notewall/moderation-backend/internal/models"
	"github.com/notewall/moderation-backend/internal/store"
)

func newTestProcessor(t *testing.T) (*Processor, *store.MemStore) {
	t.Helper()
	mem := store.NewMemStore()
	return NewProcessor(mem, store.MemContentStore{MemStore: mem}, mem), mem
}

func mustCreate(t *testing.T, mem *store.MemStore, report models.Report) uuid.UUID {
	t.Helper()
	require.NoError(t, mem.Create(context.Background(), &report))
	return report.ID
}

func TestAutoProcess_NotFound(t *testing.T) {
	processor, _ := newTestProcessor(t)
	_, err := processor.AutoProcess(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAutoProcess_SevereViolation(t *testing.T) {
	processor, mem := newTestProcessor(t)
	// violence(4)+1 base +2 dups>3 = 8: severe rule fires.
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonViolence, DuplicateReports: 4, ContentType: models.ContentTypeNote, ContentID: "n1", ReporterID: "u1"})

	result, err := processor.AutoProcess(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, models.ReportStatusApproved, result.Action)
	assert.Equal(t, "auto: severe violation", result.Reason)

	stored, err := mem.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusApproved, stored.Status)
	assert.True(t, stored.AutoProcessed)
	assert.Equal(t, "system", stored.ProcessedBy)
	require.NotNil(t, stored.ProcessedAt)

	events := mem.SecurityEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventReportAutoProcessed, events[0].EventType)
}

func TestAutoProcess_DuplicateSpam(t *testing.T) {
	processor, mem := newTestProcessor(t)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonSpam, DuplicateReports: 11, ContentType: models.ContentTypeNote, ContentID: "n1", ReporterID: "u1"})

	result, err := processor.AutoProcess(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, models.ReportStatusApproved, result.Action)
	assert.Equal(t, "auto: many duplicate spam reports", result.Reason)
}

func TestAutoProcess_InsufficientGrounds(t *testing.T) {
	processor, mem := newTestProcessor(t)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonOther, ContentType: models.ContentTypeComment, ContentID: "c1", ReporterID: "u1"})

	result, err := processor.AutoProcess(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, models.ReportStatusRejected, result.Action)
	assert.Equal(t, "auto: insufficient grounds", result.Reason)
}

func TestAutoProcess_DescriptionBlocksRejection(t *testing.T) {
	processor, mem := newTestProcessor(t)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonOther, Description: "it felt off", ContentType: models.ContentTypeComment, ContentID: "c1", ReporterID: "u1"})

	result, err := processor.AutoProcess(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, result.Processed)

	stored, err := mem.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, stored.Status)
}

func TestAutoProcess_NoRuleLeavesPending(t *testing.T) {
	processor, mem := newTestProcessor(t)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonHarassment, ContentType: models.ContentTypeNote, ContentID: "n1", ReporterID: "u1"})

	result, err := processor.AutoProcess(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, result.Processed)
	assert.Empty(t, mem.SecurityEvents())
}

func TestAutoProcess_Idempotent(t *testing.T) {
	processor, mem := newTestProcessor(t)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonViolence, DuplicateReports: 4, ContentType: models.ContentTypeNote, ContentID: "n1", ReporterID: "u1"})

	first, err := processor.AutoProcess(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, first.Processed)

	second, err := processor.AutoProcess(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, second.Processed)

	// One transition, one audit entry.
	stored, _ := mem.Get(context.Background(), id)
	assert.Equal(t, 1, stored.Version)
	assert.Len(t, mem.SecurityEvents(), 1)
}

func TestAutoProcess_RaceSingleWinner(t *testing.T) {
	processor, mem := newTestProcessor(t)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonHateSpeech, DuplicateReports: 11, ContentType: models.ContentTypeNote, ContentID: "n1", ReporterID: "u1"})

	const goroutines = 16
	var wg sync.WaitGroup
	processed := make(chan bool, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := processor.AutoProcess(context.Background(), id)
			if err == nil {
				processed <- result.Processed
			}
		}()
	}
	wg.Wait()
	close(processed)

	wins := 0
	for p := range processed {
		if p {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one goroutine must win the transition")

	stored, _ := mem.Get(context.Background(), id)
	assert.Equal(t, 1, stored.Version)
	assert.Len(t, mem.SecurityEvents(), 1)
}

func TestProcess_ApproveDeletesContent(t *testing.T) {
	processor, mem := newTestProcessor(t)
	note := models.Note{ID: uuid.New(), AuthorID: uuid.New(), Body: "bad"}
	mem.AddNote(note)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonHarassment, ContentType: models.ContentTypeNote, ContentID: note.ID.String(), ReporterID: "u1"})

	err := processor.Process(context.Background(), id, models.ReportStatusApproved, "confirmed", Admin("admin-7"))
	require.NoError(t, err)

	_, _, err = mem.GetContent(context.Background(), models.ContentTypeNote, note.ID.String())
	assert.ErrorIs(t, err, store.ErrNotFound)

	stored, _ := mem.Get(context.Background(), id)
	assert.Equal(t, models.ReportStatusApproved, stored.Status)
	assert.Equal(t, "admin-7", stored.ProcessedBy)
	assert.False(t, stored.AutoProcessed)

	events := mem.SecurityEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventReportProcessed, events[0].EventType)
}

func TestProcess_RejectKeepsContent(t *testing.T) {
	processor, mem := newTestProcessor(t)
	note := models.Note{ID: uuid.New(), AuthorID: uuid.New(), Body: "fine actually"}
	mem.AddNote(note)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonOther, Description: "x", ContentType: models.ContentTypeNote, ContentID: note.ID.String(), ReporterID: "u1"})

	err := processor.Process(context.Background(), id, models.ReportStatusRejected, "no violation", Admin("admin-7"))
	require.NoError(t, err)

	_, _, err = mem.GetContent(context.Background(), models.ContentTypeNote, note.ID.String())
	assert.NoError(t, err)
}

func TestProcess_InvalidAction(t *testing.T) {
	processor, mem := newTestProcessor(t)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonSpam, ContentType: models.ContentTypeNote, ContentID: "n1", ReporterID: "u1"})

	err := processor.Process(context.Background(), id, "escalated", "", Admin("a"))
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestProcess_AlreadyProcessed(t *testing.T) {
	processor, mem := newTestProcessor(t)
	note := models.Note{ID: uuid.New(), AuthorID: uuid.New()}
	mem.AddNote(note)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonSpam, ContentType: models.ContentTypeNote, ContentID: note.ID.String(), ReporterID: "u1"})

	require.NoError(t, processor.Process(context.Background(), id, models.ReportStatusRejected, "", Admin("a")))
	err := processor.Process(context.Background(), id, models.ReportStatusApproved, "", Admin("b"))
	assert.ErrorIs(t, err, store.ErrPreconditionFailed)
}

func TestProcess_DeleteFailureLeavesReportPending(t *testing.T) {
	processor, mem := newTestProcessor(t)
	note := models.Note{ID: uuid.New(), AuthorID: uuid.New()}
	mem.AddNote(note)
	id := mustCreate(t, mem, models.Report{Reason: models.ReasonHarassment, ContentType: models.ContentTypeNote, ContentID: note.ID.String(), ReporterID: "u1"})

	mem.FailDelete = fmt.Errorf("%w: timeout", store.ErrStoreUnavailable)
	err := processor.Process(context.Background(), id, models.ReportStatusApproved, "", Admin("a"))
	require.Error(t, err)

	// Takedown failed before any report write: still pending and retryable.
	stored, _ := mem.Get(context.Background(), id)
	assert.Equal(t, models.ReportStatusPending, stored.Status)
	assert.Empty(t, mem.SecurityEvents())
}

// Twelve users report the same spam note; the folded report crosses the
// duplicate threshold and auto-approves without touching the content.
func TestAutoProcess_SpamWaveEndToEnd(t *testing.T) {
	processor, mem := newTestProcessor(t)
	note := models.Note{ID: uuid.New(), AuthorID: uuid.New(), Body: "buy buy buy"}
	mem.AddNote(note)

	report := models.Report{Reason: models.ReasonSpam, ContentType: models.ContentTypeNote, ContentID: note.ID.String(), ReporterID: "u1"}
	require.NoError(t, mem.Create(context.Background(), &report))
	for i := 0; i < 11; i++ {
		require.NoError(t, mem.IncrementDuplicates(context.Background(), report.ID))
	}

	result, err := processor.AutoProcess(context.Background(), report.ID)
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, models.ReportStatusApproved, result.Action)

	// Auto-approval flags; it never deletes. Takedown stays manual.
	_, _, err = mem.GetContent(context.Background(), models.ContentTypeNote, note.ID.String())
	assert.NoError(t, err)
}

func TestActor(t *testing.T) {
	assert.Equal(t, "system", System().String())
	assert.True(t, System().IsSystem())
	assert.Equal(t, "admin-1", Admin("admin-1").String())
	assert.False(t, Admin("admin-1").IsSystem())
}

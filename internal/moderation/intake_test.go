package moderation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notewall/moderation-backend/internal/models"
	"github.com/notewall/moderation-backend/internal/store"
)

func newTestIntake(t *testing.T) (*Intake, *store.MemStore, models.Note) {
	t.Helper()
	mem := store.NewMemStore()

	author := models.User{ID: uuid.New(), Email: "author@example.com", ViolationCount: 3}
	mem.AddUser(author)
	users := store.MemUserStore{MemStore: mem}

	note := models.Note{ID: uuid.New(), AuthorID: author.ID, Title: "t", Body: "b"}
	mem.AddNote(note)

	intake := NewIntake(mem, store.MemContentStore{MemStore: mem}, users)
	return intake, mem, note
}

func TestSubmit_Validation(t *testing.T) {
	intake, _, note := newTestIntake(t)
	ctx := context.Background()

	_, _, err := intake.Submit(ctx, "u1", "post", note.ID.String(), models.ReasonSpam, "")
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, _, err = intake.Submit(ctx, "u1", models.ContentTypeNote, note.ID.String(), "rude", "")
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, _, err = intake.Submit(ctx, "  ", models.ContentTypeNote, note.ID.String(), models.ReasonSpam, "")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestSubmit_CreatesWithAuthorViolations(t *testing.T) {
	intake, _, note := newTestIntake(t)

	report, created, err := intake.Submit(context.Background(), "u1", models.ContentTypeNote, note.ID.String(), models.ReasonHarassment, "mean note")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Equal(t, 3, report.AuthorViolationCount)
	// 1 + harassment(3) + violations>2(+1)
	assert.Equal(t, 5, report.Priority)
}

func TestSubmit_FoldsDuplicates(t *testing.T) {
	intake, mem, note := newTestIntake(t)
	ctx := context.Background()

	first, created, err := intake.Submit(ctx, "u1", models.ContentTypeNote, note.ID.String(), models.ReasonSpam, "")
	require.NoError(t, err)
	require.True(t, created)
	assert.Zero(t, first.DuplicateReports)

	second, created, err := intake.Submit(ctx, "u2", models.ContentTypeNote, note.ID.String(), models.ReasonSpam, "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.DuplicateReports)

	stored, err := mem.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.DuplicateReports)
}

func TestSubmit_AuthorLookupFailureDegradesToZero(t *testing.T) {
	mem := store.NewMemStore()
	intake := NewIntake(mem, store.MemContentStore{MemStore: mem}, store.MemUserStore{MemStore: mem})

	// Content id that resolves to nothing: intake still files the report.
	report, created, err := intake.Submit(context.Background(), "u1", models.ContentTypeComment, "0b5c9db1-94a0-4a96-8b4f-0a4c1c31f0aa", models.ReasonOther, "odd")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Zero(t, report.AuthorViolationCount)
}

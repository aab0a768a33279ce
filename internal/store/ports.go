package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/notewall/moderation-backend/internal/models"
)

// StatusUpdate carries the fields written when a report is resolved.
type StatusUpdate struct {
	Status        string
	AdminNote     string
	ProcessedAt   time.Time
	ProcessedBy   string
	AutoProcessed bool
	Priority      int
}

// ReportStore is the persistence port for reports. UpdateStatus is a
// conditional write: it only succeeds while the report's current status
// equals expectedStatus, and returns ErrPreconditionFailed otherwise.
// This is the optimistic-concurrency guard for the pending -> terminal
// transition; there are no in-process locks.
type ReportStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Create(ctx context.Context, report *models.Report) error
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate, expectedStatus string) error
	QueryByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error)
	QueryCreatedSince(ctx context.Context, t time.Time) ([]models.Report, error)

	// FindPendingByContent returns the open report for a piece of content,
	// or ErrNotFound. Used by intake to fold duplicate reports into one row.
	FindPendingByContent(ctx context.Context, contentType, contentID string) (*models.Report, error)
	IncrementDuplicates(ctx context.Context, id uuid.UUID) error
}

// ContentStore reads and deletes reported content (notes and comments).
// Delete is the only destructive operation this subsystem performs, and
// only the manual approval path calls it.
type ContentStore interface {
	Get(ctx context.Context, contentType, contentID string) (*models.Note, *models.Comment, error)
	Delete(ctx context.Context, contentType, contentID string) error
}

// SecurityLogStore appends audit events and serves windowed scans.
// Entries are append-only.
type SecurityLogStore interface {
	Append(ctx context.Context, entry *models.SecurityLogEntry) error
	QuerySince(ctx context.Context, t time.Time) ([]models.SecurityLogEntry, error)
}

// KeywordFilterStore serves the active banned-term list to the rule engine
// and backs the admin filter CRUD.
type KeywordFilterStore interface {
	ListActive(ctx context.Context) ([]models.KeywordFilter, error)
	List(ctx context.Context) ([]models.KeywordFilter, error)
	Create(ctx context.Context, filter *models.KeywordFilter) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// UserStore is the read-only analytics view over users.
type UserStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, t time.Time) (int64, error)
	ListWithLastActivitySince(ctx context.Context, t time.Time) ([]models.User, error)
}

// NoteStore is the read-only analytics view over notes.
type NoteStore interface {
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, t time.Time) (int64, error)
	CountWithImages(ctx context.Context) (int64, error)
}

// CommentStore is the read-only analytics view over comments.
type CommentStore interface {
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, t time.Time) (int64, error)
}

package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/notewall/moderation-backend/internal/metrics"
	"github.com/notewall/moderation-backend/internal/models"
	"github.com/notewall/moderation-backend/internal/store"
)

// Intake validates and files user reports. Repeat reports against content
// that already has an open report fold into its duplicate counter instead
// of creating a new row, which is what feeds the duplicate-based triage
// rules.
type Intake struct {
	reports store.ReportStore
	content store.ContentStore
	users   store.UserStore
}

func NewIntake(reports store.ReportStore, content store.ContentStore, users store.UserStore) *Intake {
	return &Intake{reports: reports, content: content, users: users}
}

// Submit files a report. The returned bool is true when a new report row
// was created, false when the submission folded into an existing one.
func (i *Intake) Submit(ctx context.Context, reporterID, contentType, contentID, reason, description string) (*models.Report, bool, error) {
	if !models.ValidContentType(contentType) {
		return nil, false, fmt.Errorf("%w: content_type must be note or comment", store.ErrInvalidInput)
	}
	if !models.ValidReason(reason) {
		return nil, false, fmt.Errorf("%w: unknown reason %q", store.ErrInvalidInput, reason)
	}
	if strings.TrimSpace(reporterID) == "" {
		return nil, false, fmt.Errorf("%w: reporter id is required", store.ErrInvalidInput)
	}

	existing, err := i.reports.FindPendingByContent(ctx, contentType, contentID)
	if err == nil {
		if err := i.reports.IncrementDuplicates(ctx, existing.ID); err != nil {
			return nil, false, fmt.Errorf("fold duplicate report: %w", err)
		}
		existing.DuplicateReports++
		existing.Priority = CalculateReportPriority(existing)
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	report := &models.Report{
		ContentType:          contentType,
		ContentID:            contentID,
		Reason:               reason,
		Description:          strings.TrimSpace(description),
		ReporterID:           reporterID,
		Status:               models.ReportStatusPending,
		AuthorViolationCount: i.authorViolations(ctx, contentType, contentID),
	}
	report.Priority = CalculateReportPriority(report)

	if err := i.reports.Create(ctx, report); err != nil {
		return nil, false, fmt.Errorf("create report: %w", err)
	}
	metrics.ReportsCreated.WithLabelValues(reason).Inc()
	return report, true, nil
}

// authorViolations snapshots the content author's violation count onto the
// report. Best effort: a failed lookup scores as zero rather than blocking
// intake.
func (i *Intake) authorViolations(ctx context.Context, contentType, contentID string) int {
	note, comment, err := i.content.Get(ctx, contentType, contentID)
	if err != nil {
		slog.Warn("author lookup failed during report intake", "content_id", contentID, "error", err)
		return 0
	}
	authorID := contentAuthor(note, comment)
	if authorID == uuid.Nil {
		return 0
	}
	user, err := i.users.Get(ctx, authorID)
	if err != nil {
		return 0
	}
	return user.ViolationCount
}

func contentAuthor(note *models.Note, comment *models.Comment) uuid.UUID {
	if note != nil {
		return note.AuthorID
	}
	if comment != nil {
		return comment.AuthorID
	}
	return uuid.Nil
}

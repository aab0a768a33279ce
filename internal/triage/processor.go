package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/notewall/moderation-backend/internal/metrics"
	"github.com/notewall/moderation-backend/internal/moderation"
	"github.com/notewall/moderation-backend/internal/models"
	"github.com/notewall/moderation-backend/internal/store"
)

var (
	ErrInvalidAction = errors.New("action must be approved or rejected")
)

// AutoResult is the outcome of an auto-processing attempt. Processed is
// false both when no rule matched and when another processor resolved the
// report first; either way the caller has nothing left to do.
type AutoResult struct {
	Processed bool   `json:"processed"`
	Action    string `json:"action,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// autoRule is one row of the ordered decision table. First match wins.
type autoRule struct {
	note   string
	action string
	match  func(r *models.Report, priority int) bool
}

var autoRules = []autoRule{
	{
		note:   "auto: severe violation",
		action: models.ReportStatusApproved,
		match: func(r *models.Report, priority int) bool {
			return priority >= 8 && (r.Reason == models.ReasonViolence || r.Reason == models.ReasonHateSpeech)
		},
	},
	{
		note:   "auto: many duplicate spam reports",
		action: models.ReportStatusApproved,
		match: func(r *models.Report, priority int) bool {
			return r.DuplicateReports > 10 && r.Reason == models.ReasonSpam
		},
	},
	{
		note:   "auto: insufficient grounds",
		action: models.ReportStatusRejected,
		match: func(r *models.Report, priority int) bool {
			return priority <= 2 && r.Reason == models.ReasonOther && r.Description == ""
		},
	},
}

// Processor applies triage decisions to reports. Status transitions go
// through ReportStore.UpdateStatus, which only succeeds while the report
// is still pending, so concurrent processors cannot double-apply.
type Processor struct {
	reports store.ReportStore
	content store.ContentStore
	seclog  store.SecurityLogStore
}

func NewProcessor(reports store.ReportStore, content store.ContentStore, seclog store.SecurityLogStore) *Processor {
	return &Processor{reports: reports, content: content, seclog: seclog}
}

// AutoProcess evaluates the decision table against a pending report.
// Reports that match no rule stay pending for manual review. Auto-approval
// flags the content but does not delete it; takedown is reserved for the
// manual path.
func (p *Processor) AutoProcess(ctx context.Context, id uuid.UUID) (*AutoResult, error) {
	report, err := p.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !report.Pending() {
		return &AutoResult{Processed: false}, nil
	}

	priority := moderation.CalculateReportPriority(report)

	var matched *autoRule
	for i := range autoRules {
		if autoRules[i].match(report, priority) {
			matched = &autoRules[i]
			break
		}
	}
	if matched == nil {
		return &AutoResult{Processed: false}, nil
	}

	update := store.StatusUpdate{
		Status:        matched.action,
		AdminNote:     matched.note,
		ProcessedAt:   time.Now().UTC(),
		ProcessedBy:   System().String(),
		AutoProcessed: true,
		Priority:      priority,
	}
	// No retry here: replaying a write after an ambiguous failure could
	// duplicate the audit entry.
	if err := p.reports.UpdateStatus(ctx, id, update, models.ReportStatusPending); err != nil {
		if errors.Is(err, store.ErrPreconditionFailed) {
			// Someone else resolved it between our read and write.
			return &AutoResult{Processed: false}, nil
		}
		return nil, fmt.Errorf("auto-process report %s: %w", id, err)
	}

	metrics.ReportsProcessed.WithLabelValues("auto", matched.action).Inc()
	p.logProcessed(ctx, models.EventReportAutoProcessed, report, matched.action, matched.note, System())

	return &AutoResult{Processed: true, Action: matched.action, Reason: matched.note}, nil
}

// Process is the manual path. On approval the reported content is deleted
// first; only then is the report marked processed, so a failed takedown
// leaves the report pending and retryable. A lost race against another
// processor surfaces as store.ErrPreconditionFailed.
func (p *Processor) Process(ctx context.Context, id uuid.UUID, action, adminNote string, actor Actor) error {
	if action != models.ReportStatusApproved && action != models.ReportStatusRejected {
		return ErrInvalidAction
	}

	report, err := p.reports.Get(ctx, id)
	if err != nil {
		return err
	}
	if !report.Pending() {
		return store.ErrPreconditionFailed
	}

	if action == models.ReportStatusApproved {
		if err := p.content.Delete(ctx, report.ContentType, report.ContentID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete reported content %s/%s: %w", report.ContentType, report.ContentID, err)
		}
	}

	update := store.StatusUpdate{
		Status:      action,
		AdminNote:   adminNote,
		ProcessedAt: time.Now().UTC(),
		ProcessedBy: actor.String(),
		Priority:    moderation.CalculateReportPriority(report),
	}
	if err := p.reports.UpdateStatus(ctx, id, update, models.ReportStatusPending); err != nil {
		// Propagated even after a successful delete: the caller must see
		// that the report record does not reflect the takedown.
		return fmt.Errorf("process report %s: %w", id, err)
	}

	metrics.ReportsProcessed.WithLabelValues("manual", action).Inc()
	p.logProcessed(ctx, models.EventReportProcessed, report, action, adminNote, actor)
	return nil
}

func (p *Processor) logProcessed(ctx context.Context, eventType string, report *models.Report, action, note string, actor Actor) {
	details, _ := json.Marshal(map[string]interface{}{
		"report_id":    report.ID,
		"content_type": report.ContentType,
		"content_id":   report.ContentID,
		"action":       action,
		"note":         note,
	})
	entry := &models.SecurityLogEntry{
		EventType: eventType,
		Severity:  models.SeverityMedium,
		UserUID:   actor.String(),
		Timestamp: time.Now().UTC(),
		Details:   datatypes.JSON(details),
	}
	if err := p.seclog.Append(ctx, entry); err != nil {
		// The decision is already durable; losing the audit entry is
		// logged but does not fail the operation.
		slog.Error("security log append failed", "event", eventType, "report_id", report.ID, "error", err)
	}
}

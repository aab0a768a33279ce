package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/notewall/moderation-backend/internal/metrics"
	"github.com/notewall/moderation-backend/internal/models"
	"github.com/notewall/moderation-backend/internal/store"
)

// Scan actions.
const (
	ActionNone  = "none"
	ActionBlock = "block"
)

// SystemReporter is the reporter id recorded on auto-generated reports.
const SystemReporter = "system"

// Result is the outcome of a content scan. Degraded is set when the
// keyword filter list could not be fetched and the scan ran on spam
// patterns alone, so callers can tell "clean" from "couldn't fully check".
type Result struct {
	Action      string   `json:"action"`
	Confidence  float64  `json:"confidence"`
	Reasons     []string `json:"reasons"`
	AutoBlocked bool     `json:"auto_blocked"`
	Degraded    bool     `json:"degraded,omitempty"`
}

// Engine scans text against the admin-managed keyword filters and the
// fixed spam patterns, and files a report when confidence crosses the
// block threshold.
type Engine struct {
	filters store.KeywordFilterStore
	reports store.ReportStore
	seclog  store.SecurityLogStore
}

func NewEngine(filters store.KeywordFilterStore, reports store.ReportStore, seclog store.SecurityLogStore) *Engine {
	return &Engine{filters: filters, reports: reports, seclog: seclog}
}

// ScanContent runs the scan and, above threshold, synthesizes a pending
// report and an audit log entry. The scan itself never fails: a filter
// fetch error degrades to pattern-only matching, and a write failure is
// returned alongside the (already final) scan result rather than altering
// it.
func (e *Engine) ScanContent(ctx context.Context, contentType, contentID, text string) (*Result, error) {
	metrics.ModerationScans.Inc()
	result := &Result{Action: ActionNone, Reasons: []string{}}

	filters, err := store.WithRetry(ctx, func(ctx context.Context) ([]models.KeywordFilter, error) {
		return e.filters.ListActive(ctx)
	})
	if err != nil {
		slog.Warn("keyword filter fetch failed, scanning patterns only", "error", err)
		result.Degraded = true
		filters = nil
	}

	lower := strings.ToLower(text)
	for _, f := range filters {
		if f.Keyword == "" || !strings.Contains(lower, f.Keyword) {
			continue
		}
		result.Reasons = append(result.Reasons, fmt.Sprintf("banned keyword: %s", f.Keyword))
		if f.Severity == models.FilterSeverityHigh {
			result.Confidence += keywordHighWeight
		} else {
			result.Confidence += keywordWeight
		}
	}

	patternReasons, patternScore := checkSpamPatterns(text)
	result.Reasons = append(result.Reasons, patternReasons...)
	result.Confidence += patternScore

	if result.Confidence < BlockThreshold {
		return result, nil
	}

	result.Action = ActionBlock
	result.AutoBlocked = true
	metrics.ModerationBlocks.Inc()

	if err := e.fileBlock(ctx, contentType, contentID, result); err != nil {
		return result, fmt.Errorf("record auto-moderation block: %w", err)
	}
	return result, nil
}

// fileBlock persists the side effects of a block: a pending auto-generated
// report and an AUTO_MODERATION_BLOCK audit entry.
func (e *Engine) fileBlock(ctx context.Context, contentType, contentID string, result *Result) error {
	report := &models.Report{
		ContentType:   contentType,
		ContentID:     contentID,
		Reason:        models.ReasonInappropriate,
		Description:   strings.Join(result.Reasons, "; "),
		ReporterID:    SystemReporter,
		Status:        models.ReportStatusPending,
		AutoGenerated: true,
	}
	report.Priority = CalculateReportPriority(report)
	if err := e.reports.Create(ctx, report); err != nil {
		return err
	}

	details, _ := json.Marshal(map[string]interface{}{
		"content_type": contentType,
		"content_id":   contentID,
		"confidence":   result.Confidence,
		"reasons":      result.Reasons,
		"report_id":    report.ID,
	})
	entry := &models.SecurityLogEntry{
		EventType: models.EventAutoModerationBlock,
		Severity:  models.SeverityHigh,
		Timestamp: time.Now().UTC(),
		Details:   datatypes.JSON(details),
	}
	if err := e.seclog.Append(ctx, entry); err != nil {
		return err
	}

	slog.Info("content auto-blocked",
		"content_type", contentType,
		"content_id", contentID,
		"confidence", result.Confidence,
		"report_id", report.ID,
	)
	return nil
}

package analytics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/notewall/moderation-backend/internal/models"
	"github.com/notewall/moderation-backend/internal/store"
)

// Overview range keys accepted by OverviewStats.
var rangeDays = map[string]int{
	"1d":  1,
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

var ErrInvalidRange = errors.New("range must be one of 1d, 7d, 30d, 90d")

// ReportStats summarizes report traffic within a trailing window.
type ReportStats struct {
	WindowDays       int            `json:"window_days"`
	TotalReports     int            `json:"total_reports"`
	ByReason         map[string]int `json:"by_reason"`
	ByDay            map[string]int `json:"by_day"`
	ByStatus         map[string]int `json:"by_status"`
	MostCommonReason string         `json:"most_common_reason,omitempty"`
	AvgProcessHours  float64        `json:"avg_process_hours"`
	Degraded         bool           `json:"degraded,omitempty"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

// OverviewStats is the platform-wide activity snapshot.
type OverviewStats struct {
	Range             string    `json:"range"`
	TotalUsers        int64     `json:"total_users"`
	TotalNotes        int64     `json:"total_notes"`
	TotalComments     int64     `json:"total_comments"`
	NewUsers          int64     `json:"new_users"`
	NewNotes          int64     `json:"new_notes"`
	NewComments       int64     `json:"new_comments"`
	SignupsToday      int64     `json:"signups_today"`
	SignupsYesterday  int64     `json:"signups_yesterday"`
	SignupGrowth      float64   `json:"signup_growth"`
	NotesToday        int64     `json:"notes_today"`
	NotesYesterday    int64     `json:"notes_yesterday"`
	NoteGrowth        float64   `json:"note_growth"`
	CommentsToday     int64     `json:"comments_today"`
	CommentsYesterday int64     `json:"comments_yesterday"`
	CommentGrowth     float64   `json:"comment_growth"`
	DailyActive       int64     `json:"daily_active"`
	WeeklyActive      int64     `json:"weekly_active"`
	MonthlyActive     int64     `json:"monthly_active"`
	ImageUploads      int64     `json:"image_uploads"`
	RetentionRate     float64   `json:"retention_rate"`
	Degraded          bool      `json:"degraded,omitempty"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// Aggregator computes the analytics surfaces. All reads are non-critical:
// a persistent store failure zeroes the affected numbers and marks the
// result degraded instead of erroring.
type Aggregator struct {
	reports  store.ReportStore
	users    store.UserStore
	notes    store.NoteStore
	comments store.CommentStore

	// now is swappable in tests.
	now func() time.Time
}

func NewAggregator(reports store.ReportStore, users store.UserStore, notes store.NoteStore, comments store.CommentStore) *Aggregator {
	return &Aggregator{
		reports:  reports,
		users:    users,
		notes:    notes,
		comments: comments,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ReportAnalytics builds the report histograms for the trailing windowDays.
func (a *Aggregator) ReportAnalytics(ctx context.Context, windowDays int) (*ReportStats, error) {
	now := a.now()
	stats := &ReportStats{
		WindowDays:  windowDays,
		ByReason:    make(map[string]int),
		ByDay:       make(map[string]int),
		ByStatus:    make(map[string]int),
		GeneratedAt: now,
	}

	since := now.AddDate(0, 0, -windowDays)
	reports, err := store.WithRetry(ctx, func(ctx context.Context) ([]models.Report, error) {
		return a.reports.QueryCreatedSince(ctx, since)
	})
	if err != nil {
		slog.Warn("report analytics degraded", "error", err)
		stats.Degraded = true
		return stats, nil
	}

	var processedCount int
	var processedHours float64
	for _, r := range reports {
		stats.TotalReports++
		stats.ByReason[r.Reason]++
		stats.ByDay[r.CreatedAt.UTC().Format(time.DateOnly)]++
		stats.ByStatus[r.Status]++
		if r.ProcessedAt != nil {
			processedCount++
			processedHours += r.ProcessedAt.Sub(r.CreatedAt).Hours()
		}
	}
	if processedCount > 0 {
		stats.AvgProcessHours = round2(processedHours / float64(processedCount))
	}
	stats.MostCommonReason = mostCommonReason(stats.ByReason)
	return stats, nil
}

// mostCommonReason picks the reason with the highest count. Iteration
// follows models.ReasonOrder so ties break deterministically on the
// earlier enum entry.
func mostCommonReason(byReason map[string]int) string {
	best := ""
	bestCount := 0
	for _, reason := range models.ReasonOrder {
		if count := byReason[reason]; count > bestCount {
			best = reason
			bestCount = count
		}
	}
	return best
}

// Overview builds the platform snapshot for one of the fixed ranges.
func (a *Aggregator) Overview(ctx context.Context, rng string) (*OverviewStats, error) {
	days, ok := rangeDays[rng]
	if !ok {
		return nil, ErrInvalidRange
	}

	now := a.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	rangeStart := now.AddDate(0, 0, -days)

	stats := &OverviewStats{Range: rng, GeneratedAt: now}
	degraded := false

	count := func(fn func(context.Context) (int64, error)) int64 {
		n, err := store.WithRetry(ctx, fn)
		if err != nil {
			degraded = true
			return 0
		}
		return n
	}

	stats.TotalUsers = count(a.users.CountAll)
	stats.TotalNotes = count(a.notes.CountAll)
	stats.TotalComments = count(a.comments.CountAll)

	stats.NewUsers = count(func(ctx context.Context) (int64, error) { return a.users.CountSince(ctx, rangeStart) })
	stats.NewNotes = count(func(ctx context.Context) (int64, error) { return a.notes.CountSince(ctx, rangeStart) })
	stats.NewComments = count(func(ctx context.Context) (int64, error) { return a.comments.CountSince(ctx, rangeStart) })

	stats.SignupsToday = count(func(ctx context.Context) (int64, error) { return a.users.CountSince(ctx, todayStart) })
	sinceYesterday := count(func(ctx context.Context) (int64, error) { return a.users.CountSince(ctx, yesterdayStart) })
	stats.SignupsYesterday = sinceYesterday - stats.SignupsToday
	stats.SignupGrowth = GrowthRate(stats.SignupsToday, stats.SignupsYesterday)

	stats.NotesToday = count(func(ctx context.Context) (int64, error) { return a.notes.CountSince(ctx, todayStart) })
	notesSinceYesterday := count(func(ctx context.Context) (int64, error) { return a.notes.CountSince(ctx, yesterdayStart) })
	stats.NotesYesterday = notesSinceYesterday - stats.NotesToday
	stats.NoteGrowth = GrowthRate(stats.NotesToday, stats.NotesYesterday)

	stats.CommentsToday = count(func(ctx context.Context) (int64, error) { return a.comments.CountSince(ctx, todayStart) })
	commentsSinceYesterday := count(func(ctx context.Context) (int64, error) { return a.comments.CountSince(ctx, yesterdayStart) })
	stats.CommentsYesterday = commentsSinceYesterday - stats.CommentsToday
	stats.CommentGrowth = GrowthRate(stats.CommentsToday, stats.CommentsYesterday)

	active := func(since time.Time) int64 {
		users, err := store.WithRetry(ctx, func(ctx context.Context) ([]models.User, error) {
			return a.users.ListWithLastActivitySince(ctx, since)
		})
		if err != nil {
			degraded = true
			return 0
		}
		return int64(len(users))
	}
	stats.DailyActive = active(now.AddDate(0, 0, -1))
	stats.WeeklyActive = active(now.AddDate(0, 0, -7))
	stats.MonthlyActive = active(now.AddDate(0, 0, -30))

	stats.ImageUploads = count(a.notes.CountWithImages)
	stats.RetentionRate = RetentionRate(stats.MonthlyActive, stats.TotalUsers)

	if degraded {
		slog.Warn("overview analytics degraded, some figures zeroed")
		stats.Degraded = true
	}
	return stats, nil
}

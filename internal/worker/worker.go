// Package worker re-runs the suspicious-activity scan and the analytics
// aggregations on a fixed interval and publishes the results to the
// snapshot cache. The engine itself stays request-driven; this is the
// optional internal scheduler.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/notewall/moderation-backend/internal/analytics"
	"github.com/notewall/moderation-backend/internal/cache"
	"github.com/notewall/moderation-backend/internal/security"
)

// Config controls the scan cadence and windows.
type Config struct {
	Interval       time.Duration
	ScanWindow     time.Duration
	AnalyticsDays  int
	OverviewRanges []string
}

// ScanWorker owns the periodic loop.
type ScanWorker struct {
	detector   *security.Detector
	aggregator *analytics.Aggregator
	snapshots  *cache.SnapshotCache
	cfg        Config
}

func New(detector *security.Detector, aggregator *analytics.Aggregator, snapshots *cache.SnapshotCache, cfg Config) *ScanWorker {
	if len(cfg.OverviewRanges) == 0 {
		cfg.OverviewRanges = []string{"7d"}
	}
	return &ScanWorker{detector: detector, aggregator: aggregator, snapshots: snapshots, cfg: cfg}
}

// Run blocks until ctx is cancelled, scanning once immediately and then on
// every tick.
func (w *ScanWorker) Run(ctx context.Context) {
	slog.Info("scan worker started", "interval", w.cfg.Interval, "window", w.cfg.ScanWindow)
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.scan(ctx)
	for {
		select {
		case <-ticker.C:
			w.scan(ctx)
		case <-ctx.Done():
			slog.Info("scan worker stopped")
			return
		}
	}
}

func (w *ScanWorker) scan(ctx context.Context) {
	if result, err := w.detector.Detect(ctx, w.cfg.ScanWindow); err == nil {
		if err := w.snapshots.Set(ctx, cache.KeySuspiciousActivity, result); err != nil {
			slog.Error("suspicious activity snapshot publish failed", "error", err)
		}
	}

	if stats, err := w.aggregator.ReportAnalytics(ctx, w.cfg.AnalyticsDays); err == nil {
		if err := w.snapshots.Set(ctx, cache.KeyReportAnalytics, stats); err != nil {
			slog.Error("report analytics snapshot publish failed", "error", err)
		}
	}

	for _, rng := range w.cfg.OverviewRanges {
		stats, err := w.aggregator.Overview(ctx, rng)
		if err != nil {
			slog.Error("overview aggregation failed", "range", rng, "error", err)
			continue
		}
		if err := w.snapshots.Set(ctx, cache.OverviewKey(rng), stats); err != nil {
			slog.Error("overview snapshot publish failed", "range", rng, "error", err)
		}
	}
}

// Package metrics exposes Prometheus instrumentation for the moderation
// engine: scan and block counters, triage outcomes, and detector findings.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ReportsCreated counts report intake, labeled by reason.
	ReportsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "modbackend_reports_created_total",
		Help: "Total number of reports created",
	}, []string{"reason"})

	// ModerationScans counts content scans run by the rule engine.
	ModerationScans = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modbackend_moderation_scans_total",
		Help: "Total number of auto-moderation content scans",
	})

	// ModerationBlocks counts scans that crossed the block threshold.
	ModerationBlocks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modbackend_moderation_blocks_total",
		Help: "Total number of auto-moderation blocks",
	})

	// ReportsProcessed counts resolved reports, labeled by path
	// ("auto" or "manual") and terminal action.
	ReportsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "modbackend_reports_processed_total",
		Help: "Total number of reports resolved",
	}, []string{"path", "action"})

	// SuspiciousActivities counts detector findings, labeled by type.
	SuspiciousActivities = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "modbackend_suspicious_activities_total",
		Help: "Total number of suspicious activities detected",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(
		ReportsCreated,
		ModerationScans,
		ModerationBlocks,
		ReportsProcessed,
		SuspiciousActivities,
	)
}

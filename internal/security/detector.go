// Package security scans the security log for abuse patterns: request
// floods per IP, per-user activity bursts, and repeated login failures.
package security

import (
	"context"
	"log/slog"
	"time"

	"github.com/notewall/moderation-backend/internal/metrics"
	"github.com/notewall/moderation-backend/internal/models"
	"github.com/notewall/moderation-backend/internal/store"
)

// Suspicious activity types.
const (
	TypeExcessiveRequests     = "EXCESSIVE_REQUESTS"
	TypeExcessiveUserActivity = "EXCESSIVE_USER_ACTIVITY"
	TypeRepeatedLoginFailures = "REPEATED_LOGIN_FAILURES"
)

// Classification thresholds. All exclusive: a count must exceed the
// threshold to classify.
const (
	ipMediumThreshold        = 100
	ipHighThreshold          = 500
	userMediumThreshold      = 50
	userHighThreshold        = 200
	loginFailMediumThreshold = 10
	loginFailHighThreshold   = 50
)

// Activity is one classified finding. Target is the offending IP or user
// id depending on Type.
type Activity struct {
	Type     string `json:"type"`
	Target   string `json:"target"`
	Count    int    `json:"count"`
	Severity string `json:"severity"`
}

// ScanResult carries the findings plus a degraded marker so callers can
// tell "no incidents" from "could not check".
type ScanResult struct {
	Activities []Activity `json:"activities"`
	Degraded   bool       `json:"degraded,omitempty"`
	WindowFrom time.Time  `json:"window_from"`
	ScannedAt  time.Time  `json:"scanned_at"`
}

// Detector is a read-only analytical scan over the security log. It has no
// side effects beyond metrics.
type Detector struct {
	seclog store.SecurityLogStore
}

func NewDetector(seclog store.SecurityLogStore) *Detector {
	return &Detector{seclog: seclog}
}

// counter is a frequency table that remembers first-seen order so output
// is stable across runs on the same input.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// classify appends one finding per key whose count exceeds medium, with
// HIGH superseding MEDIUM above the high threshold.
func (c *counter) classify(out []Activity, typ string, medium, high int) []Activity {
	for _, key := range c.order {
		count := c.counts[key]
		if count <= medium {
			continue
		}
		severity := models.SeverityMedium
		if count > high {
			severity = models.SeverityHigh
		}
		out = append(out, Activity{Type: typ, Target: key, Count: count, Severity: severity})
	}
	return out
}

// Detect scans log entries from the trailing window. A persistent store
// failure degrades to an empty result rather than erroring: detection is a
// non-critical aggregate read.
func (d *Detector) Detect(ctx context.Context, window time.Duration) (*ScanResult, error) {
	now := time.Now().UTC()
	result := &ScanResult{Activities: []Activity{}, WindowFrom: now.Add(-window), ScannedAt: now}

	entries, err := store.WithRetry(ctx, func(ctx context.Context) ([]models.SecurityLogEntry, error) {
		return d.seclog.QuerySince(ctx, result.WindowFrom)
	})
	if err != nil {
		slog.Warn("security log scan degraded", "error", err)
		result.Degraded = true
		return result, nil
	}

	ipEvents := newCounter()
	userEvents := newCounter()
	ipLoginFailures := newCounter()

	for _, e := range entries {
		if e.IP != "" {
			ipEvents.add(e.IP)
			if e.EventType == models.EventLoginFailed {
				ipLoginFailures.add(e.IP)
			}
		}
		if e.UserUID != "" {
			userEvents.add(e.UserUID)
		}
	}

	result.Activities = ipEvents.classify(result.Activities, TypeExcessiveRequests, ipMediumThreshold, ipHighThreshold)
	result.Activities = userEvents.classify(result.Activities, TypeExcessiveUserActivity, userMediumThreshold, userHighThreshold)
	result.Activities = ipLoginFailures.classify(result.Activities, TypeRepeatedLoginFailures, loginFailMediumThreshold, loginFailHighThreshold)

	for _, a := range result.Activities {
		metrics.SuspiciousActivities.WithLabelValues(a.Type).Inc()
	}
	if len(result.Activities) > 0 {
		slog.Info("suspicious activity detected", "count", len(result.Activities), "window", window)
	}
	return result, nil
}

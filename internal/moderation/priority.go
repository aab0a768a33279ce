// Package moderation scores report urgency and scans free text against
// keyword filters and spam patterns.
package moderation

import "github.com/notewall/moderation-backend/internal/models"

// reasonWeights maps a report reason to its contribution to the priority
// score. Missing or unknown reasons fall back to 1.
var reasonWeights = map[string]int{
	models.ReasonViolence:       4,
	models.ReasonHateSpeech:     3,
	models.ReasonHarassment:     3,
	models.ReasonInappropriate:  2,
	models.ReasonCopyright:      2,
	models.ReasonMisinformation: 2,
	models.ReasonSpam:           1,
	models.ReasonOther:          1,
}

// CalculateReportPriority maps a report's attributes to a 1..10 urgency
// score. Pure: no I/O, no clock, deterministic for a given report.
func CalculateReportPriority(report *models.Report) int {
	priority := 1

	weight, ok := reasonWeights[report.Reason]
	if !ok {
		weight = 1
	}
	priority += weight

	if report.DuplicateReports > 3 {
		priority += 2
	}
	if report.DuplicateReports > 10 {
		priority += 3
	}

	if report.AuthorViolationCount > 2 {
		priority++
	}
	if report.AuthorViolationCount > 5 {
		priority += 2
	}

	if priority > 10 {
		priority = 10
	}
	return priority
}

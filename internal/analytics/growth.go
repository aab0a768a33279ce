// Package analytics aggregates report, user, and content statistics over
// configurable time windows.
package analytics

import "math"

// GrowthRate computes the day-over-day percentage change, rounded to one
// decimal. Both zero means no movement (0); growth from a zero baseline is
// pinned to 100 rather than dividing by zero.
func GrowthRate(today, yesterday int64) float64 {
	if today == 0 && yesterday == 0 {
		return 0
	}
	if yesterday == 0 {
		return 100
	}
	return round1(float64(today-yesterday) / float64(yesterday) * 100)
}

// RetentionRate is the share of all users active in the last month,
// as a percentage rounded to one decimal. Zero users means zero retention.
func RetentionRate(monthlyActive, totalUsers int64) float64 {
	if totalUsers == 0 {
		return 0
	}
	return round1(float64(monthlyActive) / float64(totalUsers) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package moderation

import "regexp"

// Per-match confidence contributions.
const (
	keywordHighWeight = 0.4
	keywordWeight     = 0.2
	patternWeight     = 0.3
)

// BlockThreshold is the confidence at or above which a scan blocks the
// content and synthesizes a report.
const BlockThreshold = 0.8

// Compiled spam patterns, shared by every scan.
var (
	// urlPattern matches http/https links.
	urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

	// phonePattern matches phone-number-like digit runs (DDD-DDDD-DDDD).
	phonePattern = regexp.MustCompile(`\d{3}-\d{4}-\d{4}`)
)

// spamCheck pairs a detection function with the reason it reports.
type spamCheck struct {
	reason string
	match  func(string) bool
}

// spamChecks are evaluated independently; every match contributes to the
// confidence score, so multiple hits stack.
var spamChecks = []spamCheck{
	{reason: "excessive character repetition", match: hasCharFlood},
	{reason: "contains URL", match: urlPattern.MatchString},
	{reason: "phone number pattern", match: phonePattern.MatchString},
}

// hasCharFlood reports whether any character repeats 11 or more times
// consecutively. RE2 has no backreferences, so this is a linear scan.
func hasCharFlood(text string) bool {
	const threshold = 11

	count := 1
	prev := rune(-1)
	for _, r := range text {
		if r == prev {
			count++
			if count >= threshold {
				return true
			}
		} else {
			count = 1
			prev = r
		}
	}
	return false
}

// checkSpamPatterns returns the reasons for every matching spam pattern and
// their combined confidence contribution.
func checkSpamPatterns(text string) ([]string, float64) {
	var reasons []string
	var confidence float64
	for _, sc := range spamChecks {
		if sc.match(text) {
			reasons = append(reasons, sc.reason)
			confidence += patternWeight
		}
	}
	return reasons, confidence
}

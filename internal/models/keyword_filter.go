package models

import (
	"time"

	"github.com/google/uuid"
)

// Keyword filter severities (distinct from security log severities:
// these are lowercase and three-valued).
const (
	FilterSeverityLow    = "low"
	FilterSeverityMedium = "medium"
	FilterSeverityHigh   = "high"
)

// KeywordFilter is an admin-managed banned term. Keyword is stored
// lowercased; matching is case-insensitive substring.
type KeywordFilter struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Keyword   string    `gorm:"not null;size:255;uniqueIndex" json:"keyword"`
	Severity  string    `gorm:"not null;default:'medium';size:10" json:"severity"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidFilterSeverity reports whether s is a known filter severity.
func ValidFilterSeverity(s string) bool {
	return s == FilterSeverityLow || s == FilterSeverityMedium || s == FilterSeverityHigh
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Security log severities.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Security event types emitted by this service. The table also receives
// events from the rest of the platform (logins, admin actions), which the
// detector consumes without needing to know every type.
const (
	EventAutoModerationBlock = "AUTO_MODERATION_BLOCK"
	EventReportAutoProcessed = "REPORT_AUTO_PROCESSED"
	EventReportProcessed     = "REPORT_PROCESSED"
	EventLoginFailed         = "LOGIN_FAILED"
)

// SecurityLogEntry is an append-only audit record. Rows are never updated
// or deleted by this service.
type SecurityLogEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventType string         `gorm:"not null;size:100;index" json:"event_type"`
	Severity  string         `gorm:"not null;size:10" json:"severity"`
	IP        string         `gorm:"size:45;index" json:"ip,omitempty"`
	UserUID   string         `gorm:"size:255;index" json:"user_uid,omitempty"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Details   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"details"`
}

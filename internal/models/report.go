package models

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses. A report starts pending and ends approved or rejected;
// there is no reopen path.
const (
	ReportStatusPending  = "pending"
	ReportStatusApproved = "approved"
	ReportStatusRejected = "rejected"
)

// Reportable content types.
const (
	ContentTypeNote    = "note"
	ContentTypeComment = "comment"
)

// Report reasons. ReasonOrder below is the canonical iteration order
// wherever deterministic tie-breaking is needed.
const (
	ReasonViolence       = "violence"
	ReasonHateSpeech     = "hate_speech"
	ReasonHarassment     = "harassment"
	ReasonInappropriate  = "inappropriate"
	ReasonCopyright      = "copyright"
	ReasonMisinformation = "misinformation"
	ReasonSpam           = "spam"
	ReasonOther          = "other"
)

var ReasonOrder = []string{
	ReasonViolence,
	ReasonHateSpeech,
	ReasonHarassment,
	ReasonInappropriate,
	ReasonCopyright,
	ReasonMisinformation,
	ReasonSpam,
	ReasonOther,
}

// ValidReason reports whether reason is one of the known report reasons.
func ValidReason(reason string) bool {
	for _, r := range ReasonOrder {
		if r == reason {
			return true
		}
	}
	return false
}

// ValidContentType reports whether t names a reportable content type.
func ValidContentType(t string) bool {
	return t == ContentTypeNote || t == ContentTypeComment
}

// Report is a user (or system) flag against a piece of content.
// Version is the optimistic-concurrency token: every status transition
// goes through a conditional update and bumps it.
type Report struct {
	ID                   uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContentType          string     `gorm:"not null;size:20;index:idx_reports_content" json:"content_type"`
	ContentID            string     `gorm:"not null;size:255;index:idx_reports_content" json:"content_id"`
	Reason               string     `gorm:"not null;size:50" json:"reason"`
	Description          string     `gorm:"size:1000" json:"description,omitempty"`
	ReporterID           string     `gorm:"not null;size:255;index" json:"reporter_id"`
	Status               string     `gorm:"not null;default:'pending';size:20;index" json:"status"`
	Priority             int        `gorm:"not null;default:1" json:"priority"`
	DuplicateReports     int        `gorm:"not null;default:0" json:"duplicate_reports"`
	AuthorViolationCount int        `gorm:"not null;default:0" json:"author_violation_count"`
	AutoGenerated        bool       `gorm:"not null;default:false" json:"auto_generated"`
	AutoProcessed        bool       `gorm:"not null;default:false" json:"auto_processed"`
	AdminNote            string     `gorm:"size:1000" json:"admin_note,omitempty"`
	Version              int        `gorm:"not null;default:0" json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	ProcessedAt          *time.Time `json:"processed_at,omitempty"`
	ProcessedBy          string     `gorm:"size:255" json:"processed_by,omitempty"`
}

// Pending reports whether the report is still awaiting a decision.
func (r *Report) Pending() bool {
	return r.Status == ReportStatusPending
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the read-side user record used by analytics and report intake.
// Account management (registration, passwords, sessions) lives in the
// platform's auth service, not here.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email          string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Role           string     `gorm:"size:20;default:'user'" json:"role"`
	ViolationCount int        `gorm:"not null;default:0" json:"violation_count"`
	LastActivity   *time.Time `gorm:"index" json:"last_activity,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Note is a user-authored note. ImageURL is set when the note carries an
// uploaded image.
type Note struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuthorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Title     string         `gorm:"size:255" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	ImageURL  string         `gorm:"size:1024" json:"image_url,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Comment is a reply attached to a note.
type Comment struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	NoteID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"note_id"`
	AuthorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Body      string         `gorm:"type:text" json:"body"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

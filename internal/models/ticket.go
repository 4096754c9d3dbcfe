package models

import (
	"time"

	"gorm.io/datatypes"
)

// Ticket status values. There is no enforced transition graph: an admin may
// set any value, and a customer reopen forces CLOSED/REJECTED back to OPEN.
const (
	StatusOpen       = "OPEN"
	StatusInProgress = "IN PROGRESS"
	StatusClosed     = "CLOSED"
	StatusRejected   = "REJECTED"
)

// Ticket issue types.
const (
	IssueTypeGeneral = "GENERAL"
	IssueTypeWebsite = "WEBSITE"
)

// ValidStatus reports whether s is one of the four allowed status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed, StatusRejected:
		return true
	}
	return false
}

// Ticket represents a customer support request.
type Ticket struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Name        string `gorm:"type:text;not null" json:"name"`          // Submitter display name.
	Email       string `gorm:"type:text;not null;index" json:"email"`   // Owner email, compared case-insensitively.
	Subject     string `gorm:"type:text;not null" json:"subject"`       // Short summary.
	Description string `gorm:"type:text;not null" json:"description"`   // Full issue description.
	Website     string `gorm:"type:text;not null" json:"website"`       // Affected site.
	Status      string `gorm:"type:text;not null;index" json:"status"`  // One of the Status constants.
	Urgency     int    `gorm:"not null;default:3" json:"urgency"`       // 1 (low) .. 5 (critical).
	IssueType   string `gorm:"type:text;not null" json:"issueType"`     // GENERAL or WEBSITE.

	Note     string  `gorm:"type:text" json:"note"`     // Support-authored, customer-visible note.
	Rating   *int    `json:"rating"`                    // 1..5, settable while CLOSED.
	Feedback *string `gorm:"type:text" json:"feedback"` // Optional free-text feedback.

	Screenshots datatypes.JSON `gorm:"type:json" json:"screenshots,omitempty"` // Data-URL attachments from the form.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Submission timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last mutation timestamp.
}

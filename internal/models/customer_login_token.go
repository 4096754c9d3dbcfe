package models

import "time"

// CustomerLoginToken is a one-time numeric code emailed to a customer.
//
// Any number of codes may be outstanding per email; verification consumes the
// newest unused, unexpired row matching (email, code).
type CustomerLoginToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email     string    `gorm:"type:text;not null;index"` // Lower-cased customer email.
	Code      string    `gorm:"type:text;not null"`       // 6-digit numeric code.
	ExpiresAt time.Time `gorm:"not null"`                 // Absolute expiry.
	Used      bool      `gorm:"not null;default:false"`   // One-shot consumption flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp; newest code wins ties.
}

package models

import "time"

// AdminResetToken authorizes exactly one password reset before its expiry.
//
// Used flips to true in the same transaction as the password update it
// authorizes; expired or used rows are rejected at lookup time and never
// proactively purged.
type AdminResetToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Token       string    `gorm:"type:text;not null;uniqueIndex"` // Random unguessable token string.
	AdminUserID uint64    `gorm:"not null;index"`                 // Owning admin account.
	ExpiresAt   time.Time `gorm:"not null"`                       // Absolute expiry.
	Used        bool      `gorm:"not null;default:false"`         // One-shot consumption flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

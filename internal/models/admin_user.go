package models

import "time"

// AdminUser represents an administrator account stored in the database.
//
// Rows exist only for allow-listed emails: one is created on an allow-listed
// email's first successful login, or lazily by the forgot-password flow with a
// placeholder credential that can never verify.
type AdminUser struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email        string `gorm:"type:text;not null;uniqueIndex"` // Lower-cased login email.
	PasswordHash string `gorm:"type:text;not null"`             // PBKDF2 credential record.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

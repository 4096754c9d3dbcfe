package models

import "time"

// NoteAuthorAdmin tags notes written through the admin surface.
const NoteAuthorAdmin = "ADMIN"

// TicketNote is an append-only audit entry recorded whenever an admin sets a
// non-empty note. Entries are never mutated or deleted.
type TicketNote struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	TicketID  uint64 `gorm:"not null;index" json:"ticketId"`      // Owning ticket.
	Author    string `gorm:"type:text;not null" json:"author"`    // Author kind tag, e.g. ADMIN.
	AuthorRef string `gorm:"type:text;not null" json:"authorRef"` // Author identity, e.g. admin email.
	Body      string `gorm:"type:text;not null" json:"body"`      // Note text as written.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Entry timestamp.
}

// TicketStatusLog is an append-only audit entry recorded on every status
// transition that actually changes the status. Entries are never mutated or
// deleted; merged with TicketNote rows they form the complete ticket history.
type TicketStatusLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	TicketID   uint64  `gorm:"not null;index" json:"ticketId"`     // Owning ticket.
	FromStatus *string `gorm:"type:text" json:"fromStatus"`        // Previous status, nil for none.
	ToStatus   string  `gorm:"type:text;not null" json:"toStatus"` // New status.
	Actor      string  `gorm:"type:text;not null" json:"actor"`    // Identity that made the change.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Entry timestamp.
}

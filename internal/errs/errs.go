package errs

import "errors"

// Sentinel errors shared by the service layer. Handlers translate these into
// HTTP status codes; anything not listed here surfaces as a generic 500.
var (
	// ErrUnauthorized indicates a missing or invalid session, or an email
	// outside the admin allow-list.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials indicates a password mismatch on login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooShort indicates a password under the minimum length.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	// ErrInvalidResetToken indicates an unknown, used or expired reset token.
	ErrInvalidResetToken = errors.New("invalid or expired token")

	// ErrInvalidEmail indicates a structurally invalid email address.
	ErrInvalidEmail = errors.New("valid email required")
	// ErrNoTickets indicates the email owns no tickets, so no code is issued.
	ErrNoTickets = errors.New("no tickets found for this email")
	// ErrInvalidCode indicates an unknown, used or expired one-time code.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrTicketNotFound indicates the ticket is absent or not owned by the caller.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrInvalidStatus indicates a status outside the allowed set.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrTicketNotClosed indicates a rating attempt on a non-CLOSED ticket.
	ErrTicketNotClosed = errors.New("ticket must be CLOSED to rate")
	// ErrTicketActive indicates a reopen request for an OPEN or IN PROGRESS ticket.
	ErrTicketActive = errors.New("ticket is already active")
	// ErrInvalidRating indicates a rating outside 1..5.
	ErrInvalidRating = errors.New("rating must be 1-5")
	// ErrEmptyReason indicates a reopen request without a reason.
	ErrEmptyReason = errors.New("a reason is required to reopen this ticket")

	// ErrMailNotConfigured indicates missing SMTP settings.
	ErrMailNotConfigured = errors.New("email not configured")
	// ErrMailDelivery indicates a failed send after state was committed.
	ErrMailDelivery = errors.New("email delivery failed")
)

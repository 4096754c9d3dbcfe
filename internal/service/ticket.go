package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wednesdayfs/helpdesk/internal/config"
	"github.com/wednesdayfs/helpdesk/internal/errs"
	"github.com/wednesdayfs/helpdesk/internal/mailer"
	"github.com/wednesdayfs/helpdesk/internal/models"
	"github.com/wednesdayfs/helpdesk/internal/util"
)

// TicketService owns the ticket lifecycle: creation, status transitions with
// their audit trail, note annotation, the merged history view, customer
// reopen requests and rating capture.
type TicketService struct {
	db     *gorm.DB
	cfg    *config.Config
	sender mailer.Sender
}

// NewTicketService constructs a TicketService.
func NewTicketService(db *gorm.DB, cfg *config.Config, sender mailer.Sender) *TicketService {
	return &TicketService{db: db, cfg: cfg, sender: sender}
}

// CreateTicketInput carries a validated public submission.
type CreateTicketInput struct {
	Name        string
	Email       string
	Subject     string
	Description string
	Website     string
	Urgency     int
	IssueType   string
	Screenshots []string
}

// Create persists a new OPEN ticket and notifies the support mailbox. The
// returned ticket is non-nil whenever the row was committed, even if the
// notification failed afterwards; callers surface the delivery error without
// losing the created ticket.
func (s *TicketService) Create(ctx context.Context, in CreateTicketInput) (*models.Ticket, error) {
	urgency := in.Urgency
	if urgency < 1 || urgency > 5 {
		urgency = 3
	}
	issueType := in.IssueType
	if issueType != models.IssueTypeWebsite {
		issueType = models.IssueTypeGeneral
	}

	ticket := models.Ticket{
		Name:        strings.TrimSpace(in.Name),
		Email:       util.NormalizeEmail(in.Email),
		Subject:     strings.TrimSpace(in.Subject),
		Description: in.Description,
		Website:     strings.TrimSpace(in.Website),
		Status:      models.StatusOpen,
		Urgency:     urgency,
		IssueType:   issueType,
	}
	if len(in.Screenshots) > 0 {
		raw, errMarshal := json.Marshal(in.Screenshots)
		if errMarshal != nil {
			return nil, errMarshal
		}
		ticket.Screenshots = raw
	}
	if errCreate := s.db.WithContext(ctx).Create(&ticket).Error; errCreate != nil {
		return nil, errCreate
	}

	msg := mailer.NewTicketMessage(&ticket, in.Screenshots, s.cfg.SupportRecipients)
	if errSend := s.sender.Send(ctx, msg); errSend != nil {
		log.Warnf("new ticket notification for #%d failed: %v", ticket.ID, errSend)
		return &ticket, errSend
	}
	return &ticket, nil
}

// Get loads one ticket by id.
func (s *TicketService) Get(ctx context.Context, id uint64) (*models.Ticket, error) {
	var ticket models.Ticket
	if errFind := s.db.WithContext(ctx).First(&ticket, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, errFind
	}
	return &ticket, nil
}

// SetStatus moves a ticket to a new status on behalf of an admin. Setting the
// current status is a silent no-op with no audit entry. A real transition and
// its TicketStatusLog row commit in one transaction; a crash between the two
// can never leave an unaudited change. Closing a ticket additionally notifies
// the owner best-effort; the transition stands even if the email fails.
func (s *TicketService) SetStatus(ctx context.Context, id uint64, newStatus, actor string) (*models.Ticket, error) {
	if !models.ValidStatus(newStatus) {
		return nil, errs.ErrInvalidStatus
	}
	ticket, errGet := s.Get(ctx, id)
	if errGet != nil {
		return nil, errGet
	}
	if ticket.Status == newStatus {
		return ticket, nil
	}

	if errTx := s.transition(ctx, ticket, newStatus, actor); errTx != nil {
		return nil, errTx
	}

	if newStatus == models.StatusClosed {
		if errSend := s.sender.Send(ctx, mailer.ClosedMessage(ticket)); errSend != nil {
			log.Warnf("closure email for ticket #%d failed: %v", ticket.ID, errSend)
		}
	}
	return ticket, nil
}

// SetNote replaces a ticket's customer-visible note. A non-empty result is
// recorded in the append-only note trail; clearing the note leaves no audit
// entry.
func (s *TicketService) SetNote(ctx context.Context, id uint64, note, actor string) (*models.Ticket, error) {
	ticket, errGet := s.Get(ctx, id)
	if errGet != nil {
		return nil, errGet
	}

	note = strings.TrimSpace(note)
	if errUpdate := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ?", ticket.ID).
		Update("note", note).Error; errUpdate != nil {
		return nil, errUpdate
	}
	ticket.Note = note

	if note != "" {
		entry := models.TicketNote{
			TicketID:  ticket.ID,
			Author:    models.NoteAuthorAdmin,
			AuthorRef: actor,
			Body:      note,
		}
		if errCreate := s.db.WithContext(ctx).Create(&entry).Error; errCreate != nil {
			return nil, errCreate
		}
	}
	return ticket, nil
}

// HistoryEntry is one item of a ticket's merged audit trail.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"` // NOTE or STATUS
	Author     string    `json:"author"`
	AuthorRef  string    `json:"authorRef"`
	Body       string    `json:"body"`
	FromStatus *string   `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// History entry kinds.
const (
	HistoryKindNote   = "NOTE"
	HistoryKindStatus = "STATUS"
)

// History returns the ticket's notes and status changes merged into one
// chronological sequence, each entry tagged by kind.
func (s *TicketService) History(ctx context.Context, id uint64) ([]HistoryEntry, error) {
	if _, errGet := s.Get(ctx, id); errGet != nil {
		return nil, errGet
	}

	var notes []models.TicketNote
	if errFind := s.db.WithContext(ctx).
		Where("ticket_id = ?", id).
		Order("created_at ASC").
		Find(&notes).Error; errFind != nil {
		return nil, errFind
	}
	var logs []models.TicketStatusLog
	if errFind := s.db.WithContext(ctx).
		Where("ticket_id = ?", id).
		Order("created_at ASC").
		Find(&logs).Error; errFind != nil {
		return nil, errFind
	}

	history := make([]HistoryEntry, 0, len(notes)+len(logs))
	for _, note := range notes {
		history = append(history, HistoryEntry{
			ID:        fmt.Sprintf("note-%d", note.ID),
			Type:      HistoryKindNote,
			Author:    note.Author,
			AuthorRef: note.AuthorRef,
			Body:      note.Body,
			CreatedAt: note.CreatedAt,
		})
	}
	for _, entry := range logs {
		body := fmt.Sprintf("Status changed to %s", entry.ToStatus)
		if entry.FromStatus != nil {
			body = fmt.Sprintf("%s (from %s)", body, *entry.FromStatus)
		}
		history = append(history, HistoryEntry{
			ID:         fmt.Sprintf("status-%d", entry.ID),
			Type:       HistoryKindStatus,
			Author:     HistoryKindStatus,
			AuthorRef:  entry.Actor,
			Body:       body,
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			CreatedAt:  entry.CreatedAt,
		})
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})
	return history, nil
}

// RequestReopen moves a CLOSED or REJECTED ticket back to OPEN at its owner's
// request, appending the stated reason to the existing note, and notifies the
// support team. Ownership failures report not-found so a requester cannot
// distinguish "absent" from "not yours". The support notification is sent
// after the transition commits; its failure is reported without rolling back.
func (s *TicketService) RequestReopen(ctx context.Context, id uint64, requester, reason string) error {
	requester = util.NormalizeEmail(requester)
	ticket, errGet := s.Get(ctx, id)
	if errGet != nil {
		return errGet
	}
	if util.NormalizeEmail(ticket.Email) != requester {
		return errs.ErrTicketNotFound
	}
	if ticket.Status == models.StatusOpen || ticket.Status == models.StatusInProgress {
		return errs.ErrTicketActive
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.ErrEmptyReason
	}

	previousStatus := ticket.Status
	note := fmt.Sprintf("Reopen requested by customer: %s", reason)
	if ticket.Note != "" {
		note = ticket.Note + "\n\n" + note
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errUpdate := tx.Model(&models.Ticket{}).
			Where("id = ?", ticket.ID).
			Updates(map[string]any{
				"status": models.StatusOpen,
				"note":   note,
			}).Error; errUpdate != nil {
			return errUpdate
		}
		entry := models.TicketStatusLog{
			TicketID:   ticket.ID,
			FromStatus: &previousStatus,
			ToStatus:   models.StatusOpen,
			Actor:      requester,
		}
		return tx.Create(&entry).Error
	})
	if errTx != nil {
		return errTx
	}
	ticket.Status = models.StatusOpen
	ticket.Note = note

	msg := mailer.ReopenMessage(ticket, previousStatus, reason, s.cfg.SupportRecipients)
	if errSend := s.sender.Send(ctx, msg); errSend != nil {
		log.Warnf("reopen notification for ticket #%d failed: %v", ticket.ID, errSend)
		return errSend
	}
	return nil
}

// SubmitRating records an owner's rating (and optional feedback) on a CLOSED
// ticket. Re-rating overwrites a prior value; there is no one-shot rule.
func (s *TicketService) SubmitRating(ctx context.Context, id uint64, requester string, rating int, feedback *string) (*models.Ticket, error) {
	requester = util.NormalizeEmail(requester)
	ticket, errGet := s.Get(ctx, id)
	if errGet != nil {
		return nil, errGet
	}
	if util.NormalizeEmail(ticket.Email) != requester {
		return nil, errs.ErrTicketNotFound
	}
	if ticket.Status != models.StatusClosed {
		return nil, errs.ErrTicketNotClosed
	}
	if rating < 1 || rating > 5 {
		return nil, errs.ErrInvalidRating
	}

	changes := map[string]any{"rating": rating}
	if feedback != nil {
		trimmed := strings.TrimSpace(*feedback)
		changes["feedback"] = trimmed
		ticket.Feedback = &trimmed
	}
	if errUpdate := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ?", ticket.ID).
		Updates(changes).Error; errUpdate != nil {
		return nil, errUpdate
	}
	ticket.Rating = &rating
	return ticket, nil
}

// ListForCustomer returns the tickets owned by email, oldest first.
func (s *TicketService) ListForCustomer(ctx context.Context, email string) ([]models.Ticket, error) {
	email = util.NormalizeEmail(email)
	var tickets []models.Ticket
	if errFind := s.db.WithContext(ctx).
		Where("lower(email) = ?", email).
		Order("created_at ASC").
		Find(&tickets).Error; errFind != nil {
		return nil, errFind
	}
	return tickets, nil
}

// ListAll returns every ticket, oldest first. Admin-only; further filtering
// and sorting is the caller's concern.
func (s *TicketService) ListAll(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if errFind := s.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&tickets).Error; errFind != nil {
		return nil, errFind
	}
	return tickets, nil
}

// transition updates the status and appends its audit entry atomically.
func (s *TicketService) transition(ctx context.Context, ticket *models.Ticket, newStatus, actor string) error {
	previousStatus := ticket.Status
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errUpdate := tx.Model(&models.Ticket{}).
			Where("id = ?", ticket.ID).
			Update("status", newStatus).Error; errUpdate != nil {
			return errUpdate
		}
		entry := models.TicketStatusLog{
			TicketID:   ticket.ID,
			FromStatus: &previousStatus,
			ToStatus:   newStatus,
			Actor:      actor,
		}
		return tx.Create(&entry).Error
	})
	if errTx != nil {
		return errTx
	}
	ticket.Status = newStatus
	return nil
}

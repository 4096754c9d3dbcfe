package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/wednesdayfs/helpdesk/internal/errs"
	"github.com/wednesdayfs/helpdesk/internal/models"
)

func newTicketService(t *testing.T) (*TicketService, *gorm.DB, *fakeSender) {
	t.Helper()
	conn := newTestDB(t)
	sender := &fakeSender{}
	return NewTicketService(conn, newTestConfig(t), sender), conn, sender
}

func mustCreateTicket(t *testing.T, svc *TicketService, email string) *models.Ticket {
	t.Helper()
	ticket, err := svc.Create(context.Background(), CreateTicketInput{
		Name:        "Alice",
		Email:       email,
		Subject:     "Broken checkout",
		Description: "The checkout page errors out.",
		Website:     "shop.example.com",
		Urgency:     2,
		IssueType:   models.IssueTypeWebsite,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _, sender := newTicketService(t)

	ticket, err := svc.Create(context.Background(), CreateTicketInput{
		Name:        "  Bob  ",
		Email:       "Bob@Example.COM",
		Subject:     "Login issue",
		Description: "Cannot log in.",
		Website:     "example.com",
		Urgency:     9,
		IssueType:   "SOMETHING ELSE",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.Status != models.StatusOpen {
		t.Fatalf("status = %q, want OPEN", ticket.Status)
	}
	if ticket.Urgency != 3 {
		t.Fatalf("out-of-range urgency = %d, want default 3", ticket.Urgency)
	}
	if ticket.IssueType != models.IssueTypeGeneral {
		t.Fatalf("issue type = %q, want GENERAL", ticket.IssueType)
	}
	if ticket.Name != "Bob" {
		t.Fatalf("name = %q, want trimmed", ticket.Name)
	}
	if ticket.Email != "bob@example.com" {
		t.Fatalf("email = %q, want normalized", ticket.Email)
	}

	if sender.count() != 1 {
		t.Fatalf("support notifications = %d, want 1", sender.count())
	}
	msg := sender.last()
	if len(msg.To) == 0 || msg.To[0] != "admin@chmoney.co.uk" {
		t.Fatalf("notification recipients = %v", msg.To)
	}
	if !strings.Contains(msg.Subject, "Login issue") {
		t.Fatalf("notification subject = %q", msg.Subject)
	}
}

func TestCreateSurvivesMailFailure(t *testing.T) {
	svc, conn, sender := newTicketService(t)
	sender.fail = errs.ErrMailDelivery

	ticket, err := svc.Create(context.Background(), CreateTicketInput{
		Name:        "Alice",
		Email:       "alice@example.com",
		Subject:     "Broken checkout",
		Description: "Errors out.",
		Website:     "shop.example.com",
	})
	if !errors.Is(err, errs.ErrMailDelivery) {
		t.Fatalf("error = %v, want ErrMailDelivery", err)
	}
	if ticket == nil {
		t.Fatal("ticket dropped on mail failure")
	}

	var count int64
	if err := conn.Model(&models.Ticket{}).Count(&count).Error; err != nil {
		t.Fatalf("count tickets: %v", err)
	}
	if count != 1 {
		t.Fatalf("ticket rows = %d, want 1 despite mail failure", count)
	}
}

func TestSetStatusSameStatusIsSilentNoOp(t *testing.T) {
	svc, conn, _ := newTicketService(t)
	ticket := mustCreateTicket(t, svc, "alice@example.com")

	updated, err := svc.SetStatus(context.Background(), ticket.ID, models.StatusOpen, "admin@chmoney.co.uk")
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if updated.Status != models.StatusOpen {
		t.Fatalf("status = %q", updated.Status)
	}

	var count int64
	if err := conn.Model(&models.TicketStatusLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if count != 0 {
		t.Fatalf("no-op transition wrote %d audit rows", count)
	}
}

func TestSetStatusTransitionIsAudited(t *testing.T) {
	svc, conn, _ := newTicketService(t)
	ticket := mustCreateTicket(t, svc, "alice@example.com")

	if _, err := svc.SetStatus(context.Background(), ticket.ID, models.StatusInProgress, "admin@chmoney.co.uk"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	var entry models.TicketStatusLog
	if err := conn.First(&entry).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if entry.TicketID != ticket.ID {
		t.Fatalf("log ticket id = %d", entry.TicketID)
	}
	if entry.FromStatus == nil || *entry.FromStatus != models.StatusOpen {
		t.Fatalf("from status = %v, want OPEN", entry.FromStatus)
	}
	if entry.ToStatus != models.StatusInProgress {
		t.Fatalf("to status = %q", entry.ToStatus)
	}
	if entry.Actor != "admin@chmoney.co.uk" {
		t.Fatalf("actor = %q", entry.Actor)
	}
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ticket := mustCreateTicket(t, svc, "alice@example.com")

	if _, err := svc.SetStatus(context.Background(), ticket.ID, "ARCHIVED", "admin@chmoney.co.uk"); !errors.Is(err, errs.ErrInvalidStatus) {
		t.Fatalf("error = %v, want ErrInvalidStatus", err)
	}
	if _, err := svc.SetStatus(context.Background(), 9999, models.StatusClosed, "admin@chmoney.co.uk"); !errors.Is(err, errs.ErrTicketNotFound) {
		t.Fatalf("error = %v, want ErrTicketNotFound", err)
	}
}

func TestSetStatusClosedNotifiesBestEffort(t *testing.T) {
	svc, conn, sender := newTicketService(t)
	ticket := mustCreateTicket(t, svc, "alice@example.com")
	sender.fail = errs.ErrMailDelivery

	// The closure email failing must not undo or fail the transition.
	updated, err := svc.SetStatus(context.Background(), ticket.ID, models.StatusClosed, "admin@chmoney.co.uk")
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if updated.Status != models.StatusClosed {
		t.Fatalf("status = %q, want CLOSED", updated.Status)
	}

	var reloaded models.Ticket
	if err := conn.First(&reloaded, ticket.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != models.StatusClosed {
		t.Fatalf("persisted status = %q, want CLOSED", reloaded.Status)
	}
}

func TestSetNoteAuditsNonEmptyOnly(t *testing.T) {
	svc, conn, _ := newTicketService(t)
	ticket := mustCreateTicket(t, svc, "alice@example.com")
	ctx := context.Background()

	updated, err := svc.SetNote(ctx, ticket.ID, "  We are on it.  ", "admin@chmoney.co.uk")
	if err != nil {
		t.Fatalf("SetNote: %v", err)
	}
	if updated.Note != "We are on it." {
		t.Fatalf("note = %q, want trimmed", updated.Note)
	}

	var notes []models.TicketNote
	if err := conn.Find(&notes).Error; err != nil {
		t.Fatalf("load notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("note audit rows = %d, want 1", len(notes))
	}
	if notes[0].Author != models.NoteAuthorAdmin || notes[0].AuthorRef != "admin@chmoney.co.uk" {
		t.Fatalf("note author = %q/%q", notes[0].Author, notes[0].AuthorRef)
	}
	if notes[0].Body != "We are on it." {
		t.Fatalf("note body = %q", notes[0].Body)
	}

	// Clearing the note updates the ticket but leaves no audit entry.
	cleared, err := svc.SetNote(ctx, ticket.ID, "   ", "admin@chmoney.co.uk")
	if err != nil {
		t.Fatalf("clear note: %v", err)
	}
	if cleared.Note != "" {
		t.Fatalf("cleared note = %q", cleared.Note)
	}
	if err := conn.Find(&notes).Error; err != nil {
		t.Fatalf("reload notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("clearing the note wrote an audit row: %d rows", len(notes))
	}
}

func TestHistoryMergesChronologically(t *testing.T) {
	svc, conn, _ := newTicketService(t)
	ticket := mustCreateTicket(t, svc, "alice@example.com")

	base := time.Now().UTC().Add(-time.Hour)
	open := models.StatusOpen
	rows := []any{
		&models.TicketNote{TicketID: ticket.ID, Author: models.NoteAuthorAdmin, AuthorRef: "admin@chmoney.co.uk", Body: "second", CreatedAt: base.Add(2 * time.Minute)},
		&models.TicketStatusLog{TicketID: ticket.ID, FromStatus: &open, ToStatus: models.StatusInProgress, Actor: "admin@chmoney.co.uk", CreatedAt: base.Add(time.Minute)},
		&models.TicketNote{TicketID: ticket.ID, Author: models.NoteAuthorAdmin, AuthorRef: "admin@chmoney.co.uk", Body: "third", CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, row := range rows {
		if err := conn.Create(row).Error; err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}

	history, err := svc.History(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history entries = %d, want 3", len(history))
	}
	if history[0].Type != HistoryKindStatus {
		t.Fatalf("first entry type = %q, want STATUS", history[0].Type)
	}
	if history[0].Body != "Status changed to IN PROGRESS (from OPEN)" {
		t.Fatalf("status body = %q", history[0].Body)
	}
	if history[1].Body != "second" || history[2].Body != "third" {
		t.Fatalf("note order = %q, %q", history[1].Body, history[2].Body)
	}
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAt.Before(history[i-1].CreatedAt) {
			t.Fatalf("history out of order at %d", i)
		}
	}

	if _, err := svc.History(context.Background(), 9999); !errors.Is(err, errs.ErrTicketNotFound) {
		t.Fatalf("missing ticket error = %v, want ErrTicketNotFound", err)
	}
}

func TestRequestReopen(t *testing.T) {
	svc, conn, sender := newTicketService(t)
	ticket := mustCreateTicket(t, svc, "alice@example.com")
	ctx := context.Background()

	if err := svc.RequestReopen(ctx, ticket.ID, "alice@example.com", "still broken"); !errors.Is(err, errs.ErrTicketActive) {
		t.Fatalf("active ticket error = %v, want ErrTicketActive", err)
	}

	if _, err := svc.SetStatus(ctx, ticket.ID, models.StatusClosed, "admin@chmoney.co.uk"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.SetNote(ctx, ticket.ID, "Fixed in release 1.2", "admin@chmoney.co.uk"); err != nil {
		t.Fatalf("note: %v", err)
	}

	// Ownership failures must be indistinguishable from a missing ticket.
	if err := svc.RequestReopen(ctx, ticket.ID, "bob@x.com", "still broken"); !errors.Is(err, errs.ErrTicketNotFound) {
		t.Fatalf("foreign owner error = %v, want ErrTicketNotFound", err)
	}
	if err := svc.RequestReopen(ctx, ticket.ID, "alice@example.com", "   "); !errors.Is(err, errs.ErrEmptyReason) {
		t.Fatalf("empty reason error = %v, want ErrEmptyReason", err)
	}

	sentBefore := sender.count()
	if err := svc.RequestReopen(ctx, ticket.ID, "Alice@Example.com", "It broke again after the update"); err != nil {
		t.Fatalf("RequestReopen: %v", err)
	}
	if sender.count() != sentBefore+1 {
		t.Fatal("no reopen notification sent")
	}

	var reloaded models.Ticket
	if err := conn.First(&reloaded, ticket.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != models.StatusOpen {
		t.Fatalf("status = %q, want OPEN", reloaded.Status)
	}
	want := "Fixed in release 1.2\n\nReopen requested by customer: It broke again after the update"
	if reloaded.Note != want {
		t.Fatalf("note = %q, want %q", reloaded.Note, want)
	}

	var logs []models.TicketStatusLog
	if err := conn.Where("ticket_id = ? AND to_status = ?", ticket.ID, models.StatusOpen).Find(&logs).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("reopen audit rows = %d, want 1", len(logs))
	}
	if logs[0].Actor != "alice@example.com" {
		t.Fatalf("reopen actor = %q, want the requesting customer", logs[0].Actor)
	}
	if logs[0].FromStatus == nil || *logs[0].FromStatus != models.StatusClosed {
		t.Fatalf("reopen from status = %v, want CLOSED", logs[0].FromStatus)
	}
}

func TestSubmitRating(t *testing.T) {
	svc, conn, _ := newTicketService(t)
	ticket := mustCreateTicket(t, svc, "alice@example.com")
	ctx := context.Background()

	if _, err := svc.SubmitRating(ctx, ticket.ID, "alice@example.com", 5, nil); !errors.Is(err, errs.ErrTicketNotClosed) {
		t.Fatalf("open ticket error = %v, want ErrTicketNotClosed", err)
	}

	if _, err := svc.SetStatus(ctx, ticket.ID, models.StatusClosed, "admin@chmoney.co.uk"); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := svc.SubmitRating(ctx, ticket.ID, "bob@x.com", 5, nil); !errors.Is(err, errs.ErrTicketNotFound) {
		t.Fatalf("foreign owner error = %v, want ErrTicketNotFound", err)
	}
	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.SubmitRating(ctx, ticket.ID, "alice@example.com", rating, nil); !errors.Is(err, errs.ErrInvalidRating) {
			t.Fatalf("rating %d error = %v, want ErrInvalidRating", rating, err)
		}
	}

	feedback := "  Great support.  "
	rated, err := svc.SubmitRating(ctx, ticket.ID, "alice@example.com", 5, &feedback)
	if err != nil {
		t.Fatalf("SubmitRating: %v", err)
	}
	if rated.Rating == nil || *rated.Rating != 5 {
		t.Fatalf("rating = %v, want 5", rated.Rating)
	}
	if rated.Feedback == nil || *rated.Feedback != "Great support." {
		t.Fatalf("feedback = %v, want trimmed", rated.Feedback)
	}

	// Re-rating overwrites; there is no one-shot rule for ratings.
	if _, err := svc.SubmitRating(ctx, ticket.ID, "alice@example.com", 2, nil); err != nil {
		t.Fatalf("re-rate: %v", err)
	}
	var reloaded models.Ticket
	if err := conn.First(&reloaded, ticket.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Rating == nil || *reloaded.Rating != 2 {
		t.Fatalf("rating after re-rate = %v, want 2", reloaded.Rating)
	}
	if reloaded.Feedback == nil || *reloaded.Feedback != "Great support." {
		t.Fatalf("feedback changed by nil-feedback re-rate: %v", reloaded.Feedback)
	}
}

func TestListForCustomerMatchesCaseInsensitively(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ctx := context.Background()
	mustCreateTicket(t, svc, "alice@example.com")
	mustCreateTicket(t, svc, "alice@example.com")
	mustCreateTicket(t, svc, "carol@example.com")

	tickets, err := svc.ListForCustomer(ctx, "ALICE@example.COM")
	if err != nil {
		t.Fatalf("ListForCustomer: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("tickets = %d, want 2", len(tickets))
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all tickets = %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.Before(all[i-1].CreatedAt) {
			t.Fatalf("ListAll out of order at %d", i)
		}
	}
}

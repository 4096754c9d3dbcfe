package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/wednesdayfs/helpdesk/internal/config"
	"github.com/wednesdayfs/helpdesk/internal/errs"
	"github.com/wednesdayfs/helpdesk/internal/models"
)

func TestNewTicketMessageAttachments(t *testing.T) {
	png := base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
	screenshots := []string{
		"data:image/png;base64," + png,
		"not a data url",
		"data:image/jpeg;base64,%%%not-base64%%%",
	}
	ticket := &models.Ticket{
		Name:        "Alice",
		Email:       "alice@example.com",
		Subject:     "Broken checkout",
		Description: "line one\nline two",
		Website:     "shop.example.com",
		Urgency:     4,
	}

	msg := NewTicketMessage(ticket, screenshots, []string{"support@chmoney.co.uk"})
	if msg.Subject != "[shop.example.com] New Ticket: Broken checkout" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1 (unparseable entries skipped)", len(msg.Attachments))
	}
	if msg.Attachments[0].Filename != "screenshot-1.png" {
		t.Fatalf("attachment name = %q", msg.Attachments[0].Filename)
	}
	if string(msg.Attachments[0].Content) != "fake png bytes" {
		t.Fatalf("attachment content = %q", msg.Attachments[0].Content)
	}
	if !strings.Contains(msg.HTML, "line one<br>line two") {
		t.Fatalf("html body lacks nl2br description: %q", msg.HTML)
	}
}

func TestReopenMessageContent(t *testing.T) {
	ticket := &models.Ticket{
		ID:          7,
		Name:        "Alice",
		Email:       "alice@example.com",
		Subject:     "Broken checkout",
		Description: "It errors out.",
		Website:     "shop.example.com",
		Status:      models.StatusOpen,
	}
	msg := ReopenMessage(ticket, models.StatusClosed, "still broken", []string{"support@chmoney.co.uk"})
	if msg.Subject != "Reopen request for ticket 7" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "still broken") {
		t.Fatal("reason missing from body")
	}
	if !strings.Contains(msg.Text, "Status: OPEN (was CLOSED)") {
		t.Fatalf("status line missing: %q", msg.Text)
	}
}

func TestSMTPSenderUnconfigured(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com"}) // no credentials
	err := sender.Send(context.Background(), Message{To: []string{"a@b.com"}, Subject: "x"})
	if !errors.Is(err, errs.ErrMailNotConfigured) {
		t.Fatalf("error = %v, want ErrMailNotConfigured", err)
	}
}

package mailer

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/wednesdayfs/helpdesk/internal/models"
)

const (
	resetExpiryMinutes = 60
	codeExpiryMinutes  = 10
)

// NewTicketMessage notifies the support mailbox about a fresh submission.
// Screenshot data-URLs from the form are decoded into attachments; entries
// that do not parse are skipped.
func NewTicketMessage(t *models.Ticket, screenshots []string, recipients []string) Message {
	text := fmt.Sprintf(
		"New Ticket Submitted\n\nName: %s\nEmail: %s\nWebsite: %s\nSubject: %s\nUrgency: %d\n\nDescription:\n%s\n",
		t.Name, t.Email, t.Website, t.Subject, t.Urgency, t.Description,
	)
	html := fmt.Sprintf(
		"<h1>New Ticket Submitted</h1>"+
			"<p><strong>Name:</strong> %s</p>"+
			"<p><strong>Email:</strong> %s</p>"+
			"<p><strong>Website:</strong> %s</p>"+
			"<p><strong>Subject:</strong> %s</p>"+
			"<p><strong>Urgency:</strong> %d</p>"+
			"<br/><p><strong>Description:</strong></p><p>%s</p>",
		t.Name, t.Email, t.Website, t.Subject, t.Urgency, nl2br(t.Description),
	)
	msg := Message{
		To:      recipients,
		Subject: fmt.Sprintf("[%s] New Ticket: %s", t.Website, t.Subject),
		Text:    text,
		HTML:    html,
	}
	for i, dataURL := range screenshots {
		if att, ok := decodeDataURL(dataURL, i); ok {
			msg.Attachments = append(msg.Attachments, att)
		}
	}
	return msg
}

// LoginCodeMessage carries a customer's one-time portal code.
func LoginCodeMessage(email, code string) Message {
	return Message{
		To:      []string{email},
		Subject: "Your ticket portal code",
		Text: fmt.Sprintf(
			"Use this code to access your ticket updates: %s\nThis code expires in %d minutes.",
			code, codeExpiryMinutes,
		),
		HTML: fmt.Sprintf(
			"<p>Use this code to access your ticket updates:</p>"+
				"<p style=\"font-size:20px;font-weight:bold;\">%s</p>"+
				"<p>This code expires in %d minutes.</p>",
			code, codeExpiryMinutes,
		),
	}
}

// ResetLinkMessage carries an admin password reset link.
func ResetLinkMessage(email, resetURL string) Message {
	return Message{
		To:      []string{email},
		Subject: "Reset your admin password",
		Text: fmt.Sprintf(
			"Use this link to reset your password: %s\nThis link expires in %d minutes.",
			resetURL, resetExpiryMinutes,
		),
		HTML: fmt.Sprintf(
			"<p>Use this link to reset your password (expires in %d minutes):</p><p><a href=\"%s\">%s</a></p>",
			resetExpiryMinutes, resetURL, resetURL,
		),
	}
}

// ClosedMessage tells the ticket owner their ticket was closed and points them
// at the portal for rating.
func ClosedMessage(t *models.Ticket) Message {
	return Message{
		To:      []string{t.Email},
		Subject: fmt.Sprintf("Your ticket %q has been closed", t.Subject),
		Text: fmt.Sprintf(
			"Hi %s,\n\nWe have closed your ticket %q. If you have feedback, please rate the ticket in the customer portal.\n\nThank you,\nSupport",
			t.Name, t.Subject,
		),
	}
}

// ReopenMessage notifies the support team about a customer reopen request,
// including the stated reason and the ticket's original description.
func ReopenMessage(t *models.Ticket, previousStatus, reason string, recipients []string) Message {
	lines := []string{
		fmt.Sprintf("Customer %s (%s) requested to reopen ticket %d.", t.Name, t.Email, t.ID),
		fmt.Sprintf("Status: %s (was %s)", t.Status, previousStatus),
		fmt.Sprintf("Website: %s", t.Website),
		fmt.Sprintf("Subject: %s", t.Subject),
		fmt.Sprintf("Created: %s", t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")),
		"",
		"Reason to reopen:",
		reason,
		"",
		"Original description:",
		t.Description,
	}
	html := fmt.Sprintf(
		"<h2>Reopen request for ticket %d</h2>"+
			"<p><strong>Customer:</strong> %s (%s)</p>"+
			"<p><strong>Status:</strong> %s (was %s)</p>"+
			"<p><strong>Website:</strong> %s</p>"+
			"<p><strong>Subject:</strong> %s</p>"+
			"<h3>Reason to reopen</h3><p>%s</p>"+
			"<h3>Original description</h3><p>%s</p>",
		t.ID, t.Name, t.Email, t.Status, previousStatus, t.Website, t.Subject,
		nl2br(reason), nl2br(t.Description),
	)
	return Message{
		To:      recipients,
		Subject: fmt.Sprintf("Reopen request for ticket %d", t.ID),
		Text:    strings.Join(lines, "\n"),
		HTML:    html,
	}
}

var dataURLPattern = regexp.MustCompile(`^data:([A-Za-z0-9.+-]+/[A-Za-z0-9.+-]+);base64,(.+)$`)

// decodeDataURL turns a "data:<mime>;base64,<payload>" string into an
// attachment named after its position and mime subtype.
func decodeDataURL(dataURL string, index int) (Attachment, bool) {
	matches := dataURLPattern.FindStringSubmatch(dataURL)
	if len(matches) != 3 {
		return Attachment{}, false
	}
	content, errDecode := base64.StdEncoding.DecodeString(matches[2])
	if errDecode != nil {
		return Attachment{}, false
	}
	ext := matches[1]
	if idx := strings.Index(ext, "/"); idx >= 0 {
		ext = ext[idx+1:]
	}
	return Attachment{
		Filename: fmt.Sprintf("screenshot-%d.%s", index+1, ext),
		Content:  content,
	}, true
}

func nl2br(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}

package mailer

import (
	"bytes"
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"github.com/wednesdayfs/helpdesk/internal/config"
	"github.com/wednesdayfs/helpdesk/internal/errs"
)

// DefaultFrom is used when no from-address is configured.
const DefaultFrom = "IT Support <support@chmoney.co.uk>"

// Attachment is a file attached to an outbound message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is a fully rendered outbound email.
type Message struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Sender delivers rendered messages. Delivery is synchronous, best-effort and
// never retried; callers decide whether a failure is fatal to their operation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends messages through a configured SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender constructs an SMTPSender from relay settings.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one message. A missing relay configuration returns
// errs.ErrMailNotConfigured; any transport failure wraps errs.ErrMailDelivery.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Configured() {
		return errs.ErrMailNotConfigured
	}

	m := gomail.NewMsg()
	if err := m.From(s.from()); err != nil {
		return fmt.Errorf("%w: from address: %v", errs.ErrMailDelivery, err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("%w: recipients: %v", errs.ErrMailDelivery, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	for _, att := range msg.Attachments {
		if err := m.AttachReader(att.Filename, bytes.NewReader(att.Content)); err != nil {
			return fmt.Errorf("%w: attach %s: %v", errs.ErrMailDelivery, att.Filename, err)
		}
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
	}
	if s.cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	client, errClient := gomail.NewClient(s.cfg.Host, opts...)
	if errClient != nil {
		return fmt.Errorf("%w: client: %v", errs.ErrMailDelivery, errClient)
	}
	if errSend := client.DialAndSendWithContext(ctx, m); errSend != nil {
		return fmt.Errorf("%w: %v", errs.ErrMailDelivery, errSend)
	}
	return nil
}

func (s *SMTPSender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return DefaultFrom
}

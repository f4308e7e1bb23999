package notify

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// Attachment is a file carried by an Email.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Email is a composed plain-text message with optional attachments.
type Email struct {
	From        string
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// MailSession is an authenticated connection to a mail server.
type MailSession interface {
	Send(ctx context.Context, email *Email) error
	Close() error
}

// MailTransport opens authenticated sessions.
type MailTransport interface {
	Open(ctx context.Context) (MailSession, error)
}

// SMTPConfig configures SMTPTransport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPTransport submits mail over SMTP with opportunistic STARTTLS and PLAIN auth.
type SMTPTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport creates a new SMTP transport.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Open connects, upgrades to TLS when offered and authenticates.
func (t *SMTPTransport) Open(ctx context.Context) (MailSession, error) {
	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if t.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
		)
	}
	if t.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(t.cfg.Timeout))
	}

	client, err := mail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialWithContext(ctx); err != nil {
		return nil, fmt.Errorf("smtp dial: %w", err)
	}
	return &smtpSession{client: client}, nil
}

type smtpSession struct {
	client *mail.Client
}

func (s *smtpSession) Send(ctx context.Context, email *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := buildMessage(email)
	if err != nil {
		return err
	}
	if err := s.client.Send(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *smtpSession) Close() error {
	return s.client.Close()
}

// buildMessage converts an Email to MIME. Attachments are base64 encoded.
func buildMessage(email *Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)

	for _, a := range email.Attachments {
		if err := msg.AttachReader(a.Name, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(a.ContentType)),
			mail.WithFileEncoding(mail.EncodingB64),
		); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Name, err)
		}
	}
	return msg, nil
}

package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// Attachment is an in-memory file sent with a message.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is a single outgoing HTML email.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Validate checks the message has a well formed recipient, a subject and a body.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("empty to")
	}
	if strings.TrimSpace(m.Subject) == "" || strings.TrimSpace(m.HTMLBody) == "" {
		return errors.New("empty subject/body")
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("invalid to email: %w", err)
	}
	return nil
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var (
	// ErrNotConfigured is returned when credentials or host are missing.
	ErrNotConfigured = errors.New("smtp credentials missing")
	// ErrAuth marks a server rejection of the configured credentials.
	ErrAuth = errors.New("mail server rejected credentials")
	// ErrUnreachable marks a failure to resolve or connect to the server.
	ErrUnreachable = errors.New("mail server not reachable")
)

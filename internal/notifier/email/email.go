// Package email implements an SMTP-based email notifier
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/quantedge/quantedge/internal/notifier"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email implements the Notifier interface for SMTP email
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	send     sendFunc
}

// New creates a new Email notifier
func New(cfg Config) *Email {
	return &Email{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		send:     smtp.SendMail,
	}
}

func (e *Email) Name() string { return "email" }

// Send mails msg to msg.To. net/smtp has no context support, so ctx is only
// checked before dialing.
func (e *Email) Send(ctx context.Context, msg notifier.Message) error {
	if e.host == "" || e.from == "" {
		return fmt.Errorf("email: host and from are required")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("email: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	if err := e.send(addr, auth, e.from, msg.To, e.buildMessage(msg)); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

func (e *Email) buildMessage(msg notifier.Message) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", e.from)
	fmt.Fprintf(&sb, "To: %s\r\n", strings.Join(msg.To, ","))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&sb, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&sb, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(msg.Body)
	return []byte(sb.String())
}

// sanitizeHeader keeps user text from injecting extra headers.
func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

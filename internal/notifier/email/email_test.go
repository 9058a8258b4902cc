package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/quantedge/quantedge/internal/notifier"
)

type captured struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestEmail(fail error) (*Email, *captured) {
	c := &captured{}
	e := New(Config{Host: "smtp.example.com", Port: 587, From: "noreply@quantedge.io"})
	e.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.from, c.to, c.msg = addr, from, to, string(msg)
		return fail
	}
	return e, c
}

func TestEmail_ImplementsNotifier(t *testing.T) {
	var _ notifier.Notifier = (*Email)(nil)
}

func TestEmail_Name(t *testing.T) {
	e := New(Config{Host: "smtp.example.com", Port: 587, From: "from@example.com"})
	if e.Name() != "email" {
		t.Errorf("expected 'email', got %s", e.Name())
	}
}

func TestEmail_RequiredFields(t *testing.T) {
	e := New(Config{})
	err := e.Send(context.Background(), notifier.Message{To: []string{"a@example.com"}})
	if err == nil {
		t.Error("expected error for missing host and from")
	}
}

func TestEmail_NoRecipients(t *testing.T) {
	e, _ := newTestEmail(nil)
	if err := e.Send(context.Background(), notifier.Message{Subject: "s"}); err == nil {
		t.Error("expected error for empty recipient list")
	}
}

func TestEmail_Send(t *testing.T) {
	e, c := newTestEmail(nil)

	err := e.Send(context.Background(), notifier.Message{
		To:      []string{"jane@example.com"},
		ReplyTo: "admin@quantedge.io",
		Subject: "Thanks for contacting QuantEdge",
		Body:    "Hi Jane",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.addr != "smtp.example.com:587" {
		t.Errorf("expected addr smtp.example.com:587, got %s", c.addr)
	}
	if len(c.to) != 1 || c.to[0] != "jane@example.com" {
		t.Errorf("unexpected recipients %v", c.to)
	}
	for _, want := range []string{
		"From: noreply@quantedge.io\r\n",
		"To: jane@example.com\r\n",
		"Reply-To: admin@quantedge.io\r\n",
		"Subject: Thanks for contacting QuantEdge\r\n",
		"\r\n\r\nHi Jane",
	} {
		if !strings.Contains(c.msg, want) {
			t.Errorf("message missing %q:\n%s", want, c.msg)
		}
	}
}

func TestEmail_SubjectCannotInjectHeaders(t *testing.T) {
	e, c := newTestEmail(nil)

	e.Send(context.Background(), notifier.Message{
		To:      []string{"jane@example.com"},
		Subject: "hi\r\nBcc: victim@example.com",
	})

	if strings.Contains(c.msg, "\r\nBcc:") {
		t.Errorf("subject injected a header:\n%s", c.msg)
	}
}

func TestEmail_SendFailure(t *testing.T) {
	e, _ := newTestEmail(errors.New("connection refused"))

	err := e.Send(context.Background(), notifier.Message{To: []string{"a@example.com"}})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected wrapped send error, got %v", err)
	}
}

func TestEmail_CanceledContext(t *testing.T) {
	e, c := newTestEmail(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := e.Send(ctx, notifier.Message{To: []string{"a@example.com"}}); err == nil {
		t.Error("expected error for canceled context")
	}
	if c.addr != "" {
		t.Error("should not dial after cancellation")
	}
}

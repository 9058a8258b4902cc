// Package contact delivers contact form submissions.
package contact

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/quantedge/quantedge/internal/core"
	"github.com/quantedge/quantedge/internal/notifier"
	"go.uber.org/zap"
)

// Delivery outcomes reported to the Recorder.
const (
	StatusSent     = "sent"
	StatusInvalid  = "invalid"
	StatusFailed   = "failed"
	confirmChannel = "email"
)

// Submission is one contact form post.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Recorder receives delivery outcomes.
type Recorder interface {
	RecordContact(status string)
}

// Service sends the admin notice and the submitter's confirmation.
type Service struct {
	notifiers  *notifier.Registry
	adminEmail string
	logger     *zap.Logger
	recorder   Recorder
}

// NewService creates a contact service. logger and recorder may be nil.
func NewService(notifiers *notifier.Registry, adminEmail string, logger *zap.Logger, recorder Recorder) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		notifiers:  notifiers,
		adminEmail: adminEmail,
		logger:     logger,
		recorder:   recorder,
	}
}

// Validate trims the submission and checks that every field is present.
func (s Submission) Validate() (Submission, error) {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Message = strings.TrimSpace(s.Message)

	if s.Name == "" || s.Email == "" || s.Subject == "" || s.Message == "" {
		return s, core.WrapError(core.ErrBadRequest, fmt.Errorf("All fields required"))
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return s, core.WrapError(core.ErrBadRequest, fmt.Errorf("invalid email address %q", s.Email))
	}
	return s, nil
}

// Submit delivers sub to every registered notifier and mails a confirmation
// to the submitter. It fails only when no notifier accepted the admin notice.
func (s *Service) Submit(ctx context.Context, sub Submission) error {
	sub, err := sub.Validate()
	if err != nil {
		s.record(StatusInvalid)
		return err
	}

	if s.notifiers == nil || s.notifiers.Len() == 0 {
		s.record(StatusFailed)
		return core.WrapError(core.ErrNotifyFailed, fmt.Errorf("no delivery channel configured"))
	}

	admin := notifier.Message{
		ReplyTo: sub.Email,
		Subject: fmt.Sprintf("QuantEdge Contact: %s", sub.Subject),
		Body: fmt.Sprintf("New message from %s <%s>:\n\nSubject: %s\n\nMessage:\n%s",
			sub.Name, sub.Email, sub.Subject, sub.Message),
	}
	if s.adminEmail != "" {
		admin.To = []string{s.adminEmail}
	}

	errs := s.notifiers.NotifyAll(ctx, admin)
	for name, err := range errs {
		s.logger.Warn("contact notice not delivered", zap.String("notifier", name), zap.Error(err))
	}
	if len(errs) == s.notifiers.Len() {
		s.record(StatusFailed)
		return core.WrapError(core.ErrNotifyFailed, fmt.Errorf("all %d notifiers failed", len(errs)))
	}

	s.confirm(ctx, sub)
	s.record(StatusSent)
	s.logger.Info("contact message delivered", zap.String("subject", sub.Subject))
	return nil
}

// confirm is best effort: the admin already has the message.
func (s *Service) confirm(ctx context.Context, sub Submission) {
	mailer, err := s.notifiers.Get(confirmChannel)
	if err != nil {
		return
	}
	msg := notifier.Message{
		To:      []string{sub.Email},
		Subject: "Thanks for contacting QuantEdge",
		Body: fmt.Sprintf("Hi %s,\n\nThanks for contacting QuantEdge! We've received your message:\n\n%s\n\nWe'll get back to you shortly.\n\nQuantEdge Team",
			sub.Name, sub.Message),
	}
	if err := mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("contact confirmation not delivered", zap.Error(err))
	}
}

func (s *Service) record(status string) {
	if s.recorder != nil {
		s.recorder.RecordContact(status)
	}
}

package notifier

import "context"

// Message is one outbound notification.
type Message struct {
	To      []string `json:"to,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Notifier delivers messages over one channel.
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Send delivers a single message
	Send(ctx context.Context, msg Message) error
}

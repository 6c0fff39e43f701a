package mail

import "context"

// Message is one outbound email with both HTML and plain-text bodies.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer defines the interface for sending email. The pipeline only
// depends on a success/failure result per send; which transport is wired
// in is a configuration concern.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

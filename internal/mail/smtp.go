package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer sends email through an SMTP relay. Credentials come from
// configuration; with an empty username the client connects without
// authentication (local relay).
type SMTPMailer struct {
	host        string
	port        int
	username    string
	password    string
	fromAddress string
	logger      *slog.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(host string, port int, username, password, fromAddress string, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:        host,
		port:        port,
		username:    username,
		password:    password,
		fromAddress: fromAddress,
		logger:      logger,
	}
}

var _ Mailer = (*SMTPMailer)(nil)

// Send delivers msg over SMTP. Single attempt, no retry.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	message := gomail.NewMsg()
	if err := message.From(m.fromAddress); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := message.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	message.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)

	opts := []gomail.Option{gomail.WithPort(m.port)}
	if m.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.username),
			gomail.WithPassword(m.password),
		)
	}

	client, err := gomail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		m.logger.Error("failed to send email via SMTP",
			slog.String("subject", msg.Subject),
			slog.String("host", m.host),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("email sent",
		slog.String("subject", msg.Subject),
		slog.String("host", m.host))

	return nil
}

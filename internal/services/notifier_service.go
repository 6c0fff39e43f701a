package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hollowayclinic/intake/internal/mail"
	"github.com/hollowayclinic/intake/internal/models"
	pkglogger "github.com/hollowayclinic/intake/pkg/logger"
)

// NotifierService renders and dispatches the two submission emails: an
// alert to the clinic addresses and an auto-reply to the submitter. Both
// are best effort, single attempt; a failed send is logged and never
// retried. Field values arrive already entity-encoded, so interpolating
// them into the HTML bodies is safe.
type NotifierService struct {
	mailer           mail.Mailer
	clinicRecipients []string
	clinicName       string
	logger           *slog.Logger
}

// NewNotifierService creates a new NotifierService
func NewNotifierService(mailer mail.Mailer, clinicRecipients []string, clinicName string, logger *slog.Logger) *NotifierService {
	return &NotifierService{
		mailer:           mailer,
		clinicRecipients: clinicRecipients,
		clinicName:       clinicName,
		logger:           logger,
	}
}

// Notify sends both emails and reports per-group delivery results. It
// never returns an error: the pipeline only cares about the booleans.
func (s *NotifierService) Notify(ctx context.Context, sub *models.Submission) (clinicSent, replySent bool) {
	if err := s.mailer.Send(ctx, s.clinicAlert(sub)); err != nil {
		s.logger.Error("clinic alert delivery failed",
			slog.String("submission_id", sub.ID.String()),
			slog.Any("error", err))
	} else {
		clinicSent = true
	}

	if err := s.mailer.Send(ctx, s.autoReply(sub)); err != nil {
		s.logger.Error("auto-reply delivery failed",
			slog.String("submission_id", sub.ID.String()),
			slog.String("email", pkglogger.SanitizedEmail(sub.Email)),
			slog.Any("error", err))
	} else {
		replySent = true
	}

	return clinicSent, replySent
}

// clinicAlert summarizes the inquiry for the clinic inboxes.
func (s *NotifierService) clinicAlert(sub *models.Submission) mail.Message {
	phone := sub.Phone
	if phone == "" {
		phone = "not provided"
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .field { margin: 8px 0; }
        .label { font-weight: bold; }
        .message { background-color: #f8f9fa; padding: 12px; border-left: 4px solid #0066cc; margin: 12px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>New Contact Inquiry</h1>
        </div>
        <div class="field"><span class="label">Name:</span> %s</div>
        <div class="field"><span class="label">Email:</span> %s</div>
        <div class="field"><span class="label">Phone:</span> %s</div>
        <div class="field"><span class="label">Subject:</span> %s</div>
        <div class="message">%s</div>
        <div class="footer">
            <p>Received %s from %s (%s).</p>
        </div>
    </div>
</body>
</html>
`, sub.Name, sub.Email, phone, sub.Subject, sub.Message,
		sub.CreatedAt.Format(time.RFC1123), sub.IPAddress, sub.UserAgent)

	textBody := fmt.Sprintf(`New Contact Inquiry

Name:    %s
Email:   %s
Phone:   %s
Subject: %s

%s

Received %s from %s (%s).
`, sub.Name, sub.Email, phone, sub.Subject, sub.Message,
		sub.CreatedAt.Format(time.RFC1123), sub.IPAddress, sub.UserAgent)

	return mail.Message{
		To:       s.clinicRecipients,
		Subject:  fmt.Sprintf("New contact inquiry: %s", sub.Subject),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}

// autoReply acknowledges the submitter and sets response expectations.
func (s *NotifierService) autoReply(sub *models.Submission) mail.Message {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .content { padding: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>We Received Your Message</h1>
        </div>
        <div class="content">
            <p>Dear %s,</p>
            <p>Thank you for contacting %s. Your message regarding "%s" has been received, and a member of our team will respond within 24 hours.</p>
            <p>If your matter is urgent, please call the office directly during business hours.</p>
            <p><strong>If you are experiencing a medical emergency, call 911 or go to your nearest emergency room.</strong></p>
        </div>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, sub.Name, s.clinicName, sub.Subject)

	textBody := fmt.Sprintf(`Dear %s,

Thank you for contacting %s. Your message regarding "%s" has been received, and a member of our team will respond within 24 hours.

If your matter is urgent, please call the office directly during business hours.

If you are experiencing a medical emergency, call 911 or go to your nearest emergency room.

This is an automated message. Please do not reply to this email.
`, sub.Name, s.clinicName, sub.Subject)

	return mail.Message{
		To:       []string{sub.Email},
		Subject:  fmt.Sprintf("We received your message - %s", s.clinicName),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}

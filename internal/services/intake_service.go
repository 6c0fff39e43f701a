package services

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hollowayclinic/intake/internal/models"
	"github.com/hollowayclinic/intake/internal/sanitize"
	pkglogger "github.com/hollowayclinic/intake/pkg/logger"
)

// User-facing pipeline messages. The front-end renders these verbatim.
const (
	MsgSuccess       = "Thank you for reaching out. We have received your message and will respond within 24 hours."
	MsgMissingPrefix = "Missing required fields: "
	MsgInvalidEmail  = "Please provide a valid email address."
	MsgInvalidPhone  = "Please provide a valid phone number."
	MsgTotalFailure  = "We were unable to process your message right now. Please call the office directly."
	MsgRateLimited   = "Too many messages from your address. Please try again later."
)

// RawSubmission is the unprocessed request payload plus client metadata.
// Website and Honeypot are the hidden trap fields; a human using the real
// form never fills them.
type RawSubmission struct {
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	Website   string
	Honeypot  string
	IPAddress string
	UserAgent string
}

// Outcome is the terminal result of one pipeline invocation.
type Outcome struct {
	StatusCode int
	Success    bool
	Message    string
}

// SubmissionStore defines the primary persistence interface
type SubmissionStore interface {
	Insert(ctx context.Context, sub *models.Submission) error
}

// Notifier defines the email dispatch interface
type Notifier interface {
	Notify(ctx context.Context, sub *models.Submission) (clinicSent, replySent bool)
}

// Appender defines the append-only journal interface
type Appender interface {
	Append(ctx context.Context, v any) error
}

// IntakeService runs the contact submission pipeline: honeypot check,
// sanitize/validate, persist with file fallback, notify, audit. Control
// flows strictly forward; each stage may short-circuit with a terminal
// outcome.
type IntakeService struct {
	store       SubmissionStore
	notifier    Notifier
	fallbackLog Appender
	spamLog     Appender
	auditLog    Appender
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewIntakeService creates a new IntakeService
func NewIntakeService(
	store SubmissionStore,
	notifier Notifier,
	fallbackLog, spamLog, auditLog Appender,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *IntakeService {
	return &IntakeService{
		store:       store,
		notifier:    notifier,
		fallbackLog: fallbackLog,
		spamLog:     spamLog,
		auditLog:    auditLog,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// Process runs one submission through the pipeline and returns the
// terminal outcome. Validation failures are normal outcomes (HTTP 200,
// success=false); only the origin guard, method check and rate limiter,
// which run before this point, use other status codes.
func (s *IntakeService) Process(ctx context.Context, raw RawSubmission) Outcome {
	if s.isSpam(raw) {
		s.divertSpam(ctx, raw)
		// Fake success: the bot must not learn it was detected.
		return Outcome{StatusCode: http.StatusOK, Success: true, Message: MsgSuccess}
	}

	input := submissionInput{
		Name:    sanitize.Clean(raw.Name),
		Email:   sanitize.Clean(raw.Email),
		Phone:   sanitize.Clean(raw.Phone),
		Subject: sanitize.Clean(raw.Subject),
		Message: sanitize.Clean(raw.Message),
	}

	if msg, ok := validateSubmission(input); !ok {
		return Outcome{StatusCode: http.StatusOK, Success: false, Message: msg}
	}

	sub := &models.Submission{
		ID:        uuid.New(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Subject:   input.Subject,
		Message:   input.Message,
		IPAddress: raw.IPAddress,
		UserAgent: raw.UserAgent,
		CreatedAt: s.now().UTC(),
	}

	persisted := s.persist(ctx, sub)

	clinicSent, replySent := s.notifier.Notify(ctx, sub)
	notified := clinicSent || replySent

	// The request succeeds if EITHER persistence OR notification
	// succeeded. Only total failure of both is surfaced.
	if !persisted && !notified {
		s.logger.Error("submission lost: persistence and notification both failed",
			slog.String("submission_id", sub.ID.String()),
			slog.String("email", pkglogger.SanitizedEmail(sub.Email)))
		s.auditLogger.LogPipelineEvent(pkglogger.AuditEvent{
			EventType:     pkglogger.EventTotalFailure,
			IPAddress:     raw.IPAddress,
			UserAgent:     raw.UserAgent,
			Success:       false,
			FailureReason: "persistence and notification both failed",
		})
		return Outcome{StatusCode: http.StatusOK, Success: false, Message: MsgTotalFailure}
	}

	s.recordAudit(ctx, sub)
	s.auditLogger.LogPipelineEvent(pkglogger.AuditEvent{
		EventType: pkglogger.EventAccepted,
		IPAddress: raw.IPAddress,
		UserAgent: raw.UserAgent,
		Success:   true,
	})

	return Outcome{StatusCode: http.StatusOK, Success: true, Message: MsgSuccess}
}

// isSpam reports whether any trap field was populated.
func (s *IntakeService) isSpam(raw RawSubmission) bool {
	return strings.TrimSpace(raw.Website) != "" || strings.TrimSpace(raw.Honeypot) != ""
}

// divertSpam appends the full raw payload to the spam journal. The
// request is not processed further: no persistence, no email.
func (s *IntakeService) divertSpam(ctx context.Context, raw RawSubmission) {
	entry := models.SpamLogEntry{
		Timestamp: s.now().UTC(),
		Payload: map[string]string{
			"name":     raw.Name,
			"email":    raw.Email,
			"phone":    raw.Phone,
			"subject":  raw.Subject,
			"message":  raw.Message,
			"website":  raw.Website,
			"honeypot": raw.Honeypot,
		},
		IPAddress: raw.IPAddress,
		UserAgent: raw.UserAgent,
	}

	if err := s.spamLog.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append spam log entry", slog.Any("error", err))
	}

	s.auditLogger.LogPipelineEvent(pkglogger.AuditEvent{
		EventType:     pkglogger.EventSpamDetected,
		IPAddress:     raw.IPAddress,
		UserAgent:     raw.UserAgent,
		Success:       false,
		FailureReason: "honeypot field populated",
	})
}

// persist writes the submission to the primary store, falling back to the
// append-only file on failure. Returns true if either path succeeded.
func (s *IntakeService) persist(ctx context.Context, sub *models.Submission) bool {
	err := s.store.Insert(ctx, sub)
	if err == nil {
		return true
	}

	s.logger.Error("primary persistence failed, using fallback store",
		slog.String("submission_id", sub.ID.String()),
		slog.Any("error", err))

	entry := models.FallbackEntry{Timestamp: s.now().UTC(), Data: *sub}
	if fbErr := s.fallbackLog.Append(ctx, entry); fbErr != nil {
		s.logger.Error("fallback persistence failed",
			slog.String("submission_id", sub.ID.String()),
			slog.Any("error", fbErr))
		return false
	}
	return true
}

// recordAudit appends the compact success record. Audit failures are
// logged only; they never affect the user-facing outcome.
func (s *IntakeService) recordAudit(ctx context.Context, sub *models.Submission) {
	entry := models.SubmissionLogEntry{
		Timestamp: sub.CreatedAt,
		Name:      sub.Name,
		Email:     sub.Email,
		Subject:   sub.Subject,
		IPAddress: sub.IPAddress,
	}
	if err := s.auditLog.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append submission audit entry",
			slog.String("submission_id", sub.ID.String()),
			slog.Any("error", err))
	}
}

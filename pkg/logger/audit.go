package logger

import (
	"context"
	"log/slog"
	"time"
)

// Event types for pipeline audit logging
const (
	EventSpamDetected = "spam_detected"
	EventRateLimited  = "rate_limited"
	EventOriginDenied = "origin_denied"
	EventAccepted     = "submission_accepted"
	EventTotalFailure = "total_failure"
)

// AuditEvent represents one security-relevant pipeline event
type AuditEvent struct {
	EventType     string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
}

// AuditLogger provides structured audit logging for pipeline events. The
// on-disk journals are the durable trail; this is the operational one.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogPipelineEvent logs one pipeline event at info or warn level
// depending on outcome.
func (al *AuditLogger) LogPipelineEvent(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "contact_pipeline"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

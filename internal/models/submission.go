package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is a single contact-form inquiry. It is constructed once at
// intake from sanitized field values and never mutated afterwards.
type Submission struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// SpamLogEntry captures a submission diverted by the honeypot check. The
// full raw payload is preserved for later review; nothing else is done
// with the request.
type SpamLogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
	IPAddress string            `json:"ip_address"`
	UserAgent string            `json:"user_agent"`
}

// SubmissionLogEntry is the compact audit record appended after a
// successful submission. The audit log is a trail, not the system of
// record.
type SubmissionLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	IPAddress string    `json:"ip_address"`
}

// FallbackEntry is one line of the append-only fallback store, written
// when the primary database insert fails.
type FallbackEntry struct {
	Timestamp time.Time  `json:"timestamp"`
	Data      Submission `json:"data"`
}

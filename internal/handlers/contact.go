package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hollowayclinic/intake/internal/ratelimit"
	"github.com/hollowayclinic/intake/internal/services"
	"github.com/hollowayclinic/intake/pkg/httpx"
	pkglogger "github.com/hollowayclinic/intake/pkg/logger"
)

// IntakeProcessor defines the interface for the submission pipeline
type IntakeProcessor interface {
	Process(ctx context.Context, raw services.RawSubmission) services.Outcome
}

// ContactHandler handles contact-form HTTP requests
type ContactHandler struct {
	intake      IntakeProcessor
	limiter     *ratelimit.Limiter
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(intake IntakeProcessor, limiter *ratelimit.Limiter, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *ContactHandler {
	return &ContactHandler{
		intake:      intake,
		limiter:     limiter,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// contactRequest is the JSON request body; form-encoded bodies carry the
// same field names.
type contactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Website  string `json:"website"`
	Honeypot string `json:"honeypot"`
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity := httpx.ClientIP(r)

	allowed, err := h.limiter.Allow(r.Context(), identity)
	if err != nil {
		h.logger.Error("rate limiter error", slog.Any("error", err))
	}
	if !allowed {
		h.auditLogger.LogPipelineEvent(pkglogger.AuditEvent{
			EventType:     pkglogger.EventRateLimited,
			IPAddress:     identity,
			UserAgent:     r.UserAgent(),
			Success:       false,
			FailureReason: "submission window exhausted",
		})
		httpx.WriteTooManyRequests(w, services.MsgRateLimited)
		return
	}

	req, err := decodeContactRequest(r)
	if err != nil {
		httpx.WriteBadRequest(w, "Request body could not be parsed.")
		return
	}

	raw := services.RawSubmission{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		Website:   req.Website,
		Honeypot:  req.Honeypot,
		IPAddress: identity,
		UserAgent: r.UserAgent(),
	}

	outcome := h.intake.Process(r.Context(), raw)
	httpx.WriteResult(w, outcome.StatusCode, outcome.Success, outcome.Message)
}

// decodeContactRequest accepts either a JSON or a form-encoded body.
func decodeContactRequest(r *http.Request) (contactRequest, error) {
	var req contactRequest

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64*1024)).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Name = r.PostFormValue("name")
	req.Email = r.PostFormValue("email")
	req.Phone = r.PostFormValue("phone")
	req.Subject = r.PostFormValue("subject")
	req.Message = r.PostFormValue("message")
	req.Website = r.PostFormValue("website")
	req.Honeypot = r.PostFormValue("honeypot")
	return req, nil
}

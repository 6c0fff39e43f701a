package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker reports primary store reachability
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// JournalStats reports audit journal size and recency
type JournalStats interface {
	Stats(ctx context.Context) (count int, last time.Time, err error)
}

// StatusHandler serves the read-only diagnostics endpoints consumed by
// the system-status reporter.
type StatusHandler struct {
	db     HealthChecker
	audit  JournalStats
	logger *slog.Logger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(db HealthChecker, audit JournalStats, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{db: db, audit: audit, logger: logger}
}

type statusResponse struct {
	Status           string `json:"status"`
	Database         string `json:"database"`
	Submissions      int    `json:"submissions"`
	LastSubmissionAt string `json:"last_submission_at,omitempty"`
}

// Status handles GET /status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := statusResponse{Status: "ok", Database: "up"}

	if err := h.db.HealthCheck(ctx); err != nil {
		// A down database degrades the report but is not fatal: the
		// pipeline still accepts submissions via the fallback store.
		resp.Status = "degraded"
		resp.Database = "down"
	}

	count, last, err := h.audit.Stats(ctx)
	if err != nil {
		h.logger.Error("failed to read audit journal stats", slog.Any("error", err))
		resp.Status = "degraded"
	} else {
		resp.Submissions = count
		if !last.IsZero() {
			resp.LastSubmissionAt = last.UTC().Format(time.RFC3339)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == "ok" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// Health handles GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := h.db.HealthCheck(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","database":"up"}`))
}

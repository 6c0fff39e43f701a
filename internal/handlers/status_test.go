package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/hollowayclinic/intake/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHealth struct{ err error }

func (m mockHealth) HealthCheck(ctx context.Context) error { return m.err }

type mockStats struct {
	count int
	last  time.Time
	err   error
}

func (m mockStats) Stats(ctx context.Context) (int, time.Time, error) {
	return m.count, m.last, m.err
}

func newStatusHandler(db mockHealth, stats mockStats) *handlers.StatusHandler {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return handlers.NewStatusHandler(db, stats, logger)
}

func TestStatus_Healthy(t *testing.T) {
	last := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	handler := newStatusHandler(mockHealth{}, mockStats{count: 42, last: last})

	w := httptest.NewRecorder()
	handler.Status(w, httptest.NewRequest("GET", "/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "up", resp["database"])
	assert.Equal(t, float64(42), resp["submissions"])
	assert.Equal(t, "2026-03-01T09:30:00Z", resp["last_submission_at"])
}

func TestStatus_DatabaseDownIsDegraded(t *testing.T) {
	handler := newStatusHandler(mockHealth{err: errors.New("down")}, mockStats{count: 3})

	w := httptest.NewRecorder()
	handler.Status(w, httptest.NewRequest("GET", "/status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, "down", resp["database"])
	// Journal stats are still served: the audit trail is file-backed.
	assert.Equal(t, float64(3), resp["submissions"])
}

func TestStatus_EmptyJournalOmitsLastTimestamp(t *testing.T) {
	handler := newStatusHandler(mockHealth{}, mockStats{})

	w := httptest.NewRecorder()
	handler.Status(w, httptest.NewRequest("GET", "/status", nil))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, present := resp["last_submission_at"]
	assert.False(t, present)
}

func TestHealth(t *testing.T) {
	handler := newStatusHandler(mockHealth{}, mockStats{})

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"up"}`, w.Body.String())
}

func TestHealth_Down(t *testing.T) {
	handler := newStatusHandler(mockHealth{err: errors.New("down")}, mockStats{})

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

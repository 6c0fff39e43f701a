package routes_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowayclinic/intake/internal/config"
	"github.com/hollowayclinic/intake/internal/handlers"
	"github.com/hollowayclinic/intake/internal/middleware"
	"github.com/hollowayclinic/intake/internal/ratelimit"
	"github.com/hollowayclinic/intake/internal/routes"
	"github.com/hollowayclinic/intake/internal/services"
	pkglogger "github.com/hollowayclinic/intake/pkg/logger"
)

const allowedOrigin = "https://hollowaypsychiatry.example"

type stubIntake struct{}

func (stubIntake) Process(ctx context.Context, raw services.RawSubmission) services.Outcome {
	return services.Outcome{StatusCode: http.StatusOK, Success: true, Message: services.MsgSuccess}
}

type stubHealth struct{}

func (stubHealth) HealthCheck(ctx context.Context) error { return nil }

type stubStats struct{}

func (stubStats) Stats(ctx context.Context) (int, time.Time, error) {
	return 0, time.Time{}, nil
}

// newRouter assembles the production router shape: CORS at the top,
// then the registered routes with their guard and throttle.
func newRouter() chi.Router {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	auditLogger := pkglogger.NewAuditLogger(logger)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 5, 1*time.Hour, logger)

	contactHandler := handlers.NewContactHandler(stubIntake{}, limiter, logger, auditLogger)
	statusHandler := handlers.NewStatusHandler(stubHealth{}, stubStats{}, logger)

	cfg := &config.ServerConfig{
		AllowedOrigins:         []string{allowedOrigin},
		AllowedReferrerDomains: []string{"hollowaypsychiatry.example"},
		ThrottleRequestsPerMin: 100,
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r := chi.NewRouter()
	r.Use(middleware.CORS(corsConfig))
	routes.RegisterRoutes(r, cfg, contactHandler, statusHandler, auditLogger)
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (bool, string) {
	t.Helper()
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Success, resp.Message
}

func TestRoutes_WrongMethodGets405Envelope(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest("GET", "/api/contact", nil)
	req.Header.Set("Origin", allowedOrigin)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	success, message := decodeEnvelope(t, w)
	assert.False(t, success)
	assert.Equal(t, "Method not allowed.", message)
}

func TestRoutes_PreflightFromAllowedOrigin(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest("OPTIONS", "/api/contact", nil)
	req.Header.Set("Origin", allowedOrigin)
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Empty(t, w.Body.String(), "preflight short-circuits before any body handling")
}

func TestRoutes_PreflightFromUnknownOriginGetsNoCORSHeaders(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest("OPTIONS", "/api/contact", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// The response itself is 200, but without the mirrored origin the
	// browser blocks the actual request.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_UnknownPathGets404Envelope(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest("GET", "/api/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	success, _ := decodeEnvelope(t, w)
	assert.False(t, success)
}

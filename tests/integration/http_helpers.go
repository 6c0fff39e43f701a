package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hollowayclinic/intake/internal/config"
	"github.com/hollowayclinic/intake/internal/database"
	"github.com/hollowayclinic/intake/internal/handlers"
	"github.com/hollowayclinic/intake/internal/journal"
	"github.com/hollowayclinic/intake/internal/mail"
	middlewareCustom "github.com/hollowayclinic/intake/internal/middleware"
	"github.com/hollowayclinic/intake/internal/ratelimit"
	"github.com/hollowayclinic/intake/internal/repositories"
	"github.com/hollowayclinic/intake/internal/routes"
	"github.com/hollowayclinic/intake/internal/services"
	pkglogger "github.com/hollowayclinic/intake/pkg/logger"
)

const (
	testOrigin     = "https://hollowaypsychiatry.com"
	testClinicName = "Holloway Psychiatry"
)

// MockMailer captures sent messages for test assertions
type MockMailer struct {
	mu       sync.Mutex
	Messages []mail.Message
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
	return nil
}

// SentCount returns the number of captured messages
func (m *MockMailer) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

// Reset clears captured messages between test cases
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = nil
}

// TestServer wraps httptest.Server with a real database, real rate-limit
// store and journals, and a mocked mail transport.
type TestServer struct {
	Server     *httptest.Server
	DB         *database.DB
	Mailer     *MockMailer
	JournalDir string
	Config     *config.Config
}

// NewTestServer initializes the full HTTP stack against a real database.
// Journals are written under journalDir; email is captured in-memory.
func NewTestServer(db *database.DB, journalDir string) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:                   "0",
			Env:                    "test",
			AllowedOrigins:         []string{testOrigin},
			AllowedReferrerDomains: []string{"hollowaypsychiatry.com"},
			// Keep the coarse throttle out of the way so tests exercise
			// the domain submission limit.
			ThrottleRequestsPerMin: 1000,
		},
		RateLimit: config.RateLimitConfig{
			MaxSubmissions: 5,
			Window:         1 * time.Hour,
			Backend:        "postgres",
		},
		Mail: config.MailConfig{
			FromAddress:      "noreply@hollowaypsychiatry.com",
			ClinicRecipients: []string{"frontdesk@hollowaypsychiatry.com"},
		},
		Journal: config.JournalConfig{
			Dir:          journalDir,
			FallbackFile: "fallback_submissions.log",
			SpamFile:     "spam.log",
			AuditFile:    "submissions.log",
		},
	}

	fallbackLog := journal.New(filepath.Join(journalDir, cfg.Journal.FallbackFile))
	spamLog := journal.New(filepath.Join(journalDir, cfg.Journal.SpamFile))
	auditLog := journal.New(filepath.Join(journalDir, cfg.Journal.AuditFile))

	store := ratelimit.NewPostgresStore(db)
	limiter := ratelimit.NewLimiter(store, cfg.RateLimit.MaxSubmissions, cfg.RateLimit.Window, logger)

	mockMailer := &MockMailer{}
	auditLogger := pkglogger.NewAuditLogger(logger)

	submissionRepo := repositories.NewSubmissionRepository(db)
	notifier := services.NewNotifierService(mockMailer, cfg.Mail.ClinicRecipients, testClinicName, logger)
	intakeService := services.NewIntakeService(submissionRepo, notifier, fallbackLog, spamLog, auditLog, logger, auditLogger)

	contactHandler := handlers.NewContactHandler(intakeService, limiter, logger, auditLogger)
	statusHandler := handlers.NewStatusHandler(db, auditLog, logger)

	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders())
	r.Use(middlewareCustom.CORS(corsConfig))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, &cfg.Server, contactHandler, statusHandler, auditLogger)

	return &TestServer{
		Server:     httptest.NewServer(r),
		DB:         db,
		Mailer:     mockMailer,
		JournalDir: journalDir,
		Config:     cfg,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// SubmitJSON posts a JSON contact submission from the given client IP.
// The Origin header is set to the allowed test origin.
func (ts *TestServer) SubmitJSON(payload map[string]string, clientIP string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/contact", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("User-Agent", "integration-test")
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	return http.DefaultClient.Do(req)
}

// SubmitForm posts a form-encoded contact submission from the given
// client IP.
func (ts *TestServer) SubmitForm(payload map[string]string, clientIP string) (*http.Response, error) {
	form := url.Values{}
	for key, value := range payload {
		form.Set(key, value)
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/contact", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("User-Agent", "integration-test")
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	return http.DefaultClient.Do(req)
}

// ParseResult decodes the standard response envelope
func ParseResult(resp *http.Response) (success bool, message string, err error) {
	defer resp.Body.Close()

	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return false, "", err
	}
	return envelope.Success, envelope.Message, nil
}

// ReadJournal returns the raw contents of a journal file, empty if the
// file does not exist yet.
func (ts *TestServer) ReadJournal(name string) (string, error) {
	f, err := os.Open(filepath.Join(ts.JournalDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
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
	"github.com/redis/go-redis/v9"
)

const clinicName = "Holloway Psychiatry"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Append-only journals: fallback store, spam log, audit trail
	fallbackLog := journal.New(filepath.Join(cfg.Journal.Dir, cfg.Journal.FallbackFile))
	spamLog := journal.New(filepath.Join(cfg.Journal.Dir, cfg.Journal.SpamFile))
	auditLog := journal.New(filepath.Join(cfg.Journal.Dir, cfg.Journal.AuditFile))

	// Rate-limit store backend
	store, err := newRateLimitStore(cfg, db)
	if err != nil {
		logger.Error("failed to initialize rate limit store", slog.Any("error", err))
		os.Exit(1)
	}
	limiter := ratelimit.NewLimiter(store, cfg.RateLimit.MaxSubmissions, cfg.RateLimit.Window, logger)

	// Mail transport
	mailer, err := newMailer(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize mailer", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize services
	submissionRepo := repositories.NewSubmissionRepository(db)
	notifier := services.NewNotifierService(mailer, cfg.Mail.ClinicRecipients, clinicName, logger)
	intakeService := services.NewIntakeService(submissionRepo, notifier, fallbackLog, spamLog, auditLog, logger, auditLogger)

	// Initialize handlers
	contactHandler := handlers.NewContactHandler(intakeService, limiter, logger, auditLogger)
	statusHandler := handlers.NewStatusHandler(db, auditLog, logger)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders())
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, &cfg.Server, contactHandler, statusHandler, auditLogger)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// newRateLimitStore selects the limiter backend from configuration.
func newRateLimitStore(cfg *config.Config, db *database.DB) (ratelimit.Store, error) {
	switch cfg.RateLimit.Backend {
	case "memory":
		return ratelimit.NewMemoryStore(), nil
	case "postgres":
		return ratelimit.NewPostgresStore(db), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("unable to ping redis: %w", err)
		}
		return ratelimit.NewRedisStore(client, cfg.RateLimit.Window), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit backend %q", cfg.RateLimit.Backend)
	}
}

// newMailer selects the mail transport from configuration.
func newMailer(cfg *config.Config, logger *slog.Logger) (mail.Mailer, error) {
	switch cfg.Mail.Provider {
	case "ses":
		return mail.NewSESMailer(cfg.Mail.AWSRegion, cfg.Mail.FromAddress, logger)
	case "smtp":
		return mail.NewSMTPMailer(
			cfg.Mail.SMTPHost,
			cfg.Mail.SMTPPort,
			cfg.Mail.SMTPUsername,
			cfg.Mail.SMTPPassword,
			cfg.Mail.FromAddress,
			logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.Mail.Provider)
	}
}
